package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ryanhaynes01/Individual-Project/internal/domain/entity"
)

type ConversionRepository struct {
	pool *pgxpool.Pool
}

func NewConversionRepository(pool *pgxpool.Pool) *ConversionRepository {
	return &ConversionRepository{pool: pool}
}

const selectColumns = `
	id, source_name, output_dir, status, frame_count, archive_key,
	error_message, created_at, updated_at, completed_at`

func (r *ConversionRepository) Create(ctx context.Context, c *entity.Conversion) error {
	query := `
		INSERT INTO conversions (
			id, source_name, output_dir, status, frame_count, archive_key,
			error_message, created_at, updated_at, completed_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`

	_, err := r.pool.Exec(ctx, query,
		c.ID, c.SourceName, c.OutputDir, string(c.Status), c.FrameCount, c.ArchiveKey,
		c.ErrorMessage, c.CreatedAt, c.UpdatedAt, c.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("insert conversion: %w", err)
	}
	return nil
}

func (r *ConversionRepository) Update(ctx context.Context, c *entity.Conversion) error {
	query := `
		UPDATE conversions SET
			output_dir=$2, status=$3, frame_count=$4, archive_key=$5,
			error_message=$6, updated_at=$7, completed_at=$8
		WHERE id=$1`

	_, err := r.pool.Exec(ctx, query,
		c.ID, c.OutputDir, string(c.Status), c.FrameCount, c.ArchiveKey,
		c.ErrorMessage, c.UpdatedAt, c.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("update conversion: %w", err)
	}
	return nil
}

func (r *ConversionRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Conversion, error) {
	c := &entity.Conversion{}
	var status string
	err := r.pool.QueryRow(ctx, `SELECT`+selectColumns+` FROM conversions WHERE id=$1`, id).Scan(
		&c.ID, &c.SourceName, &c.OutputDir, &status, &c.FrameCount, &c.ArchiveKey,
		&c.ErrorMessage, &c.CreatedAt, &c.UpdatedAt, &c.CompletedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("find conversion by id: %w", err)
	}
	c.Status = entity.ConversionStatus(status)
	return c, nil
}

func (r *ConversionRepository) List(ctx context.Context, limit int) ([]*entity.Conversion, error) {
	rows, err := r.pool.Query(ctx, `SELECT`+selectColumns+` FROM conversions ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list conversions: %w", err)
	}
	defer rows.Close()

	var out []*entity.Conversion
	for rows.Next() {
		c := &entity.Conversion{}
		var status string
		if err := rows.Scan(
			&c.ID, &c.SourceName, &c.OutputDir, &status, &c.FrameCount, &c.ArchiveKey,
			&c.ErrorMessage, &c.CreatedAt, &c.UpdatedAt, &c.CompletedAt,
		); err != nil {
			return nil, fmt.Errorf("scan conversion: %w", err)
		}
		c.Status = entity.ConversionStatus(status)
		out = append(out, c)
	}
	return out, rows.Err()
}
