package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ryanhaynes01/Individual-Project/internal/domain/entity"
	"go.uber.org/zap"

	_ "modernc.org/sqlite"
)

// ConversionRepository keeps conversion history in a local SQLite file.
type ConversionRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewConversionRepository(dbPath string, logger *zap.Logger) (*ConversionRepository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// Conversions finish on background goroutines; serialise writers.
	db.SetMaxOpenConns(1)

	repo := &ConversionRepository{db: db, logger: logger}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	logger.Debug("history database ready", zap.String("path", dbPath))
	return repo, nil
}

func (r *ConversionRepository) Close() error {
	return r.db.Close()
}

func (r *ConversionRepository) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS conversions (
			id TEXT PRIMARY KEY,
			source_name TEXT NOT NULL,
			output_dir TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL,
			frame_count INTEGER NOT NULL DEFAULT 0,
			archive_key TEXT NOT NULL DEFAULT '',
			error_message TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			completed_at DATETIME
		)`,
		`CREATE INDEX IF NOT EXISTS idx_conversions_created_at ON conversions(created_at)`,
	}

	for _, m := range migrations {
		if _, err := r.db.Exec(m); err != nil {
			return fmt.Errorf("execute migration: %w", err)
		}
	}
	return nil
}

func (r *ConversionRepository) Create(ctx context.Context, c *entity.Conversion) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO conversions (
			id, source_name, output_dir, status, frame_count, archive_key,
			error_message, created_at, updated_at, completed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID.String(), c.SourceName, c.OutputDir, string(c.Status), c.FrameCount, c.ArchiveKey,
		c.ErrorMessage, c.CreatedAt, c.UpdatedAt, nullTime(c.CompletedAt),
	)
	if err != nil {
		return fmt.Errorf("insert conversion: %w", err)
	}
	return nil
}

func (r *ConversionRepository) Update(ctx context.Context, c *entity.Conversion) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE conversions SET
			output_dir = ?, status = ?, frame_count = ?, archive_key = ?,
			error_message = ?, updated_at = ?, completed_at = ?
		WHERE id = ?`,
		c.OutputDir, string(c.Status), c.FrameCount, c.ArchiveKey,
		c.ErrorMessage, c.UpdatedAt, nullTime(c.CompletedAt), c.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("update conversion: %w", err)
	}
	return nil
}

func (r *ConversionRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Conversion, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+columns+` FROM conversions WHERE id = ?`, id.String())
	c, err := scanConversion(row)
	if err != nil {
		return nil, fmt.Errorf("find conversion by id: %w", err)
	}
	return c, nil
}

func (r *ConversionRepository) List(ctx context.Context, limit int) ([]*entity.Conversion, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+columns+` FROM conversions ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list conversions: %w", err)
	}
	defer rows.Close()

	var out []*entity.Conversion
	for rows.Next() {
		c, err := scanConversion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan conversion: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

const columns = `id, source_name, output_dir, status, frame_count, archive_key,
	error_message, created_at, updated_at, completed_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanConversion(s scanner) (*entity.Conversion, error) {
	var (
		c         entity.Conversion
		id        string
		status    string
		completed sql.NullTime
	)
	if err := s.Scan(&id, &c.SourceName, &c.OutputDir, &status, &c.FrameCount, &c.ArchiveKey,
		&c.ErrorMessage, &c.CreatedAt, &c.UpdatedAt, &completed); err != nil {
		return nil, err
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parse id: %w", err)
	}
	c.ID = parsed
	c.Status = entity.ConversionStatus(status)
	if completed.Valid {
		t := completed.Time
		c.CompletedAt = &t
	}
	return &c, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
