package port

import (
	"context"

	"github.com/google/uuid"
	"github.com/ryanhaynes01/Individual-Project/internal/domain/entity"
)

type ConversionRepository interface {
	Create(ctx context.Context, c *entity.Conversion) error
	Update(ctx context.Context, c *entity.Conversion) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Conversion, error)
	// List returns the most recent conversions first.
	List(ctx context.Context, limit int) ([]*entity.Conversion, error)
}
