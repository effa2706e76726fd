package secondary

import (
	"context"

	"github.com/google/uuid"

	"gitlab.com/testsys2pcms.net/internal/domain"
)

// ConversionRepository stores the history of conversions
type ConversionRepository interface {
	// Save inserts or updates a conversion
	Save(ctx context.Context, conversion *domain.Conversion) error

	// Get retrieves a conversion by ID, including its parsed result
	Get(ctx context.Context, id uuid.UUID) (*domain.Conversion, error)

	// List retrieves the most recent conversions without their results
	List(ctx context.Context, limit int) ([]*domain.Conversion, error)

	// Latest retrieves the most recent completed conversion, or nil
	Latest(ctx context.Context) (*domain.Conversion, error)
}
