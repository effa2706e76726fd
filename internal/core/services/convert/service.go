package convert

import (
	"context"

	"github.com/google/uuid"

	"gitlab.com/testsys2pcms.net/internal/domain"
)

// Options tune a single conversion
type Options struct {
	// Force emits even when the export has not changed since the last run
	Force bool
}

// IConvertService turns the configured testsys export into PCMS2 documents
type IConvertService interface {
	// Convert fetches, parses and emits the configured export
	Convert(ctx context.Context, opts Options) (*domain.Conversion, error)

	// GetConversion retrieves a recorded conversion by ID
	GetConversion(ctx context.Context, id uuid.UUID) (*domain.Conversion, error)

	// ListConversions retrieves recent conversions, newest first
	ListConversions(ctx context.Context, limit int) ([]*domain.Conversion, error)
}
