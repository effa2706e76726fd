package secondary

import (
	"context"

	"gitlab.com/testsys2pcms.net/internal/domain"
)

type Emitter interface {
	// Emit renders a parsed export into the target documents
	Emit(ctx context.Context, result *domain.ParsedResult) error
}
