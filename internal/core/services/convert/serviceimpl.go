package convert

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"gitlab.com/testsys2pcms.net/internal/adapter/crypto"
	"gitlab.com/testsys2pcms.net/internal/config"
	"gitlab.com/testsys2pcms.net/internal/core/meta"
	"gitlab.com/testsys2pcms.net/internal/core/ports/primary"
	"gitlab.com/testsys2pcms.net/internal/core/ports/secondary"
	"gitlab.com/testsys2pcms.net/internal/domain"
	"gitlab.com/testsys2pcms.net/internal/static/errs"
)

var _ IConvertService = (*ConvertService)(nil)

// invalidator is implemented by fetchers that cache payloads
type invalidator interface {
	Invalidate(ctx context.Context, url string) error
}

// ConvertService implements the IConvertService interface
type ConvertService struct {
	fetcher secondary.Fetcher
	emitter secondary.Emitter
	repo    secondary.ConversionRepository
	cfg     *config.ContestConfig
	logger  primary.Logger

	// mu serialises conversions; the emitter rewrites the same files each time
	mu         sync.Mutex
	lastDigest string
}

// NewConvertService creates a conversion service. repo may be nil, in which
// case conversions are not recorded.
func NewConvertService(
	fetcher secondary.Fetcher,
	emitter secondary.Emitter,
	repo secondary.ConversionRepository,
	cfg *config.ContestConfig,
	logger primary.Logger,
) *ConvertService {
	return &ConvertService{
		fetcher: fetcher,
		emitter: emitter,
		repo:    repo,
		cfg:     cfg,
		logger:  logger,
	}
}

// Convert fetches, parses and emits the configured export
func (s *ConvertService) Convert(ctx context.Context, opts Options) (*domain.Conversion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conversion := domain.NewConversion(s.cfg.URL)
	s.logger.Info("Starting conversion", "conversionId", conversion.ID, "url", s.cfg.URL, "force", opts.Force)

	if opts.Force {
		if inv, ok := s.fetcher.(invalidator); ok {
			if err := inv.Invalidate(ctx, s.cfg.URL); err != nil {
				s.logger.Warn("Failed to invalidate cached payload", "url", s.cfg.URL, "error", err)
			}
		}
	}

	data, err := s.fetcher.Fetch(ctx, s.cfg.URL)
	if err != nil {
		return s.fail(ctx, conversion, fmt.Errorf("failed to fetch export: %w", err))
	}

	if err := s.saveRaw(data); err != nil {
		return s.fail(ctx, conversion, err)
	}

	conversion.Digest = crypto.Digest(data)
	if !opts.Force && conversion.Digest == s.previousDigest(ctx) {
		conversion.Complete(domain.ConversionStatusUnchanged, nil)
		s.logger.Info("Export unchanged, skipping", "conversionId", conversion.ID, "digest", conversion.Digest)
		s.record(ctx, conversion)
		return conversion, nil
	}

	result, err := meta.Parse(data, s.cfg.MetaEncoding)
	if err != nil {
		return s.fail(ctx, conversion, fmt.Errorf("failed to parse export: %w", err))
	}
	conversion.Attach(result)

	if err := s.checkProblems(result); err != nil {
		return s.fail(ctx, conversion, err)
	}

	if err := s.emitter.Emit(ctx, result); err != nil {
		return s.fail(ctx, conversion, fmt.Errorf("failed to emit documents: %w", err))
	}

	conversion.Complete(domain.ConversionStatusCompleted, nil)
	s.lastDigest = conversion.Digest
	s.record(ctx, conversion)

	s.logger.Info("Conversion completed",
		"conversionId", conversion.ID,
		"contest", result.Contest,
		"problems", len(result.Problems),
		"sessions", len(result.Sessions),
		"runs", len(result.Runs))
	return conversion, nil
}

// GetConversion retrieves a recorded conversion by ID
func (s *ConvertService) GetConversion(ctx context.Context, id uuid.UUID) (*domain.Conversion, error) {
	if s.repo == nil {
		return nil, errs.ErrConversionNotFound
	}
	conversion, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get conversion: %w", err)
	}
	if conversion == nil {
		return nil, errs.ErrConversionNotFound
	}
	return conversion, nil
}

// ListConversions retrieves recent conversions, newest first
func (s *ConvertService) ListConversions(ctx context.Context, limit int) ([]*domain.Conversion, error) {
	if s.repo == nil {
		return []*domain.Conversion{}, nil
	}
	conversions, err := s.repo.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversions: %w", err)
	}
	return conversions, nil
}

// checkProblems requires a configured problem id for every declared letter
func (s *ConvertService) checkProblems(result *domain.ParsedResult) error {
	for _, p := range result.Problems {
		if _, ok := s.cfg.Problems[p.Letter]; !ok {
			return fmt.Errorf("%w: unknown problem %q", errs.ErrConfigurationMismatch, p.Letter)
		}
	}
	return nil
}

// saveRaw keeps a copy of the downloaded export next to the documents
func (s *ConvertService) saveRaw(data []byte) error {
	if s.cfg.Filename == "" {
		return nil
	}
	if dir := filepath.Dir(s.cfg.Filename); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to save export: %w", err)
		}
	}
	if err := os.WriteFile(s.cfg.Filename, data, 0o644); err != nil {
		return fmt.Errorf("failed to save export: %w", err)
	}
	return nil
}

func (s *ConvertService) previousDigest(ctx context.Context) string {
	if s.lastDigest != "" || s.repo == nil {
		return s.lastDigest
	}
	latest, err := s.repo.Latest(ctx)
	if err != nil {
		s.logger.Warn("Failed to load latest conversion", "error", err)
		return ""
	}
	if latest != nil && latest.SourceURL == s.cfg.URL {
		s.lastDigest = latest.Digest
	}
	return s.lastDigest
}

func (s *ConvertService) fail(ctx context.Context, conversion *domain.Conversion, err error) (*domain.Conversion, error) {
	conversion.Complete(domain.ConversionStatusFailed, err)
	conversion.Result = nil
	s.logger.Error("Conversion failed", "conversionId", conversion.ID, "error", err)
	s.record(ctx, conversion)
	return conversion, err
}

func (s *ConvertService) record(ctx context.Context, conversion *domain.Conversion) {
	if s.repo == nil {
		return
	}
	if err := s.repo.Save(ctx, conversion); err != nil {
		s.logger.Error("Failed to record conversion", "conversionId", conversion.ID, "error", err)
	}
}
