package schedulerengine

import (
	"context"
	"sync"
	"time"

	"gitlab.com/testsys2pcms.net/internal/config"
	"gitlab.com/testsys2pcms.net/internal/core/ports/primary"
	"gitlab.com/testsys2pcms.net/internal/core/services/convert"
)

// SchedulerEngine re-converts the export on a fixed interval while a contest runs
type SchedulerEngine struct {
	SchedulerCfg *config.ScheduleSvcCfg
	convertSvc   convert.IConvertService
	logger       primary.Logger

	wg sync.WaitGroup
}

func NewSchedulerEngine(
	SchedulerCfg *config.ScheduleSvcCfg,
	convertSvc convert.IConvertService,
	logger primary.Logger,
) *SchedulerEngine {
	return &SchedulerEngine{
		SchedulerCfg: SchedulerCfg,
		convertSvc:   convertSvc,
		logger:       logger,
	}
}

// StartConvertEngine converts once immediately, then on every tick until ctx is done
func (s *SchedulerEngine) StartConvertEngine(ctx context.Context) {
	ticker := time.NewTicker(s.SchedulerCfg.ConvertInterval)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer ticker.Stop()
		s.RunOnce(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.RunOnce(ctx)
			}
		}
	}()
}

// Wait blocks until the engine goroutine has exited
func (s *SchedulerEngine) Wait() {
	s.wg.Wait()
}

// RunOnce performs a single non-forced conversion and logs its outcome
func (s *SchedulerEngine) RunOnce(ctx context.Context) {
	conversion, err := s.convertSvc.Convert(ctx, convert.Options{})
	if err != nil {
		// the service already logged the cause
		s.logger.Warn("Scheduled conversion failed", "error", err)
		return
	}
	s.logger.Debug("Scheduled conversion finished", "conversionId", conversion.ID, "status", conversion.Status)
}
