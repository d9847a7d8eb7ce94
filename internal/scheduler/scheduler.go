package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/smallbiznis/paysync/internal/clock"
	providerdomain "github.com/smallbiznis/paysync/internal/provider/domain"
	reconciledomain "github.com/smallbiznis/paysync/internal/reconcile/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var ErrInvalidConfig = errors.New("invalid_scheduler_config")

type Params struct {
	fx.In

	Log          *zap.Logger
	Clock        clock.Clock
	ReconcileSvc reconciledomain.Service
	Config       Config `optional:"true"`
}

type Scheduler struct {
	log          *zap.Logger
	cfg          Config
	clock        clock.Clock
	reconcileSvc reconciledomain.Service
}

func New(p Params) (*Scheduler, error) {
	if p.Log == nil || p.Clock == nil || p.ReconcileSvc == nil {
		return nil, ErrInvalidConfig
	}
	return &Scheduler{
		log:          p.Log.Named("scheduler").With(zap.String("component", "scheduler")),
		cfg:          p.Config.withDefaults(),
		clock:        p.Clock,
		reconcileSvc: p.ReconcileSvc,
	}, nil
}

// Window derives the trailing reconciliation window from the clock.
func (s *Scheduler) Window() providerdomain.Window {
	now := s.clock.Now()
	return providerdomain.Window{
		Start: now.Add(-s.cfg.Lookback),
		End:   now,
	}
}

// RunOnce executes a single reconciliation run over the trailing window
// under the configured timeout. Overlapping runs are safe: the ledger's
// uniqueness constraint resolves duplicate creates and repeat runs land in
// the unchanged bucket.
func (s *Scheduler) RunOnce(parent context.Context) (reconciledomain.RunSummary, error) {
	ctx, cancel := context.WithTimeout(parent, s.cfg.RunTimeout)
	defer cancel()

	window := s.Window()
	summary, err := s.reconcileSvc.Reconcile(ctx, window)
	if err != nil {
		s.log.Warn("reconciliation run incomplete",
			zap.Time("window_start", window.Start),
			zap.Time("window_end", window.End),
			zap.Error(err),
		)
		return summary, err
	}
	if summary.Failed > 0 {
		s.log.Warn("reconciliation run had record failures",
			zap.Int("failed", summary.Failed),
		)
	}
	return summary, nil
}

func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()

	for {
		if _, err := s.RunOnce(ctx); err != nil && ctx.Err() != nil {
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
