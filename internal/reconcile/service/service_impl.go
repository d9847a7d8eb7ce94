package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/paysync/internal/clock"
	ledgerdomain "github.com/smallbiznis/paysync/internal/ledger/domain"
	obsmetrics "github.com/smallbiznis/paysync/internal/observability/metrics"
	providerdomain "github.com/smallbiznis/paysync/internal/provider/domain"
	reconciledomain "github.com/smallbiznis/paysync/internal/reconcile/domain"
	"github.com/smallbiznis/paysync/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// minorUnitExponent converts provider minor units (cents) to major units.
const minorUnitExponent = -2

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	GenID  *snowflake.Node
	Clock  clock.Clock
	Repo   ledgerdomain.Repository
	Source providerdomain.Source
}

type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	genID  *snowflake.Node
	clock  clock.Clock
	repo   ledgerdomain.Repository
	source providerdomain.Source
}

func NewService(p Params) reconciledomain.Service {
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("reconcile.service"),
		genID:  p.GenID,
		clock:  p.Clock,
		repo:   p.Repo,
		source: p.Source,
	}
}

// Reconcile walks the provider's transactions for the window and upserts
// each one into the ledger. Records fail independently: a bad record is
// counted and logged, never aborts the run. A page fetch failure or a
// deadline ends the run early and marks the summary incomplete.
func (s *Service) Reconcile(ctx context.Context, window providerdomain.Window) (reconciledomain.RunSummary, error) {
	summary := reconciledomain.RunSummary{
		Provider: s.source.Provider(),
		Window:   window,
	}
	if err := window.Validate(); err != nil {
		return summary, err
	}

	start := time.Now()
	metrics := obsmetrics.Reconcile()
	log := s.log.With(
		zap.String("provider", summary.Provider),
		zap.Time("window_start", window.Start),
		zap.Time("window_end", window.End),
	)

	iter := s.source.Transactions(ctx, window)
	for iter.Next(ctx) {
		if ctx.Err() != nil {
			break
		}
		tx := iter.Transaction()
		if err := s.apply(ctx, log, tx, &summary); err != nil {
			summary.Failed++
			summary.Errors = append(summary.Errors, reconciledomain.RecordError{
				ExternalID: tx.ExternalID,
				Reason:     err.Error(),
			})
			log.Warn("record reconciliation failed",
				zap.String("external_id", tx.ExternalID),
				zap.Error(err),
			)
		}
	}

	if err := iter.Err(); err != nil {
		summary.Incomplete = true
		summary.IncompleteReason = err.Error()
	}
	if err := ctx.Err(); err != nil && !summary.Incomplete {
		summary.Incomplete = true
		summary.IncompleteReason = err.Error()
	}

	metrics.ObserveRunDuration(summary.Provider, time.Since(start))
	metrics.AddRecords(summary.Provider, obsmetrics.RecordOutcomeCreated, summary.Created)
	metrics.AddRecords(summary.Provider, obsmetrics.RecordOutcomeUpdated, summary.Updated)
	metrics.AddRecords(summary.Provider, obsmetrics.RecordOutcomeUnchanged, summary.Unchanged)
	metrics.AddRecords(summary.Provider, obsmetrics.RecordOutcomeFailed, summary.Failed)
	metrics.IncRun(summary.Provider, runOutcome(summary))

	log.Info("reconciliation run finished",
		zap.Int("created", summary.Created),
		zap.Int("updated", summary.Updated),
		zap.Int("unchanged", summary.Unchanged),
		zap.Int("failed", summary.Failed),
		zap.Bool("incomplete", summary.Incomplete),
		zap.Duration("duration", time.Since(start)),
	)

	if summary.Incomplete {
		return summary, fmt.Errorf("%w: %s", reconciledomain.ErrRunIncomplete, summary.IncompleteReason)
	}
	return summary, nil
}

func runOutcome(summary reconciledomain.RunSummary) string {
	switch {
	case summary.Incomplete:
		return obsmetrics.RunOutcomeIncomplete
	case summary.Failed > 0:
		return obsmetrics.RunOutcomeFailed
	default:
		return obsmetrics.RunOutcomeOK
	}
}

func (s *Service) apply(ctx context.Context, log *zap.Logger, tx providerdomain.Transaction, summary *reconciledomain.RunSummary) error {
	externalID := strings.TrimSpace(tx.ExternalID)
	if externalID == "" {
		return ledgerdomain.ErrInvalidExternalID
	}
	if tx.AmountMinor < 0 {
		return ledgerdomain.ErrInvalidAmount
	}
	currency := strings.ToUpper(strings.TrimSpace(tx.Currency))
	if currency == "" {
		return ledgerdomain.ErrInvalidCurrency
	}

	status, mapped := s.source.MapStatus(tx.RawStatus)
	if !mapped {
		log.Warn("unmapped provider status, defaulting to pending",
			zap.String("external_id", externalID),
			zap.String("raw_status", tx.RawStatus),
		)
	}

	existing, err := s.repo.FindByExternalID(ctx, s.db, summary.Provider, externalID)
	if err != nil {
		return err
	}

	now := s.clock.Now()
	if existing == nil {
		record := &ledgerdomain.PaymentRecord{
			ID:         s.genID.Generate(),
			Provider:   summary.Provider,
			ExternalID: externalID,
			Amount:     decimal.New(tx.AmountMinor, minorUnitExponent),
			Currency:   currency,
			Status:     status,
			Metadata:   datatypes.JSON(tx.Raw),
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		insertErr := s.repo.Insert(ctx, s.db, record)
		if insertErr == nil {
			summary.Created++
			log.Info("payment record created",
				zap.String("external_id", externalID),
				zap.String("status", string(status)),
			)
			return nil
		}
		if !db.IsDuplicateKeyErr(insertErr) {
			return insertErr
		}
		// Lost a create race against a concurrent run; the record exists
		// now, so fall through to the update path.
		existing, err = s.repo.FindByExternalID(ctx, s.db, summary.Provider, externalID)
		if err != nil {
			return err
		}
		if existing == nil {
			return insertErr
		}
	}

	if existing.Status == status {
		summary.Unchanged++
		return nil
	}
	if existing.Status == ledgerdomain.StatusSucceeded && status == ledgerdomain.StatusPending {
		// Succeeded is terminal here: a provider-side regression is
		// surfaced for operators instead of silently applied.
		log.Warn("refusing payment status regression",
			zap.String("external_id", externalID),
			zap.String("current_status", string(existing.Status)),
			zap.String("provider_status", string(status)),
		)
		summary.Unchanged++
		return nil
	}

	if err := s.repo.UpdateStatus(ctx, s.db, existing.ID, status, datatypes.JSON(tx.Raw), now); err != nil {
		return err
	}
	summary.Updated++
	log.Info("payment record updated",
		zap.String("external_id", externalID),
		zap.String("old_status", string(existing.Status)),
		zap.String("new_status", string(status)),
	)
	return nil
}
