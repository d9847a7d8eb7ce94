package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/paysync/internal/clock"
	"github.com/smallbiznis/paysync/internal/config"
	"github.com/smallbiznis/paysync/internal/ledger"
	"github.com/smallbiznis/paysync/internal/logger"
	"github.com/smallbiznis/paysync/internal/migration"
	"github.com/smallbiznis/paysync/internal/provider"
	providerdomain "github.com/smallbiznis/paysync/internal/provider/domain"
	"github.com/smallbiznis/paysync/internal/reconcile"
	reconciledomain "github.com/smallbiznis/paysync/internal/reconcile/domain"
	"github.com/smallbiznis/paysync/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	exitOK            = 0
	exitRunFailed     = 1
	exitConfigMissing = 2
)

func main() {
	// Credential check happens before any module is built so a
	// misconfigured cron invocation fails fast without touching the
	// network or the database.
	if !config.Load().HasProviderCredential() {
		fmt.Fprintln(os.Stderr, "missing provider credential: set STRIPE_API_KEY")
		os.Exit(exitConfigMissing)
	}

	app := fx.New(
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,
		clock.Module,

		ledger.Module,
		provider.Module,
		reconcile.Module,

		fx.Invoke(RunReconciliation),
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}

// RunReconciliation executes one run over the resolved window and maps the
// summary to the process exit code: 0 clean, 1 on any record failure or an
// incomplete run.
func RunReconciliation(
	lc fx.Lifecycle,
	shutdowner fx.Shutdowner,
	cfg config.Config,
	clk clock.Clock,
	log *zap.Logger,
	svc reconciledomain.Service,
) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), cfg.Reconcile.RunTimeout)
				defer cancel()

				summary, err := svc.Reconcile(ctx, resolveWindow(cfg, clk))
				printSummary(summary)

				code := exitOK
				if err != nil || !summary.Ok() {
					code = exitRunFailed
				}
				if err != nil {
					log.Error("reconciliation run failed", zap.Error(err))
				}
				_ = shutdowner.Shutdown(fx.ExitCode(code))
			}()
			return nil
		},
	})
}

// resolveWindow derives the trailing lookback window, with env overrides
// for one-off backfills over an explicit range.
func resolveWindow(cfg config.Config, clk clock.Clock) providerdomain.Window {
	now := clk.Now()
	window := providerdomain.Window{
		Start: now.Add(-cfg.Reconcile.Lookback),
		End:   now,
	}
	if cfg.Reconcile.WindowStart != nil {
		window.Start = *cfg.Reconcile.WindowStart
	}
	if cfg.Reconcile.WindowEnd != nil {
		window.End = *cfg.Reconcile.WindowEnd
	}
	return window
}

func printSummary(summary reconciledomain.RunSummary) {
	encoded, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		fmt.Printf("created=%d updated=%d unchanged=%d failed=%d incomplete=%t\n",
			summary.Created, summary.Updated, summary.Unchanged, summary.Failed, summary.Incomplete)
		return
	}
	fmt.Println(string(encoded))
}
