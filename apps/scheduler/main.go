package main

import (
	"context"
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/paysync/internal/clock"
	"github.com/smallbiznis/paysync/internal/config"
	"github.com/smallbiznis/paysync/internal/ledger"
	"github.com/smallbiznis/paysync/internal/logger"
	"github.com/smallbiznis/paysync/internal/migration"
	"github.com/smallbiznis/paysync/internal/provider"
	"github.com/smallbiznis/paysync/internal/reconcile"
	"github.com/smallbiznis/paysync/internal/scheduler"
	"github.com/smallbiznis/paysync/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func main() {
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
		scheduler.Module,

		fx.Invoke(ServeMetrics),
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

func ServeMetrics(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{Addr: cfg.MetricsAddr, Handler: mux}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Warn("metrics server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return server.Shutdown(ctx)
		},
	})
}
