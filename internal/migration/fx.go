package migration

import (
	"github.com/smallbiznis/paysync/internal/config"
	ledgerdomain "github.com/smallbiznis/paysync/internal/ledger/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType != "postgres" {
			// The SQL migrations target postgres; other dialects are for
			// local development and tests.
			return conn.AutoMigrate(&ledgerdomain.PaymentRecord{})
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	}),
)
