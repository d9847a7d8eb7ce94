package provider

import (
	"github.com/smallbiznis/paysync/internal/config"
	"github.com/smallbiznis/paysync/internal/provider/adapters"
	"github.com/smallbiznis/paysync/internal/provider/adapters/stripe"
	"github.com/smallbiznis/paysync/internal/provider/domain"
	"go.uber.org/fx"
)

var Module = fx.Module("provider",
	fx.Provide(func() *adapters.Registry {
		return adapters.NewRegistry(
			stripe.NewFactory(),
		)
	}),
	fx.Provide(NewSource),
)

// NewSource builds the configured provider's transaction source.
func NewSource(cfg config.Config, registry *adapters.Registry) (domain.Source, error) {
	return registry.NewSource(cfg.Provider.Name, domain.SourceConfig{
		APIKey:      cfg.Provider.APIKey,
		AccountID:   cfg.Provider.AccountID,
		BaseURL:     cfg.Provider.BaseURL,
		PageSize:    cfg.Provider.PageSize,
		MaxRetries:  cfg.Provider.MaxRetries,
		RetryWait:   cfg.Provider.RetryWait,
		HTTPTimeout: cfg.Provider.HTTPTimeout,
	})
}
