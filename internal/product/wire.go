package product

import (
	"database/sql"

	"foodfacts/internal/config"
	"foodfacts/internal/openfoodfacts"
	"foodfacts/internal/product/repository"
	"foodfacts/internal/product/service"

	"go.uber.org/zap"
)

// NewModule builds the controller over Open Food Facts. When the cache is
// enabled and db is not nil the provider is fronted by the MySQL cache.
func NewModule(cfg *config.Config, db *sql.DB, logger *zap.Logger) *Controller {
	var provider Provider = openfoodfacts.NewClient(cfg.Upstream, logger)

	if cfg.Cache.Enabled && db != nil {
		repo := repository.NewMySQLRepository(db)
		provider = service.NewCachingProvider(provider, repo, cfg.Cache.TTL, cfg.Upstream.Timeout, logger)
	}

	return NewController(provider, logger)
}
