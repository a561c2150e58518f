package providers

import (
	"github.com/samber/do/v2"

	"github.com/inkwellapp/inkwell-server/internal/config"
	"github.com/inkwellapp/inkwell-server/internal/logger"
	"github.com/inkwellapp/inkwell-server/internal/ratelimit"
	"github.com/inkwellapp/inkwell-server/internal/storage"
)

// ProvideFileStorage provides the book file storage.
func ProvideFileStorage(i do.Injector) (*storage.Storage, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	store, err := storage.New(cfg.UploadsPath())
	if err != nil {
		return nil, err
	}

	log.Info("File storage initialized", "path", cfg.UploadsPath())

	return store, nil
}

// ProvideAuthRateLimiter provides the per-IP rate limiter for the
// public auth endpoints.
func ProvideAuthRateLimiter(i do.Injector) (*ratelimit.KeyedRateLimiter, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return ratelimit.New(cfg.Auth.RateRPS, cfg.Auth.RateBurst), nil
}
