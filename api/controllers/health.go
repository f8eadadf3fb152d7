package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/skyhaventravel/skyhaven-backend/api/responses"
	"github.com/skyhaventravel/skyhaven-backend/pkg/config"
	pkgerrors "github.com/skyhaventravel/skyhaven-backend/pkg/errors"
	"github.com/skyhaventravel/skyhaven-backend/pkg/logger"
)

const readyCheckTimeout = 3 * time.Second

// HealthPinger is the probe surface a dependency exposes to readiness checks.
type HealthPinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Skyhaven-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady probes every hard dependency. A single unreachable dependency
// marks the instance not ready so the load balancer can drain it.
func HealthReady(cfg *config.Config, logg *logger.Logger, deps map[string]HealthPinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Skyhaven-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readyCheckTimeout)
		defer cancel()

		checks := make(map[string]string, len(deps))
		healthy := true
		for name, dep := range deps {
			if dep == nil {
				checks[name] = "skipped"
				continue
			}
			if err := dep.Ping(ctx); err != nil {
				checks[name] = "down"
				healthy = false
				if logg != nil {
					logg.Error(logg.WithField(ctx, "dependency", name), "readiness probe failed", err)
				}
				continue
			}
			checks[name] = "ok"
		}

		if !healthy {
			err := pkgerrors.New(pkgerrors.CodeDependency, "dependencies unavailable")
			responses.WriteError(r.Context(), logg, w, err.WithDetails(checks))
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
