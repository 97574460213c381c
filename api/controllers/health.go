package controllers

import (
	"context"
	"net/http"

	"github.com/lucasmoraes/clinicore-backend/api/responses"
	"github.com/lucasmoraes/clinicore-backend/pkg/config"
	pkgerrors "github.com/lucasmoraes/clinicore-backend/pkg/errors"
	"github.com/lucasmoraes/clinicore-backend/pkg/logger"
)

// Pinger is any dependency that can report connectivity.
type Pinger interface {
	Ping(context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-CliniCore-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every wired dependency and fails the probe when any
// of them is unreachable. Nil dependencies are skipped.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP, redisP, pubsubP Pinger) http.HandlerFunc {
	deps := []struct {
		name   string
		pinger Pinger
	}{
		{"database", dbP},
		{"redis", redisP},
		{"pubsub", pubsubP},
	}

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-CliniCore-Env", cfg.App.Env)

		statuses := map[string]string{}
		for _, dep := range deps {
			if dep.pinger == nil {
				continue
			}
			if err := dep.pinger.Ping(r.Context()); err != nil {
				statuses[dep.name] = "down"
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, dep.name+" unavailable").WithDetails(statuses))
				return
			}
			statuses[dep.name] = "up"
		}

		statuses["status"] = "ready"
		responses.WriteSuccess(w, statuses)
	}
}
