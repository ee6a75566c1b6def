package controllers

import (
	"net/http"

	"go.uber.org/multierr"

	"github.com/knowledgeledger/lms-backend/api/responses"
	"github.com/knowledgeledger/lms-backend/pkg/config"
	"github.com/knowledgeledger/lms-backend/pkg/db"
	pkgerrors "github.com/knowledgeledger/lms-backend/pkg/errors"
	"github.com/knowledgeledger/lms-backend/pkg/logger"
	"github.com/knowledgeledger/lms-backend/pkg/redis"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"status": "live", "env": cfg.App.Env})
	}
}

// HealthReady reports whether the API can serve traffic: the database
// and redis must both answer a ping.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP redis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var errs error
		if dbP != nil {
			if err := dbP.Ping(r.Context()); err != nil {
				errs = multierr.Append(errs, err)
			}
		}
		if redisP != nil {
			if err := redisP.Ping(r.Context()); err != nil {
				errs = multierr.Append(errs, err)
			}
		}
		if errs != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, errs, "readiness check failed"))
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready", "env": cfg.App.Env})
	}
}
