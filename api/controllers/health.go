package controllers

import (
	"net/http"

	"go.uber.org/multierr"

	"github.com/velora-shop/storefront-backend/api/responses"
	"github.com/velora-shop/storefront-backend/pkg/config"
	pkgerrors "github.com/velora-shop/storefront-backend/pkg/errors"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Velora-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports readiness of the backing stores, running every check so
// the response names all failing dependencies at once.
func HealthReady(cfg *config.Config, checks ...func() error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Velora-Env", cfg.App.Env)

		var combined error
		for _, check := range checks {
			if check == nil {
				continue
			}
			combined = multierr.Append(combined, check())
		}
		if combined != nil {
			responses.WriteError(r.Context(), nil, w, pkgerrors.Wrap(pkgerrors.CodeDependency, combined, "readiness check failed"))
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
