package controllers

import (
	"net/http"

	"github.com/eyewantit/eyewantit-backend/api/responses"
	"github.com/eyewantit/eyewantit-backend/internal/dashboard"
	"github.com/eyewantit/eyewantit-backend/pkg/logger"
)

// Dashboard returns the caller's collections, items, and summary stats.
func Dashboard(svc dashboard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		caller, err := callerID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		data, err := svc.GetDashboardData(ctx, caller)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, data)
	}
}
