package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/dmarchetti-dev/revshare-backend/api/responses"
	"github.com/dmarchetti-dev/revshare-backend/api/validators"
	"github.com/dmarchetti-dev/revshare-backend/internal/distributions"
	pkgerrors "github.com/dmarchetti-dev/revshare-backend/pkg/errors"
	"github.com/dmarchetti-dev/revshare-backend/pkg/logger"
)

type distributionRunRequest struct {
	StartupID uuid.UUID `json:"startup_id" validate:"required"`
	Month     string    `json:"month" validate:"required"`
}

type distributionRunResponse struct {
	*distributions.RunSummary
	ContractErrors []string `json:"contract_errors,omitempty"`
}

// DistributionRun triggers a distribution for one startup and month. The run
// succeeds even when individual contracts fail; those surface in the body.
func DistributionRun(svc distributions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "distribution service unavailable"))
			return
		}

		principal, err := principalFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload distributionRunRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summary, err := svc.Run(r.Context(), principal, payload.StartupID, payload.Month)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp := distributionRunResponse{RunSummary: summary}
		for _, failure := range multierr.Errors(summary.ContractFailures) {
			resp.ContractErrors = append(resp.ContractErrors, failure.Error())
		}

		responses.WriteSuccess(w, resp)
	}
}

func DistributionDetail(svc distributions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "distribution service unavailable"))
			return
		}

		distributionID, err := validators.ParsePathUUID(chi.URLParam(r, "distributionId"), "distributionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summary, err := svc.Get(r.Context(), distributionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, summary)
	}
}

// StartupDistributions lists past runs for one startup.
func StartupDistributions(svc distributions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "distribution service unavailable"))
			return
		}

		startupID, err := validators.ParsePathUUID(chi.URLParam(r, "startupId"), "startupId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListByStartup(r.Context(), startupID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}
