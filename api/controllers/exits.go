package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dmarchetti-dev/revshare-backend/api/responses"
	"github.com/dmarchetti-dev/revshare-backend/api/validators"
	"github.com/dmarchetti-dev/revshare-backend/internal/exits"
	"github.com/dmarchetti-dev/revshare-backend/pkg/enums"
	pkgerrors "github.com/dmarchetti-dev/revshare-backend/pkg/errors"
	"github.com/dmarchetti-dev/revshare-backend/pkg/logger"
)

type exitRequestPayload struct {
	ContractID uuid.UUID `json:"contract_id" validate:"required"`
	ExitType   string    `json:"exit_type" validate:"required"`
}

// ExitRequestCreate opens an exit request on a contract the caller owns.
func ExitRequestCreate(svc exits.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "exit service unavailable"))
			return
		}

		principal, err := principalFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload exitRequestPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		exitType, err := enums.ParseExitType(strings.TrimSpace(payload.ExitType))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid exit type"))
			return
		}

		request, err := svc.Request(r.Context(), principal, exits.RequestExitInput{
			ContractID: payload.ContractID,
			ExitType:   exitType,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, request)
	}
}

func ExitDetail(svc exits.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "exit service unavailable"))
			return
		}

		exitID, err := validators.ParsePathUUID(chi.URLParam(r, "exitId"), "exitId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		request, err := svc.Get(r.Context(), exitID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, request)
	}
}

// ContractExits lists the exit history of one contract.
func ContractExits(svc exits.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "exit service unavailable"))
			return
		}

		contractID, err := validators.ParsePathUUID(chi.URLParam(r, "contractId"), "contractId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		requests, err := svc.ListByContract(r.Context(), contractID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, requests)
	}
}

type exitSettleRequest struct {
	SettlementMethod string `json:"settlement_method" validate:"required"`
}

// AdminExitSettle quotes and settles a requested exit in cash or as a loan offer.
func AdminExitSettle(svc exits.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "exit service unavailable"))
			return
		}

		principal, err := principalFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		exitID, err := validators.ParsePathUUID(chi.URLParam(r, "exitId"), "exitId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload exitSettleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		method, err := enums.ParseSettlementMethod(strings.TrimSpace(payload.SettlementMethod))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid settlement method"))
			return
		}

		request, err := svc.Settle(r.Context(), principal, exitID, method)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, request)
	}
}

// AdminExitReject closes a requested exit without settlement.
func AdminExitReject(svc exits.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "exit service unavailable"))
			return
		}

		principal, err := principalFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		exitID, err := validators.ParsePathUUID(chi.URLParam(r, "exitId"), "exitId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		request, err := svc.Reject(r.Context(), principal, exitID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, request)
	}
}
