package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dmarchetti-dev/revshare-backend/api/responses"
	"github.com/dmarchetti-dev/revshare-backend/api/validators"
	"github.com/dmarchetti-dev/revshare-backend/internal/rounds"
	"github.com/dmarchetti-dev/revshare-backend/pkg/enums"
	pkgerrors "github.com/dmarchetti-dev/revshare-backend/pkg/errors"
	"github.com/dmarchetti-dev/revshare-backend/pkg/logger"
)

type roundCreateRequest struct {
	StartupID     uuid.UUID `json:"startup_id" validate:"required"`
	Title         string    `json:"title" validate:"required,min=1"`
	MaxRaiseCents int64     `json:"max_raise_cents" validate:"required,min=1"`
}

// RoundCreate opens a draft round for a startup the caller owns.
func RoundCreate(svc rounds.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "round service unavailable"))
			return
		}

		principal, err := principalFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload roundCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		round, err := svc.CreateDraft(r.Context(), principal, rounds.CreateRoundInput{
			StartupID:     payload.StartupID,
			Title:         payload.Title,
			MaxRaiseCents: payload.MaxRaiseCents,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, round)
	}
}

type generateTiersRequest struct {
	RiskLevel                   string `json:"risk_level" validate:"required"`
	Stage                       string `json:"stage" validate:"required"`
	BaselineMonthlyRevenueCents *int64 `json:"baseline_monthly_revenue_cents,omitempty" validate:"omitempty,min=0"`
}

func (req generateTiersRequest) toInput() (rounds.GenerateTiersInput, error) {
	risk, err := enums.ParseRiskLevel(req.RiskLevel)
	if err != nil {
		return rounds.GenerateTiersInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid risk level")
	}
	stage, err := enums.ParseStage(req.Stage)
	if err != nil {
		return rounds.GenerateTiersInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid stage")
	}
	return rounds.GenerateTiersInput{
		RiskLevel:                   risk,
		Stage:                       stage,
		BaselineMonthlyRevenueCents: req.BaselineMonthlyRevenueCents,
	}, nil
}

// RoundGenerateTiers prices the three contract tiers for a draft round.
func RoundGenerateTiers(svc rounds.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "round service unavailable"))
			return
		}

		principal, err := principalFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		roundID, err := validators.ParsePathUUID(chi.URLParam(r, "roundId"), "roundId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload generateTiersRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		options, err := svc.GenerateTiers(r.Context(), principal, roundID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, options)
	}
}

type selectTierRequest struct {
	Tier string `json:"tier" validate:"required"`
}

func RoundSelectTier(svc rounds.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "round service unavailable"))
			return
		}

		principal, err := principalFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		roundID, err := validators.ParsePathUUID(chi.URLParam(r, "roundId"), "roundId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload selectTierRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		tier, err := enums.ParseTierLevel(strings.TrimSpace(payload.Tier))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid tier"))
			return
		}

		round, err := svc.SelectTier(r.Context(), principal, roundID, tier)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, round)
	}
}

func RoundPublish(svc rounds.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "round service unavailable"))
			return
		}

		principal, err := principalFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		roundID, err := validators.ParsePathUUID(chi.URLParam(r, "roundId"), "roundId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		round, err := svc.Publish(r.Context(), principal, roundID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, round)
	}
}

func RoundClose(svc rounds.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "round service unavailable"))
			return
		}

		principal, err := principalFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		roundID, err := validators.ParsePathUUID(chi.URLParam(r, "roundId"), "roundId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		round, err := svc.Close(r.Context(), principal, roundID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, round)
	}
}

func RoundGet(svc rounds.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "round service unavailable"))
			return
		}

		roundID, err := validators.ParsePathUUID(chi.URLParam(r, "roundId"), "roundId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		round, err := svc.Get(r.Context(), roundID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, round)
	}
}

// RoundTierOptions returns the current tier batch for a round.
func RoundTierOptions(svc rounds.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "round service unavailable"))
			return
		}

		roundID, err := validators.ParsePathUUID(chi.URLParam(r, "roundId"), "roundId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		options, err := svc.ListTierOptions(r.Context(), roundID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, options)
	}
}

// RoundListPublished is the investor-facing browse endpoint.
func RoundListPublished(svc rounds.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "round service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 50, 1, 200)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		offset, err := validators.ParseQueryInt(r, "offset", 0, 0, 1_000_000)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListPublished(r.Context(), limit, offset)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

// StartupRounds lists every round of one startup.
func StartupRounds(svc rounds.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "round service unavailable"))
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
