package controllers

import (
	"net/http"
	"strings"

	"github.com/dmarchetti-dev/revshare-backend/api/responses"
	"github.com/dmarchetti-dev/revshare-backend/api/validators"
	"github.com/dmarchetti-dev/revshare-backend/internal/ledger"
	"github.com/dmarchetti-dev/revshare-backend/pkg/enums"
	pkgerrors "github.com/dmarchetti-dev/revshare-backend/pkg/errors"
	"github.com/dmarchetti-dev/revshare-backend/pkg/logger"
)

// AdminLedgerList pages through ledger entries of one type, newest first.
func AdminLedgerList(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ledger service unavailable"))
			return
		}

		entryType, err := enums.ParseLedgerEntryType(strings.TrimSpace(r.URL.Query().Get("type")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid entry type"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 100, 1, 500)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		offset, err := validators.ParseQueryInt(r, "offset", 0, 0, 1_000_000)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entries, err := svc.ListByType(r.Context(), entryType, limit, offset)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, entries)
	}
}

// AdminLedgerSummary totals every entry type for reconciliation checks.
func AdminLedgerSummary(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ledger service unavailable"))
			return
		}

		totals := map[string]int64{}
		for _, entryType := range enums.LedgerEntryTypes() {
			total, err := svc.SumByType(r.Context(), entryType)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			totals[string(entryType)] = total
		}

		responses.WriteSuccess(w, totals)
	}
}
