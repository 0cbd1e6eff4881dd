package controllers

import (
	"net/http"

	"github.com/dmarchetti-dev/revshare-backend/api/middleware"
	"github.com/dmarchetti-dev/revshare-backend/pkg/auth"
	pkgerrors "github.com/dmarchetti-dev/revshare-backend/pkg/errors"
)

func principalFrom(r *http.Request) (auth.Principal, error) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		return auth.Principal{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	return principal, nil
}
