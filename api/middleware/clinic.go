package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/lucasmoraes/clinicore-backend/api/responses"
	pkgerrors "github.com/lucasmoraes/clinicore-backend/pkg/errors"
	"github.com/lucasmoraes/clinicore-backend/pkg/logger"
)

const clinicIDHeader = "X-Clinic-Id"

// ClinicContext requires a clinic identifier on every request and scopes the
// request context and logger to that clinic.
func ClinicContext(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get(clinicIDHeader))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "X-Clinic-Id header required"))
				return
			}

			clinicID, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "X-Clinic-Id must be a valid uuid"))
				return
			}

			ctx := WithClinicID(r.Context(), clinicID.String())
			if logg != nil {
				ctx = logg.WithClinicID(ctx, clinicID.String())
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClinicUUIDFromContext parses the clinic identifier stored by ClinicContext.
func ClinicUUIDFromContext(ctx context.Context) (uuid.UUID, error) {
	raw := ClinicIDFromContext(ctx)
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "clinic context missing")
	}
	clinicID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "clinic context invalid")
	}
	return clinicID, nil
}
