package controllers

import (
	"net/http"

	"github.com/lucasmoraes/clinicore-backend/api/middleware"
	"github.com/lucasmoraes/clinicore-backend/api/responses"
)

func PublicPing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"scope": "public", "status": "ok"})
	}
}

func ClinicPing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := map[string]string{"scope": "clinic", "status": "ok"}
		if clinic := middleware.ClinicIDFromContext(r.Context()); clinic != "" {
			payload["clinic_id"] = clinic
		}
		responses.WriteSuccess(w, payload)
	}
}
