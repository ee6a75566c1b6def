package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/knowledgeledger/lms-backend/api/responses"
	"github.com/knowledgeledger/lms-backend/api/validators"
	credsvc "github.com/knowledgeledger/lms-backend/internal/credentials"
	"github.com/knowledgeledger/lms-backend/internal/notifications"
	"github.com/knowledgeledger/lms-backend/pkg/logger"
)

// TokenMintEnrollment records a freshly minted on-chain token for an
// enrollment.
func TokenMintEnrollment(svc credsvc.Service, dispatcher notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload credsvc.MintInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		token, events, err := svc.MintEnrollmentToken(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if dispatcher != nil {
			dispatcher.Dispatch(r.Context(), events)
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, token)
	}
}

// TokenForEnrollment returns the caller's token for one enrollment.
func TokenForEnrollment(svc credsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, err := userID(r, "")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		token, err := svc.TokenForEnrollment(r.Context(), uid, chi.URLParam(r, "enrollmentId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, token)
	}
}

// TokenMintCertificate records a minted token for an active certificate.
func TokenMintCertificate(svc credsvc.Service, dispatcher notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload credsvc.MintInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		token, events, err := svc.MintCertificateToken(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if dispatcher != nil {
			dispatcher.Dispatch(r.Context(), events)
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, token)
	}
}

// TokenForCertificate returns a certificate's token along with its
// verification state.
func TokenForCertificate(svc credsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := svc.TokenForCertificate(r.Context(), chi.URLParam(r, "certificateId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}
