package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/knowledgeledger/lms-backend/api/responses"
	"github.com/knowledgeledger/lms-backend/api/validators"
	certsvc "github.com/knowledgeledger/lms-backend/internal/certificates"
	"github.com/knowledgeledger/lms-backend/internal/notifications"
	"github.com/knowledgeledger/lms-backend/pkg/logger"
)

type certificateIssueRequest struct {
	UserID   string `json:"user_id"`
	CourseID string `json:"course_id" validate:"required"`
}

// CertificateIssue issues a completion certificate, or returns the
// existing one with an "already issued" message.
func CertificateIssue(svc certsvc.Service, dispatcher notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload certificateIssueRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		uid, err := userID(r, payload.UserID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, events, err := svc.Issue(r.Context(), uid, payload.CourseID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if dispatcher != nil {
			dispatcher.Dispatch(r.Context(), events)
		}
		responses.WriteSuccess(w, result)
	}
}

// CertificateList returns the caller's certificates.
func CertificateList(svc certsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, err := userID(r, "")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		certificates, err := svc.ListByUser(r.Context(), uid)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, certificates)
	}
}

// CertificateDetail returns one of the caller's certificates.
func CertificateDetail(svc certsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, err := userID(r, "")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		certificate, err := svc.GetForUser(r.Context(), chi.URLParam(r, "certificateId"), uid)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, certificate)
	}
}

// CertificateVerify is the public verification endpoint printed on
// certificates.
func CertificateVerify(svc certsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		verification, err := svc.Verify(r.Context(), chi.URLParam(r, "certificateId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, verification)
	}
}

// CertificateRevoke invalidates an issued certificate.
func CertificateRevoke(svc certsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		certificate, err := svc.Revoke(r.Context(), chi.URLParam(r, "certificateId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, certificate)
	}
}
