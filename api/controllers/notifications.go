package controllers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/knowledgeledger/lms-backend/api/responses"
	notifsvc "github.com/knowledgeledger/lms-backend/internal/notifications"
	pkgerrors "github.com/knowledgeledger/lms-backend/pkg/errors"
	"github.com/knowledgeledger/lms-backend/pkg/logger"
)

// StudentNotifications lists the caller's in-app notifications.
func StudentNotifications(svc notifsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, err := userID(r, "")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		listNotifications(svc, logg, notifsvc.ForUser(uid), w, r)
	}
}

// InstructorNotifications lists the instructor's in-app notifications.
func InstructorNotifications(svc notifsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		iid, err := instructorID(r, "")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		listNotifications(svc, logg, notifsvc.ForInstructor(iid), w, r)
	}
}

// StudentNotificationSeen marks one learner notification as seen.
func StudentNotificationSeen(svc notifsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, err := userID(r, "")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		markSeen(svc, logg, notifsvc.ForUser(uid), w, r)
	}
}

// InstructorNotificationSeen marks one instructor notification as seen.
func InstructorNotificationSeen(svc notifsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		iid, err := instructorID(r, "")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		markSeen(svc, logg, notifsvc.ForInstructor(iid), w, r)
	}
}

// StudentNotificationsSeenAll marks every learner notification as seen.
func StudentNotificationsSeenAll(svc notifsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, err := userID(r, "")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		markAllSeen(svc, logg, notifsvc.ForUser(uid), w, r)
	}
}

// InstructorNotificationsSeenAll marks every instructor notification as seen.
func InstructorNotificationsSeenAll(svc notifsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		iid, err := instructorID(r, "")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		markAllSeen(svc, logg, notifsvc.ForInstructor(iid), w, r)
	}
}

func listNotifications(svc notifsvc.Service, logg *logger.Logger, recipient notifsvc.Recipient, w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))

	result, err := svc.List(r.Context(), notifsvc.ListParams{
		Recipient:  recipient,
		Limit:      limit,
		Cursor:     q.Get("cursor"),
		UnseenOnly: q.Get("unseen") == "true",
	})
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return
	}
	responses.WriteSuccess(w, result)
}

func markSeen(svc notifsvc.Service, logg *logger.Logger, recipient notifsvc.Recipient, w http.ResponseWriter, r *http.Request) {
	notificationID, err := uuid.Parse(chi.URLParam(r, "notificationId"))
	if err != nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid notification id"))
		return
	}

	if err := svc.MarkSeen(r.Context(), recipient, notificationID); err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return
	}
	responses.WriteSuccess(w, map[string]string{"message": "notification marked as seen"})
}

func markAllSeen(svc notifsvc.Service, logg *logger.Logger, recipient notifsvc.Recipient, w http.ResponseWriter, r *http.Request) {
	updated, err := svc.MarkAllSeen(r.Context(), recipient)
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return
	}
	responses.WriteSuccess(w, map[string]any{"message": "notifications marked as seen", "updated": updated})
}
