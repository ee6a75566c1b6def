package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/knowledgeledger/lms-backend/api/middleware"
	pkgerrors "github.com/knowledgeledger/lms-backend/pkg/errors"
)

// userID resolves the acting learner: bearer context when present,
// otherwise an explicit id supplied by the payload or query string.
// Gateway callbacks and dev tooling use the fallback path.
func userID(r *http.Request, fallback string) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		raw = fallback
	}
	if raw == "" {
		raw = r.URL.Query().Get("user_id")
	}
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user id")
	}
	return id, nil
}

// optionalUserID is userID without the unauthenticated error; carts and
// order creation accept anonymous callers.
func optionalUserID(r *http.Request, fallback string) (*uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		raw = fallback
	}
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user id")
	}
	return &id, nil
}

// instructorID resolves the acting instructor the same way.
func instructorID(r *http.Request, fallback string) (uuid.UUID, error) {
	raw := middleware.InstructorIDFromContext(r.Context())
	if raw == "" {
		raw = fallback
	}
	if raw == "" {
		raw = r.URL.Query().Get("instructor_id")
	}
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "instructor identity required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid instructor id")
	}
	return id, nil
}
