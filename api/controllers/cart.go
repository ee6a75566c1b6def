package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/knowledgeledger/lms-backend/api/responses"
	"github.com/knowledgeledger/lms-backend/api/validators"
	cartsvc "github.com/knowledgeledger/lms-backend/internal/cart"
	pkgerrors "github.com/knowledgeledger/lms-backend/pkg/errors"
	"github.com/knowledgeledger/lms-backend/pkg/logger"
)

type cartUpsertRequest struct {
	CartID      string    `json:"cart_id" validate:"required"`
	CourseID    uuid.UUID `json:"course_id" validate:"required"`
	UserID      string    `json:"user_id"`
	CountryName string    `json:"country_name"`
}

// CartUpsert adds a course to the cart session, or refreshes the line's
// pricing when it is already there.
func CartUpsert(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload cartUpsertRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		uid, err := optionalUserID(r, payload.UserID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.Upsert(r.Context(), cartsvc.UpsertInput{
			SessionID: payload.CartID,
			CourseID:  payload.CourseID,
			UserID:    uid,
			Country:   payload.CountryName,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, item)
	}
}

// CartList returns the cart lines plus aggregate totals.
func CartList(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := svc.List(r.Context(), chi.URLParam(r, "cartId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// CartStats serves the badge counters for a cart session.
func CartStats(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := svc.Stats(r.Context(), chi.URLParam(r, "cartId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, stats)
	}
}

// CartRemoveItem drops one line from the cart session.
func CartRemoveItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID, err := uuid.Parse(chi.URLParam(r, "itemId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cart item id"))
			return
		}

		if err := svc.Delete(r.Context(), chi.URLParam(r, "cartId"), itemID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"message": "item removed from cart"})
	}
}
