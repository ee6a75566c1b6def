package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/knowledgeledger/lms-backend/api/responses"
	"github.com/knowledgeledger/lms-backend/api/validators"
	ordersvc "github.com/knowledgeledger/lms-backend/internal/orders"
	"github.com/knowledgeledger/lms-backend/pkg/logger"
)

type orderCreateRequest struct {
	FullName    string `json:"full_name" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	CountryName string `json:"country_name"`
	CartID      string `json:"cart_id" validate:"required"`
	UserID      string `json:"user_id"`
}

// OrderCreate snapshots the cart session into a processing order.
func OrderCreate(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload orderCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		uid, err := optionalUserID(r, payload.UserID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Create(r.Context(), ordersvc.CreateInput{
			FullName:      payload.FullName,
			Email:         payload.Email,
			Country:       payload.CountryName,
			CartSessionID: payload.CartID,
			UserID:        uid,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// OrderCheckout serves the checkout page projection for one order.
func OrderCheckout(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := svc.Checkout(r.Context(), chi.URLParam(r, "oid"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

type applyCouponRequest struct {
	OrderID string `json:"oid" validate:"required"`
	Code    string `json:"code" validate:"required"`
	UserID  string `json:"user_id"`
}

// OrderApplyCoupon applies a coupon code to a processing order and
// reprices it.
func OrderApplyCoupon(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload applyCouponRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		uid, err := userID(r, payload.UserID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.ApplyCoupon(r.Context(), ordersvc.ApplyCouponInput{
			OrderPublicID: payload.OrderID,
			Code:          payload.Code,
			UserID:        uid,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, order)
	}
}
