package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/knowledgeledger/lms-backend/api/responses"
	"github.com/knowledgeledger/lms-backend/api/validators"
	"github.com/knowledgeledger/lms-backend/internal/notifications"
	paymentsvc "github.com/knowledgeledger/lms-backend/internal/payments"
	"github.com/knowledgeledger/lms-backend/pkg/logger"
)

// PaymentGatewayOrder creates the gateway-side order for a local order
// and returns the checkout payload the frontend hands to the gateway
// widget.
func PaymentGatewayOrder(svc paymentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, err := svc.CreateGatewayOrder(r.Context(), chi.URLParam(r, "oid"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, payload)
	}
}

type paymentConfirmRequest struct {
	OrderID          string `json:"oid" validate:"required"`
	GatewayOrderID   string `json:"gateway_order_id" validate:"required"`
	GatewayPaymentID string `json:"gateway_payment_id" validate:"required"`
	Signature        string `json:"signature" validate:"required"`
	UserID           string `json:"user_id"`
}

// PaymentConfirm verifies the gateway signature and finalizes the order:
// mark paid, enroll the buyer, notify sellers. Replays return the same
// success.
func PaymentConfirm(svc paymentsvc.Service, dispatcher notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload paymentConfirmRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		uid, err := optionalUserID(r, payload.UserID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, events, err := svc.Confirm(r.Context(), paymentsvc.ConfirmInput{
			OrderPublicID:    payload.OrderID,
			GatewayOrderID:   payload.GatewayOrderID,
			GatewayPaymentID: payload.GatewayPaymentID,
			Signature:        payload.Signature,
			UserID:           uid,
		})
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
