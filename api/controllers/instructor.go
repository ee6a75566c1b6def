package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/knowledgeledger/lms-backend/api/responses"
	"github.com/knowledgeledger/lms-backend/api/validators"
	instructorsvc "github.com/knowledgeledger/lms-backend/internal/instructor"
	"github.com/knowledgeledger/lms-backend/internal/notifications"
	reviewsvc "github.com/knowledgeledger/lms-backend/internal/reviews"
	pkgerrors "github.com/knowledgeledger/lms-backend/pkg/errors"
	"github.com/knowledgeledger/lms-backend/pkg/logger"
)

// InstructorSummary serves the instructor dashboard counters.
func InstructorSummary(svc instructorsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		iid, err := instructorID(r, "")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summary, err := svc.Summary(r.Context(), iid)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

// InstructorEarnings returns paid revenue grouped by calendar month.
func InstructorEarnings(svc instructorsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		iid, err := instructorID(r, "")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		earnings, err := svc.MonthlyEarnings(r.Context(), iid)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, earnings)
	}
}

// InstructorBestSelling ranks the instructor's courses by paid revenue.
func InstructorBestSelling(svc instructorsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		iid, err := instructorID(r, "")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sales, err := svc.BestSelling(r.Context(), iid)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, sales)
	}
}

// InstructorOrders lists paid orders containing the instructor's courses.
func InstructorOrders(svc instructorsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		iid, err := instructorID(r, "")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orders, err := svc.Orders(r.Context(), iid)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, orders)
	}
}

// InstructorStudents lists enrolled students with per-student course counts.
func InstructorStudents(svc instructorsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		iid, err := instructorID(r, "")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		students, err := svc.Students(r.Context(), iid)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, students)
	}
}

// InstructorCourses lists the instructor's own courses, drafts included.
func InstructorCourses(svc instructorsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		iid, err := instructorID(r, "")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		courses, err := svc.Courses(r.Context(), iid)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, courses)
	}
}

// CouponCreate registers a discount code owned by the instructor.
func CouponCreate(svc instructorsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		iid, err := instructorID(r, "")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload instructorsvc.CouponInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		coupon, err := svc.CreateCoupon(r.Context(), iid, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, coupon)
	}
}

// CouponUpdate patches discount or active state.
func CouponUpdate(svc instructorsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		iid, err := instructorID(r, "")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		couponID, err := uuid.Parse(chi.URLParam(r, "couponId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid coupon id"))
			return
		}

		var payload instructorsvc.CouponUpdateInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		coupon, err := svc.UpdateCoupon(r.Context(), iid, couponID, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, coupon)
	}
}

// CouponDelete removes one of the instructor's coupons.
func CouponDelete(svc instructorsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		iid, err := instructorID(r, "")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		couponID, err := uuid.Parse(chi.URLParam(r, "couponId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid coupon id"))
			return
		}

		if err := svc.DeleteCoupon(r.Context(), iid, couponID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"message": "coupon deleted"})
	}
}

// CouponList returns the instructor's coupons.
func CouponList(svc instructorsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		iid, err := instructorID(r, "")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		coupons, err := svc.ListCoupons(r.Context(), iid)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, coupons)
	}
}

// InstructorReviews lists reviews across the instructor's courses.
func InstructorReviews(svc reviewsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		iid, err := instructorID(r, "")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		reviews, err := svc.ListForInstructor(r.Context(), iid)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, reviews)
	}
}

type reviewReplyRequest struct {
	Reply string `json:"reply" validate:"required"`
}

// ReviewReply posts the instructor's reply on a review of their course.
func ReviewReply(svc reviewsvc.Service, dispatcher notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		iid, err := instructorID(r, "")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		reviewID, err := uuid.Parse(chi.URLParam(r, "reviewId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid review id"))
			return
		}

		var payload reviewReplyRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		review, events, err := svc.Reply(r.Context(), iid, reviewID, payload.Reply)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if dispatcher != nil {
			dispatcher.Dispatch(r.Context(), events)
		}
		responses.WriteSuccess(w, review)
	}
}
