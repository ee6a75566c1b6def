package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/knowledgeledger/lms-backend/api/responses"
	"github.com/knowledgeledger/lms-backend/api/validators"
	catalogsvc "github.com/knowledgeledger/lms-backend/internal/catalog"
	reviewsvc "github.com/knowledgeledger/lms-backend/internal/reviews"
	"github.com/knowledgeledger/lms-backend/pkg/logger"
)

// CategoryList serves the active course categories.
func CategoryList(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categories, err := svc.ListCategories(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, categories)
	}
}

// CourseList serves published courses with optional search and filters.
func CourseList(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		filter := catalogsvc.CourseFilter{
			Search:       q.Get("search"),
			CategorySlug: q.Get("category"),
			Level:        q.Get("level"),
			Language:     q.Get("language"),
			Featured:     q.Get("featured") == "true",
		}

		courses, err := svc.ListCourses(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, courses)
	}
}

// CourseDetail resolves a course by public id or slug, published only.
func CourseDetail(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		detail, err := svc.CourseDetail(r.Context(), chi.URLParam(r, "course"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

// CourseReviews lists the active reviews of a published course.
func CourseReviews(svc reviewsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reviews, err := svc.ListForCourse(r.Context(), chi.URLParam(r, "course"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, reviews)
	}
}

// CourseCreate opens a draft course for the acting instructor.
func CourseCreate(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		iid, err := instructorID(r, "")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload catalogsvc.CreateCourseInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		course, err := svc.CreateCourse(r.Context(), iid, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, course)
	}
}

// CourseUpdate patches course fields owned by the acting instructor.
func CourseUpdate(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		iid, err := instructorID(r, "")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload catalogsvc.UpdateCourseInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		course, err := svc.UpdateCourse(r.Context(), iid, chi.URLParam(r, "course"), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, course)
	}
}

// SectionCreate appends a curriculum section to a course.
func SectionCreate(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		iid, err := instructorID(r, "")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload catalogsvc.SectionInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		section, err := svc.CreateSection(r.Context(), iid, chi.URLParam(r, "course"), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, section)
	}
}

// SectionUpdate renames or reorders a section.
func SectionUpdate(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		iid, err := instructorID(r, "")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload catalogsvc.SectionInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		section, err := svc.UpdateSection(r.Context(), iid, chi.URLParam(r, "course"), chi.URLParam(r, "section"), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, section)
	}
}

// SectionDelete removes a section and its lessons.
func SectionDelete(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		iid, err := instructorID(r, "")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteSection(r.Context(), iid, chi.URLParam(r, "course"), chi.URLParam(r, "section")); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"message": "section deleted"})
	}
}

// LessonCreate appends a lesson to a section.
func LessonCreate(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		iid, err := instructorID(r, "")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload catalogsvc.LessonInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lesson, err := svc.CreateLesson(r.Context(), iid, chi.URLParam(r, "course"), chi.URLParam(r, "section"), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, lesson)
	}
}

// LessonUpdate rewrites lesson metadata.
func LessonUpdate(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		iid, err := instructorID(r, "")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload catalogsvc.LessonInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lesson, err := svc.UpdateLesson(r.Context(), iid, chi.URLParam(r, "course"), chi.URLParam(r, "lesson"), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, lesson)
	}
}

// LessonDelete removes one lesson.
func LessonDelete(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		iid, err := instructorID(r, "")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteLesson(r.Context(), iid, chi.URLParam(r, "course"), chi.URLParam(r, "lesson")); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"message": "lesson deleted"})
	}
}
