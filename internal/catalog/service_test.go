package catalog

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/knowledgeledger/lms-backend/pkg/db/models"
	"github.com/knowledgeledger/lms-backend/pkg/enums"
	pkgerrors "github.com/knowledgeledger/lms-backend/pkg/errors"
)

type fakeRepository struct {
	categories  []models.Category
	courses     map[string]*models.Course
	bySlug      map[string]*models.Course
	instructors map[uuid.UUID]*models.Instructor
	sections    map[string]*models.Section
	lessons     map[string]*models.Lesson
	aggregates  CourseAggregates

	courseUpdates  map[string]any
	sectionDeleted bool
	lessonDeleted  bool
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		courses:     map[string]*models.Course{},
		bySlug:      map[string]*models.Course{},
		instructors: map[uuid.UUID]*models.Instructor{},
		sections:    map[string]*models.Section{},
		lessons:     map[string]*models.Lesson{},
	}
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepository) ListCategories(ctx context.Context) ([]models.Category, error) {
	var out []models.Category
	for _, category := range f.categories {
		if category.IsActive {
			out = append(out, category)
		}
	}
	return out, nil
}

func (f *fakeRepository) FindCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	for i := range f.categories {
		if f.categories[i].Slug == slug && f.categories[i].IsActive {
			return &f.categories[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) ListPublished(ctx context.Context, filter CourseFilter) ([]models.Course, error) {
	var out []models.Course
	for _, course := range f.courses {
		if !course.IsPublished() {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(course.Title), strings.ToLower(filter.Search)) {
			continue
		}
		out = append(out, *course)
	}
	return out, nil
}

func (f *fakeRepository) FindCourseByPublicID(ctx context.Context, publicID string) (*models.Course, error) {
	course, ok := f.courses[publicID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return course, nil
}

func (f *fakeRepository) FindCourseBySlug(ctx context.Context, slug string) (*models.Course, error) {
	course, ok := f.bySlug[slug]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return course, nil
}

func (f *fakeRepository) CreateCourse(ctx context.Context, course *models.Course) error {
	course.ID = uuid.New()
	f.courses[course.PublicID] = course
	f.bySlug[course.Slug] = course
	return nil
}

func (f *fakeRepository) UpdateCourse(ctx context.Context, courseID uuid.UUID, fields map[string]any) error {
	f.courseUpdates = fields
	for _, course := range f.courses {
		if course.ID == courseID {
			if title, ok := fields["title"].(string); ok {
				course.Title = title
			}
			if status, ok := fields["instructor_status"].(enums.CourseInstructorStatus); ok {
				course.InstructorStatus = status
			}
		}
	}
	return nil
}

func (f *fakeRepository) CoursePublicIDExists(ctx context.Context, publicID string) (bool, error) {
	_, ok := f.courses[publicID]
	return ok, nil
}

func (f *fakeRepository) Aggregates(ctx context.Context, courseID uuid.UUID) (*CourseAggregates, error) {
	aggregates := f.aggregates
	return &aggregates, nil
}

func (f *fakeRepository) FindInstructor(ctx context.Context, instructorID uuid.UUID) (*models.Instructor, error) {
	instructor, ok := f.instructors[instructorID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return instructor, nil
}

func (f *fakeRepository) CreateSection(ctx context.Context, section *models.Section) error {
	section.ID = uuid.New()
	f.sections[section.PublicID] = section
	return nil
}

func (f *fakeRepository) UpdateSection(ctx context.Context, sectionID uuid.UUID, fields map[string]any) error {
	return nil
}

func (f *fakeRepository) DeleteSection(ctx context.Context, sectionID uuid.UUID) error {
	f.sectionDeleted = true
	return nil
}

func (f *fakeRepository) FindSectionByPublicID(ctx context.Context, courseID uuid.UUID, publicID string) (*models.Section, error) {
	section, ok := f.sections[publicID]
	if !ok || section.CourseID != courseID {
		return nil, gorm.ErrRecordNotFound
	}
	return section, nil
}

func (f *fakeRepository) SectionPublicIDExists(ctx context.Context, publicID string) (bool, error) {
	_, ok := f.sections[publicID]
	return ok, nil
}

func (f *fakeRepository) CreateLesson(ctx context.Context, lesson *models.Lesson) error {
	lesson.ID = uuid.New()
	f.lessons[lesson.PublicID] = lesson
	return nil
}

func (f *fakeRepository) UpdateLesson(ctx context.Context, lessonID uuid.UUID, fields map[string]any) error {
	return nil
}

func (f *fakeRepository) DeleteLesson(ctx context.Context, lessonID uuid.UUID) error {
	f.lessonDeleted = true
	return nil
}

func (f *fakeRepository) FindLessonByPublicID(ctx context.Context, courseID uuid.UUID, publicID string) (*models.Lesson, error) {
	lesson, ok := f.lessons[publicID]
	if !ok || lesson.CourseID != courseID {
		return nil, gorm.ErrRecordNotFound
	}
	return lesson, nil
}

func (f *fakeRepository) LessonPublicIDExists(ctx context.Context, publicID string) (bool, error) {
	_, ok := f.lessons[publicID]
	return ok, nil
}

func newCatalogService(t *testing.T, repo Repository) Service {
	t.Helper()
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}
	return svc
}

func seedInstructor(repo *fakeRepository) uuid.UUID {
	instructorID := uuid.New()
	repo.instructors[instructorID] = &models.Instructor{ID: instructorID, FullName: "Priya Nair", IsActive: true}
	return instructorID
}

func publishedCourse(repo *fakeRepository, instructorID uuid.UUID) *models.Course {
	course := &models.Course{
		ID:               uuid.New(),
		PublicID:         "111111",
		InstructorID:     instructorID,
		Title:            "Network Programming with Go",
		Slug:             "network-programming-with-go-111111",
		Price:            decimal.RequireFromString("499.00"),
		PlatformStatus:   enums.CoursePlatformStatusPublished,
		InstructorStatus: enums.CourseInstructorStatusPublished,
	}
	repo.courses[course.PublicID] = course
	repo.bySlug[course.Slug] = course
	return course
}

func TestSlugify(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"Network Programming with Go", "network-programming-with-go"},
		{"  Spaces  &  Symbols!!  ", "spaces-symbols"},
		{"Already-Hyphenated Title", "already-hyphenated-title"},
		{"Unicode λ calculus, applied", "unicode-calculus-applied"},
		{"100 Days of Code", "100-days-of-code"},
	}
	for _, tc := range cases {
		if got := slugify(tc.input); got != tc.want {
			t.Errorf("slugify(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestCreateCourseStartsAsDraft(t *testing.T) {
	repo := newFakeRepository()
	instructorID := seedInstructor(repo)
	svc := newCatalogService(t, repo)

	course, err := svc.CreateCourse(context.Background(), instructorID, CreateCourseInput{
		Title: "Kubernetes Operators",
		Price: decimal.RequireFromString("999.00"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if course.PlatformStatus != enums.CoursePlatformStatusDraft {
		t.Fatalf("platform status should be draft, got %s", course.PlatformStatus)
	}
	if course.InstructorStatus != enums.CourseInstructorStatusDraft {
		t.Fatalf("instructor status should be draft, got %s", course.InstructorStatus)
	}
	if len(course.PublicID) != 6 {
		t.Fatalf("expected short public id, got %q", course.PublicID)
	}
	if !strings.HasPrefix(course.Slug, "kubernetes-operators-") {
		t.Fatalf("unexpected slug %q", course.Slug)
	}
}

func TestCreateCourseRequiresActiveInstructor(t *testing.T) {
	repo := newFakeRepository()
	instructorID := uuid.New()
	repo.instructors[instructorID] = &models.Instructor{ID: instructorID, IsActive: false}
	svc := newCatalogService(t, repo)

	_, err := svc.CreateCourse(context.Background(), instructorID, CreateCourseInput{
		Title: "x",
		Price: decimal.NewFromInt(1),
	})
	if err == nil || pkgerrors.As(err).Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}

	_, err = svc.CreateCourse(context.Background(), uuid.New(), CreateCourseInput{
		Title: "x",
		Price: decimal.NewFromInt(1),
	})
	if err == nil || pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for unknown instructor, got %v", err)
	}
}

func TestCreateCourseRejectsNegativePrice(t *testing.T) {
	repo := newFakeRepository()
	instructorID := seedInstructor(repo)
	svc := newCatalogService(t, repo)

	_, err := svc.CreateCourse(context.Background(), instructorID, CreateCourseInput{
		Title: "Cheap Trick",
		Price: decimal.NewFromInt(-1),
	})
	if err == nil || pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCourseDetailHidesUnpublished(t *testing.T) {
	repo := newFakeRepository()
	instructorID := seedInstructor(repo)
	course := publishedCourse(repo, instructorID)
	repo.aggregates = CourseAggregates{AverageRating: 4.5, RatingCount: 12, TotalLectures: 40, TotalDurationSeconds: 7200}
	svc := newCatalogService(t, repo)

	detail, err := svc.CourseDetail(context.Background(), course.PublicID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if detail.Aggregates.RatingCount != 12 || detail.Aggregates.TotalLectures != 40 {
		t.Fatalf("unexpected aggregates: %+v", detail.Aggregates)
	}

	course.InstructorStatus = enums.CourseInstructorStatusDraft
	_, err = svc.CourseDetail(context.Background(), course.PublicID)
	if err == nil || pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("draft course must stay hidden, got %v", err)
	}
}

func TestCourseDetailResolvesSlug(t *testing.T) {
	repo := newFakeRepository()
	instructorID := seedInstructor(repo)
	course := publishedCourse(repo, instructorID)
	svc := newCatalogService(t, repo)

	detail, err := svc.CourseDetail(context.Background(), course.Slug)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if detail.Course.ID != course.ID {
		t.Fatal("slug lookup resolved the wrong course")
	}
}

func TestListCoursesOnlyPublished(t *testing.T) {
	repo := newFakeRepository()
	instructorID := seedInstructor(repo)
	publishedCourse(repo, instructorID)
	draft := &models.Course{
		ID:               uuid.New(),
		PublicID:         "222222",
		InstructorID:     instructorID,
		Title:            "Unfinished",
		PlatformStatus:   enums.CoursePlatformStatusDraft,
		InstructorStatus: enums.CourseInstructorStatusDraft,
	}
	repo.courses[draft.PublicID] = draft
	svc := newCatalogService(t, repo)

	courses, err := svc.ListCourses(context.Background(), CourseFilter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(courses) != 1 {
		t.Fatalf("expected one published course, got %d", len(courses))
	}
}

func TestUpdateCourseOwnership(t *testing.T) {
	repo := newFakeRepository()
	instructorID := seedInstructor(repo)
	course := publishedCourse(repo, instructorID)
	svc := newCatalogService(t, repo)

	title := "Network Programming with Go, 2nd Edition"
	updated, err := svc.UpdateCourse(context.Background(), instructorID, course.PublicID, UpdateCourseInput{Title: &title})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Title != title {
		t.Fatalf("title not updated: %q", updated.Title)
	}

	_, err = svc.UpdateCourse(context.Background(), uuid.New(), course.PublicID, UpdateCourseInput{Title: &title})
	if err == nil || pkgerrors.As(err).Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestUpdateCourseInstructorStatus(t *testing.T) {
	repo := newFakeRepository()
	instructorID := seedInstructor(repo)
	course := publishedCourse(repo, instructorID)
	svc := newCatalogService(t, repo)

	status := "disabled"
	if _, err := svc.UpdateCourse(context.Background(), instructorID, course.PublicID, UpdateCourseInput{InstructorStatus: &status}); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if course.InstructorStatus != enums.CourseInstructorStatusDisabled {
		t.Fatalf("status not applied: %s", course.InstructorStatus)
	}

	bogus := "archived"
	_, err := svc.UpdateCourse(context.Background(), instructorID, course.PublicID, UpdateCourseInput{InstructorStatus: &bogus})
	if err == nil || pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSectionAndLessonLifecycle(t *testing.T) {
	repo := newFakeRepository()
	instructorID := seedInstructor(repo)
	course := publishedCourse(repo, instructorID)
	svc := newCatalogService(t, repo)

	section, err := svc.CreateSection(context.Background(), instructorID, course.PublicID, SectionInput{Title: "TCP Basics", Position: 1})
	if err != nil {
		t.Fatalf("create section failed: %v", err)
	}
	if section.CourseID != course.ID {
		t.Fatal("section not attached to course")
	}

	lesson, err := svc.CreateLesson(context.Background(), instructorID, course.PublicID, section.PublicID, LessonInput{
		Title:           "Dialing and Listening",
		DurationSeconds: 540,
		Preview:         true,
		Position:        1,
	})
	if err != nil {
		t.Fatalf("create lesson failed: %v", err)
	}
	if lesson.SectionID != section.ID || lesson.CourseID != course.ID {
		t.Fatalf("lesson misattached: %+v", lesson)
	}

	updated, err := svc.UpdateLesson(context.Background(), instructorID, course.PublicID, lesson.PublicID, LessonInput{
		Title:           "Dialing, Listening and Timeouts",
		DurationSeconds: 720,
		Position:        1,
	})
	if err != nil {
		t.Fatalf("update lesson failed: %v", err)
	}
	if updated.DurationSeconds != 720 {
		t.Fatalf("duration not updated: %d", updated.DurationSeconds)
	}

	if err := svc.DeleteLesson(context.Background(), instructorID, course.PublicID, lesson.PublicID); err != nil {
		t.Fatalf("delete lesson failed: %v", err)
	}
	if !repo.lessonDeleted {
		t.Fatal("lesson delete not persisted")
	}

	if err := svc.DeleteSection(context.Background(), instructorID, course.PublicID, section.PublicID); err != nil {
		t.Fatalf("delete section failed: %v", err)
	}
	if !repo.sectionDeleted {
		t.Fatal("section delete not persisted")
	}
}

func TestCurriculumOwnership(t *testing.T) {
	repo := newFakeRepository()
	instructorID := seedInstructor(repo)
	course := publishedCourse(repo, instructorID)
	svc := newCatalogService(t, repo)

	_, err := svc.CreateSection(context.Background(), uuid.New(), course.PublicID, SectionInput{Title: "Intro"})
	if err == nil || pkgerrors.As(err).Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}
