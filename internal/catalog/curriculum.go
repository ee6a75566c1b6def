package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/knowledgeledger/lms-backend/pkg/db/models"
	pkgerrors "github.com/knowledgeledger/lms-backend/pkg/errors"
	"github.com/knowledgeledger/lms-backend/pkg/shortid"
)

func (s *service) CreateSection(ctx context.Context, instructorID uuid.UUID, coursePublicID string, input SectionInput) (*models.Section, error) {
	course, err := s.loadOwnedCourse(ctx, instructorID, coursePublicID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "section title required")
	}

	publicID, err := s.freshID(ctx, s.repo.SectionPublicIDExists, "section")
	if err != nil {
		return nil, err
	}
	section := &models.Section{
		PublicID: publicID,
		CourseID: course.ID,
		Title:    strings.TrimSpace(input.Title),
		Position: input.Position,
	}
	if err := s.repo.CreateSection(ctx, section); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create section")
	}
	return section, nil
}

func (s *service) UpdateSection(ctx context.Context, instructorID uuid.UUID, coursePublicID, sectionPublicID string, input SectionInput) (*models.Section, error) {
	course, err := s.loadOwnedCourse(ctx, instructorID, coursePublicID)
	if err != nil {
		return nil, err
	}
	section, err := s.loadSection(ctx, course.ID, sectionPublicID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "section title required")
	}

	fields := map[string]any{
		"title":    strings.TrimSpace(input.Title),
		"position": input.Position,
	}
	if err := s.repo.UpdateSection(ctx, section.ID, fields); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update section")
	}
	section.Title = strings.TrimSpace(input.Title)
	section.Position = input.Position
	return section, nil
}

func (s *service) DeleteSection(ctx context.Context, instructorID uuid.UUID, coursePublicID, sectionPublicID string) error {
	course, err := s.loadOwnedCourse(ctx, instructorID, coursePublicID)
	if err != nil {
		return err
	}
	section, err := s.loadSection(ctx, course.ID, sectionPublicID)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteSection(ctx, section.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete section")
	}
	return nil
}

func (s *service) CreateLesson(ctx context.Context, instructorID uuid.UUID, coursePublicID, sectionPublicID string, input LessonInput) (*models.Lesson, error) {
	course, err := s.loadOwnedCourse(ctx, instructorID, coursePublicID)
	if err != nil {
		return nil, err
	}
	section, err := s.loadSection(ctx, course.ID, sectionPublicID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "lesson title required")
	}
	if input.DurationSeconds < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "lesson duration cannot be negative")
	}

	publicID, err := s.freshID(ctx, s.repo.LessonPublicIDExists, "lesson")
	if err != nil {
		return nil, err
	}
	lesson := &models.Lesson{
		PublicID:        publicID,
		SectionID:       section.ID,
		CourseID:        course.ID,
		Title:           strings.TrimSpace(input.Title),
		Description:     input.Description,
		DurationSeconds: input.DurationSeconds,
		Preview:         input.Preview,
		Position:        input.Position,
	}
	if err := s.repo.CreateLesson(ctx, lesson); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create lesson")
	}
	return lesson, nil
}

func (s *service) UpdateLesson(ctx context.Context, instructorID uuid.UUID, coursePublicID, lessonPublicID string, input LessonInput) (*models.Lesson, error) {
	course, err := s.loadOwnedCourse(ctx, instructorID, coursePublicID)
	if err != nil {
		return nil, err
	}
	lesson, err := s.loadLesson(ctx, course.ID, lessonPublicID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "lesson title required")
	}
	if input.DurationSeconds < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "lesson duration cannot be negative")
	}

	fields := map[string]any{
		"title":            strings.TrimSpace(input.Title),
		"duration_seconds": input.DurationSeconds,
		"preview":          input.Preview,
		"position":         input.Position,
	}
	if input.Description != nil {
		fields["description"] = *input.Description
	}
	if err := s.repo.UpdateLesson(ctx, lesson.ID, fields); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update lesson")
	}
	lesson.Title = strings.TrimSpace(input.Title)
	lesson.DurationSeconds = input.DurationSeconds
	lesson.Preview = input.Preview
	lesson.Position = input.Position
	if input.Description != nil {
		lesson.Description = input.Description
	}
	return lesson, nil
}

func (s *service) DeleteLesson(ctx context.Context, instructorID uuid.UUID, coursePublicID, lessonPublicID string) error {
	course, err := s.loadOwnedCourse(ctx, instructorID, coursePublicID)
	if err != nil {
		return err
	}
	lesson, err := s.loadLesson(ctx, course.ID, lessonPublicID)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteLesson(ctx, lesson.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete lesson")
	}
	return nil
}

func (s *service) loadSection(ctx context.Context, courseID uuid.UUID, publicID string) (*models.Section, error) {
	if !shortid.IsValid(publicID) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid section id")
	}
	section, err := s.repo.FindSectionByPublicID(ctx, courseID, publicID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "section not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load section")
	}
	return section, nil
}

func (s *service) loadLesson(ctx context.Context, courseID uuid.UUID, publicID string) (*models.Lesson, error) {
	if !shortid.IsValid(publicID) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid lesson id")
	}
	lesson, err := s.repo.FindLessonByPublicID(ctx, courseID, publicID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "lesson not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load lesson")
	}
	return lesson, nil
}
