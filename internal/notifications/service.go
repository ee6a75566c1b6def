package notifications

import (
	"context"

	"github.com/google/uuid"

	"github.com/knowledgeledger/lms-backend/pkg/db/models"
	pkgerrors "github.com/knowledgeledger/lms-backend/pkg/errors"
	"github.com/knowledgeledger/lms-backend/pkg/logger"
	"github.com/knowledgeledger/lms-backend/pkg/pagination"
)

// Service defines notification dispatch, list and seen-tracking operations.
type Service interface {
	Dispatch(ctx context.Context, events []Event)
	List(ctx context.Context, params ListParams) (*ListResult, error)
	MarkSeen(ctx context.Context, recipient Recipient, notificationID uuid.UUID) error
	MarkAllSeen(ctx context.Context, recipient Recipient) (int64, error)
	UnseenCount(ctx context.Context, recipient Recipient) (int64, error)
}

type service struct {
	repo   Repository
	mailer Mailer
	logg   *logger.Logger
}

// Recipient identifies the owner of a notification feed. Exactly one
// of UserID/InstructorID must be set.
type Recipient struct {
	UserID       *uuid.UUID
	InstructorID *uuid.UUID
}

func (r Recipient) valid() bool {
	return (r.UserID != nil) != (r.InstructorID != nil)
}

// ForUser builds a learner recipient.
func ForUser(userID uuid.UUID) Recipient {
	return Recipient{UserID: &userID}
}

// ForInstructor builds an instructor recipient.
func ForInstructor(instructorID uuid.UUID) Recipient {
	return Recipient{InstructorID: &instructorID}
}

// ListParams configures pagination for notifications.
type ListParams struct {
	Recipient  Recipient
	Limit      int
	Cursor     string
	UnseenOnly bool
}

// ListResult wraps returned notifications and the cursor for the next page.
type ListResult struct {
	Items  []models.Notification `json:"items"`
	Cursor string                `json:"cursor"`
}

// NewService wires notifications dependencies. The mailer is optional;
// without one events are persisted in-app only.
func NewService(repo Repository, mailer Mailer, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications repository required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	return &service{repo: repo, mailer: mailer, logg: logg}, nil
}

// Dispatch persists one notification row per event and delivers any
// attached emails. Delivery happens after the producing transaction has
// committed, so failures are logged rather than propagated.
func (s *service) Dispatch(ctx context.Context, events []Event) {
	for _, event := range events {
		logCtx := s.logg.WithFields(ctx, map[string]any{"notification_type": string(event.Type)})
		recipient := Recipient{UserID: event.UserID, InstructorID: event.InstructorID}
		if !recipient.valid() {
			s.logg.Warn(logCtx, "dropping notification without a single recipient")
			continue
		}
		notification := &models.Notification{
			UserID:       event.UserID,
			InstructorID: event.InstructorID,
			OrderID:      event.OrderID,
			OrderItemID:  event.OrderItemID,
			ReviewID:     event.ReviewID,
			Type:         event.Type,
		}
		if err := s.repo.Create(ctx, notification); err != nil {
			s.logg.Error(logCtx, "failed to persist notification", err)
			continue
		}
		if event.Email != nil && s.mailer != nil {
			if err := s.mailer.Send(ctx, *event.Email); err != nil {
				s.logg.Error(logCtx, "failed to send notification email", err)
			}
		}
	}
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if !params.Recipient.valid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "notification recipient required")
	}

	query := listNotificationsParams{
		Recipient:  params.Recipient,
		Limit:      pagination.LimitWithBuffer(params.Limit),
		UnseenOnly: params.UnseenOnly,
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list notifications")
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}

	return &ListResult{
		Items:  rows,
		Cursor: cursor,
	}, nil
}

func (s *service) MarkSeen(ctx context.Context, recipient Recipient, notificationID uuid.UUID) error {
	if !recipient.valid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "notification recipient required")
	}
	if notificationID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "notification id required")
	}

	result, err := s.repo.MarkSeen(ctx, recipient, notificationID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notification seen")
	}
	if !result.Found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
	}
	return nil
}

func (s *service) MarkAllSeen(ctx context.Context, recipient Recipient) (int64, error) {
	if !recipient.valid() {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "notification recipient required")
	}

	count, err := s.repo.MarkAllSeen(ctx, recipient)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notifications seen")
	}
	return count, nil
}

func (s *service) UnseenCount(ctx context.Context, recipient Recipient) (int64, error) {
	if !recipient.valid() {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "notification recipient required")
	}

	count, err := s.repo.CountUnseen(ctx, recipient)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count unseen notifications")
	}
	return count, nil
}
