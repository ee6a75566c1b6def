package notifications

import (
	"github.com/google/uuid"

	"github.com/knowledgeledger/lms-backend/pkg/enums"
)

// Event describes one notification produced by a domain operation.
// Services return events instead of writing notifications themselves;
// the dispatcher persists them after the producing transaction commits.
type Event struct {
	Type         enums.NotificationType
	UserID       *uuid.UUID
	InstructorID *uuid.UUID
	OrderID      *uuid.UUID
	OrderItemID  *uuid.UUID
	ReviewID     *uuid.UUID
	Email        *EmailMessage
}

// EmailMessage is an optional email to deliver alongside the in-app row.
type EmailMessage struct {
	To        string
	Subject   string
	PlainText string
	HTML      string
}

// NewOrderEvent notifies an instructor that one of their courses sold.
func NewOrderEvent(instructorID uuid.UUID, orderID, orderItemID uuid.UUID) Event {
	return Event{
		Type:         enums.NotificationNewOrder,
		InstructorID: &instructorID,
		OrderID:      &orderID,
		OrderItemID:  &orderItemID,
	}
}

// EnrollmentCompletedEvent notifies a learner that their enrollment is active.
func EnrollmentCompletedEvent(userID uuid.UUID, orderItemID uuid.UUID) Event {
	return Event{
		Type:        enums.NotificationEnrollmentCompleted,
		UserID:      &userID,
		OrderItemID: &orderItemID,
	}
}

// NewReviewEvent notifies an instructor about a fresh course review.
func NewReviewEvent(instructorID uuid.UUID, reviewID uuid.UUID) Event {
	return Event{
		Type:         enums.NotificationNewReview,
		InstructorID: &instructorID,
		ReviewID:     &reviewID,
	}
}

// ReviewReplyEvent notifies a learner that an instructor replied to their review.
func ReviewReplyEvent(userID uuid.UUID, reviewID uuid.UUID) Event {
	return Event{
		Type:     enums.NotificationReviewReply,
		UserID:   &userID,
		ReviewID: &reviewID,
	}
}

// CertificateIssuedEvent notifies a learner that a certificate was issued.
func CertificateIssuedEvent(userID uuid.UUID) Event {
	return Event{
		Type:   enums.NotificationCertificateIssued,
		UserID: &userID,
	}
}

// CertificateIssuedInstructorEvent tells an instructor one of their
// students earned a certificate.
func CertificateIssuedInstructorEvent(instructorID uuid.UUID) Event {
	return Event{
		Type:         enums.NotificationCertificateIssued,
		InstructorID: &instructorID,
	}
}

// CoursePublishedEvent notifies an instructor that their course went live.
func CoursePublishedEvent(instructorID uuid.UUID) Event {
	return Event{
		Type:         enums.NotificationCoursePublished,
		InstructorID: &instructorID,
	}
}

// TokenMintedEvent notifies a learner that an on-chain token was recorded.
func TokenMintedEvent(userID uuid.UUID) Event {
	return Event{
		Type:   enums.NotificationTokenMinted,
		UserID: &userID,
	}
}

// TokenMintedInstructorEvent tells an instructor a token was minted for
// one of their courses.
func TokenMintedInstructorEvent(instructorID uuid.UUID) Event {
	return Event{
		Type:         enums.NotificationTokenMinted,
		InstructorID: &instructorID,
	}
}

// WithEmail attaches an email delivery to the event.
func (e Event) WithEmail(msg EmailMessage) Event {
	e.Email = &msg
	return e
}
