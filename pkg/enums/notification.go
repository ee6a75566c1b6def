package enums

import "fmt"

// NotificationType maps to the notification_type enum in Postgres.
type NotificationType string

const (
	NotificationTypeNewOrder            NotificationType = "new_order"
	NotificationTypeEnrollmentCompleted NotificationType = "enrollment_completed"
	NotificationTypeNewReview           NotificationType = "new_review"
	NotificationTypeReviewReply         NotificationType = "review_reply"
	NotificationTypeCoursePublished     NotificationType = "course_published"
	NotificationTypeCertificateIssued   NotificationType = "certificate_issued"
	NotificationTypeTokenMinted         NotificationType = "token_minted"
)

var validNotificationTypes = []NotificationType{
	NotificationTypeNewOrder,
	NotificationTypeEnrollmentCompleted,
	NotificationTypeNewReview,
	NotificationTypeReviewReply,
	NotificationTypeCoursePublished,
	NotificationTypeCertificateIssued,
	NotificationTypeTokenMinted,
}

// IsValid checks whether the given type matches the canonical enum.
func (n NotificationType) IsValid() bool {
	for _, candidate := range validNotificationTypes {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationType converts raw strings into NotificationType.
func ParseNotificationType(value string) (NotificationType, error) {
	for _, candidate := range validNotificationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification type %q", value)
}
