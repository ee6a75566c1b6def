package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/knowledgeledger/lms-backend/pkg/enums"
)

// Certificate is an issued completion credential. Names are snapshotted at
// issue time so later profile or course edits do not rewrite history.
type Certificate struct {
	ID              uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	PublicID        string                  `gorm:"column:public_id;type:text;not null;uniqueIndex"`
	UserID          uuid.UUID               `gorm:"column:user_id;type:uuid;not null;uniqueIndex:certificates_user_course_key"`
	CourseID        uuid.UUID               `gorm:"column:course_id;type:uuid;not null;uniqueIndex:certificates_user_course_key"`
	StudentName     string                  `gorm:"column:student_name;type:text;not null"`
	CourseName      string                  `gorm:"column:course_name;type:text;not null"`
	CompletionDate  time.Time               `gorm:"column:completion_date;not null"`
	Status          enums.CertificateStatus `gorm:"column:status;type:text;not null;default:'active'"`
	VerificationURL string                  `gorm:"column:verification_url;type:text;not null"`
	CreatedAt       time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}
