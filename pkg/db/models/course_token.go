package models

import (
	"time"

	"github.com/google/uuid"
)

// CourseToken records the on-chain asset minted for one enrollment. The
// chain itself is external; this row is the platform's pointer to it.
type CourseToken struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	EnrollmentID uuid.UUID `gorm:"column:enrollment_id;type:uuid;not null;uniqueIndex"`
	UserID       uuid.UUID `gorm:"column:user_id;type:uuid;not null;index"`
	CourseID     uuid.UUID `gorm:"column:course_id;type:uuid;not null;index"`
	PolicyID     string    `gorm:"column:policy_id;type:text;not null"`
	AssetID      string    `gorm:"column:asset_id;type:text;not null;uniqueIndex"`
	AssetName    string    `gorm:"column:asset_name;type:text;not null"`
	TxHash       string    `gorm:"column:tx_hash;type:text;not null"`
	ImageURL     *string   `gorm:"column:image_url;type:text"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
}

// CertificateToken records the on-chain asset minted for one certificate.
type CertificateToken struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CertificateID uuid.UUID `gorm:"column:certificate_id;type:uuid;not null;uniqueIndex"`
	UserID        uuid.UUID `gorm:"column:user_id;type:uuid;not null;index"`
	CourseID      uuid.UUID `gorm:"column:course_id;type:uuid;not null;index"`
	PolicyID      string    `gorm:"column:policy_id;type:text;not null"`
	AssetID       string    `gorm:"column:asset_id;type:text;not null;uniqueIndex"`
	AssetName     string    `gorm:"column:asset_name;type:text;not null"`
	TxHash        string    `gorm:"column:tx_hash;type:text;not null"`
	ImageURL      *string   `gorm:"column:image_url;type:text"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
}
