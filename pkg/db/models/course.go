package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/knowledgeledger/lms-backend/pkg/enums"
)

// Course is the sellable catalog entity. A course is visible to learners
// only when both the platform and the instructor have it published.
type Course struct {
	ID               uuid.UUID                    `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	PublicID         string                       `gorm:"column:public_id;type:text;not null;uniqueIndex"`
	CategoryID       *uuid.UUID                   `gorm:"column:category_id;type:uuid"`
	InstructorID     uuid.UUID                    `gorm:"column:instructor_id;type:uuid;not null;index"`
	Title            string                       `gorm:"column:title;type:text;not null"`
	Slug             string                       `gorm:"column:slug;type:text;not null;uniqueIndex"`
	Description      *string                      `gorm:"column:description;type:text"`
	Price            decimal.Decimal              `gorm:"column:price;type:numeric(12,2);not null"`
	Language         enums.CourseLanguage         `gorm:"column:language;type:text;not null;default:'english'"`
	Level            enums.CourseLevel            `gorm:"column:level;type:text;not null;default:'beginner'"`
	PlatformStatus   enums.CoursePlatformStatus   `gorm:"column:platform_status;type:text;not null;default:'review'"`
	InstructorStatus enums.CourseInstructorStatus `gorm:"column:instructor_status;type:text;not null;default:'draft'"`
	Featured         bool                         `gorm:"column:featured;not null;default:false"`
	Category         *Category                    `gorm:"foreignKey:CategoryID"`
	Instructor       *Instructor                  `gorm:"foreignKey:InstructorID"`
	Sections         []Section                    `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE"`
	CreatedAt        time.Time                    `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time                    `gorm:"column:updated_at;autoUpdateTime"`
}

// IsPublished reports whether learners can see and buy the course.
func (c Course) IsPublished() bool {
	return c.PlatformStatus == enums.CoursePlatformStatusPublished &&
		c.InstructorStatus == enums.CourseInstructorStatusPublished
}
