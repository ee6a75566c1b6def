package enums

import "fmt"

// CoursePlatformStatus is the moderation status assigned by the platform.
type CoursePlatformStatus string

const (
	CoursePlatformStatusReview    CoursePlatformStatus = "review"
	CoursePlatformStatusDisabled  CoursePlatformStatus = "disabled"
	CoursePlatformStatusRejected  CoursePlatformStatus = "rejected"
	CoursePlatformStatusDraft     CoursePlatformStatus = "draft"
	CoursePlatformStatusPublished CoursePlatformStatus = "published"
)

var validCoursePlatformStatuses = []CoursePlatformStatus{
	CoursePlatformStatusReview,
	CoursePlatformStatusDisabled,
	CoursePlatformStatusRejected,
	CoursePlatformStatusDraft,
	CoursePlatformStatusPublished,
}

// String implements fmt.Stringer.
func (c CoursePlatformStatus) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CoursePlatformStatus.
func (c CoursePlatformStatus) IsValid() bool {
	for _, candidate := range validCoursePlatformStatuses {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCoursePlatformStatus converts raw input into a CoursePlatformStatus.
func ParseCoursePlatformStatus(value string) (CoursePlatformStatus, error) {
	for _, candidate := range validCoursePlatformStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid course platform status %q", value)
}

// CourseInstructorStatus is the publishing status controlled by the instructor.
type CourseInstructorStatus string

const (
	CourseInstructorStatusDraft     CourseInstructorStatus = "draft"
	CourseInstructorStatusDisabled  CourseInstructorStatus = "disabled"
	CourseInstructorStatusPublished CourseInstructorStatus = "published"
)

var validCourseInstructorStatuses = []CourseInstructorStatus{
	CourseInstructorStatusDraft,
	CourseInstructorStatusDisabled,
	CourseInstructorStatusPublished,
}

// String implements fmt.Stringer.
func (c CourseInstructorStatus) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CourseInstructorStatus.
func (c CourseInstructorStatus) IsValid() bool {
	for _, candidate := range validCourseInstructorStatuses {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCourseInstructorStatus converts raw input into a CourseInstructorStatus.
func ParseCourseInstructorStatus(value string) (CourseInstructorStatus, error) {
	for _, candidate := range validCourseInstructorStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid course instructor status %q", value)
}
