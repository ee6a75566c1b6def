package enums

import "fmt"

// CourseLanguage is the language a course is taught in.
type CourseLanguage string

const (
	CourseLanguageEnglish CourseLanguage = "english"
	CourseLanguageSpanish CourseLanguage = "spanish"
	CourseLanguageFrench  CourseLanguage = "french"
)

var validCourseLanguages = []CourseLanguage{
	CourseLanguageEnglish,
	CourseLanguageSpanish,
	CourseLanguageFrench,
}

// String implements fmt.Stringer.
func (c CourseLanguage) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CourseLanguage.
func (c CourseLanguage) IsValid() bool {
	for _, candidate := range validCourseLanguages {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCourseLanguage converts raw input into a CourseLanguage.
func ParseCourseLanguage(value string) (CourseLanguage, error) {
	for _, candidate := range validCourseLanguages {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid course language %q", value)
}
