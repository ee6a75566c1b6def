package enums

import "fmt"

// CertificateStatus tracks the lifecycle of an issued certificate.
// Revoked and expired are terminal states.
type CertificateStatus string

const (
	CertificateStatusActive  CertificateStatus = "active"
	CertificateStatusRevoked CertificateStatus = "revoked"
	CertificateStatusExpired CertificateStatus = "expired"
)

var validCertificateStatuses = []CertificateStatus{
	CertificateStatusActive,
	CertificateStatusRevoked,
	CertificateStatusExpired,
}

// String implements fmt.Stringer.
func (c CertificateStatus) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CertificateStatus.
func (c CertificateStatus) IsValid() bool {
	for _, candidate := range validCertificateStatuses {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCertificateStatus converts raw input into a CertificateStatus.
func ParseCertificateStatus(value string) (CertificateStatus, error) {
	for _, candidate := range validCertificateStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid certificate status %q", value)
}
