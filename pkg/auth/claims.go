package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/knowledgeledger/lms-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID       uuid.UUID
	InstructorID *uuid.UUID
	Role         enums.ActorRole
	JTI          string
}

// AccessTokenClaims represents the typed JWT issued to clients by the
// identity provider. The API only verifies these; it never issues them
// outside of tests and dev tooling.
type AccessTokenClaims struct {
	UserID       uuid.UUID       `json:"user_id"`
	InstructorID *uuid.UUID      `json:"instructor_id,omitempty"`
	Role         enums.ActorRole `json:"role"`
	jwt.RegisteredClaims
}
