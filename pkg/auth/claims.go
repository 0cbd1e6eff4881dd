package auth

import (
	"github.com/dmarchetti-dev/revshare-backend/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Principal is the validated caller identity every engine operation receives.
// The core never looks up credentials itself.
type Principal struct {
	ID   uuid.UUID
	Role enums.Role
}

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID uuid.UUID
	Role   enums.Role
	JTI    string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	UserID uuid.UUID  `json:"user_id"`
	Role   enums.Role `json:"role"`
	jwt.RegisteredClaims
}

// Principal converts validated claims into the caller identity passed to engines.
func (c *AccessTokenClaims) Principal() Principal {
	return Principal{ID: c.UserID, Role: c.Role}
}
