package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/skyhaventravel/skyhaven-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID      uuid.UUID
	Role        enums.ActorRole
	Permissions []enums.Permission
	JTI         string
}

// AccessTokenClaims represents the typed JWT issued to clients. The
// permission set is advisory for UI gating; the server re-validates it on
// every mutating call.
type AccessTokenClaims struct {
	UserID      uuid.UUID          `json:"user_id"`
	Role        enums.ActorRole    `json:"role"`
	Permissions []enums.Permission `json:"permissions,omitempty"`
	jwt.RegisteredClaims
}

// HasPermission reports whether the claim set carries the permission.
func (c *AccessTokenClaims) HasPermission(perm enums.Permission) bool {
	if c == nil {
		return false
	}
	for _, candidate := range c.Permissions {
		if candidate == perm {
			return true
		}
	}
	return false
}
