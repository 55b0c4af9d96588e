package auth

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/HarshMishra-Git/MedPath-by-AAS-EduGuide-sub000/domain"
)

// JWTInspectorImpl implements domain.TokenInspector for JWT access tokens
type JWTInspectorImpl struct {
	parser *jwt.Parser
}

// NewJWTInspector creates a new JWT inspector
func NewJWTInspector() domain.TokenInspector {
	return &JWTInspectorImpl{parser: jwt.NewParser()}
}

// ExpiresAt implements domain.TokenInspector. The signature is not checked; the identity
// service stays authoritative and this only avoids a round trip for tokens already expired.
func (j *JWTInspectorImpl) ExpiresAt(token string) (time.Time, bool) {
	if strings.Count(token, ".") != 2 {
		return time.Time{}, false
	}

	claims := jwt.MapClaims{}
	if _, _, err := j.parser.ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
