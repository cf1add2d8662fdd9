package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"tokengate/pkg/domain"
	dErrors "tokengate/pkg/domain-errors"
)

// Claims are the access-token claims for operator tooling. Roles drive the
// capability checks in internal/platform/authz.
type Claims struct {
	ActorID string   `json:"actor_id"`
	Roles   []string `json:"roles"`
	jwt.RegisteredClaims
}

// Service signs and validates operator access tokens.
type Service struct {
	signingKey []byte
	issuer     string
}

func NewService(signingKey, issuer string) *Service {
	return &Service{signingKey: []byte(signingKey), issuer: issuer}
}

// Generate mints an HS256 access token for an operator with the given roles.
func (s *Service) Generate(actorID string, roles []domain.Role, expiresIn time.Duration) (string, error) {
	roleStrings := make([]string, len(roles))
	for i, r := range roles {
		roleStrings[i] = string(r)
	}
	newToken := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		ActorID: actorID,
		Roles:   roleStrings,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    s.issuer,
			ID:        uuid.NewString(),
		},
	})
	return newToken.SignedString(s.signingKey)
}

// Validate parses and verifies a token string, returning its claims.
func (s *Service) Validate(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodePermissionDenied, "token has expired")
		}
		return nil, dErrors.New(dErrors.CodePermissionDenied, "invalid token")
	}
	if !parsed.Valid {
		return nil, dErrors.New(dErrors.CodePermissionDenied, "invalid token")
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil, dErrors.New(dErrors.CodePermissionDenied, "invalid token claims")
	}
	return claims, nil
}

// DomainRoles converts the string roles back into domain roles, dropping
// anything unknown.
func (c *Claims) DomainRoles() []domain.Role {
	var roles []domain.Role
	for _, raw := range c.Roles {
		if r, ok := domain.ParseRole(raw); ok {
			roles = append(roles, r)
		}
	}
	return roles
}
