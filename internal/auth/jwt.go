// Package auth validates admin service tokens. The public calculator API is
// anonymous; only the admin surface (vehicle catalog and feature flag
// management) requires a signed token issued out of band.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Predefined token errors.
var (
	ErrInvalidToken = errors.New("invalid service token")
	ErrTokenExpired = errors.New("service token has expired")
	ErrMissingScope = errors.New("service token lacks required scope")
)

// ScopeAdmin is the scope required for admin endpoints.
const ScopeAdmin = "admin"

// ServiceClaims represents the claims in admin service tokens.
type ServiceClaims struct {
	jwt.RegisteredClaims

	// Scope grants access to a protected surface (e.g. "admin").
	Scope string `json:"scope"`
}

// ServiceTokenService validates HS256-signed service tokens.
type ServiceTokenService struct {
	signingKey []byte
	issuer     string
	audience   string
}

// ServiceTokenConfig holds configuration for the token service.
type ServiceTokenConfig struct {
	// SigningKey is the shared secret used to sign tokens.
	SigningKey string

	// Issuer is the expected issuer claim (e.g. "https://api.commutewise.dev").
	Issuer string

	// Audience is the expected audience claim (e.g. "commutewise-api").
	Audience string
}

// NewServiceTokenService creates a new service token validator.
func NewServiceTokenService(cfg ServiceTokenConfig) *ServiceTokenService {
	return &ServiceTokenService{
		signingKey: []byte(cfg.SigningKey),
		issuer:     cfg.Issuer,
		audience:   cfg.Audience,
	}
}

// GenerateToken creates a signed service token with the given scope and
// lifetime. Used by the token issuing tooling and by tests.
func (s *ServiceTokenService) GenerateToken(subject, scope string, ttl time.Duration) (string, error) {
	now := time.Now()

	claims := ServiceClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   subject,
			Audience:  jwt.ClaimStrings{s.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			NotBefore: jwt.NewNumericDate(now),
		},
		Scope: scope,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", fmt.Errorf("signing service token: %w", err)
	}
	return signed, nil
}

// ValidateToken validates a service token and returns its claims.
func (s *ServiceTokenService) ValidateToken(tokenString string) (*ServiceClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &ServiceClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.signingKey, nil
	}, jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithExpirationRequired(),
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %s", ErrInvalidToken, err.Error())
	}

	claims, ok := token.Claims.(*ServiceClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// RequireScope validates a token and checks that it carries the scope.
func (s *ServiceTokenService) RequireScope(tokenString, scope string) (*ServiceClaims, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Scope != scope {
		return nil, ErrMissingScope
	}
	return claims, nil
}
