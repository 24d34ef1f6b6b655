// Package auth verifies access tokens issued by the managed auth provider.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wellspring/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken is returned for any token that fails verification.
var ErrInvalidToken = errors.New("invalid access token")

// Verifier turns a bearer token into the authenticated principal.
type Verifier interface {
	Verify(ctx context.Context, token string) (*model.Principal, error)
}

// Claims are the provider's access token claims this service relies on.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// JWTVerifier checks HS256 tokens signed with the provider's shared secret.
type JWTVerifier struct {
	secret   []byte
	audience string
	issuer   string
}

// NewJWTVerifier creates a verifier. Empty audience or issuer disables that check.
func NewJWTVerifier(secret, audience, issuer string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret), audience: audience, issuer: issuer}
}

func (v *JWTVerifier) Verify(_ context.Context, raw string) (*model.Principal, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(30 * time.Second),
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: subject is not a user id", ErrInvalidToken)
	}

	return &model.Principal{UserID: userID, Email: claims.Email}, nil
}

// IssueToken signs a token for userID. Used by tests and local tooling that
// stand in for the provider.
func IssueToken(secret string, userID uuid.UUID, email, audience string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: email,
		Role:  "authenticated",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	if audience != "" {
		claims.Audience = jwt.ClaimStrings{audience}
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
