package security

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mladenvic/promoaffiliate/internal/domain"
	"github.com/mladenvic/promoaffiliate/internal/ports"
)

// JWTVerifier checks HS256 bearer tokens issued by the identity provider.
// Role flags travel as boolean custom claims.
type JWTVerifier struct {
	secret []byte
	issuer string
	leeway time.Duration
}

func NewJWTVerifier(secret, issuer string) (*JWTVerifier, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("jwt secret is required")
	}
	return &JWTVerifier{secret: []byte(secret), issuer: issuer, leeway: 30 * time.Second}, nil
}

type identityClaims struct {
	UserID    string `json:"uid"`
	Email     string `json:"email"`
	Admin     bool   `json:"admin"`
	Affiliate bool   `json:"affiliate"`
	jwt.RegisteredClaims
}

func (v *JWTVerifier) VerifyToken(_ context.Context, raw string) (ports.Principal, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(v.leeway),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	parsed, err := jwt.ParseWithClaims(raw, &identityClaims{}, func(token *jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return ports.Principal{}, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	claims, ok := parsed.Claims.(*identityClaims)
	if !ok || !parsed.Valid {
		return ports.Principal{}, fmt.Errorf("%w: invalid token claims", domain.ErrUnauthorized)
	}
	uid := claims.UserID
	if uid == "" {
		uid = claims.Subject
	}
	if strings.TrimSpace(uid) == "" {
		return ports.Principal{}, fmt.Errorf("%w: token has no subject", domain.ErrUnauthorized)
	}
	return ports.Principal{
		UserID:    uid,
		Email:     claims.Email,
		Admin:     claims.Admin,
		Affiliate: claims.Affiliate,
	}, nil
}

// IssueToken mints a token the verifier accepts. Used by local tooling and tests.
func (v *JWTVerifier) IssueToken(p ports.Principal, ttl time.Duration, now time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, identityClaims{
		UserID:    p.UserID,
		Email:     p.Email,
		Admin:     p.Admin,
		Affiliate: p.Affiliate,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.UserID,
			Issuer:    v.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	return token.SignedString(v.secret)
}

var _ ports.IdentityVerifier = (*JWTVerifier)(nil)
