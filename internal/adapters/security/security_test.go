package security

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mladenvic/promoaffiliate/internal/domain"
	"github.com/mladenvic/promoaffiliate/internal/ports"
)

func TestJWTVerifierRoundTrip(t *testing.T) {
	v, err := NewJWTVerifier("secret", "identity")
	if err != nil {
		t.Fatalf("new verifier: %v", err)
	}
	token, err := v.IssueToken(ports.Principal{UserID: "u-1", Email: "a@example.com", Affiliate: true}, time.Hour, time.Now())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	p, err := v.VerifyToken(context.Background(), token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if p.UserID != "u-1" || !p.Affiliate || p.Admin {
		t.Fatalf("unexpected principal: %+v", p)
	}
}

func TestJWTVerifierRejects(t *testing.T) {
	v, _ := NewJWTVerifier("secret", "identity")
	other, _ := NewJWTVerifier("other-secret", "identity")
	wrongIssuer, _ := NewJWTVerifier("secret", "someone-else")

	expired, _ := v.IssueToken(ports.Principal{UserID: "u-1"}, time.Minute, time.Now().Add(-time.Hour))
	forged, _ := other.IssueToken(ports.Principal{UserID: "u-1", Admin: true}, time.Hour, time.Now())
	issuer, _ := wrongIssuer.IssueToken(ports.Principal{UserID: "u-1"}, time.Hour, time.Now())
	none, _ := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"uid": "u-1"}).SignedString(jwt.UnsafeAllowNoneSignatureType)

	cases := map[string]string{
		"expired":      expired,
		"wrong secret": forged,
		"wrong issuer": issuer,
		"alg none":     none,
		"garbage":      "not-a-token",
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := v.VerifyToken(context.Background(), token); !errors.Is(err, domain.ErrUnauthorized) {
				t.Fatalf("expected ErrUnauthorized, got %v", err)
			}
		})
	}
}

func TestWebhookVerifier(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	v, err := NewWebhookVerifier("hook-secret", 5*time.Minute)
	if err != nil {
		t.Fatalf("new verifier: %v", err)
	}
	v.nowFn = func() time.Time { return now }
	body := []byte(`{"referral_id":"r-1"}`)

	if err := v.Verify(v.Sign(body, now.Add(-time.Minute)), body); err != nil {
		t.Fatalf("valid signature rejected: %v", err)
	}
	if err := v.Verify(v.Sign(body, now), []byte(`{"referral_id":"r-2"}`)); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("tampered body accepted: %v", err)
	}
	if err := v.Verify(v.Sign(body, now.Add(-10*time.Minute)), body); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("stale signature accepted: %v", err)
	}
	if err := v.Verify("v1=abc", body); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("malformed header accepted: %v", err)
	}
}
