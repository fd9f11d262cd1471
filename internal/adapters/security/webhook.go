package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mladenvic/promoaffiliate/internal/domain"
)

// WebhookVerifier authenticates conversion callbacks from the order system.
// The signature header carries "t=<unix>,v1=<hex hmac-sha256 of t.body>".
type WebhookVerifier struct {
	secret    []byte
	tolerance time.Duration
	nowFn     func() time.Time
}

func NewWebhookVerifier(secret string, tolerance time.Duration) (*WebhookVerifier, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("webhook secret is required")
	}
	if tolerance <= 0 {
		tolerance = 5 * time.Minute
	}
	return &WebhookVerifier{secret: []byte(secret), tolerance: tolerance, nowFn: time.Now}, nil
}

func (v *WebhookVerifier) Sign(body []byte, at time.Time) string {
	ts := strconv.FormatInt(at.Unix(), 10)
	return "t=" + ts + ",v1=" + v.mac(ts, body)
}

func (v *WebhookVerifier) Verify(header string, body []byte) error {
	var ts, sig string
	for _, part := range strings.Split(header, ",") {
		k, val, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch k {
		case "t":
			ts = val
		case "v1":
			sig = val
		}
	}
	if ts == "" || sig == "" {
		return fmt.Errorf("%w: malformed signature header", domain.ErrUnauthorized)
	}
	unix, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: malformed signature timestamp", domain.ErrUnauthorized)
	}
	age := v.nowFn().Sub(time.Unix(unix, 0))
	if age > v.tolerance || age < -v.tolerance {
		return fmt.Errorf("%w: signature timestamp outside tolerance", domain.ErrUnauthorized)
	}
	if !hmac.Equal([]byte(sig), []byte(v.mac(ts, body))) {
		return fmt.Errorf("%w: signature mismatch", domain.ErrUnauthorized)
	}
	return nil
}

func (v *WebhookVerifier) mac(ts string, body []byte) string {
	h := hmac.New(sha256.New, v.secret)
	h.Write([]byte(ts))
	h.Write([]byte("."))
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}
