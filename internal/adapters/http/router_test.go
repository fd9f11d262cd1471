package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	httpadapter "github.com/mladenvic/promoaffiliate/internal/adapters/http"
	"github.com/mladenvic/promoaffiliate/internal/adapters/memory"
	"github.com/mladenvic/promoaffiliate/internal/adapters/security"
	"github.com/mladenvic/promoaffiliate/internal/application"
	"github.com/mladenvic/promoaffiliate/internal/domain"
	"github.com/mladenvic/promoaffiliate/internal/ports"
)

const (
	testJWTSecret     = "router-test-jwt-secret"
	testWebhookSecret = "router-test-webhook-secret"
)

type routerFixture struct {
	router   http.Handler
	repos    memory.Repositories
	jwt      *security.JWTVerifier
	webhooks *security.WebhookVerifier
}

func newRouterFixture(t *testing.T) routerFixture {
	t.Helper()
	repos := memory.NewRepositories()
	svc := application.NewService(application.Dependencies{
		Config:       application.Config{PublicBaseURL: "https://aff.example.com"},
		Products:     repos.Products,
		Links:        repos.Links,
		Referrals:    repos.Referrals,
		Commissions:  repos.Commissions,
		Affiliates:   repos.Affiliates,
		Applications: repos.Applications,
		Outbox:       repos.Outbox,
		EventDedup:   repos.EventDedup,
	})
	jwtVerifier, err := security.NewJWTVerifier(testJWTSecret, "")
	if err != nil {
		t.Fatalf("jwt verifier: %v", err)
	}
	webhooks, err := security.NewWebhookVerifier(testWebhookSecret, 5*time.Minute)
	if err != nil {
		t.Fatalf("webhook verifier: %v", err)
	}

	ctx := context.Background()
	if err := repos.Products.Create(ctx, domain.Product{
		ProductID:      "prod-1",
		Title:          "Course",
		Price:          decimal.NewFromInt(100),
		CommissionRate: decimal.NewFromInt(10),
		CommissionType: domain.CommissionTypePercentage,
		ExternalURL:    "https://shop.example.com/course",
		IsActive:       true,
		CreatedAt:      time.Now().UTC(),
	}); err != nil {
		t.Fatalf("seed product: %v", err)
	}
	if err := repos.Affiliates.Create(ctx, domain.AffiliateProfile{
		UserID:           "aff-1",
		Email:            "aff@example.com",
		CommissionRate:   decimal.RequireFromString("0.05"),
		PayoutThreshold:  decimal.NewFromInt(50),
		TotalEarnings:    decimal.Zero,
		ApprovedEarnings: decimal.Zero,
		IsActive:         true,
		ApprovedAt:       time.Now().UTC(),
	}); err != nil {
		t.Fatalf("seed affiliate: %v", err)
	}

	return routerFixture{
		router:   httpadapter.NewRouter(httpadapter.NewHandler(svc, jwtVerifier, webhooks)),
		repos:    repos,
		jwt:      jwtVerifier,
		webhooks: webhooks,
	}
}

func (f routerFixture) token(t *testing.T, p ports.Principal) string {
	t.Helper()
	tok, err := f.jwt.IssueToken(p, time.Hour, time.Now())
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return tok
}

func (f routerFixture) do(req *http.Request) *httptest.ResponseRecorder {
	res := httptest.NewRecorder()
	f.router.ServeHTTP(res, req)
	return res
}

func jsonRequest(t *testing.T, method, target, token string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func decodeData(t *testing.T, res *httptest.ResponseRecorder, dst any) {
	t.Helper()
	var envelope struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(res.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope: %v (%s)", err, res.Body.String())
	}
	if envelope.Status != "success" {
		t.Fatalf("expected success envelope, got %s", res.Body.String())
	}
	if err := json.Unmarshal(envelope.Data, dst); err != nil {
		t.Fatalf("decode data: %v", err)
	}
}

func TestReferralFlowOverHTTP(t *testing.T) {
	t.Parallel()

	f := newRouterFixture(t)
	affToken := f.token(t, ports.Principal{UserID: "aff-1", Email: "aff@example.com", Affiliate: true})
	adminToken := f.token(t, ports.Principal{UserID: "admin-1", Admin: true})

	linkRes := f.do(jsonRequest(t, http.MethodPost, "/api/v1/affiliate/referral-links", affToken, map[string]any{
		"product_id":        "prod-1",
		"campaign_name":     "spring",
		"custom_parameters": map[string]string{"utm_source": "blog"},
	}))
	if linkRes.Code != http.StatusCreated {
		t.Fatalf("expected 201 creating link, got %d: %s", linkRes.Code, linkRes.Body.String())
	}
	var link struct {
		ReferralCode string `json:"referral_code"`
		ReferralURL  string `json:"referral_url"`
	}
	decodeData(t, linkRes, &link)
	if link.ReferralURL != "https://aff.example.com/track/"+link.ReferralCode {
		t.Fatalf("unexpected referral url %q", link.ReferralURL)
	}

	clickReq := httptest.NewRequest(http.MethodGet, "/track/"+link.ReferralCode, nil)
	clickReq.Header.Set("User-Agent", "test-agent")
	clickRes := f.do(clickReq)
	if clickRes.Code != http.StatusFound {
		t.Fatalf("expected 302 on click, got %d: %s", clickRes.Code, clickRes.Body.String())
	}
	location, err := url.Parse(clickRes.Header().Get("Location"))
	if err != nil {
		t.Fatalf("parse location: %v", err)
	}
	if location.Host != "shop.example.com" || location.Query().Get("utm_source") != "blog" {
		t.Fatalf("unexpected redirect %s", location)
	}
	referralID := location.Query().Get("ref")
	if referralID == "" || location.Query().Get("affiliate") != "aff-1" {
		t.Fatalf("redirect missing attribution params: %s", location)
	}
	var session *http.Cookie
	for _, c := range clickRes.Result().Cookies() {
		if c.Name == "affiliate_session" {
			session = c
		}
	}
	if session == nil || !session.HttpOnly || session.Value != location.Query().Get("session") {
		t.Fatalf("expected http-only session cookie matching redirect, got %+v", session)
	}

	body, _ := json.Marshal(map[string]any{
		"referral_id": referralID,
		"order_id":    "order-1",
		"order_value": "250.00",
	})
	convReq := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/conversions", bytes.NewReader(body))
	convReq.Header.Set("X-Affiliate-Signature", f.webhooks.Sign(body, time.Now()))
	convRes := f.do(convReq)
	if convRes.Code != http.StatusCreated {
		t.Fatalf("expected 201 on conversion, got %d: %s", convRes.Code, convRes.Body.String())
	}
	var conv struct {
		CommissionID     string          `json:"commission_id"`
		CommissionAmount decimal.Decimal `json:"commission_amount"`
	}
	decodeData(t, convRes, &conv)
	if !conv.CommissionAmount.Equal(decimal.NewFromInt(25)) {
		t.Fatalf("expected commission 25, got %s", conv.CommissionAmount)
	}

	replay := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/conversions", bytes.NewReader(body))
	replay.Header.Set("X-Affiliate-Signature", f.webhooks.Sign(body, time.Now()))
	if res := f.do(replay); res.Code != http.StatusConflict {
		t.Fatalf("expected 409 on second conversion, got %d", res.Code)
	}

	reviewPath := "/api/v1/admin/commissions/" + conv.CommissionID + "/review"
	if res := f.do(jsonRequest(t, http.MethodPost, reviewPath, adminToken, map[string]string{"status": "approved"})); res.Code != http.StatusOK {
		t.Fatalf("expected 200 on review, got %d: %s", res.Code, res.Body.String())
	}
	if res := f.do(jsonRequest(t, http.MethodPost, reviewPath, adminToken, map[string]string{"status": "approved"})); res.Code != http.StatusConflict {
		t.Fatalf("expected 409 on second review, got %d", res.Code)
	}

	profile, err := f.repos.Affiliates.GetByUserID(context.Background(), "aff-1")
	if err != nil {
		t.Fatalf("load affiliate: %v", err)
	}
	if !profile.ApprovedEarnings.Equal(decimal.NewFromInt(25)) {
		t.Fatalf("expected approved earnings 25 after one approval, got %s", profile.ApprovedEarnings)
	}

	summaryRes := f.do(jsonRequest(t, http.MethodGet, "/api/v1/affiliate/commissions/summary", affToken, nil))
	if summaryRes.Code != http.StatusOK {
		t.Fatalf("expected 200 on summary, got %d: %s", summaryRes.Code, summaryRes.Body.String())
	}
}

func TestRouterRejections(t *testing.T) {
	t.Parallel()

	f := newRouterFixture(t)
	affToken := f.token(t, ports.Principal{UserID: "aff-1", Affiliate: true})
	signedBody := []byte(`{"referral_id":"missing","order_id":"o-1","order_value":"10"}`)

	tests := []struct {
		name   string
		req    func() *http.Request
		status int
	}{
		{
			name: "unknown referral code",
			req: func() *http.Request {
				return httptest.NewRequest(http.MethodGet, "/track/doesnotexist", nil)
			},
			status: http.StatusNotFound,
		},
		{
			name: "missing bearer token",
			req: func() *http.Request {
				return jsonRequest(t, http.MethodGet, "/api/v1/affiliate/commissions", "", nil)
			},
			status: http.StatusUnauthorized,
		},
		{
			name: "garbage bearer token",
			req: func() *http.Request {
				return jsonRequest(t, http.MethodGet, "/api/v1/affiliate/commissions", "not-a-jwt", nil)
			},
			status: http.StatusUnauthorized,
		},
		{
			name: "affiliate on admin route",
			req: func() *http.Request {
				return jsonRequest(t, http.MethodGet, "/api/v1/admin/commissions", affToken, nil)
			},
			status: http.StatusForbidden,
		},
		{
			name: "unsigned webhook",
			req: func() *http.Request {
				return httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/conversions", bytes.NewReader(signedBody))
			},
			status: http.StatusUnauthorized,
		},
		{
			name: "signed webhook for unknown referral",
			req: func() *http.Request {
				req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/conversions", bytes.NewReader(signedBody))
				req.Header.Set("X-Affiliate-Signature", f.webhooks.Sign(signedBody, time.Now()))
				return req
			},
			status: http.StatusNotFound,
		},
		{
			name: "unknown body field",
			req: func() *http.Request {
				return jsonRequest(t, http.MethodPost, "/api/v1/affiliate/referral-links", affToken, map[string]string{"product_id": "prod-1", "bogus": "x"})
			},
			status: http.StatusBadRequest,
		},
		{
			name: "page far past the end of the catalog",
			req: func() *http.Request {
				return httptest.NewRequest(http.MethodGet, "/api/v1/products?page=92233720368547760&limit=100", nil)
			},
			status: http.StatusBadRequest,
		},
		{
			name: "bad page parameter",
			req: func() *http.Request {
				return jsonRequest(t, http.MethodGet, "/api/v1/affiliate/referral-links?page=zero", affToken, nil)
			},
			status: http.StatusBadRequest,
		},
	}
	for _, tc := range tests {
		res := f.do(tc.req())
		if res.Code != tc.status {
			t.Fatalf("%s: expected %d, got %d: %s", tc.name, tc.status, res.Code, res.Body.String())
		}
	}

	if n := f.repos.Referrals.Count(); n != 0 {
		t.Fatalf("expected no referrals written by rejected requests, got %d", n)
	}
}

func TestHealthAndDocs(t *testing.T) {
	t.Parallel()

	f := newRouterFixture(t)
	for _, path := range []string{"/healthz", "/readyz", "/swagger/doc.json"} {
		res := f.do(httptest.NewRequest(http.MethodGet, path, nil))
		if res.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, res.Code)
		}
	}
}
