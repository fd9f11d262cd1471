package application

import (
	"context"
	"errors"
	"testing"

	"github.com/mladenvic/promoaffiliate/internal/domain"
)

func TestAffiliateApplicationLifecycle(t *testing.T) {
	t.Parallel()

	f := newFixture(t, Config{})
	ctx := context.Background()
	user := Actor{SubjectID: "user-7", Email: "u7@example.com"}

	app, err := f.svc.ApplyForAffiliate(ctx, user, ApplyInput{
		BusinessName:        " Clip Studio ",
		PromotionalChannels: []string{"youtube", "youtube", " ", "tiktok"},
		ReasonForApplying:   "audience fit",
	})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if app.Status != domain.ApplicationStatusPending || app.BusinessName != "Clip Studio" || len(app.PromotionalChannels) != 2 {
		t.Fatalf("unexpected application %+v", app)
	}
	if _, err := f.svc.ApplyForAffiliate(ctx, user, ApplyInput{BusinessName: "x", ReasonForApplying: "y"}); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict for second pending application, got %v", err)
	}

	pending, err := f.svc.ListApplications(ctx, adminActor(), ListApplicationsInput{Status: "pending"})
	if err != nil {
		t.Fatalf("list applications: %v", err)
	}
	if len(pending.Items) != 1 || pending.Items[0].ApplicationID != app.ApplicationID {
		t.Fatalf("unexpected pending list %+v", pending)
	}

	reviewed, err := f.svc.ReviewApplication(ctx, adminActor(), ReviewApplicationInput{ApplicationID: app.ApplicationID, Status: "approved"})
	if err != nil {
		t.Fatalf("review: %v", err)
	}
	if reviewed.Status != domain.ApplicationStatusApproved || reviewed.ReviewedBy != "admin-1" {
		t.Fatalf("unexpected reviewed application %+v", reviewed)
	}
	profile, err := f.svc.GetAffiliateProfile(ctx, affiliateActor("user-7"))
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	equalDecimal(t, "default rate", profile.CommissionRate, "0.05")
	equalDecimal(t, "payout threshold", profile.PayoutThreshold, "50")
	if !profile.IsActive || profile.Email != "u7@example.com" {
		t.Fatalf("unexpected profile %+v", profile)
	}
	if got := f.repos.Outbox.Pending(domain.EventApplicationReviewed); len(got) != 1 || got[0].PartitionKey != "user-7" {
		t.Fatalf("expected one application reviewed event, got %+v", got)
	}

	if _, err := f.svc.ReviewApplication(ctx, adminActor(), ReviewApplicationInput{ApplicationID: app.ApplicationID, Status: "rejected"}); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict re-reviewing, got %v", err)
	}
	if _, err := f.svc.ApplyForAffiliate(ctx, user, ApplyInput{BusinessName: "x", ReasonForApplying: "y"}); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict applying as an existing affiliate, got %v", err)
	}
}

func TestRejectedApplicationCreatesNoProfile(t *testing.T) {
	t.Parallel()

	f := newFixture(t, Config{})
	ctx := context.Background()
	app, err := f.svc.ApplyForAffiliate(ctx, Actor{SubjectID: "user-8"}, ApplyInput{BusinessName: "b", ReasonForApplying: "r"})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if _, err := f.svc.ReviewApplication(ctx, adminActor(), ReviewApplicationInput{ApplicationID: app.ApplicationID, Status: "rejected", Notes: "thin audience"}); err != nil {
		t.Fatalf("reject: %v", err)
	}
	if _, err := f.repos.Affiliates.GetByUserID(ctx, "user-8"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected no profile after rejection, got %v", err)
	}
	if _, err := f.svc.ApplyForAffiliate(ctx, Actor{SubjectID: "user-8"}, ApplyInput{BusinessName: "b", ReasonForApplying: "again"}); err != nil {
		t.Fatalf("expected reapplication after rejection, got %v", err)
	}
}

func TestApplicationValidation(t *testing.T) {
	t.Parallel()

	f := newFixture(t, Config{})
	ctx := context.Background()
	if _, err := f.svc.ApplyForAffiliate(ctx, Actor{}, ApplyInput{BusinessName: "b", ReasonForApplying: "r"}); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if _, err := f.svc.ApplyForAffiliate(ctx, Actor{SubjectID: "u"}, ApplyInput{BusinessName: "b"}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if _, err := f.svc.ListApplications(ctx, Actor{SubjectID: "u"}, ListApplicationsInput{}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if _, err := f.svc.ReviewApplication(ctx, adminActor(), ReviewApplicationInput{ApplicationID: "a", Status: "maybe"}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid status, got %v", err)
	}
}
