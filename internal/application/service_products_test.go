package application

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mladenvic/promoaffiliate/internal/domain"
)

func TestProductCatalog(t *testing.T) {
	t.Parallel()

	f := newFixture(t, Config{})
	ctx := context.Background()
	inactive := false

	created, err := f.svc.CreateProduct(ctx, adminActor(), ProductInput{
		Title:          " Editing course ",
		Price:          decimal.RequireFromString("49.90"),
		Category:       "courses",
		CommissionRate: decimal.NewFromInt(15),
		CommissionType: "percentage",
		ExternalURL:    "https://shop.example.com/editing",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Title != "Editing course" || !created.IsActive || created.CreatedBy != "admin-1" {
		t.Fatalf("unexpected product %+v", created)
	}
	hidden, err := f.svc.CreateProduct(ctx, adminActor(), ProductInput{
		Title:          "Draft",
		CommissionRate: decimal.NewFromInt(2),
		CommissionType: "flat",
		ExternalURL:    "https://shop.example.com/draft",
		IsActive:       &inactive,
	})
	if err != nil {
		t.Fatalf("create inactive: %v", err)
	}

	public, err := f.svc.ListProducts(ctx, Actor{}, ListProductsInput{})
	if err != nil {
		t.Fatalf("public list: %v", err)
	}
	if len(public.Items) != 1 || public.Items[0].ProductID != created.ProductID {
		t.Fatalf("expected only active product publicly, got %+v", public.Items)
	}
	all, err := f.svc.ListProducts(ctx, adminActor(), ListProductsInput{})
	if err != nil {
		t.Fatalf("admin list: %v", err)
	}
	if len(all.Items) != 2 {
		t.Fatalf("expected admin to see both products, got %d", len(all.Items))
	}

	if _, err := f.svc.GetProduct(ctx, Actor{}, hidden.ProductID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected inactive product hidden from public, got %v", err)
	}
	if err := f.svc.DeleteProduct(ctx, affiliateActor("aff-1"), created.ProductID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden delete, got %v", err)
	}
	if err := f.svc.DeleteProduct(ctx, adminActor(), created.ProductID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := f.svc.GetProduct(ctx, Actor{}, created.ProductID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected deleted product gone, got %v", err)
	}
}

func TestProductValidation(t *testing.T) {
	t.Parallel()

	f := newFixture(t, Config{})
	base := ProductInput{
		Title:          "t",
		CommissionRate: decimal.NewFromInt(1),
		CommissionType: "flat",
		ExternalURL:    "https://shop.example.com/x",
	}
	tests := []struct {
		name   string
		mutate func(*ProductInput)
	}{
		{name: "blank title", mutate: func(in *ProductInput) { in.Title = " " }},
		{name: "negative price", mutate: func(in *ProductInput) { in.Price = decimal.NewFromInt(-1) }},
		{name: "unknown type", mutate: func(in *ProductInput) { in.CommissionType = "tiered" }},
		{name: "negative rate", mutate: func(in *ProductInput) { in.CommissionRate = decimal.NewFromInt(-1) }},
		{name: "relative url", mutate: func(in *ProductInput) { in.ExternalURL = "/x" }},
		{name: "non http url", mutate: func(in *ProductInput) { in.ExternalURL = "ftp://shop.example.com/x" }},
	}
	for _, tc := range tests {
		in := base
		tc.mutate(&in)
		if _, err := f.svc.CreateProduct(context.Background(), adminActor(), in); !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("%s: expected invalid input, got %v", tc.name, err)
		}
	}
}

func TestPagingRejectsOutOfRangePages(t *testing.T) {
	t.Parallel()

	f := newFixture(t, Config{})
	f.seedProduct(t, "prod-1", domain.CommissionTypeFlat, "5")
	f.seedAffiliate(t, "aff-1")
	f.convert(t, "aff-1", "prod-1", "40")
	ctx := context.Background()
	huge := PageInput{Page: 92233720368547760, Limit: 100}

	if _, err := f.svc.ListProducts(ctx, Actor{}, ListProductsInput{PageInput: huge}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("products: expected invalid input, got %v", err)
	}
	if _, err := f.svc.ListAllCommissions(ctx, adminActor(), ListCommissionsInput{PageInput: huge}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("commissions: expected invalid input, got %v", err)
	}

	far, err := f.svc.ListProducts(ctx, Actor{}, ListProductsInput{PageInput: PageInput{Page: 1000, Limit: 100}})
	if err != nil {
		t.Fatalf("far page: %v", err)
	}
	if len(far.Items) != 0 || far.HasMore || far.Page != 1000 {
		t.Fatalf("expected an empty page past the end, got %+v", far)
	}
}
