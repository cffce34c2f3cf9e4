package usage

import (
	"context"
	"errors"
	"testing"
)

func TestCanConsumeWithinLimit(t *testing.T) {
	svc := NewService()

	ok, u, err := svc.CanConsume(context.Background(), "org-1", 1)
	if err != nil {
		t.Fatalf("CanConsume: %v", err)
	}
	if !ok {
		t.Fatal("expected fresh org to have quota")
	}
	if u.Used != 0 || u.Limit != 25 {
		t.Fatalf("usage = %+v", u)
	}
}

func TestConsumeEnforcesLimit(t *testing.T) {
	svc := NewService()
	ctx := context.Background()

	u, err := svc.Get(ctx, "org-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if _, err := svc.Consume(ctx, "org-1", u.Limit); err != nil {
		t.Fatalf("Consume to limit: %v", err)
	}

	if _, err := svc.Consume(ctx, "org-1", 1); !errors.Is(err, ErrLimitReached) {
		t.Fatalf("expected ErrLimitReached, got %v", err)
	}

	ok, _, err := svc.CanConsume(ctx, "org-1", 1)
	if err != nil {
		t.Fatalf("CanConsume: %v", err)
	}
	if ok {
		t.Fatal("expected exhausted org to be denied")
	}
}

func TestResetClearsUsage(t *testing.T) {
	svc := NewService()
	ctx := context.Background()

	if _, err := svc.Consume(ctx, "org-1", 5); err != nil {
		t.Fatalf("Consume: %v", err)
	}
	u, err := svc.Reset(ctx, "org-1")
	if err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if u.Used != 0 {
		t.Fatalf("used = %d after reset", u.Used)
	}
}

func TestQuotaIsPerOrg(t *testing.T) {
	svc := NewService()
	ctx := context.Background()

	u, _ := svc.Get(ctx, "org-1")
	if _, err := svc.Consume(ctx, "org-1", u.Limit); err != nil {
		t.Fatalf("Consume: %v", err)
	}

	ok, _, err := svc.CanConsume(ctx, "org-2", 1)
	if err != nil {
		t.Fatalf("CanConsume: %v", err)
	}
	if !ok {
		t.Fatal("org-2 quota should be independent of org-1")
	}
}
