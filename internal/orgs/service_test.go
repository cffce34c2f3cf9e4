package orgs

import (
	"context"
	"errors"
	"testing"
)

type fakePurger struct {
	purged []string
}

func (f *fakePurger) PurgeOrg(ctx context.Context, orgID string) (int, error) {
	f.purged = append(f.purged, orgID)
	return 0, nil
}

func TestEnsureOrgIsIdempotent(t *testing.T) {
	svc := &Service{Repo: NewMemoryRepo()}
	ctx := context.Background()

	if err := svc.EnsureOrg(ctx, "org-1", "Mercy Clinic"); err != nil {
		t.Fatalf("EnsureOrg: %v", err)
	}
	if err := svc.EnsureOrg(ctx, "org-1", "Mercy Clinic Renamed"); err != nil {
		t.Fatalf("EnsureOrg second call: %v", err)
	}

	org, err := svc.Get(ctx, "org-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if org.Name != "Mercy Clinic Renamed" {
		t.Fatalf("expected renamed org, got %q", org.Name)
	}
	if org.Plan != "free" {
		t.Fatalf("expected default plan free, got %q", org.Plan)
	}
}

func TestListIDsCoversEveryOrg(t *testing.T) {
	svc := &Service{Repo: NewMemoryRepo()}
	ctx := context.Background()

	for _, id := range []string{"org-b", "org-a", "org-c"} {
		if err := svc.EnsureOrg(ctx, id, id); err != nil {
			t.Fatalf("EnsureOrg %s: %v", id, err)
		}
	}

	ids, err := svc.ListIDs(ctx)
	if err != nil {
		t.Fatalf("ListIDs: %v", err)
	}
	if len(ids) != 3 {
		t.Fatalf("expected 3 ids, got %d", len(ids))
	}
}

func TestPurgeRemovesOrgAndDocuments(t *testing.T) {
	purger := &fakePurger{}
	svc := &Service{Repo: NewMemoryRepo(), Docs: purger}
	ctx := context.Background()

	if err := svc.EnsureOrg(ctx, "org-1", "Mercy Clinic"); err != nil {
		t.Fatalf("EnsureOrg: %v", err)
	}
	if err := svc.Purge(ctx, "org-1"); err != nil {
		t.Fatalf("Purge: %v", err)
	}
	if len(purger.purged) != 1 || purger.purged[0] != "org-1" {
		t.Fatalf("expected document purge for org-1, got %v", purger.purged)
	}
	if _, err := svc.Get(ctx, "org-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after purge, got %v", err)
	}
}

func TestPurgeUnknownOrg(t *testing.T) {
	svc := &Service{Repo: NewMemoryRepo()}
	if err := svc.Purge(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
