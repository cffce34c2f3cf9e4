package compliance

import "testing"

func existingDoc(id, license, owner, expiration string) ExistingDocument {
	return ExistingDocument{
		ID:             id,
		LicenseNumber:  license,
		OwnerName:      owner,
		ExpirationDate: expiration,
	}
}

func TestClassifyCandidateMissingIdentityFields(t *testing.T) {
	existing := []ExistingDocument{existingDoc("doc-1", "RN-100", "Jane Doe", "2025-06-30")}

	cases := []struct {
		name      string
		candidate Candidate
	}{
		{"empty license", Candidate{LicenseNumber: "", OwnerName: "Jane Doe", ExpirationDate: "2025-06-30"}},
		{"blank license", Candidate{LicenseNumber: "   ", OwnerName: "Jane Doe", ExpirationDate: "2025-06-30"}},
		{"empty owner", Candidate{LicenseNumber: "RN-100", OwnerName: "", ExpirationDate: "2025-06-30"}},
		{"owner normalizes to nothing", Candidate{LicenseNumber: "RN-100", OwnerName: "---", ExpirationDate: "2025-06-30"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := ClassifyCandidate(tc.candidate, existing)
			if v.IsDuplicate || v.IsRenewal || v.IsHistorical {
				t.Fatalf("expected no-signal verdict, got %+v", v)
			}
			if v.ExistingDocument != nil {
				t.Fatalf("expected no matched document, got %+v", v.ExistingDocument)
			}
		})
	}
}

func TestClassifyCandidateNewLineage(t *testing.T) {
	existing := []ExistingDocument{
		existingDoc("doc-1", "RN-100", "Jane Doe", "2025-06-30"),
		existingDoc("doc-2", "RN-200", "John Roe", "2025-06-30"),
	}

	v := ClassifyCandidate(Candidate{
		LicenseNumber:  "RN-300",
		OwnerName:      "Jane Doe",
		ExpirationDate: "2025-06-30",
	}, existing)

	if v.IsDuplicate || v.IsRenewal || v.IsHistorical {
		t.Fatalf("expected no-signal verdict for new lineage, got %+v", v)
	}
}

func TestClassifyCandidateDuplicateExactDate(t *testing.T) {
	existing := []ExistingDocument{existingDoc("doc-1", "RN-100", "Jane Doe", "2025-06-30")}

	// Same calendar day regardless of time-of-day on the candidate.
	for _, expiration := range []string{"2025-06-30", "2025-06-30T23:59:59Z", "2025-06-30T08:00:00-05:00"} {
		v := ClassifyCandidate(Candidate{
			LicenseNumber:  "RN-100",
			OwnerName:      "jane DOE",
			ExpirationDate: expiration,
		}, existing)

		if !v.IsDuplicate {
			t.Fatalf("expiration %q: expected duplicate, got %+v", expiration, v)
		}
		if v.IsRenewal {
			t.Fatalf("expiration %q: duplicate must not also be renewal", expiration)
		}
		if v.ExistingDocument == nil || v.ExistingDocument.ID != "doc-1" {
			t.Fatalf("expiration %q: expected matched doc-1, got %+v", expiration, v.ExistingDocument)
		}
	}
}

func TestClassifyCandidateDuplicateBeatsRenewal(t *testing.T) {
	// The exact-date scan runs across the whole lineage before any
	// newest-document comparison.
	existing := []ExistingDocument{
		existingDoc("doc-new", "RN-100", "Jane Doe", "2026-06-30"),
		existingDoc("doc-old", "RN-100", "Jane Doe", "2024-06-30"),
	}

	v := ClassifyCandidate(Candidate{
		LicenseNumber:  "RN-100",
		OwnerName:      "Jane Doe",
		ExpirationDate: "2024-06-30",
	}, existing)

	if !v.IsDuplicate {
		t.Fatalf("expected duplicate, got %+v", v)
	}
	if v.ExistingDocument == nil || v.ExistingDocument.ID != "doc-old" {
		t.Fatalf("expected match on doc-old, got %+v", v.ExistingDocument)
	}
}

func TestClassifyCandidateRenewal(t *testing.T) {
	existing := []ExistingDocument{
		existingDoc("doc-old", "RN-100", "Jane Doe", "2024-06-30"),
		existingDoc("doc-new", "RN-100", "Jane Doe", "2025-06-30"),
	}

	v := ClassifyCandidate(Candidate{
		LicenseNumber:  "RN-100",
		OwnerName:      "Jane Doe",
		ExpirationDate: "2026-06-30",
	}, existing)

	if !v.IsRenewal || v.IsDuplicate || v.IsHistorical {
		t.Fatalf("expected renewal, got %+v", v)
	}
	if v.ExistingDocument == nil || v.ExistingDocument.ID != "doc-new" {
		t.Fatalf("renewal must compare against newest match, got %+v", v.ExistingDocument)
	}
	if v.DocumentToMarkHistorical != "doc-new" {
		t.Fatalf("expected doc-new flagged for historical transition, got %q", v.DocumentToMarkHistorical)
	}
}

func TestClassifyCandidateHistoricalUpload(t *testing.T) {
	existing := []ExistingDocument{existingDoc("doc-1", "RN-100", "Jane Doe", "2025-06-30")}

	v := ClassifyCandidate(Candidate{
		LicenseNumber:  "RN-100",
		OwnerName:      "Jane Doe",
		ExpirationDate: "2024-01-01",
	}, existing)

	if !v.IsHistorical || v.IsDuplicate || v.IsRenewal {
		t.Fatalf("expected historical upload, got %+v", v)
	}
	if v.ExistingDocument == nil || v.ExistingDocument.ID != "doc-1" {
		t.Fatalf("expected matched doc-1, got %+v", v.ExistingDocument)
	}
	if v.DocumentToMarkHistorical != "" {
		t.Fatalf("historical upload must not signal a status transition, got %q", v.DocumentToMarkHistorical)
	}
}

func TestClassifyCandidateUnparseableDates(t *testing.T) {
	cases := []struct {
		name      string
		candidate string
		existing  string
	}{
		{"candidate empty", "", "2025-06-30"},
		{"candidate garbage", "soon", "2025-06-30"},
		{"existing empty", "2026-06-30", ""},
		{"both empty", "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			existing := []ExistingDocument{existingDoc("doc-1", "RN-100", "Jane Doe", tc.existing)}
			v := ClassifyCandidate(Candidate{
				LicenseNumber:  "RN-100",
				OwnerName:      "Jane Doe",
				ExpirationDate: tc.candidate,
			}, existing)

			if v.IsDuplicate || v.IsRenewal || v.IsHistorical {
				t.Fatalf("expected no-signal verdict when dates cannot compare, got %+v", v)
			}
		})
	}
}

func TestClassifyCandidateNullExpirationNeverNewest(t *testing.T) {
	// A match without an expiration sorts last; the dated match drives the
	// renewal comparison.
	existing := []ExistingDocument{
		existingDoc("doc-undated", "RN-100", "Jane Doe", ""),
		existingDoc("doc-dated", "RN-100", "Jane Doe", "2025-06-30"),
	}

	v := ClassifyCandidate(Candidate{
		LicenseNumber:  "RN-100",
		OwnerName:      "Jane Doe",
		ExpirationDate: "2026-06-30",
	}, existing)

	if !v.IsRenewal {
		t.Fatalf("expected renewal against dated match, got %+v", v)
	}
	if v.DocumentToMarkHistorical != "doc-dated" {
		t.Fatalf("expected doc-dated to be superseded, got %q", v.DocumentToMarkHistorical)
	}
}

func TestClassifyCandidateDoesNotMutateInput(t *testing.T) {
	existing := []ExistingDocument{
		existingDoc("doc-b", "RN-100", "Jane Doe", "2024-06-30"),
		existingDoc("doc-a", "RN-100", "Jane Doe", "2025-06-30"),
	}

	_ = ClassifyCandidate(Candidate{
		LicenseNumber:  "RN-100",
		OwnerName:      "Jane Doe",
		ExpirationDate: "2026-06-30",
	}, existing)

	if existing[0].ID != "doc-b" || existing[1].ID != "doc-a" {
		t.Fatalf("classifier reordered caller's slice: %+v", existing)
	}
}
