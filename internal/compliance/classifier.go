package compliance

import (
	"sort"
	"strings"
	"time"
)

// Candidate is a freshly extracted document awaiting a classification verdict.
type Candidate struct {
	LicenseNumber  string
	OwnerName      string
	ExpirationDate string // ISO date or datetime; empty means no expiration
}

// ExistingDocument is the subset of a stored document the classifier compares
// against, plus passthrough fields callers want back for display.
type ExistingDocument struct {
	ID             string    `json:"id"`
	FileName       string    `json:"fileName,omitempty"`
	LicenseNumber  string    `json:"licenseNumber"`
	OwnerName      string    `json:"ownerName"`
	ExpirationDate string    `json:"expirationDate,omitempty"`
	Status         string    `json:"status,omitempty"`
	CreatedAt      time.Time `json:"createdAt,omitzero"`
}

// Verdict reports how a candidate relates to the tenant's stored documents.
// The zero value is the "no signal" outcome: not a duplicate, not a renewal.
type Verdict struct {
	IsDuplicate              bool              `json:"isDuplicate"`
	IsRenewal                bool              `json:"isRenewal"`
	IsHistorical             bool              `json:"isHistorical"`
	ExistingDocument         *ExistingDocument `json:"existingDocument,omitempty"`
	DocumentToMarkHistorical string            `json:"documentToMarkHistorical,omitempty"`
}

// ClassifyCandidate decides whether the candidate duplicates an existing
// document, renews the lineage, or back-fills history. It is a pure function
// over the supplied snapshot: it performs no I/O, mutates nothing, and never
// fails. Malformed input degrades to the zero verdict.
//
// The caller is responsible for acting on the verdict (reject, supersede,
// insert) and for serializing concurrent writes to the same lineage at the
// persistence boundary.
func ClassifyCandidate(candidate Candidate, existing []ExistingDocument) Verdict {
	licenseNumber := strings.TrimSpace(candidate.LicenseNumber)
	ownerNormalized := NormalizeOwnerName(candidate.OwnerName)
	if licenseNumber == "" || ownerNormalized == "" {
		return Verdict{}
	}

	matches := lineageMatches(licenseNumber, ownerNormalized, existing)
	if len(matches) == 0 {
		return Verdict{}
	}

	candidateDay, candidateOK := normalizeDay(candidate.ExpirationDate)

	// Exact-date duplicates win over everything, first match in
	// expiration-descending order.
	if candidateOK {
		for i := range matches {
			matchDay, ok := normalizeDay(matches[i].ExpirationDate)
			if ok && matchDay == candidateDay {
				matched := matches[i]
				return Verdict{
					IsDuplicate:      true,
					ExistingDocument: &matched,
				}
			}
		}
	}

	// Renewal/historical compare only against the newest existing match.
	// Matches without a parseable expiration sort last and are never
	// selected as newest.
	newest := matches[0]
	newestDay, newestOK := normalizeDay(newest.ExpirationDate)
	if !candidateOK || !newestOK {
		return Verdict{}
	}

	switch {
	case candidateDay > newestDay:
		return Verdict{
			IsRenewal:                true,
			ExistingDocument:         &newest,
			DocumentToMarkHistorical: newest.ID,
		}
	case candidateDay < newestDay:
		return Verdict{
			IsHistorical:     true,
			ExistingDocument: &newest,
		}
	default:
		return Verdict{}
	}
}

// lineageMatches filters documents sharing the candidate's license number and
// normalized owner name, ordered by expiration date descending with
// unparseable dates last.
func lineageMatches(licenseNumber, ownerNormalized string, existing []ExistingDocument) []ExistingDocument {
	var matches []ExistingDocument
	for _, doc := range existing {
		if strings.TrimSpace(doc.LicenseNumber) != licenseNumber {
			continue
		}
		if NormalizeOwnerName(doc.OwnerName) != ownerNormalized {
			continue
		}
		matches = append(matches, doc)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		di, iOK := normalizeDay(matches[i].ExpirationDate)
		dj, jOK := normalizeDay(matches[j].ExpirationDate)
		if iOK != jOK {
			return iOK
		}
		// ISO day strings order lexicographically.
		return di > dj
	})

	return matches
}

// normalizeDay truncates an ISO date or datetime string to calendar-day
// granularity (YYYY-MM-DD). Time-of-day and timezone offsets beyond the date
// portion are dropped, not converted.
func normalizeDay(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if len(s) < 10 {
		return "", false
	}
	day := s[:10]
	if _, err := time.Parse("2006-01-02", day); err != nil {
		return "", false
	}
	return day, true
}
