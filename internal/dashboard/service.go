package dashboard

import (
	"context"

	"compliance-backend/internal/compliance"
	"compliance-backend/internal/documents"
	"compliance-backend/internal/usage"
)

// Penalty weights for the audit readiness score. Expired documents hurt the
// most; low-urgency documents cost nothing.
const (
	penaltyExpired  = 25
	penaltyCritical = 10
	penaltyHigh     = 5
	penaltyMedium   = 2
)

// Card is one document on the expiration dashboard.
type Card = documents.DocumentView

// Summary is the dashboard payload: documents bucketed by urgency tier plus
// aggregate counts and the audit readiness score.
type Summary struct {
	TotalActive int `json:"totalActive"`
	Expired     int `json:"expired"`

	Counts map[string]int    `json:"counts"`
	Cards  map[string][]Card `json:"cards"`

	AuditScore int          `json:"auditScore"`
	Usage      *usage.Usage `json:"usage,omitempty"`
}

// Service assembles the dashboard from active documents.
type Service struct {
	Docs  *documents.Service
	Usage *usage.Service
}

// Summary builds the per-org dashboard.
func (s *Service) Summary(ctx context.Context, orgID string) (Summary, error) {
	views, err := s.Docs.Current(ctx, orgID)
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{
		TotalActive: len(views),
		Counts: map[string]int{
			string(compliance.UrgencyCritical): 0,
			string(compliance.UrgencyHigh):     0,
			string(compliance.UrgencyMedium):   0,
			string(compliance.UrgencyLow):      0,
		},
		Cards: map[string][]Card{},
	}

	for _, view := range views {
		if !view.IsValidNow {
			summary.Expired++
		}
		if view.UrgencyLevel == nil {
			// Never-expiring documents sit in the low bucket.
			summary.Counts[string(compliance.UrgencyLow)]++
			summary.Cards[string(compliance.UrgencyLow)] = append(summary.Cards[string(compliance.UrgencyLow)], view)
			continue
		}
		tier := string(*view.UrgencyLevel)
		summary.Counts[tier]++
		summary.Cards[tier] = append(summary.Cards[tier], view)
	}

	summary.AuditScore = auditScore(views)

	if s.Usage != nil {
		if u, err := s.Usage.Get(ctx, orgID); err == nil {
			summary.Usage = &u
		}
	}

	return summary, nil
}

// auditScore starts at 100 and subtracts a weighted penalty per document in
// an at-risk tier, flooring at 0. Expired documents count as expired, not
// also as critical.
func auditScore(views []documents.DocumentView) int {
	score := 100
	for _, view := range views {
		switch {
		case !view.IsValidNow:
			score -= penaltyExpired
		case view.UrgencyLevel == nil:
			// never expires
		case *view.UrgencyLevel == compliance.UrgencyCritical:
			score -= penaltyCritical
		case *view.UrgencyLevel == compliance.UrgencyHigh:
			score -= penaltyHigh
		case *view.UrgencyLevel == compliance.UrgencyMedium:
			score -= penaltyMedium
		}
	}
	if score < 0 {
		score = 0
	}
	return score
}
