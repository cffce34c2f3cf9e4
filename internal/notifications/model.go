package notifications

import "time"

// Notification alerts an org that a document has entered an urgency tier.
// The (org, document, urgency) triple is unique, so repeated scans are
// idempotent: a document nags once per tier, not once per scan.
type Notification struct {
	ID         string    `json:"id"`
	OrgID      string    `json:"-"`
	DocumentID string    `json:"documentId"`
	Urgency    string    `json:"urgency"`
	Message    string    `json:"message"`
	Read       bool      `json:"read"`
	CreatedAt  time.Time `json:"createdAt"`
}
