package orgs

import "time"

// Org is a tenant: a clinic, pharmacy, or practice whose documents and
// notifications are isolated from every other tenant.
type Org struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Plan      string    `json:"plan"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
