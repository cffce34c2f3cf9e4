package documents

import (
	"time"

	"compliance-backend/internal/compliance"
)

// Document lifecycle states. A document is pending until extraction fills in
// its license fields; renewals transition the superseded record from active
// to historical.
const (
	StatusPending    = "pending"
	StatusActive     = "active"
	StatusHistorical = "historical"
)

// Document represents an uploaded regulatory document owned by an org.
type Document struct {
	ID               string
	OrgID            string
	FileName         string
	OriginalFilename string
	MimeType         string
	ContentType      string
	SizeBytes        int64
	StorageProvider  string
	StorageKey       string
	DocumentType     string
	LicenseNumber    string
	OwnerName        string
	OwnerNormalized  string
	ExpirationDate   *time.Time
	Status           string
	ExtractedAt      *time.Time
	CreatedAt        time.Time
}

// ExtractedFields is the structured result of field extraction applied to a
// pending document.
type ExtractedFields struct {
	DocumentType   string
	LicenseNumber  string
	OwnerName      string
	ExpirationDate *time.Time
	ExtractedAt    time.Time
}

func (f ExtractedFields) ownerNormalized() string {
	return compliance.NormalizeOwnerName(f.OwnerName)
}

// ExpirationDay renders the expiration at calendar-day granularity, or ""
// when the document does not expire.
func (d Document) ExpirationDay() string {
	if d.ExpirationDate == nil {
		return ""
	}
	return d.ExpirationDate.Format("2006-01-02")
}

// AsExisting projects the document into the classifier's comparison shape.
func (d Document) AsExisting() compliance.ExistingDocument {
	return compliance.ExistingDocument{
		ID:             d.ID,
		FileName:       d.FileName,
		LicenseNumber:  d.LicenseNumber,
		OwnerName:      d.OwnerName,
		ExpirationDate: d.ExpirationDay(),
		Status:         d.Status,
		CreatedAt:      d.CreatedAt,
	}
}
