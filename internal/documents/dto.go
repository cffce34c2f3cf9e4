package documents

import (
	"time"

	"compliance-backend/internal/compliance"
)

// DocumentView is the wire shape of a document plus its derived urgency
// facts, computed at read time so the stored record never goes stale.
type DocumentView struct {
	ID             string     `json:"id"`
	FileName       string     `json:"fileName"`
	DocumentType   string     `json:"documentType,omitempty"`
	LicenseNumber  string     `json:"licenseNumber,omitempty"`
	OwnerName      string     `json:"ownerName,omitempty"`
	ExpirationDate string     `json:"expirationDate,omitempty"`
	Status         string     `json:"status"`
	SizeBytes      int64      `json:"sizeBytes"`
	MimeType       string     `json:"mimeType,omitempty"`
	ExtractedAt    *time.Time `json:"extractedAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`

	compliance.UrgencyFacts
}

// NewDocumentView projects a stored document into its wire shape, deriving
// urgency from the expiration date as of now.
func NewDocumentView(doc Document, now time.Time) DocumentView {
	return DocumentView{
		ID:             doc.ID,
		FileName:       doc.FileName,
		DocumentType:   doc.DocumentType,
		LicenseNumber:  doc.LicenseNumber,
		OwnerName:      doc.OwnerName,
		ExpirationDate: doc.ExpirationDay(),
		Status:         doc.Status,
		SizeBytes:      doc.SizeBytes,
		MimeType:       doc.MimeType,
		ExtractedAt:    doc.ExtractedAt,
		CreatedAt:      doc.CreatedAt,
		UrgencyFacts:   compliance.ComputeUrgency(doc.ExpirationDay(), now),
	}
}
