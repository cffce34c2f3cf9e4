package extraction

import (
	"context"
	"errors"
)

// Client abstracts AI providers for compliance field extraction.
type Client interface {
	ExtractFields(ctx context.Context, input Input) (Fields, error)
}

// Input captures what the extractor works from.
type Input struct {
	Text     string
	FileName string
}

// Fields is the structured extraction result. ExpirationDate is an ISO
// calendar date or empty when the document carries none.
type Fields struct {
	DocumentType   string `json:"documentType"`
	LicenseNumber  string `json:"licenseNumber"`
	OwnerName      string `json:"ownerName"`
	ExpirationDate string `json:"expirationDate"`
}

// ErrNotImplemented is returned by the placeholder client.
var ErrNotImplemented = errors.New("extraction provider not implemented")

// PlaceholderClient is the dev fallback when no provider is configured.
type PlaceholderClient struct{}

// ExtractFields returns ErrNotImplemented.
func (PlaceholderClient) ExtractFields(ctx context.Context, input Input) (Fields, error) {
	_ = ctx
	_ = input
	return Fields{}, ErrNotImplemented
}
