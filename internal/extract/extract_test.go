package extract

import (
	"context"
	"strings"
	"testing"
)

func TestTextFromBytes_UnsupportedMimeRejected(t *testing.T) {
	_, err := TextFromBytes(context.Background(), []byte("hello"), "image/png", "scan.png")
	if err == nil {
		t.Fatal("expected unsupported mime error")
	}
	if !strings.Contains(err.Error(), "unsupported mime type") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNormalizeMimeTypeFallsBackToExtension(t *testing.T) {
	cases := []struct {
		mime     string
		fileName string
		want     string
	}{
		{"application/pdf", "license.pdf", mimePDF},
		{"application/pdf; charset=binary", "license.pdf", mimePDF},
		{"application/octet-stream", "license.pdf", mimePDF},
		{"application/zip", "license.docx", mimeDOCX},
		{"", "license.doc", mimeDOC},
		{"application/octet-stream", "license.bin", "application/octet-stream"},
	}
	for _, tc := range cases {
		if got := normalizeMimeType(tc.mime, tc.fileName); got != tc.want {
			t.Errorf("normalizeMimeType(%q, %q) = %q, want %q", tc.mime, tc.fileName, got, tc.want)
		}
	}
}

func TestStripDocxXMLInsertsParagraphBreaks(t *testing.T) {
	raw := `<w:document><w:body><w:p><w:r><w:t>Registered Nurse License</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t>Expires: 2027-06-30</w:t></w:r></w:p></w:body></w:document>`
	got := stripDocxXML(raw)
	want := "Registered Nurse License\nExpires: 2027-06-30"
	if got != want {
		t.Fatalf("stripDocxXML = %q, want %q", got, want)
	}
}

func TestTextFromBytes_EmptyPDFRejected(t *testing.T) {
	if _, err := TextFromBytes(context.Background(), nil, "application/pdf", "empty.pdf"); err == nil {
		t.Fatal("expected error for empty pdf payload")
	}
}
