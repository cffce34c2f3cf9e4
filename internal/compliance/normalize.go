package compliance

import (
	"regexp"
	"strings"
)

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]`)

// NormalizeOwnerName lowercases the name and strips every character outside
// [a-z0-9]. Diacritics and other non-ASCII letters are removed, not folded,
// so comparisons are collation- and locale-independent. The projection is
// stored on document records as owner_normalized.
func NormalizeOwnerName(name string) string {
	return nonAlphanumeric.ReplaceAllString(strings.ToLower(name), "")
}
