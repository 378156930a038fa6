// Package slug generates URL-safe identifiers from listing names.
package slug

import (
	"crypto/rand"
	"encoding/hex"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var nonSlugRe = regexp.MustCompile(`[^a-z0-9-]+`)

// maxSlugLen bounds the name-derived portion so the full slug, including
// the "-" + 6 hex char suffix, stays under 80 characters in URLs.
const maxSlugLen = 72

// Generate creates a URL slug from a name by lowercasing, replacing
// whitespace with hyphens and appending a 6-character random hex suffix.
// Example: "Samsung Galaxy A54" -> "samsung-galaxy-a54-a3f2c1".
func Generate(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.ReplaceAll(s, " ", "-")
	s = strings.ReplaceAll(s, "_", "-")
	s = nonSlugRe.ReplaceAllString(s, "")
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	s = strings.Trim(s, "-")

	if len(s) > maxSlugLen {
		s = s[:maxSlugLen]
		s = strings.TrimRight(s, "-")
	}

	b := make([]byte, 3)
	if _, err := rand.Read(b); err != nil {
		// Extremely unlikely; fall back to a UUID fragment.
		return s + "-" + uuid.NewString()[:6]
	}
	suffix := hex.EncodeToString(b)

	if s == "" {
		return suffix
	}
	return s + "-" + suffix
}
