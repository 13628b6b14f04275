// Extracts and normalizes Notion page identifiers.

package notion

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// ErrInvalidPageURL is returned when a URL does not embed a page identifier.
var ErrInvalidPageURL = errors.New("no page identifier found in URL")

// pageIDPattern matches the 32 hex digits Notion appends to page URLs.
var pageIDPattern = regexp.MustCompile(`[a-fA-F0-9]{32}`)

// ExtractPageID returns the first 32-hex-character run found in rawURL.
//
// Dashed identifiers are not recognized, matching the URLs Notion's share
// button produces.
func ExtractPageID(rawURL string) (string, error) {
	id := pageIDPattern.FindString(rawURL)
	if id == "" {
		return "", ErrInvalidPageURL
	}
	return id, nil
}

// CanonicalID formats a block identifier as a lower-case dashed UUID.
func CanonicalID(id string) (string, error) {
	u, err := uuid.Parse(id)
	if err != nil {
		return "", fmt.Errorf("invalid block id %q: %w", id, err)
	}
	return u.String(), nil
}

// CompactID strips the dashes from a block identifier.
func CompactID(id string) string {
	return strings.ReplaceAll(id, "-", "")
}
