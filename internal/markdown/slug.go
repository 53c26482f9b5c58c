package markdown

import (
	"math"
	"regexp"
	"strings"

	"github.com/goliatone/go-slug"
)

const contentExtension = ".md"

var datePrefix = regexp.MustCompile(`^[0-9]{4}-[0-9]{2}-[0-9]{2}-`)

// DeriveSlug maps a content file name to its slug: the ".md" extension and a
// leading "YYYY-MM-DD-" prefix are removed and nothing else changes. Directory
// components are ignored.
func DeriveSlug(filename string) string {
	if idx := strings.LastIndex(filename, "/"); idx >= 0 {
		filename = filename[idx+1:]
	}
	name := strings.TrimSuffix(filename, contentExtension)
	return datePrefix.ReplaceAllLiteralString(name, "")
}

// GenerateSlug builds a URL friendly slug from a title using go-slug's
// default normaliser.
func GenerateSlug(title string) (string, error) {
	return slug.Normalize(title)
}

// IsCanonicalSlug reports whether value already satisfies the normaliser
// rules. Derived slugs keep file name casing, so this is informational only.
func IsCanonicalSlug(value string) bool {
	return slug.IsValid(value)
}

const wordsPerMinute = 200

// ReadingTime estimates minutes to read body at 200 words per minute,
// rounded up. An empty body takes zero minutes.
func ReadingTime(body string) int {
	words := len(strings.Fields(body))
	return int(math.Ceil(float64(words) / wordsPerMinute))
}
