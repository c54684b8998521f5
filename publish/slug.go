package publish

import (
	"regexp"
	"strings"
)

var (
	nonWord  = regexp.MustCompile(`[^\w\s]`)
	whiteRun = regexp.MustCompile(`\s+`)
)

// Slug derives the URL identifier from a recipe name: non-word characters
// become spaces, runs of whitespace become a single hyphen, everything is
// lowercased. Slug(Slug(x)) == Slug(x).
func Slug(name string) string {
	s := nonWord.ReplaceAllString(name, " ")
	s = whiteRun.ReplaceAllString(strings.TrimSpace(s), "-")

	return strings.ToLower(s)
}
