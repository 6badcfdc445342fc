// Package sanitize cleans user-supplied text before it is stored. Names end up
// in other applications' pages and notifications, so they are reduced to
// plain text with bluemonday's strict policy.
package sanitize

import (
	"html"
	"strings"
	"sync"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
)

// policy is the shared strict policy. bluemonday policies are safe for
// concurrent use once built.
var (
	policy     *bluemonday.Policy
	policyOnce sync.Once
)

func getPolicy() *bluemonday.Policy {
	policyOnce.Do(func() {
		policy = bluemonday.StrictPolicy()
	})
	return policy
}

// maxPasses bounds how many layers of entity encoding PlainText unwraps.
const maxPasses = 4

// PlainText strips every HTML element from input, decodes entities back to
// characters, drops control characters and collapses runs of whitespace.
// Entity-encoded markup such as "&lt;b&gt;" is decoded and stripped too, and
// any angle bracket left after the last pass is removed, so the result never
// contains a tag.
func PlainText(input string) string {
	if input == "" {
		return ""
	}

	stripped := input
	for i := 0; i < maxPasses; i++ {
		next := html.UnescapeString(getPolicy().Sanitize(stripped))
		if next == stripped {
			break
		}
		stripped = next
	}

	stripped = strings.Map(func(r rune) rune {
		switch {
		case r == '<' || r == '>':
			return -1
		case unicode.IsControl(r):
			return ' '
		}
		return r
	}, stripped)

	return strings.Join(strings.Fields(stripped), " ")
}
