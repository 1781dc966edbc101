package components

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	notesPolicyOnce sync.Once
	notesPolicy     *bluemonday.Policy
)

// SanitizeNotes cleans schema-authored help text so it can be emitted as
// markup. Only inline formatting, lists and links survive.
func SanitizeNotes(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	return strings.TrimSpace(notesSanitizer().Sanitize(trimmed))
}

func notesSanitizer() *bluemonday.Policy {
	notesPolicyOnce.Do(func() {
		policy := bluemonday.StrictPolicy()
		policy.AllowElements(
			"b", "strong", "i", "em", "small", "code", "br",
			"p", "ul", "ol", "li",
		)
		policy.AllowAttrs("href", "title").OnElements("a")
		policy.AllowStandardURLs()
		policy.RequireNoFollowOnLinks(true)
		policy.AddTargetBlankToFullyQualifiedLinks(true)
		notesPolicy = policy
	})
	return notesPolicy
}
