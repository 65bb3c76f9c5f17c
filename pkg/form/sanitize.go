package form

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	textPolicyOnce sync.Once
	textPolicy     *bluemonday.Policy
)

// SanitizeHTML is a filter stripping markup from string values. Text outside
// tags is kept as typed, entities included. Non-string values pass through.
func SanitizeHTML(value any) any {
	raw, ok := value.(string)
	if !ok {
		return value
	}
	if strings.TrimSpace(raw) == "" {
		return raw
	}
	return html.UnescapeString(textSanitizer().Sanitize(raw))
}

func textSanitizer() *bluemonday.Policy {
	textPolicyOnce.Do(func() {
		textPolicy = bluemonday.StrictPolicy()
	})
	return textPolicy
}
