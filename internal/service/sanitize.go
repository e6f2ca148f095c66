package service

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// plainText strips markup and returns the remaining text unescaped, so "&" stays "&".
func plainText(policy *bluemonday.Policy, text string) string {
	return strings.TrimSpace(html.UnescapeString(policy.Sanitize(text)))
}
