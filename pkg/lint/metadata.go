package lint

import (
	"fmt"
	"strings"
)

// DefaultDocsBaseURL is the hosted documentation site.
const DefaultDocsBaseURL = "https://csmstyle.dev/docs/rules"

// DocsBaseURL can be overridden via config for local/offline mode.
var DocsBaseURL = DefaultDocsBaseURL

// BuildDocURL constructs a documentation URL for a rule.
func BuildDocURL(ruleID string) string {
	return fmt.Sprintf("%s/%s", DocsBaseURL, strings.ToLower(ruleID))
}

// SetDocsBaseURL overrides the default documentation base URL.
func SetDocsBaseURL(url string) {
	if url == "" {
		return
	}
	DocsBaseURL = strings.TrimSuffix(url, "/")
}

// ResetDocsBaseURL resets to the default documentation URL.
func ResetDocsBaseURL() {
	DocsBaseURL = DefaultDocsBaseURL
}

// Code returns the rule code a message starts with, or "".
func Code(message string) string {
	code, _, _ := strings.Cut(message, " ")
	return strings.TrimSuffix(code, ":")
}

// WithCode prefixes message with code unless it already starts with it.
func WithCode(code, message string) string {
	if strings.HasPrefix(message, code+" ") || message == code {
		return message
	}
	return code + " " + message
}
