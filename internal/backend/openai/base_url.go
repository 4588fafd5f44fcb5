package openai

import (
	"net/url"
	"strings"
)

// normalizeBaseURL accepts the common ways users paste a gateway URL and
// canonicalizes it to end in /v1 without an endpoint suffix.
func normalizeBaseURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed == nil {
		return raw
	}

	path := strings.TrimRight(parsed.Path, "/")
	path = strings.TrimSuffix(path, "/chat/completions")
	path = strings.TrimSuffix(path, "/completions")
	path = strings.TrimRight(path, "/")
	if !strings.HasSuffix(path, "/v1") {
		path += "/v1"
	}

	parsed.Path = path
	return strings.TrimRight(parsed.String(), "/")
}
