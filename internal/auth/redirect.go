package auth

import (
	"net/url"
	"strings"
)

// DefaultLanding is where a login lands when no usable next target exists.
const DefaultLanding = "/"

// SafeNext validates a post-login redirect target. Only same-origin
// relative paths are honored; absolute URLs, protocol-relative URLs and
// anything else that could leave the site fall back to DefaultLanding.
func SafeNext(next string) string {
	if next == "" {
		return DefaultLanding
	}
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return DefaultLanding
	}
	u, err := url.Parse(next)
	if err != nil || u.IsAbs() || u.Host != "" {
		return DefaultLanding
	}
	return next
}
