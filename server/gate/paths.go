package gate

import (
	"path"
	"slices"
	"strings"
)

var (
	excludedPrefixes = []string{"/api/", "/static/"}
	excludedPaths    = []string{"/api", "/favicon.ico", "/healthz", "/metrics", "/logout"}
	staticExtensions = []string{
		".css", ".js", ".map", ".png", ".jpg", ".jpeg", ".gif", ".svg",
		".ico", ".webp", ".woff", ".woff2", ".txt",
	}
)

// Excluded reports whether the edge gate lets p through without looking at the session.
func Excluded(p string) bool {
	if slices.Contains(excludedPaths, p) {
		return true
	}
	for _, prefix := range excludedPrefixes {
		if strings.HasPrefix(p, prefix) {
			return true
		}
	}
	return slices.Contains(staticExtensions, strings.ToLower(path.Ext(p)))
}
