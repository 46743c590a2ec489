// Package endpoint resolves the base address of the prediction service.
package endpoint

import "strings"

// Resolver picks the service base URL from layered sources
type Resolver struct {
	Override string // injected at run time (env, .env, flag)
	Default  string // baked in at build time
}

// ResolveBaseURL returns the first non-empty source: override, then default.
// An empty result means relative paths against the same origin.
func (r Resolver) ResolveBaseURL() string {
	for _, candidate := range []string{r.Override, r.Default} {
		if v := strings.TrimSpace(candidate); v != "" {
			return strings.TrimRight(v, "/")
		}
	}
	return ""
}

// Join appends path to base. With an empty base the path is returned unchanged.
func Join(base, path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return strings.TrimRight(base, "/") + path
}
