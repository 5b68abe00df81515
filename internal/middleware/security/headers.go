package security

import (
	"fmt"
	"net/http"
)

// HeadersConfig holds security headers configuration
type HeadersConfig struct {
	// Content Security Policy
	CSP string

	// HSTS settings, applied to TLS requests only
	HSTSMaxAge            int
	HSTSIncludeSubdomains bool

	XFrameOptions       string
	XContentTypeOptions string
	ReferrerPolicy      string
	CrossOriginResource string

	// NoStore marks every response as uncacheable. The API serves
	// per-user financial data, so this is on by default.
	NoStore bool
}

// DefaultHeadersConfig returns defaults for a JSON API that never serves
// documents or scripts.
func DefaultHeadersConfig() HeadersConfig {
	return HeadersConfig{
		CSP:                   "default-src 'none'; frame-ancestors 'none'",
		HSTSMaxAge:            31536000, // 1 year
		HSTSIncludeSubdomains: true,
		XFrameOptions:         "DENY",
		XContentTypeOptions:   "nosniff",
		ReferrerPolicy:        "no-referrer",
		CrossOriginResource:   "same-origin",
		NoStore:               true,
	}
}

// Headers returns middleware that applies config to every response.
func Headers(config HeadersConfig) func(http.Handler) http.Handler {
	hsts := ""
	if config.HSTSMaxAge > 0 {
		hsts = fmt.Sprintf("max-age=%d", config.HSTSMaxAge)
		if config.HSTSIncludeSubdomains {
			hsts += "; includeSubDomains"
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			setIf(h, "X-Content-Type-Options", config.XContentTypeOptions)
			setIf(h, "X-Frame-Options", config.XFrameOptions)
			setIf(h, "Content-Security-Policy", config.CSP)
			setIf(h, "Referrer-Policy", config.ReferrerPolicy)
			setIf(h, "Cross-Origin-Resource-Policy", config.CrossOriginResource)
			if config.NoStore {
				h.Set("Cache-Control", "no-store")
			}
			if r.TLS != nil && hsts != "" {
				h.Set("Strict-Transport-Security", hsts)
			}
			next.ServeHTTP(w, r)
		})
	}
}

func setIf(h http.Header, key, value string) {
	if value != "" {
		h.Set(key, value)
	}
}
