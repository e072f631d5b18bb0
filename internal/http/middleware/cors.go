package middleware

import (
	"net/http"
	"strings"
)

const (
	corsAllowMethods  = "GET, POST"
	corsAllowHeaders  = "Content-Type, X-Request-ID"
	corsExposeHeaders = "Retry-After, X-Request-ID"
	corsMaxAge        = "600"
)

// corsPolicy is the set of browser origins allowed to submit nominations.
type corsPolicy struct {
	any     bool
	origins map[string]struct{}
}

func newCORSPolicy(allowedOrigins []string) corsPolicy {
	p := corsPolicy{origins: map[string]struct{}{}}
	for _, origin := range allowedOrigins {
		origin = strings.TrimRight(strings.TrimSpace(origin), "/")
		switch origin {
		case "":
		case "*":
			p.any = true
		default:
			p.origins[origin] = struct{}{}
		}
	}
	return p
}

func (p corsPolicy) allows(origin string) bool {
	if origin == "" {
		return false
	}
	if p.any {
		return true
	}
	_, ok := p.origins[origin]
	return ok
}

// CORS lets the landing site call /nominate from the browser. Origins come
// from CORS_ALLOWED_ORIGINS; "*" echoes any Origin back. Preflights are
// answered here and never reach the handler or the rate limiter, so mount
// CORS ahead of RateLimit.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	policy := newCORSPolicy(allowedOrigins)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := strings.TrimSpace(r.Header.Get("Origin"))
			allowed := policy.allows(origin)
			if origin != "" {
				w.Header().Add("Vary", "Origin")
			}

			requested := r.Header.Get("Access-Control-Request-Method")
			if r.Method == http.MethodOptions && origin != "" && requested != "" {
				switch {
				case !allowed:
					w.WriteHeader(http.StatusForbidden)
				case requested != http.MethodGet && requested != http.MethodPost:
					w.Header().Set("Allow", corsAllowMethods)
					w.WriteHeader(http.StatusMethodNotAllowed)
				default:
					w.Header().Set("Access-Control-Allow-Origin", origin)
					w.Header().Set("Access-Control-Allow-Methods", corsAllowMethods)
					w.Header().Set("Access-Control-Allow-Headers", corsAllowHeaders)
					w.Header().Set("Access-Control-Max-Age", corsMaxAge)
					w.WriteHeader(http.StatusNoContent)
				}
				return
			}

			if allowed {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Expose-Headers", corsExposeHeaders)
			}
			next.ServeHTTP(w, r)
		})
	}
}
