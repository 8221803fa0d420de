package middleware

import (
	"net/http"
	"net/url"
	"strings"
)

const (
	corsAllowHeaders = "Authorization, Content-Type, X-Internal-Key, X-Requested-With"
	corsAllowMethods = "GET,OPTIONS"
)

// CORS libera origens exatas ou subdomínios declarados como *.dominio.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	policy := newOriginPolicy(allowedOrigins)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if policy.allows(origin) {
				h := w.Header()
				h.Set("Access-Control-Allow-Origin", origin)
				h.Add("Vary", "Origin")
				h.Set("Access-Control-Allow-Credentials", "true")
				h.Set("Access-Control-Allow-Headers", corsAllowHeaders)
				h.Set("Access-Control-Allow-Methods", corsAllowMethods)
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

type originPolicy struct {
	exact    map[string]struct{}
	suffixes []string
}

func newOriginPolicy(entries []string) originPolicy {
	p := originPolicy{exact: make(map[string]struct{}, len(entries))}
	for _, entry := range entries {
		e := strings.TrimSpace(entry)
		switch {
		case e == "":
		case strings.HasPrefix(e, "*."):
			p.suffixes = append(p.suffixes, strings.ToLower(strings.TrimPrefix(e, "*")))
		default:
			p.exact[e] = struct{}{}
		}
	}
	return p
}

// allows exige subdomínio real para curingas: *.exemplo.com não libera exemplo.com.
func (p originPolicy) allows(origin string) bool {
	if origin == "" {
		return false
	}
	if _, ok := p.exact[origin]; ok {
		return true
	}
	if len(p.suffixes) == 0 {
		return false
	}

	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, suffix := range p.suffixes {
		if strings.HasSuffix(host, suffix) && host != strings.TrimPrefix(suffix, ".") {
			return true
		}
	}
	return false
}
