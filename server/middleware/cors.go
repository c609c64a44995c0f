package middleware

import (
	"net/http"
	"strings"
)

// CORSConfig holds CORS middleware configuration.
type CORSConfig struct {
	AllowedOrigins   []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	AllowedMethods   []string `yaml:"allowed_methods" mapstructure:"allowed_methods"`
	AllowedHeaders   []string `yaml:"allowed_headers" mapstructure:"allowed_headers"`
	AllowCredentials bool     `yaml:"allow_credentials" mapstructure:"allow_credentials"`
}

// corsPolicy is a CORSConfig compiled once per middleware.
type corsPolicy struct {
	anyOrigin   bool
	origins     map[string]struct{}
	methods     string
	headers     string
	credentials bool
}

func compileCORS(cfg *CORSConfig) *corsPolicy {
	p := &corsPolicy{
		origins:     make(map[string]struct{}, len(cfg.AllowedOrigins)),
		methods:     strings.Join(cfg.AllowedMethods, ", "),
		headers:     strings.Join(cfg.AllowedHeaders, ", "),
		credentials: cfg.AllowCredentials,
	}
	for _, o := range cfg.AllowedOrigins {
		if o == "*" {
			p.anyOrigin = true
		}
		p.origins[o] = struct{}{}
	}
	return p
}

func (p *corsPolicy) allows(origin string) bool {
	if origin == "" {
		return false
	}
	if p.anyOrigin {
		return true
	}
	_, ok := p.origins[origin]
	return ok
}

// apply echoes an allowed origin with the configured methods and headers.
func (p *corsPolicy) apply(h http.Header, origin string) {
	h.Add("Vary", "Origin")
	if !p.allows(origin) {
		return
	}
	h.Set("Access-Control-Allow-Origin", origin)
	if p.methods != "" {
		h.Set("Access-Control-Allow-Methods", p.methods)
	}
	if p.headers != "" {
		h.Set("Access-Control-Allow-Headers", p.headers)
	}
	if p.credentials {
		h.Set("Access-Control-Allow-Credentials", "true")
	}
}

// CORS sets CORS headers and answers preflight requests with 204. An
// OPTIONS request without Access-Control-Request-Method is not a preflight
// and reaches the handler.
func CORS(cfg *CORSConfig) Middleware {
	policy := compileCORS(cfg)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			policy.apply(w.Header(), r.Header.Get("Origin"))
			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
