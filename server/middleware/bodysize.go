package middleware

import (
	"fmt"
	"net/http"
	"strings"
)

const defaultMaxBodySize = 10 * 1024 * 1024 // 10MB

// BodySizeLimit returns middleware that restricts the request body to the given
// size string (e.g. "10MB", "512KB", "1GB").
func BodySizeLimit(maxSize string) Middleware {
	size := ParseSize(maxSize, defaultMaxBodySize)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, size)
			next.ServeHTTP(w, r)
		})
	}
}

// ParseSize converts a size such as "10MB" to bytes, returning fallback when
// s is empty or malformed.
func ParseSize(s string, fallback int64) int64 {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return fallback
	}

	var multiplier int64 = 1
	for _, unit := range []struct {
		suffix string
		factor int64
	}{{"GB", 1 << 30}, {"MB", 1 << 20}, {"KB", 1 << 10}} {
		if strings.HasSuffix(s, unit.suffix) {
			multiplier = unit.factor
			s = strings.TrimSuffix(s, unit.suffix)
			break
		}
	}

	var val int64
	if _, err := fmt.Sscanf(s, "%d", &val); err != nil || val <= 0 {
		return fallback
	}
	return val * multiplier
}
