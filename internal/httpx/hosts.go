package httpx

import (
	"net"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// AllowedHosts rejects requests whose Host header matches none of patterns.
// "*" allows everything; ".example.com" allows example.com and any subdomain.
func AllowedHosts(patterns []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !HostAllowed(c.Request.Host, patterns) {
			Log(c).Warn().Str("host", c.Request.Host).Msg("disallowed host")
			c.String(http.StatusBadRequest, "Bad Request (400)")
			c.Abort()
			return
		}
		c.Next()
	}
}

func HostAllowed(host string, patterns []string) bool {
	host = normalizeHost(host)
	if host == "" {
		return false
	}
	for _, p := range patterns {
		p = strings.ToLower(strings.TrimSpace(p))
		switch {
		case p == "":
		case p == "*":
			return true
		case strings.HasPrefix(p, "."):
			if host == p[1:] || strings.HasSuffix(host, p) {
				return true
			}
		case host == p:
			return true
		}
	}
	return false
}

func normalizeHost(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.TrimPrefix(strings.TrimSuffix(host, "]"), "[")
	return strings.TrimSuffix(host, ".")
}
