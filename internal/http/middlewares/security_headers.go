package middlewares

import (
	"github.com/gin-gonic/gin"
)

const (
	defaultCSP = "default-src 'none'"
	// html pages load Chart.js and fonts from CDNs and use inline scripts.
	pageCSP = "default-src 'self'; base-uri 'none'; frame-ancestors 'none'; object-src 'none'; connect-src 'self'; img-src 'self' data: https:; font-src 'self' https://fonts.gstatic.com data:; style-src 'self' 'unsafe-inline' https://fonts.googleapis.com https://cdn.jsdelivr.net; script-src 'self' 'unsafe-inline' https://cdn.jsdelivr.net"
)

// SecurityHeaders sets hardening headers. Paths in pages get a CSP that lets
// the browser UI run; everything else is API only.
func SecurityHeaders(pages ...string) gin.HandlerFunc {
	pagePaths := make(map[string]struct{}, len(pages))
	for _, p := range pages {
		pagePaths[p] = struct{}{}
	}

	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "no-referrer")
		c.Header("X-XSS-Protection", "0")
		if _, ok := pagePaths[c.Request.URL.Path]; ok {
			c.Header("Content-Security-Policy", pageCSP)
		} else {
			c.Header("Content-Security-Policy", defaultCSP)
		}
		c.Next()
	}
}
