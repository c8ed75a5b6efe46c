package middleware

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

// RealIP stores the client IP in the Gin context under "real_ip".
// With trustProxyHeaders it prefers CF-Connecting-IP, then the left-most
// X-Forwarded-For entry, then c.ClientIP(). Without it only the socket peer
// address is used, so request headers cannot pick the key.
func RealIP(trustProxyHeaders bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var ip string
		if trustProxyHeaders {
			ip = firstValidIP(
				c.GetHeader("CF-Connecting-IP"),
				strings.SplitN(c.GetHeader("X-Forwarded-For"), ",", 2)[0],
			)
			if ip == "" {
				ip = c.ClientIP()
			}
		} else {
			ip = c.RemoteIP()
		}
		c.Set("real_ip", ip)
		c.Next()
	}
}

func firstValidIP(candidates ...string) string {
	for _, s := range candidates {
		if ip := net.ParseIP(strings.TrimSpace(s)); ip != nil {
			return ip.String()
		}
	}
	return ""
}
