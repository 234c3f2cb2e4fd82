package middleware

import "github.com/gin-gonic/gin"

// SubjectKey is the gin context key holding the authenticated token subject.
const SubjectKey = "subject"

// clientKey picks the rate-limit bucket for a request: the authenticated
// subject when present, otherwise the client IP.
func clientKey(c *gin.Context) string {
	if sub := c.GetString(SubjectKey); sub != "" {
		return "sub:" + sub
	}
	ip := c.ClientIP()
	if ip == "" {
		ip = "unknown"
	}
	return "ip:" + ip
}
