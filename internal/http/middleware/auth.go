// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file resolves who is calling: the client id used by the persisted
// wish limiter (the socket address, or the forwarded address when the peer
// is a trusted proxy) and, when a valid bearer token is presented, the
// authenticated subject.
// Authenticated callers bypass the wish limiter; admin routes additionally
// require the admin role.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-celebrations-backend/internal/auth"
)

const (
	ctxKeySubject = "auth.subject"
	ctxKeyRole    = "auth.role"
)

// ClientID returns the caller address used for rate limiting. Forwarding
// headers count only when the peer is one of the engine's trusted proxies
// (see gin.Engine.SetTrustedProxies); otherwise it is the socket address.
func ClientID(c *gin.Context) string {
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	return "unknown"
}

// Subject returns the authenticated subject, or "" for anonymous callers.
func Subject(c *gin.Context) string {
	return c.GetString(ctxKeySubject)
}

// IsAuthenticated reports whether Authenticate accepted a bearer token.
func IsAuthenticated(c *gin.Context) bool {
	return Subject(c) != ""
}

// Authenticate verifies an optional "Authorization: Bearer" token. Requests
// without one continue anonymously; a malformed or expired token is
// rejected with 401 rather than silently downgraded.
func Authenticate(tm *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := strings.TrimSpace(c.GetHeader("Authorization"))
		if h == "" {
			c.Next()
			return
		}
		scheme, token, found := strings.Cut(h, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || !tm.Enabled() {
			abortJSON(c, http.StatusUnauthorized, "unauthorized", "invalid authorization header")
			return
		}
		claims, err := tm.Validate(strings.TrimSpace(token))
		if err != nil {
			abortJSON(c, http.StatusUnauthorized, "unauthorized", "invalid or expired token")
			return
		}
		c.Set(ctxKeySubject, claims.Subject)
		c.Set(ctxKeyRole, claims.Role)
		// The access log and token bucket key on userID.
		c.Set("userID", claims.Subject)
		c.Next()
	}
}

// RequireAdmin rejects anonymous callers with 401 and non-admins with 403.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IsAuthenticated(c) {
			abortJSON(c, http.StatusUnauthorized, "unauthorized", "authentication required")
			return
		}
		if c.GetString(ctxKeyRole) != auth.RoleAdmin {
			abortJSON(c, http.StatusForbidden, "forbidden", "admin role required")
			return
		}
		c.Next()
	}
}

// abortJSON writes the same envelope as handlers.ErrorResponse without
// importing the handlers package.
func abortJSON(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, gin.H{
		"request_id": c.Writer.Header().Get(requestIDHeader),
		"code":       code,
		"message":    msg,
	})
}
