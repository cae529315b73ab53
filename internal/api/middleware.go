package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Identity is established by an upstream gateway and forwarded in headers;
// this service trusts them as-is.
const (
	headerUserID   = "X-User-ID"
	headerUserRole = "X-User-Role"

	ctxKeyUserID   = "userID"
	ctxKeyUserRole = "userRole"

	roleModerator = "moderator"
	roleAdmin     = "admin"
)

// Identity extracts the forwarded user identity into the request context
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw := c.GetHeader(headerUserID); raw != "" {
			if id, err := strconv.ParseInt(raw, 10, 64); err == nil && id > 0 {
				c.Set(ctxKeyUserID, id)
			}
		}
		if role := c.GetHeader(headerUserRole); role != "" {
			c.Set(ctxKeyUserRole, role)
		}
		c.Next()
	}
}

// currentUserID returns the authenticated user id, if any
func currentUserID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(ctxKeyUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

// requireUser aborts with 403 when no identity was forwarded
func requireUser(c *gin.Context) (int64, bool) {
	id, ok := currentUserID(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error":   "forbidden",
			"message": "authenticated user required",
		})
		return 0, false
	}
	return id, true
}

// isModerator reports whether the forwarded role grants moderation rights
func isModerator(c *gin.Context) bool {
	v, ok := c.Get(ctxKeyUserRole)
	if !ok {
		return false
	}
	role, _ := v.(string)
	return role == roleModerator || role == roleAdmin
}

// RequireModerator guards moderation routes
func RequireModerator() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !isModerator(c) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":   "forbidden",
				"message": "moderator role required",
			})
			return
		}
		c.Next()
	}
}

// quotaKey identifies the requester for rate limiting: user id when
// authenticated, client address otherwise.
func quotaKey(c *gin.Context) string {
	if id, ok := currentUserID(c); ok {
		return strconv.FormatInt(id, 10)
	}
	return c.ClientIP()
}
