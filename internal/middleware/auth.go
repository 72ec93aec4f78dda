package middleware

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const CurrentUserIDKey = "current_user_id"

// LoadUser reads the authenticated user id from the session, if any,
// and sets it on the request context. Authentication itself belongs to
// the host application; this module only consumes the identity.
func LoadUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)

		switch id := session.Get("user_id").(type) {
		case uint:
			c.Set(CurrentUserIDKey, id)
		case int:
			if id > 0 {
				c.Set(CurrentUserIDKey, uint(id))
			}
		case int64:
			if id > 0 {
				c.Set(CurrentUserIDKey, uint(id))
			}
		}

		c.Next()
	}
}

// CurrentUserID returns the authenticated user id from the context, or
// nil for guests.
func CurrentUserID(c *gin.Context) *uint {
	if v, exists := c.Get(CurrentUserIDKey); exists {
		if id, ok := v.(uint); ok {
			return &id
		}
	}
	return nil
}
