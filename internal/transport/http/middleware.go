package httptransport

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	domainauth "glamai-server-go/internal/domain/auth"
)

// ContextUserID is the gin context key carrying the authenticated
// account ID once the session middleware has run.
const ContextUserID = "auth_user_id"

// SessionMiddleware gates a route group on the held session: the
// request must carry the session's bearer token and the token must
// not be expired. Everything else is 401.
func SessionMiddleware(store *domainauth.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			RespondError(c, http.StatusUnauthorized, "missing bearer token", nil)
			c.Abort()
			return
		}

		current, user := store.Current()
		if current == "" || token != current || !store.IsValid() {
			RespondError(c, http.StatusUnauthorized, "session is not valid", nil)
			c.Abort()
			return
		}

		if user != nil {
			c.Set(ContextUserID, user.ID)
		}
		c.Next()
	}
}

// UserID returns the authenticated account ID set by the session
// middleware, or empty when the route is not gated.
func UserID(c *gin.Context) string {
	if id, ok := c.Get(ContextUserID); ok {
		if s, ok := id.(string); ok {
			return s
		}
	}
	return ""
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(header[len("Bearer "):])
}
