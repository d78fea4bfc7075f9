package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"laundry-api/internal/domain"
	resp "laundry-api/internal/transport/http/response"
)

const keyUser = "user"

// Authorizer checks a bearer token against a required role.
type Authorizer interface {
	Authorize(ctx context.Context, token, role string) (*domain.User, error)
}

// RequireRole rejects the request with a single 401 body unless the bearer
// token resolves to a user holding role. The user is stored for CurrentUser.
func RequireRole(a Authorizer, role string) gin.HandlerFunc {
	msg := resp.MsgUnauthorized
	if role == domain.RoleAdmin {
		msg = resp.MsgUnauthorizedAdmin
	}
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, resp.Message(msg))
			return
		}
		u, err := a.Authorize(c.Request.Context(), token, role)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, resp.Message(msg))
			return
		}
		c.Set(keyUser, u)
		c.Next()
	}
}

// CurrentUser returns the user stored by RequireRole, if any.
func CurrentUser(c *gin.Context) (*domain.User, bool) {
	v, ok := c.Get(keyUser)
	if !ok {
		return nil, false
	}
	u, ok := v.(*domain.User)
	return u, ok
}

func bearerToken(header string) (string, bool) {
	token, ok := strings.CutPrefix(header, "Bearer ")
	token = strings.TrimSpace(token)
	return token, ok && token != ""
}
