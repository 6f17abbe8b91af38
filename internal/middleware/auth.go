package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/discussion-system/discussion-system/internal/models"
	"github.com/discussion-system/discussion-system/internal/services"
	"github.com/gin-gonic/gin"
)

const currentUserKey = "current_user"

// Authenticator resolves a bearer token to the user it was issued for.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// RequireAuth rejects requests without a valid bearer token and stores the
// authenticated user on the context.
func RequireAuth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			Unauthorized(c, "Could not validate credentials")
			return
		}

		user, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil && !errors.Is(err, services.ErrUnauthenticated) {
			_ = c.Error(err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		if err != nil || user == nil {
			Unauthorized(c, "Could not validate credentials")
			return
		}

		c.Set(currentUserKey, user)
		c.Next()
	}
}

// Unauthorized aborts with 401 and a bearer challenge.
func Unauthorized(c *gin.Context, message string) {
	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": message})
}

// GetCurrentUser returns the user set by RequireAuth, or nil.
func GetCurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get(currentUserKey)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
