package middleware

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/princinho/shopitbackend/apperrors"
	"github.com/princinho/shopitbackend/database"
	"github.com/princinho/shopitbackend/models"
	"github.com/princinho/shopitbackend/utils"
)

const (
	authContextKey = "auth"

	msgLoginFirst   = "Login first to access this resource"
	msgTokenInvalid = "JSON Web Token is invalid. Try Again!!!"
	msgTokenExpired = "JSON Web Token is expired. Try Again!!!"
)

// AuthContext is the request identity resolved by Authenticate. User is nil
// when the token is valid but the account no longer exists.
type AuthContext struct {
	UserID string
	User   *models.User
}

// Authenticate resolves the caller from the token cookie, or from an
// Authorization: Bearer header when no cookie is sent.
func Authenticate(users database.UserStore, tokens *utils.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := tokenFromRequest(c)
		if raw == "" {
			abort(c, apperrors.Unauthenticated(msgLoginFirst))
			return
		}

		claims, err := tokens.Parse(raw)
		if err != nil {
			if errors.Is(err, utils.ErrTokenExpired) {
				abort(c, apperrors.Wrap(apperrors.KindUnauthenticated, msgTokenExpired, err))
				return
			}
			abort(c, apperrors.Wrap(apperrors.KindUnauthenticated, msgTokenInvalid, err))
			return
		}

		id, err := database.ParseObjectID(claims.UserID)
		if err != nil {
			abort(c, apperrors.Wrap(apperrors.KindUnauthenticated, msgTokenInvalid, err))
			return
		}

		auth := &AuthContext{UserID: claims.UserID}
		user, err := users.FindByID(c.Request.Context(), id)
		switch {
		case err == nil:
			auth.User = user
		case errors.Is(err, database.ErrUserNotFound):
		default:
			abort(c, apperrors.Dependency("Database error", fmt.Errorf("resolve token user: %w", err)))
			return
		}

		c.Set(authContextKey, auth)
		c.Next()
	}
}

// Authorize admits callers whose role is in allowed. It must run after
// Authenticate.
func Authorize(allowed ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			abort(c, apperrors.Unauthenticated(msgLoginFirst))
			return
		}
		if !models.RoleAllowed(user.Role, allowed) {
			abort(c, apperrors.Forbidden(fmt.Sprintf("Role (%s) is not allowed to access this resource", user.Role)))
			return
		}
		c.Next()
	}
}

func CurrentAuth(c *gin.Context) *AuthContext {
	v, ok := c.Get(authContextKey)
	if !ok {
		return nil
	}
	auth, _ := v.(*AuthContext)
	return auth
}

func CurrentUser(c *gin.Context) *models.User {
	if auth := CurrentAuth(c); auth != nil {
		return auth.User
	}
	return nil
}

func tokenFromRequest(c *gin.Context) string {
	if v, err := c.Cookie(utils.TokenCookieName); err == nil && v != "" {
		return v
	}
	header := c.GetHeader("Authorization")
	if after, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(after)
	}
	return ""
}

func abort(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
