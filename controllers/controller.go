package controllers

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/princinho/shopitbackend/apperrors"
	"github.com/princinho/shopitbackend/database"
	"github.com/princinho/shopitbackend/mail"
	"github.com/princinho/shopitbackend/middleware"
	"github.com/princinho/shopitbackend/models"
	"github.com/princinho/shopitbackend/storage"
	"github.com/princinho/shopitbackend/utils"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// AuthController serves the account endpoints: registration, sessions,
// password recovery, profile and admin user management.
type AuthController struct {
	Users   database.UserStore
	Tokens  *utils.TokenIssuer
	Hasher  utils.PasswordHasher
	Storage storage.ObjectStorage
	Images  *storage.ImageValidator
	Mailer  mail.Sender
	Logger  *slog.Logger

	FrontendURL  string
	AvatarFolder string
	ResetTTL     time.Duration

	// Now defaults to time.Now.
	Now func() time.Time
}

func (h *AuthController) now() time.Time {
	if h.Now != nil {
		return h.Now().UTC()
	}
	return time.Now().UTC()
}

func (h *AuthController) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// sendToken issues a token for user, sets the cookie and writes {user, token}.
func (h *AuthController) sendToken(c *gin.Context, status int, user *models.User) {
	token, err := h.Tokens.Issue(user.ID.Hex())
	if err != nil {
		fail(c, apperrors.Dependency("Failed to issue token", err))
		return
	}
	h.Tokens.SetCookie(c, token)
	c.JSON(status, gin.H{"user": user, "token": token})
}

// fail hands err to the error middleware and stops the chain.
func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// bindJSON decodes the body into obj. Missing required fields are reported
// with requiredMsg.
func bindJSON(c *gin.Context, obj any, requiredMsg string) bool {
	err := c.ShouldBindJSON(obj)
	if err == nil {
		return true
	}

	var verrs validator.ValidationErrors
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &verrs):
		fail(c, apperrors.Wrap(apperrors.KindBadRequest, requiredMsg, err))
	case errors.As(err, &maxErr):
		fail(c, apperrors.Wrap(apperrors.KindTooLarge, "Request body too large", err))
	case errors.Is(err, io.EOF):
		fail(c, apperrors.Wrap(apperrors.KindBadRequest, requiredMsg, err))
	default:
		fail(c, apperrors.Wrap(apperrors.KindBadRequest, "Invalid request body", err))
	}
	return false
}

// storeError maps credential store failures onto client errors. id names
// the record in not-found messages.
func storeError(err error, id string) error {
	switch {
	case errors.Is(err, database.ErrUserNotFound):
		return apperrors.Wrap(apperrors.KindNotFound, fmt.Sprintf("User not found with id: %s", id), err)
	case errors.Is(err, database.ErrDuplicateEmail):
		return apperrors.Wrap(apperrors.KindConflict, "Duplicate email entered", err)
	case errors.Is(err, database.ErrInvalidID):
		return apperrors.Wrap(apperrors.KindNotFound, "Resource not found. Invalid: id", err)
	default:
		return apperrors.Dependency("Database error", err)
	}
}

// pathID parses the :id route parameter.
func pathID(c *gin.Context) (bson.ObjectID, string, bool) {
	raw := c.Param("id")
	id, err := database.ParseObjectID(raw)
	if err != nil {
		fail(c, storeError(err, raw))
		return bson.NilObjectID, raw, false
	}
	return id, raw, true
}

// currentUser returns the authenticated user or aborts with 401.
func currentUser(c *gin.Context) (*models.User, bool) {
	user := middleware.CurrentUser(c)
	if user == nil {
		fail(c, apperrors.Unauthenticated("Login first to access this resource"))
		return nil, false
	}
	return user, true
}
