package controllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/princinho/shopitbackend/apperrors"
	"github.com/princinho/shopitbackend/database"
	"github.com/princinho/shopitbackend/dto"
	"github.com/princinho/shopitbackend/mail"
	"github.com/princinho/shopitbackend/models"
	"github.com/princinho/shopitbackend/utils"
)

const (
	msgInvalidCredentials = "Invalid email or password"
	msgInvalidResetToken  = "Password reset token is invalid or has been expired"
)

// POST /api/v1/register
func (h *AuthController) Register() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.RegisterDTO
		if !bindJSON(c, &body, "Please enter your name, email & password") {
			return
		}

		reg := models.Registration{Name: body.Name, Email: body.Email, Password: body.Password}
		reg.Normalize()
		if err := reg.Validate(); err != nil {
			fail(c, apperrors.Wrap(apperrors.KindBadRequest, err.Error(), err))
			return
		}

		hash, err := h.Hasher.Hash(reg.Password)
		if err != nil {
			fail(c, apperrors.Dependency("Failed to hash password", err))
			return
		}

		user := &models.User{
			Name:         reg.Name,
			Email:        reg.Email,
			PasswordHash: hash,
			Role:         models.RoleUser,
		}
		if err := h.Users.Create(c.Request.Context(), user); err != nil {
			fail(c, storeError(err, ""))
			return
		}
		user.PasswordHash = ""

		h.sendToken(c, http.StatusCreated, user)
	}
}

// POST /api/v1/login
func (h *AuthController) Login() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.LoginDTO
		if !bindJSON(c, &body, "Please enter your email & password") {
			return
		}

		user, err := h.Users.FindByEmailWithPassword(c.Request.Context(), body.Email)
		if err != nil {
			if errors.Is(err, database.ErrUserNotFound) {
				// Same bcrypt cost as a real mismatch so timing does not reveal the account.
				h.Hasher.CheckDummy(body.Password)
				fail(c, apperrors.Unauthenticated(msgInvalidCredentials))
				return
			}
			fail(c, storeError(err, ""))
			return
		}

		if err := h.Hasher.Check(user.PasswordHash, body.Password); err != nil {
			if !errors.Is(err, utils.ErrPasswordMismatch) {
				h.logger().WarnContext(c.Request.Context(), "stored password hash unusable", "user_id", user.ID.Hex(), "error", err)
			}
			fail(c, apperrors.Unauthenticated(msgInvalidCredentials))
			return
		}
		user.PasswordHash = ""

		h.sendToken(c, http.StatusOK, user)
	}
}

// GET /api/v1/logout
func (h *AuthController) Logout() gin.HandlerFunc {
	return func(c *gin.Context) {
		h.Tokens.ClearCookie(c)
		c.JSON(http.StatusOK, gin.H{"message": "Logged Out"})
	}
}

// POST /api/v1/password/forgot
//
// The reset fields are rolled back when the email cannot be sent so a
// failed request leaves no live token behind.
func (h *AuthController) ForgotPassword() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		var body dto.ForgotPasswordDTO
		if !bindJSON(c, &body, "Please enter your email") {
			return
		}

		user, err := h.Users.FindByEmail(ctx, body.Email)
		if err != nil {
			if errors.Is(err, database.ErrUserNotFound) {
				fail(c, apperrors.Wrap(apperrors.KindNotFound, "User not found with this email", err))
				return
			}
			fail(c, storeError(err, ""))
			return
		}

		reset, err := utils.NewResetToken(h.now(), h.ResetTTL)
		if err != nil {
			fail(c, apperrors.Dependency("Failed to generate reset token", err))
			return
		}
		if err := h.Users.SetResetToken(ctx, user.ID, reset.Hash, reset.Expire); err != nil {
			fail(c, storeError(err, user.ID.Hex()))
			return
		}

		resetURL := fmt.Sprintf("%s/password/reset/%s", h.FrontendURL, reset.Raw)
		html, err := mail.ResetPasswordTemplate(user.Name, resetURL)
		if err == nil {
			err = h.Mailer.Send(ctx, mail.Message{
				To:      user.Email,
				Subject: mail.ResetPasswordSubject,
				Body:    html,
			})
		}
		if err != nil {
			// The request context may already be done; the rollback gets its own.
			if clearErr := h.Users.ClearResetToken(context.WithoutCancel(ctx), user.ID); clearErr != nil {
				h.logger().ErrorContext(ctx, "failed to clear reset token after send failure",
					"user_id", user.ID.Hex(), "error", clearErr)
			}
			fail(c, apperrors.Dependency(err.Error(), err))
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Email sent to %s", user.Email)})
	}
}

// PUT /api/v1/password/reset/:token
func (h *AuthController) ResetPassword() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		tokenHash := utils.HashResetToken(c.Param("token"))
		user, err := h.Users.FindByResetToken(ctx, tokenHash, h.now())
		if err != nil {
			if errors.Is(err, database.ErrUserNotFound) {
				fail(c, apperrors.Wrap(apperrors.KindBadRequest, msgInvalidResetToken, err))
				return
			}
			fail(c, storeError(err, ""))
			return
		}

		var body dto.ResetPasswordDTO
		if !bindJSON(c, &body, "Please enter your password") {
			return
		}
		if body.Password != body.ConfirmPassword {
			fail(c, apperrors.BadRequest("Password does not match"))
			return
		}
		if err := models.ValidatePassword(body.Password); err != nil {
			fail(c, apperrors.Wrap(apperrors.KindBadRequest, err.Error(), err))
			return
		}

		hash, err := h.Hasher.Hash(body.Password)
		if err != nil {
			fail(c, apperrors.Dependency("Failed to hash password", err))
			return
		}
		// Another request may have consumed the token since the lookup.
		updated, err := h.Users.CompleteReset(ctx, user.ID, tokenHash, h.now(), hash)
		if err != nil {
			if errors.Is(err, database.ErrUserNotFound) {
				fail(c, apperrors.Wrap(apperrors.KindBadRequest, msgInvalidResetToken, err))
				return
			}
			fail(c, storeError(err, user.ID.Hex()))
			return
		}

		h.sendToken(c, http.StatusOK, updated)
	}
}
