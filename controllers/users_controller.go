package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/princinho/shopitbackend/apperrors"
	"github.com/princinho/shopitbackend/dto"
	"github.com/princinho/shopitbackend/models"
	"github.com/princinho/shopitbackend/storage"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// GET /api/v1/me
func (h *AuthController) GetProfile() gin.HandlerFunc {
	return func(c *gin.Context) {
		me, ok := currentUser(c)
		if !ok {
			return
		}

		user, err := h.Users.FindByID(c.Request.Context(), me.ID)
		if err != nil {
			fail(c, storeError(err, me.ID.Hex()))
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": user})
	}
}

// PUT /api/v1/password/update
func (h *AuthController) UpdatePassword() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		me, ok := currentUser(c)
		if !ok {
			return
		}

		var body dto.UpdatePasswordDTO
		if !bindJSON(c, &body, "Please enter your old password") {
			return
		}

		user, err := h.Users.FindByIDWithPassword(ctx, me.ID)
		if err != nil {
			fail(c, storeError(err, me.ID.Hex()))
			return
		}
		if err := h.Hasher.Check(user.PasswordHash, body.OldPassword); err != nil {
			fail(c, apperrors.Wrap(apperrors.KindBadRequest, "Old Password is incorrect", err))
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
		if err := h.Users.SetPassword(ctx, user.ID, hash); err != nil {
			fail(c, storeError(err, user.ID.Hex()))
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

// PUT /api/v1/me/update
func (h *AuthController) UpdateProfile() gin.HandlerFunc {
	return func(c *gin.Context) {
		me, ok := currentUser(c)
		if !ok {
			return
		}

		var body dto.UpdateProfileDTO
		if !bindJSON(c, &body, "Please enter your name or email") {
			return
		}
		h.applyPatch(c, me.ID, me.ID.Hex(), body.Patch())
	}
}

// PUT /api/v1/me/upload_avatar
//
// The new object is uploaded and saved before the previous one is removed,
// so the stored avatar always points at an existing object.
func (h *AuthController) UploadAvatar() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		me, ok := currentUser(c)
		if !ok {
			return
		}

		var body dto.AvatarDTO
		if !bindJSON(c, &body, "Please select an avatar") {
			return
		}

		data, _, err := storage.DecodeDataURL(body.Avatar)
		if err != nil {
			fail(c, apperrors.Wrap(apperrors.KindBadRequest, "Invalid avatar image", err))
			return
		}
		contentType, err := h.Images.Validate(data)
		if err != nil {
			fail(c, imageError(err))
			return
		}

		avatar, err := h.Storage.Upload(ctx, data, contentType, h.AvatarFolder)
		if err != nil {
			fail(c, apperrors.Dependency("Failed to upload avatar", err))
			return
		}

		updated, err := h.Users.SetAvatar(ctx, me.ID, *avatar)
		if err != nil {
			h.deleteObject(ctx, avatar.PublicID)
			fail(c, storeError(err, me.ID.Hex()))
			return
		}

		if me.HasAvatar() {
			h.deleteObject(ctx, me.Avatar.PublicID)
		}

		c.JSON(http.StatusOK, gin.H{"user": updated})
	}
}

// GET /api/v1/admin/users
func (h *AuthController) AllUsers() gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := h.Users.List(c.Request.Context())
		if err != nil {
			fail(c, storeError(err, ""))
			return
		}
		c.JSON(http.StatusOK, gin.H{"users": users})
	}
}

// GET /api/v1/admin/users/:id
func (h *AuthController) GetUserDetails() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, raw, ok := pathID(c)
		if !ok {
			return
		}

		user, err := h.Users.FindByID(c.Request.Context(), id)
		if err != nil {
			fail(c, storeError(err, raw))
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": user})
	}
}

// PUT /api/v1/admin/users/:id
func (h *AuthController) UpdateUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, raw, ok := pathID(c)
		if !ok {
			return
		}

		var body dto.AdminUpdateUserDTO
		if !bindJSON(c, &body, "Please enter the fields to update") {
			return
		}
		h.applyPatch(c, id, raw, body.Patch())
	}
}

// DELETE /api/v1/admin/users/:id
//
// The avatar object goes first. If storage refuses, the record is kept so
// the delete can be retried without orphaning the object.
func (h *AuthController) DeleteUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		id, raw, ok := pathID(c)
		if !ok {
			return
		}

		user, err := h.Users.FindByID(ctx, id)
		if err != nil {
			fail(c, storeError(err, raw))
			return
		}

		if user.HasAvatar() {
			if err := h.Storage.Delete(ctx, user.Avatar.PublicID); err != nil {
				fail(c, apperrors.Dependency("Failed to delete avatar", err))
				return
			}
		}

		if err := h.Users.Delete(ctx, id); err != nil {
			fail(c, storeError(err, raw))
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

func (h *AuthController) applyPatch(c *gin.Context, id bson.ObjectID, rawID string, patch models.UserPatch) {
	patch.Normalize()
	if err := patch.Validate(); err != nil {
		fail(c, apperrors.Wrap(apperrors.KindBadRequest, err.Error(), err))
		return
	}

	user, err := h.Users.Update(c.Request.Context(), id, patch)
	if err != nil {
		fail(c, storeError(err, rawID))
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// deleteObject removes an object whose loss only leaves an orphan behind.
func (h *AuthController) deleteObject(ctx context.Context, publicID string) {
	if err := h.Storage.Delete(context.WithoutCancel(ctx), publicID); err != nil {
		h.logger().WarnContext(ctx, "failed to delete avatar object", "public_id", publicID, "error", err)
	}
}

func imageError(err error) error {
	switch {
	case errors.Is(err, storage.ErrFileTooLarge):
		return apperrors.Wrap(apperrors.KindBadRequest, "Avatar image is too large", err)
	case errors.Is(err, storage.ErrUnsupportedType):
		return apperrors.Wrap(apperrors.KindBadRequest, "Avatar must be a PNG, JPEG, GIF or WebP image", err)
	default:
		return apperrors.Wrap(apperrors.KindBadRequest, "Invalid avatar image", err)
	}
}
