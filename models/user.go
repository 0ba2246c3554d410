package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// RoleAllowed is the authorization policy for role-gated routes.
func RoleAllowed(role Role, allowed []Role) bool {
	for _, a := range allowed {
		if role == a {
			return true
		}
	}
	return false
}

// Avatar references an object in object storage.
type Avatar struct {
	PublicID string `bson:"public_id" json:"public_id"`
	URL      string `bson:"url" json:"url"`
}

type User struct {
	ID                  bson.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name                string        `bson:"name" json:"name"`
	Email               string        `bson:"email" json:"email"`
	PasswordHash        string        `bson:"password,omitempty" json:"-"` // never expose
	Role                Role          `bson:"role" json:"role"`
	Avatar              *Avatar       `bson:"avatar,omitempty" json:"avatar,omitempty"`
	ResetPasswordToken  string        `bson:"resetPasswordToken,omitempty" json:"-"`
	ResetPasswordExpire *time.Time    `bson:"resetPasswordExpire,omitempty" json:"-"`
	CreatedAt           time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt           time.Time     `bson:"updatedAt" json:"updatedAt"`
}

// HasAvatar reports whether an avatar object is stored for the user.
func (u *User) HasAvatar() bool {
	return u != nil && u.Avatar != nil && u.Avatar.PublicID != ""
}

// HasPendingReset reports whether a reset token is stored and not yet expired.
func (u *User) HasPendingReset(now time.Time) bool {
	return u.ResetPasswordToken != "" && u.ResetPasswordExpire != nil && u.ResetPasswordExpire.After(now)
}
