package models

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func ptr[T any](v T) *T { return &v }

func TestRoleAllowed(t *testing.T) {
	assert.True(t, RoleAllowed(RoleAdmin, []Role{RoleAdmin}))
	assert.True(t, RoleAllowed(RoleUser, []Role{RoleAdmin, RoleUser}))
	assert.False(t, RoleAllowed(RoleUser, []Role{RoleAdmin}))
	assert.False(t, RoleAllowed(RoleAdmin, nil))
	assert.False(t, RoleAllowed(Role(""), []Role{RoleUser}))
}

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleUser.Valid())
	assert.True(t, RoleAdmin.Valid())
	assert.False(t, Role("owner").Valid())
}

func TestRegistrationValidate(t *testing.T) {
	tests := []struct {
		name    string
		in      Registration
		wantErr string
	}{
		{"ok", Registration{Name: "Ann", Email: "a@x.com", Password: "secret1"}, ""},
		{"missing name", Registration{Email: "a@x.com", Password: "secret1"}, "Please enter your name"},
		{"long name", Registration{Name: strings.Repeat("n", 51), Email: "a@x.com", Password: "secret1"}, "Your name cannot exceed 50 characters"},
		{"missing email", Registration{Name: "Ann", Password: "secret1"}, "Please enter your email"},
		{"bad email", Registration{Name: "Ann", Email: "nope", Password: "secret1"}, "Please enter a valid email address"},
		{"missing password", Registration{Name: "Ann", Email: "a@x.com"}, "Please enter your password"},
		{"short password", Registration{Name: "Ann", Email: "a@x.com", Password: "abc"}, "Your password must be longer than 6 characters"},
		{"long password", Registration{Name: "Ann", Email: "a@x.com", Password: strings.Repeat("p", 73)}, "Your password cannot exceed 72 bytes"},
		{"max password", Registration{Name: "Ann", Email: "a@x.com", Password: strings.Repeat("p", 72)}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.in.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantErr, err.Error())
		})
	}
}

func TestRegistrationNormalize(t *testing.T) {
	r := Registration{Name: "  Zoé ", Email: " A@X.Com "}
	r.Normalize()

	assert.Equal(t, "Zoé", r.Name)
	assert.Equal(t, "a@x.com", r.Email)
}

func TestUserPatchValidate(t *testing.T) {
	assert.NoError(t, UserPatch{}.Validate())
	assert.NoError(t, UserPatch{Name: ptr("Bob"), Role: ptr(RoleAdmin)}.Validate())

	err := UserPatch{Role: ptr(Role("owner"))}.Validate()
	require.Error(t, err)
	assert.Equal(t, "Role must be one of: user, admin", err.Error())

	err = UserPatch{Name: ptr("")}.Validate()
	require.Error(t, err)
	assert.Equal(t, "Please enter your name", err.Error())

	err = UserPatch{Email: ptr("not-an-email")}.Validate()
	require.Error(t, err)
	assert.Equal(t, "Please enter a valid email address", err.Error())
}

func TestUserPatchSetFields(t *testing.T) {
	p := UserPatch{Name: ptr("  Bob "), Email: ptr("B@X.COM")}
	p.Normalize()

	assert.False(t, p.IsEmpty())
	assert.Equal(t, bson.M{"name": "Bob", "email": "b@x.com"}, p.SetFields())
	assert.True(t, UserPatch{}.IsEmpty())
}

func TestUserHasPendingReset(t *testing.T) {
	now := time.Now()
	u := &User{}
	assert.False(t, u.HasPendingReset(now))

	u.ResetPasswordToken = "abc"
	u.ResetPasswordExpire = ptr(now.Add(time.Minute))
	assert.True(t, u.HasPendingReset(now))

	u.ResetPasswordExpire = ptr(now.Add(-time.Minute))
	assert.False(t, u.HasPendingReset(now))
}

func TestUserHasAvatar(t *testing.T) {
	var nilUser *User
	assert.False(t, nilUser.HasAvatar())
	assert.False(t, (&User{}).HasAvatar())
	assert.True(t, (&User{Avatar: &Avatar{PublicID: "shopit/avatars/a.png"}}).HasAvatar())
}
