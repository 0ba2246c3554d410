package models

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"go.mongodb.org/mongo-driver/v2/bson"
	"golang.org/x/text/unicode/norm"
)

const (
	MaxNameLength     = 50
	MinPasswordLength = 6
	// bcrypt rejects longer input.
	MaxPasswordBytes = 72
)

var (
	nameRules = []validation.Rule{
		validation.RuneLength(1, MaxNameLength).Error("Your name cannot exceed 50 characters"),
	}
	emailRules = []validation.Rule{
		is.Email.Error("Please enter a valid email address"),
	}
)

// NormalizeName trims and NFC-normalizes a display name so visually equal
// names are stored identically.
func NormalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidatePassword applies the password policy.
func ValidatePassword(password string) error {
	if password == "" {
		return errors.New("Please enter your password")
	}
	if len(password) < MinPasswordLength {
		return errors.New("Your password must be longer than 6 characters")
	}
	if len(password) > MaxPasswordBytes {
		return errors.New("Your password cannot exceed 72 bytes")
	}
	return nil
}

// Registration is the input of a new account.
type Registration struct {
	Name     string
	Email    string
	Password string
}

func (r *Registration) Normalize() {
	r.Name = NormalizeName(r.Name)
	r.Email = NormalizeEmail(r.Email)
}

func (r Registration) Validate() error {
	err := validation.ValidateStruct(&r,
		validation.Field(&r.Name, append([]validation.Rule{validation.Required.Error("Please enter your name")}, nameRules...)...),
		validation.Field(&r.Email, append([]validation.Rule{validation.Required.Error("Please enter your email")}, emailRules...)...),
	)
	if err != nil {
		return firstError(err, "Name", "Email")
	}
	return ValidatePassword(r.Password)
}

// UserPatch holds the mutable profile fields. Nil fields are left unchanged.
// Role is only settable by admins.
type UserPatch struct {
	Name  *string
	Email *string
	Role  *Role
}

func (p *UserPatch) Normalize() {
	if p.Name != nil {
		n := NormalizeName(*p.Name)
		p.Name = &n
	}
	if p.Email != nil {
		e := NormalizeEmail(*p.Email)
		p.Email = &e
	}
}

func (p UserPatch) Validate() error {
	err := validation.ValidateStruct(&p,
		validation.Field(&p.Name, append([]validation.Rule{validation.NilOrNotEmpty.Error("Please enter your name")}, nameRules...)...),
		validation.Field(&p.Email, append([]validation.Rule{validation.NilOrNotEmpty.Error("Please enter your email")}, emailRules...)...),
		validation.Field(&p.Role,
			validation.NilOrNotEmpty.Error("Please select a role"),
			validation.In(RoleUser, RoleAdmin).Error("Role must be one of: user, admin"),
		),
	)
	if err != nil {
		return firstError(err, "Name", "Email", "Role")
	}
	return nil
}

func (p UserPatch) IsEmpty() bool {
	return p.Name == nil && p.Email == nil && p.Role == nil
}

// SetFields renders the patch as the body of a $set update.
func (p UserPatch) SetFields() bson.M {
	set := bson.M{}
	if p.Name != nil {
		set["name"] = *p.Name
	}
	if p.Email != nil {
		set["email"] = *p.Email
	}
	if p.Role != nil {
		set["role"] = *p.Role
	}
	return set
}

// firstError picks the message of the first failing field in order, so the
// client gets one readable message instead of the joined map.
func firstError(err error, order ...string) error {
	var errs validation.Errors
	if !errors.As(err, &errs) {
		return err
	}
	for _, field := range order {
		if fe, ok := errs[field]; ok && fe != nil {
			return errors.New(fe.Error())
		}
	}
	return err
}
