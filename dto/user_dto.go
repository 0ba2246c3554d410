package dto

import "github.com/princinho/shopitbackend/models"

type UpdatePasswordDTO struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	Password    string `json:"password"`
}

// UpdateProfileDTO carries a self-service profile change. Absent fields
// are left untouched.
type UpdateProfileDTO struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

func (d UpdateProfileDTO) Patch() models.UserPatch {
	return models.UserPatch{Name: d.Name, Email: d.Email}
}

type AdminUpdateUserDTO struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Role  *string `json:"role"`
}

func (d AdminUpdateUserDTO) Patch() models.UserPatch {
	p := models.UserPatch{Name: d.Name, Email: d.Email}
	if d.Role != nil {
		r := models.Role(*d.Role)
		p.Role = &r
	}
	return p
}
