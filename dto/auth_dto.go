package dto

// Field rules with user-facing messages live on the models; binding tags
// here only mark what must be present for the request to make sense.

type RegisterDTO struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginDTO struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type ForgotPasswordDTO struct {
	Email string `json:"email" binding:"required"`
}

type ResetPasswordDTO struct {
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type AvatarDTO struct {
	Avatar string `json:"avatar" binding:"required"` // data URL
}
