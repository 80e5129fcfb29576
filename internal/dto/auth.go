package dto

// LoginRequest is shared by the admin and student login endpoints.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=100"`
}

// OTPRequest starts password recovery for an account.
type OTPRequest struct {
	Email  string `json:"email" validate:"required,email"`
	Source string `json:"source" validate:"required,oneof=admin student"`
}

// OTPVerifyRequest confirms a previously issued code.
type OTPVerifyRequest struct {
	Email  string `json:"email" validate:"required,email"`
	OTP    string `json:"otp" validate:"required,numeric,min=4,max=10"`
	Source string `json:"source" validate:"required,oneof=admin student"`
}

// ResetPasswordRequest completes password recovery.
type ResetPasswordRequest struct {
	ResetToken  string `json:"resetToken" validate:"required,min=20,max=600"`
	NewPassword string `json:"newPassword" validate:"required,min=6,max=100"`
}

// ChangePasswordRequest updates the caller's own password.
type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required,min=6,max=100"`
	NewPassword string `json:"newPassword" validate:"required,min=6,max=100,nefield=OldPassword"`
}

// OTPRequestResponse is returned after a code is issued. Code is only set outside production.
type OTPRequestResponse struct {
	Email     string `json:"email"`
	ExpiresIn int64  `json:"expiresIn"`
	Code      string `json:"otp,omitempty"`
}
