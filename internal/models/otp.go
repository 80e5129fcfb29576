package models

import "time"

// OTP is a one-time code proving control of an email address during password recovery.
type OTP struct {
	Email      string    `json:"email"`
	TargetType UserType  `json:"targetType"`
	Code       string    `json:"code"`
	Verified   bool      `json:"verified"`
	ExpiresAt  time.Time `json:"expiresAt"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Pending reports whether the challenge is still awaiting verification at now.
func (o *OTP) Pending(now time.Time) bool {
	return o != nil && !o.Verified && now.Before(o.ExpiresAt)
}
