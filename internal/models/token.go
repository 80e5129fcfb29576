package models

import "github.com/golang-jwt/jwt/v5"

// TokenPurpose tags what a signed token may be used for.
type TokenPurpose string

const (
	PurposeAccess        TokenPurpose = "access"
	PurposePasswordReset TokenPurpose = "password_reset"
)

// AccessClaims authorise API calls. Students always carry an empty permission set.
type AccessClaims struct {
	ID          string
	Email       string
	Role        *string
	Permissions []string
	Type        UserType
}

// ResetClaims authorise exactly one password reset for the named account.
type ResetClaims struct {
	Email string
	Type  UserType
}

// TokenPayload is either an access payload or a password-reset payload, never both.
// The zero value carries neither and is rejected everywhere.
type TokenPayload struct {
	purpose TokenPurpose
	access  *AccessClaims
	reset   *ResetClaims
}

// NewAccessPayload builds the access variant.
func NewAccessPayload(claims AccessClaims) TokenPayload {
	perms := make([]string, len(claims.Permissions))
	copy(perms, claims.Permissions)
	claims.Permissions = perms
	return TokenPayload{purpose: PurposeAccess, access: &claims}
}

// NewResetPayload builds the password-reset variant.
func NewResetPayload(claims ResetClaims) TokenPayload {
	return TokenPayload{purpose: PurposePasswordReset, reset: &claims}
}

// Purpose returns the variant tag.
func (p TokenPayload) Purpose() TokenPurpose {
	return p.purpose
}

// AsAccess returns a copy of the access claims when p is the access variant.
func (p TokenPayload) AsAccess() (AccessClaims, bool) {
	if p.purpose != PurposeAccess || p.access == nil {
		return AccessClaims{}, false
	}
	out := *p.access
	out.Permissions = append([]string{}, p.access.Permissions...)
	return out, true
}

// AsReset returns the reset claims when p is the password-reset variant.
func (p TokenPayload) AsReset() (ResetClaims, bool) {
	if p.purpose != PurposePasswordReset || p.reset == nil {
		return ResetClaims{}, false
	}
	return *p.reset, true
}

// Email returns the subject email of either variant.
func (p TokenPayload) Email() string {
	switch {
	case p.access != nil:
		return p.access.Email
	case p.reset != nil:
		return p.reset.Email
	}
	return ""
}

// UserType returns the subject kind of either variant.
func (p TokenPayload) UserType() UserType {
	switch {
	case p.access != nil:
		return p.access.Type
	case p.reset != nil:
		return p.reset.Type
	}
	return ""
}

// JWTClaims is the signed wire form of a TokenPayload.
type JWTClaims struct {
	Purpose     TokenPurpose `json:"purpose"`
	ID          string       `json:"id,omitempty"`
	Email       string       `json:"email"`
	Role        *string      `json:"role,omitempty"`
	Permissions []string     `json:"permissions,omitempty"`
	Type        UserType     `json:"type"`
	jwt.RegisteredClaims
}

// IdentityResponse is returned by login and the current-identity endpoint.
type IdentityResponse struct {
	ID          string   `json:"id"`
	Email       string   `json:"email"`
	Name        string   `json:"name"`
	FirstName   string   `json:"firstName,omitempty"`
	LastName    string   `json:"lastName,omitempty"`
	Type        UserType `json:"type"`
	Role        *string  `json:"role"`
	Permissions []string `json:"permissions"`
}

// LoginResponse pairs an access token with the authenticated identity.
type LoginResponse struct {
	Token     string           `json:"token"`
	ExpiresIn int64            `json:"expiresIn"`
	User      IdentityResponse `json:"user"`
}

// ResetTokenResponse is returned after a successful OTP verification.
type ResetTokenResponse struct {
	ResetToken string `json:"resetToken"`
	ExpiresIn  int64  `json:"expiresIn"`
}

// RequestIdentity is the verified caller attached to a request by the authentication middleware.
type RequestIdentity struct {
	TokenPayload
	IP        string
	UserAgent string
}
