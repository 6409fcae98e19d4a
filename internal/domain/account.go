package domain

import (
	"strings"
	"time"
)

// Gender values accepted on the profile.
const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderSecret = "secret"
)

// Account is the persisted user record. The session subsystem only relies on
// AccountID, Email and PasswordHash; the rest is profile data.
type Account struct {
	AccountID     int64      `json:"id" dynamodbav:"account_id"`
	Email         string     `json:"email" dynamodbav:"email"`
	PasswordHash  string     `json:"-" dynamodbav:"password_hash"`
	Nickname      string     `json:"nickname" dynamodbav:"nickname"`
	Avatar        string     `json:"avatar,omitempty" dynamodbav:"avatar"`
	Gender        string     `json:"gender,omitempty" dynamodbav:"gender"`
	Birthday      *time.Time `json:"birthday,omitempty" dynamodbav:"birthday"`
	Signature     string     `json:"signature,omitempty" dynamodbav:"signature"`
	EmailVerified bool       `json:"email_verified" dynamodbav:"email_verified"`
	CreatedAt     time.Time  `json:"created" dynamodbav:"created_at"`
	UpdatedAt     time.Time  `json:"updated" dynamodbav:"updated_at"`
}

// Profile is the public view of an account returned to clients.
type Profile struct {
	AccountID     int64  `json:"user_id"`
	Email         string `json:"email"`
	Nickname      string `json:"nickname"`
	Avatar        string `json:"avatar,omitempty"`
	Gender        string `json:"gender,omitempty"`
	Birthday      string `json:"birthday,omitempty"`
	Signature     string `json:"signature,omitempty"`
	EmailVerified bool   `json:"email_verified"`
}

// ProfileOf returns the public fields of a.
func ProfileOf(a *Account) *Profile {
	if a == nil {
		return nil
	}
	p := &Profile{
		AccountID:     a.AccountID,
		Email:         a.Email,
		Nickname:      a.Nickname,
		Avatar:        a.Avatar,
		Gender:        a.Gender,
		Signature:     a.Signature,
		EmailVerified: a.EmailVerified,
	}
	if a.Birthday != nil {
		p.Birthday = a.Birthday.Format("2006-01-02")
	}
	return p
}

// AccountInfo is the reduced view with a masked email.
type AccountInfo struct {
	AccountID int64     `json:"user_id"`
	Email     string    `json:"email"`
	Nickname  string    `json:"nickname"`
	Avatar    string    `json:"avatar,omitempty"`
	CreatedAt time.Time `json:"created"`
}

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=20"`
	Nickname string `json:"nickname" validate:"max=50"`
	Code     string `json:"code" validate:"required,len=6,numeric"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=20"`
}

type UpdateProfileRequest struct {
	Nickname  *string `json:"nickname" validate:"omitempty,max=20"`
	Gender    *string `json:"gender" validate:"omitempty,oneof=male female secret"`
	Birthday  *string `json:"birthday"` // expected format: YYYY-MM-DD
	Signature *string `json:"signature" validate:"omitempty,max=200"`
}

type ChangePasswordRequest struct {
	OldPassword     string `json:"old_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6,max=20"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
}

type VerifyEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required"`
}

// NormalizeEmail is the canonical form used for storage, lookups and code keys.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
