package dto

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	userModel "natours/internal/domains/user/model"
	userDto "natours/internal/domains/user/model/dto"
	"natours/shared/constant"
	"natours/shared/password"
)

const resetTokenBytes = 32

// SignupRequest always creates a plain user; roles are granted by an admin.
type SignupRequest struct {
	Name            string `json:"name"             validate:"required,max=100"`
	Email           string `json:"email"            validate:"required,email"`
	Password        string `json:"password"         validate:"required,min=8,max=72"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

func (r SignupRequest) ToModel(_ context.Context) (userModel.User, error) {
	hashed, err := password.Hash(r.Password)
	if err != nil {
		return userModel.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	return userDto.NewUser(r.Name, r.Email, constant.RoleUser, "", hashed, constant.ContextGuest), nil
}

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Password        string `json:"password"         validate:"required,min=8,max=72"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

type UpdatePasswordRequest struct {
	PasswordCurrent string `json:"password_current" validate:"required"`
	Password        string `json:"password"         validate:"required,min=8,max=72"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

// Session is what every successful sign-in path returns.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      userDto.UserResponse
}

// ResetToken is a fresh password-reset token. Only Hashed is stored; Plain goes into the email.
type ResetToken struct {
	Plain  string
	Hashed string
}

func NewResetToken() (ResetToken, error) {
	raw := make([]byte, resetTokenBytes)

	if _, err := rand.Read(raw); err != nil {
		return ResetToken{}, fmt.Errorf("failed to generate reset token: %w", err)
	}

	plain := hex.EncodeToString(raw)

	return ResetToken{Plain: plain, Hashed: HashResetToken(plain)}, nil
}

func HashResetToken(plain string) string {
	sum := sha256.Sum256([]byte(plain))

	return hex.EncodeToString(sum[:])
}
