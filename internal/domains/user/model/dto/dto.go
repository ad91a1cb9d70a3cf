package dto

import (
	"context"
	"fmt"
	"mime/multipart"
	"strings"

	"natours/internal/domains/user/model"
	"natours/shared/constant"
	gDto "natours/shared/dto"
	gModel "natours/shared/model"
	"natours/shared/password"
	"natours/shared/timezone"

	"github.com/google/uuid"
)

// CreateUserRequest is the admin create payload.
type CreateUserRequest struct {
	Name            string `json:"name"             validate:"required,max=100"`
	Email           string `json:"email"            validate:"required,email"`
	Role            string `json:"role"             validate:"omitempty,oneof=user guide lead-guide admin"`
	Photo           string `json:"photo"`
	Password        string `json:"password"         validate:"required,min=8,max=72"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

func (r CreateUserRequest) ToModel(ctx context.Context) (model.User, error) {
	by, _ := ctx.Value(constant.ContextKeyUserID).(string)

	hashed, err := password.Hash(r.Password)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	return NewUser(r.Name, r.Email, r.Role, r.Photo, hashed, by), nil
}

// NewUser builds an active user; empty role and photo fall back to the defaults.
func NewUser(name, email, role, photo, hashedPassword, by string) model.User {
	if role == "" {
		role = constant.RoleUser
	}

	if photo == "" {
		photo = model.DefaultPhoto
	}

	if by == "" {
		by = constant.ContextGuest
	}

	return model.User{
		ID:       uuid.NewString(),
		Name:     strings.TrimSpace(name),
		Email:    strings.ToLower(strings.TrimSpace(email)),
		Photo:    photo,
		Role:     role,
		Password: hashedPassword,
		Active:   true,
		Metadata: gModel.NewMetadata(timezone.Now(), by),
	}
}

// UpdateUserRequest is the admin patch payload. Passwords are never changed here.
type UpdateUserRequest struct {
	Name  *string `db:"name"  json:"name"  validate:"omitempty,max=100"`
	Email *string `db:"email" json:"email" validate:"omitempty,email"`
	Role  *string `db:"role"  json:"role"  validate:"omitempty,oneof=user guide lead-guide admin"`
	Photo *string `db:"photo" json:"photo"`
}

// UpdateMeRequest only carries the fields a user may change on their own profile.
// Password fields are decoded so their presence can be rejected.
type UpdateMeRequest struct {
	Name            *string `db:"name"  json:"name"             validate:"omitempty,max=100"`
	Email           *string `db:"email" json:"email"            validate:"omitempty,email"`
	Password        *string `db:"-"     json:"password"`
	PasswordConfirm *string `db:"-"     json:"password_confirm"`
}

func (r UpdateMeRequest) HasPassword() bool {
	return r.Password != nil || r.PasswordConfirm != nil
}

// PhotoRequest is the optional profile picture of an updateMe multipart form.
type PhotoRequest struct {
	Photo *multipart.FileHeader `json:"photo" validate:"omitempty,mimetypes=image/jpeg image/png image/webp,maxfilesize=5"`
}

type UserResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Photo string `json:"photo"`
	Role  string `json:"role"`
	gDto.Metadata
}

func (r *UserResponse) FromModel(model model.User) {
	r.ID = model.ID
	r.Name = model.Name
	r.Email = model.Email
	r.Photo = model.Photo
	r.Role = model.Role
	r.Metadata.FromModel(model.Metadata)
}

func Render(model model.User) UserResponse {
	var res UserResponse

	res.FromModel(model)

	return res
}

// GuideResponse is the shape a user takes when embedded in a tour.
type GuideResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Photo string `json:"photo"`
	Role  string `json:"role"`
}

func (r *GuideResponse) FromModel(model model.User) {
	r.ID = model.ID
	r.Name = model.Name
	r.Email = model.Email
	r.Photo = model.Photo
	r.Role = model.Role
}
