package model

import (
	"time"

	"natours/shared/model"
)

const (
	TableName  = "users"
	EntityName = "user"

	FieldID                   = "id"
	FieldName                 = "name"
	FieldEmail                = "email"
	FieldPhoto                = "photo"
	FieldRole                 = "role"
	FieldPassword             = "password"
	FieldPasswordChangedAt    = "password_changed_at"
	FieldPasswordResetToken   = "password_reset_token"
	FieldPasswordResetExpires = "password_reset_expires"
	FieldActive               = "active"

	DefaultPhoto = "default.jpg"
)

// User columns tagged select:"false" are only read through the repository's GetWithHidden.
type User struct {
	ID                   string     `db:"id"`
	Name                 string     `db:"name"                   validate:"required,max=100"`
	Email                string     `db:"email"                  validate:"required,email"`
	Photo                string     `db:"photo"`
	Role                 string     `db:"role"                   validate:"required,oneof=user guide lead-guide admin"`
	Password             string     `db:"password"               select:"false"`
	PasswordChangedAt    *time.Time `db:"password_changed_at"`
	PasswordResetToken   *string    `db:"password_reset_token"   select:"false"`
	PasswordResetExpires *time.Time `db:"password_reset_expires" select:"false"`
	Active               bool       `db:"active"                 select:"false"`
	model.Metadata
}

// ChangedPasswordAfter reports whether the password changed after a token was issued.
// JWT timestamps have second precision, so the comparison is done in whole seconds.
func (u User) ChangedPasswordAfter(issuedAt time.Time) bool {
	if u.PasswordChangedAt == nil {
		return false
	}

	return u.PasswordChangedAt.Unix() > issuedAt.Unix()
}
