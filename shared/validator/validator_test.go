package validator_test

import (
	"mime/multipart"
	"net/textproto"
	"strings"
	"testing"

	"natours/shared/failure"
	"natours/shared/validator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signup struct {
	Name            string  `json:"name" validate:"required"`
	Email           string  `json:"email" validate:"required,email"`
	Password        string  `json:"password" validate:"required,min=8"`
	PasswordConfirm string  `json:"password_confirm" validate:"required,eqfield=Password"`
	Price           float64 `json:"price" validate:"gte=0"`
	PriceDiscount   float64 `json:"price_discount" validate:"omitempty,ltfield=Price"`
}

func validSignup() signup {
	return signup{
		Name:            "Jonas",
		Email:           "jonas@example.com",
		Password:        "pass1234",
		PasswordConfirm: "pass1234",
		Price:           100,
	}
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(s *signup)
		wantMsg string
	}{
		{name: "valid", modify: func(*signup) {}},
		{name: "missing name", modify: func(s *signup) { s.Name = "" }, wantMsg: "name is required"},
		{name: "invalid email", modify: func(s *signup) { s.Email = "nope" }, wantMsg: "email must be a valid email address"},
		{name: "short password", modify: func(s *signup) {
			s.Password = "short"
			s.PasswordConfirm = "short"
		}, wantMsg: "password must be greater than or equal to 8"},
		{name: "confirm mismatch", modify: func(s *signup) { s.PasswordConfirm = "pass12345" }, wantMsg: "password_confirm must be the same as password"},
		{name: "discount above price", modify: func(s *signup) { s.PriceDiscount = 150 }, wantMsg: "price_discount (150) should be below price"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := validSignup()
			tt.modify(&data)

			err := validator.ValidateStruct(&data)

			if tt.wantMsg == "" {
				assert.NoError(t, err)

				return
			}

			require.Error(t, err)
			assert.Equal(t, 400, failure.GetCode(err))
			assert.Equal(t, tt.wantMsg, err.Error())
		})
	}
}

func TestValidate(t *testing.T) {
	t.Run("decodes and validates", func(t *testing.T) {
		var data signup

		body := `{"name":"Jonas","email":"jonas@example.com","password":"pass1234","password_confirm":"pass1234"}`
		require.NoError(t, validator.Validate(strings.NewReader(body), &data))
		assert.Equal(t, "Jonas", data.Name)
	})

	t.Run("empty body", func(t *testing.T) {
		var data signup

		err := validator.Validate(strings.NewReader(""), &data)
		assert.EqualError(t, err, "request body is required")
	})

	t.Run("malformed body", func(t *testing.T) {
		var data signup

		err := validator.Validate(strings.NewReader("{"), &data)
		require.Error(t, err)
		assert.Equal(t, 400, failure.GetCode(err))
	})
}

func TestValidateVar(t *testing.T) {
	assert.NoError(t, validator.ValidateVar("test@example.com", "email"))
	assert.Error(t, validator.ValidateVar("", "required"))
	assert.Error(t, validator.ValidateVar(6, "min=1,max=5"))
}

type upload struct {
	Cover  *multipart.FileHeader   `json:"cover"  validate:"omitempty,mimetypes=image/jpeg image/png,maxfilesize=1"`
	Images []*multipart.FileHeader `json:"images" validate:"max=2,dive,mimetypes=image/jpeg image/png,maxfilesize=1"`
}

func TestFileValidation(t *testing.T) {
	header := func(contentType string, size int64) *multipart.FileHeader {
		return &multipart.FileHeader{
			Filename: "photo",
			Header:   textproto.MIMEHeader{"Content-Type": []string{contentType}},
			Size:     size,
		}
	}

	tests := []struct {
		name    string
		req     upload
		wantErr bool
	}{
		{name: "no files", req: upload{}},
		{name: "image within size", req: upload{Cover: header("image/jpeg", 1024)}},
		{name: "wrong type", req: upload{Cover: header("text/plain", 1024)}, wantErr: true},
		{name: "too large", req: upload{Cover: header("image/png", 2*1024*1024)}, wantErr: true},
		{name: "every image checked", req: upload{Images: []*multipart.FileHeader{header("image/png", 10), header("application/pdf", 10)}}, wantErr: true},
		{name: "too many images", req: upload{Images: []*multipart.FileHeader{header("image/png", 1), header("image/png", 1), header("image/png", 1)}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateStruct(&tt.req)

			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, 400, failure.GetCode(err))

				return
			}

			assert.NoError(t, err)
		})
	}
}
