package auth_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"natours/config"
	otelMocks "natours/infras/otel/mocks"
	authMocks "natours/internal/domains/auth/mocks"
	"natours/internal/domains/auth/model/dto"
	userModel "natours/internal/domains/user/model"
	userDto "natours/internal/domains/user/model/dto"
	"natours/internal/handlers/auth"
	"natours/shared/constant"
	"natours/shared/failure"
	"natours/transport/http/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const usersPath = "/api/v1/users"

var session = dto.Session{
	Token: "signed.jwt.token",
	User:  userDto.UserResponse{ID: "u-1", Name: "Laura Wilson", Email: "laura@example.com", Role: constant.RoleUser},
}

func newRouter(t *testing.T) (*authMocks.MockAuth, chi.Router) {
	ctrl := gomock.NewController(t)
	svc := authMocks.NewMockAuth(ctrl)
	otl := otelMocks.NewOtel()

	cfg := &config.Config{}
	cfg.JWT.CookieExpireDays = 90

	handler := auth.New(svc, middleware.NewAuthMiddleware(svc, otl), cfg, otl)

	router := chi.NewRouter()
	router.Route(usersPath, handler.Router)

	return svc, router
}

func serve(router http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	return rec
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()

	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == constant.CookieSession {
			return cookie
		}
	}

	require.FailNow(t, "no session cookie")

	return nil
}

func TestHandler_Login(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		proto      string
		loginErr   error
		callsLogin bool
		wantCode   int
		wantSecure bool
	}{
		{
			name:       "starts a session",
			body:       `{"email":"laura@example.com","password":"test1234"}`,
			callsLogin: true,
			wantCode:   http.StatusOK,
		},
		{
			name:       "secure cookie behind a tls proxy",
			body:       `{"email":"laura@example.com","password":"test1234"}`,
			proto:      "https",
			callsLogin: true,
			wantCode:   http.StatusOK,
			wantSecure: true,
		},
		{
			name:     "missing password",
			body:     `{"email":"laura@example.com"}`,
			wantCode: http.StatusBadRequest,
		},
		{
			name:       "wrong password",
			body:       `{"email":"laura@example.com","password":"nope"}`,
			loginErr:   failure.InvalidCredentials,
			callsLogin: true,
			wantCode:   http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, router := newRouter(t)

			if tt.callsLogin {
				svc.EXPECT().Login(gomock.Any(), gomock.Any()).Return(session, tt.loginErr)
			}

			req := httptest.NewRequest(http.MethodPost, usersPath+"/login", strings.NewReader(tt.body))
			if tt.proto != "" {
				req.Header.Set(constant.RequestHeaderForwardedProto, tt.proto)
			}

			rec := serve(router, req)

			require.Equal(t, tt.wantCode, rec.Code)

			if tt.wantCode != http.StatusOK {
				assert.Empty(t, rec.Result().Cookies())

				return
			}

			cookie := sessionCookie(t, rec)
			assert.Equal(t, session.Token, cookie.Value)
			assert.True(t, cookie.HttpOnly)
			assert.Equal(t, tt.wantSecure, cookie.Secure)

			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, session.Token, body["token"])
			assert.Equal(t, "laura@example.com", body["data"].(map[string]any)["user"].(map[string]any)["email"])
		})
	}
}

func TestHandler_Signup(t *testing.T) {
	svc, router := newRouter(t)

	svc.EXPECT().Signup(gomock.Any(), dto.SignupRequest{
		Name:            "Laura Wilson",
		Email:           "laura@example.com",
		Password:        "test1234",
		PasswordConfirm: "test1234",
	}).Return(session, nil)

	body := `{"name":"Laura Wilson","email":"laura@example.com","password":"test1234","password_confirm":"test1234"}`
	rec := serve(router, httptest.NewRequest(http.MethodPost, usersPath+"/signup", strings.NewReader(body)))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, session.Token, sessionCookie(t, rec).Value)
}

func TestHandler_Logout(t *testing.T) {
	_, router := newRouter(t)

	rec := serve(router, httptest.NewRequest(http.MethodGet, usersPath+"/logout", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, constant.CookieLoggedOut, sessionCookie(t, rec).Value)
}

func TestHandler_ForgotPassword(t *testing.T) {
	for _, method := range []string{http.MethodPost, http.MethodPatch} {
		t.Run(method, func(t *testing.T) {
			svc, router := newRouter(t)

			svc.EXPECT().ForgotPassword(gomock.Any(), dto.ForgotPasswordRequest{Email: "laura@example.com"}).Return(nil)

			rec := serve(router, httptest.NewRequest(method, usersPath+"/forgotPassword", strings.NewReader(`{"email":"laura@example.com"}`)))

			assert.Equal(t, http.StatusOK, rec.Code)
		})
	}
}

func TestHandler_ResetPassword(t *testing.T) {
	t.Run("token from the path", func(t *testing.T) {
		svc, router := newRouter(t)

		svc.EXPECT().ResetPassword(gomock.Any(), "plain-token", gomock.Any()).Return(session, nil)

		body := `{"password":"newpass123","password_confirm":"newpass123"}`
		rec := serve(router, httptest.NewRequest(http.MethodPatch, usersPath+"/resetPassword/plain-token", strings.NewReader(body)))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, session.Token, sessionCookie(t, rec).Value)
	})

	t.Run("expired token", func(t *testing.T) {
		svc, router := newRouter(t)

		svc.EXPECT().ResetPassword(gomock.Any(), "stale", gomock.Any()).Return(dto.Session{}, failure.InvalidResetToken)

		body := `{"password":"newpass123","password_confirm":"newpass123"}`
		rec := serve(router, httptest.NewRequest(http.MethodPatch, usersPath+"/resetPassword/stale", strings.NewReader(body)))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestHandler_UpdatePassword(t *testing.T) {
	t.Run("requires a session", func(t *testing.T) {
		svc, router := newRouter(t)

		svc.EXPECT().Verify(gomock.Any(), "").Return(userModel.User{}, failure.NotLoggedIn)

		body := `{"password_current":"test1234","password":"newpass123","password_confirm":"newpass123"}`
		rec := serve(router, httptest.NewRequest(http.MethodPatch, usersPath+"/updateMyPassword", strings.NewReader(body)))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("updates the session user", func(t *testing.T) {
		svc, router := newRouter(t)

		svc.EXPECT().Verify(gomock.Any(), "token").Return(userModel.User{ID: "u-1", Role: constant.RoleUser}, nil)
		svc.EXPECT().UpdatePassword(gomock.Any(), "u-1", dto.UpdatePasswordRequest{
			PasswordCurrent: "test1234",
			Password:        "newpass123",
			PasswordConfirm: "newpass123",
		}).Return(session, nil)

		body := `{"password_current":"test1234","password":"newpass123","password_confirm":"newpass123"}`
		req := httptest.NewRequest(http.MethodPatch, usersPath+"/updateMyPassword", strings.NewReader(body))
		req.Header.Set(constant.RequestHeaderAuthorization, "Bearer token")

		rec := serve(router, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
