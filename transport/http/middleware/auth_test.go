package middleware_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	otelMocks "natours/infras/otel/mocks"
	authMocks "natours/internal/domains/auth/mocks"
	userModel "natours/internal/domains/user/model"
	"natours/permissions"
	"natours/shared/constant"
	"natours/shared/failure"
	"natours/transport/http/middleware"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

const apiPath = "/api/v1/tours"

var guide = userModel.User{ID: "u-1", Email: "miyah@example.com", Role: constant.RoleGuide}

type seen struct {
	called bool
	id     string
	email  string
	role   string
}

func recordUser(s *seen) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.called = true
		s.id, _ = r.Context().Value(constant.ContextKeyUserID).(string)
		s.email, _ = r.Context().Value(constant.ContextKeyUserEmail).(string)
		s.role, _ = r.Context().Value(constant.ContextKeyUserRole).(string)

		w.WriteHeader(http.StatusOK)
	})
}

func newAuth(t *testing.T) (*authMocks.MockAuth, middleware.Auth) {
	ctrl := gomock.NewController(t)
	svc := authMocks.NewMockAuth(ctrl)

	return svc, middleware.NewAuthMiddleware(svc, otelMocks.NewOtel())
}

func TestAuth_Protect(t *testing.T) {
	tests := []struct {
		name      string
		prepare   func(r *http.Request)
		wantToken string
		verifyErr error
		wantCode  int
	}{
		{
			name:      "bearer header",
			prepare:   func(r *http.Request) { r.Header.Set(constant.RequestHeaderAuthorization, "Bearer header-token") },
			wantToken: "header-token",
			wantCode:  http.StatusOK,
		},
		{
			name:      "session cookie",
			prepare:   func(r *http.Request) { r.AddCookie(&http.Cookie{Name: constant.CookieSession, Value: "cookie-token"}) },
			wantToken: "cookie-token",
			wantCode:  http.StatusOK,
		},
		{
			name: "header wins over cookie",
			prepare: func(r *http.Request) {
				r.Header.Set(constant.RequestHeaderAuthorization, "Bearer header-token")
				r.AddCookie(&http.Cookie{Name: constant.CookieSession, Value: "cookie-token"})
			},
			wantToken: "header-token",
			wantCode:  http.StatusOK,
		},
		{
			name:      "logged out cookie counts as no token",
			prepare:   func(r *http.Request) { r.AddCookie(&http.Cookie{Name: constant.CookieSession, Value: constant.CookieLoggedOut}) },
			wantToken: "",
			verifyErr: failure.NotLoggedIn,
			wantCode:  http.StatusUnauthorized,
		},
		{
			name:      "password changed since issue",
			prepare:   func(r *http.Request) { r.Header.Set(constant.RequestHeaderAuthorization, "Bearer old") },
			wantToken: "old",
			verifyErr: failure.PasswordChanged,
			wantCode:  http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, auth := newAuth(t)

			svc.EXPECT().Verify(gomock.Any(), tt.wantToken).Return(guide, tt.verifyErr)

			var s seen

			req := httptest.NewRequest(http.MethodGet, apiPath, nil)
			tt.prepare(req)

			rec := httptest.NewRecorder()
			auth.Protect(recordUser(&s)).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.verifyErr == nil, s.called)

			if tt.verifyErr == nil {
				assert.Equal(t, guide.ID, s.id)
				assert.Equal(t, guide.Email, s.email)
				assert.Equal(t, guide.Role, s.role)
			}
		})
	}
}

func TestAuth_IsLoggedIn(t *testing.T) {
	t.Run("anonymous passes without lookup", func(t *testing.T) {
		_, auth := newAuth(t)

		var s seen

		rec := httptest.NewRecorder()
		auth.IsLoggedIn(recordUser(&s)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, apiPath, nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, s.called)
		assert.Empty(t, s.id)
	})

	t.Run("invalid token is ignored", func(t *testing.T) {
		svc, auth := newAuth(t)

		svc.EXPECT().Verify(gomock.Any(), "expired").Return(userModel.User{}, errors.New("token is expired"))

		var s seen

		req := httptest.NewRequest(http.MethodGet, apiPath, nil)
		req.AddCookie(&http.Cookie{Name: constant.CookieSession, Value: "expired"})

		rec := httptest.NewRecorder()
		auth.IsLoggedIn(recordUser(&s)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, s.called)
		assert.Empty(t, s.role)
	})

	t.Run("valid token attaches the user", func(t *testing.T) {
		svc, auth := newAuth(t)

		svc.EXPECT().Verify(gomock.Any(), "valid").Return(guide, nil)

		var s seen

		req := httptest.NewRequest(http.MethodGet, apiPath, nil)
		req.AddCookie(&http.Cookie{Name: constant.CookieSession, Value: "valid"})

		rec := httptest.NewRecorder()
		auth.IsLoggedIn(recordUser(&s)).ServeHTTP(rec, req)

		assert.Equal(t, guide.ID, s.id)
	})
}

func TestAuth_RestrictTo(t *testing.T) {
	tests := []struct {
		name     string
		user     userModel.User
		roles    []string
		wantCode int
	}{
		{name: "guide may read plans", user: guide, roles: permissions.Guides, wantCode: http.StatusOK},
		{name: "guide may not edit tours", user: guide, roles: permissions.Staff, wantCode: http.StatusForbidden},
		{
			name:     "admin is staff",
			user:     userModel.User{ID: "u-2", Role: constant.RoleAdmin},
			roles:    permissions.Staff,
			wantCode: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, auth := newAuth(t)

			svc.EXPECT().Verify(gomock.Any(), "token").Return(tt.user, nil)

			var s seen

			req := httptest.NewRequest(http.MethodGet, apiPath, nil)
			req.Header.Set(constant.RequestHeaderAuthorization, "Bearer token")

			rec := httptest.NewRecorder()
			auth.Protect(auth.RestrictTo(tt.roles...)(recordUser(&s))).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantCode == http.StatusOK, s.called)
		})
	}

	t.Run("no session is forbidden", func(t *testing.T) {
		_, auth := newAuth(t)

		rec := httptest.NewRecorder()
		auth.RestrictTo(permissions.Admin...)(recordUser(&seen{})).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, apiPath, nil))

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}
