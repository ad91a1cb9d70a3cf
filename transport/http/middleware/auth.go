package middleware

import (
	"context"
	"net/http"

	"natours/infras/jwt"
	"natours/infras/otel"
	authService "natours/internal/domains/auth/service"
	userModel "natours/internal/domains/user/model"
	"natours/permissions"
	"natours/shared/constant"
	"natours/shared/failure"
	"natours/transport/http/response"
)

// Auth gates routes on the session.
type Auth interface {
	// Protect rejects requests without a valid session.
	Protect(next http.Handler) http.Handler
	// IsLoggedIn attaches the session user when there is one and never rejects.
	IsLoggedIn(next http.Handler) http.Handler
	// RestrictTo rejects sessions whose role is not allowed. Requires Protect.
	RestrictTo(roles ...string) func(http.Handler) http.Handler
}

type authImpl struct {
	auth authService.Auth
	otel otel.Otel
}

func NewAuthMiddleware(auth authService.Auth, otel otel.Otel) Auth {
	return &authImpl{
		auth: auth,
		otel: otel,
	}
}

func (m *authImpl) Protect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, scope := m.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, "auth.middleware")

		user, err := m.auth.Verify(ctx, sessionToken(r))
		if err != nil {
			scope.TraceError(err)
			scope.End()

			response.WithError(w, r, err)

			return
		}

		scope.SetAttribute("user.role", user.Role)
		scope.End()

		next.ServeHTTP(w, r.WithContext(withUser(r.Context(), user)))
	})
}

func (m *authImpl) IsLoggedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := sessionToken(r)
		if token == "" {
			next.ServeHTTP(w, r)

			return
		}

		user, err := m.auth.Verify(r.Context(), token)
		if err != nil {
			next.ServeHTTP(w, r)

			return
		}

		next.ServeHTTP(w, r.WithContext(withUser(r.Context(), user)))
	})
}

func (m *authImpl) RestrictTo(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, _ := r.Context().Value(constant.ContextKeyUserRole).(string)

			if !permissions.Allow(role, roles...) {
				_, scope := m.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, "rbac.middleware")
				scope.TraceError(failure.ForbiddenError)
				scope.SetAttributes(map[string]any{
					"user_role":     role,
					"allowed_roles": roles,
					"reason":        "role_not_allowed",
				})
				scope.End()

				response.WithError(w, r, failure.ForbiddenError)

				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// sessionToken prefers the bearer header and falls back to the session cookie.
func sessionToken(r *http.Request) string {
	if token, err := jwt.ExtractTokenFromHeader(r.Header.Get(constant.RequestHeaderAuthorization)); err == nil && token != "" {
		return token
	}

	cookie, err := r.Cookie(constant.CookieSession)
	if err != nil || cookie.Value == constant.CookieLoggedOut {
		return ""
	}

	return cookie.Value
}

func withUser(ctx context.Context, user userModel.User) context.Context {
	ctx = context.WithValue(ctx, constant.ContextKeyUserID, user.ID)
	ctx = context.WithValue(ctx, constant.ContextKeyUserEmail, user.Email)
	ctx = context.WithValue(ctx, constant.ContextKeyUserRole, user.Role)

	return ctx
}
