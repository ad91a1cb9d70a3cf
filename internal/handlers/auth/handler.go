package auth

import (
	"net/http"
	"time"

	"natours/config"
	"natours/infras/otel"
	"natours/internal/domains/auth/model/dto"
	"natours/internal/domains/auth/service"
	userDto "natours/internal/domains/user/model/dto"
	"natours/shared/constant"
	"natours/shared/validator"
	"natours/transport/http/middleware"
	"natours/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

const paramToken = "token"

type Handler struct {
	service service.Auth
	auth    middleware.Auth
	cfg     *config.Config
	otel    otel.Otel
}

type SessionData struct {
	User userDto.UserResponse `json:"user"`
}

func New(service service.Auth, auth middleware.Auth, cfg *config.Config, otel otel.Otel) Handler {
	return Handler{
		service: service,
		auth:    auth,
		cfg:     cfg,
		otel:    otel,
	}
}

// Router registers the account routes on the /users group.
func (handler *Handler) Router(router chi.Router) {
	router.Post("/signup", handler.Signup)
	router.Post("/login", handler.Login)
	router.Get("/logout", handler.Logout)
	router.Post("/forgotPassword", handler.ForgotPassword)
	router.Patch("/forgotPassword", handler.ForgotPassword)
	router.Patch("/resetPassword/{token}", handler.ResetPassword)
	router.With(handler.auth.Protect).Patch("/updateMyPassword", handler.UpdatePassword)
}

// Signup handles the creation of a new account.
// @Summary Sign up
// @Description Create a user account and start a session.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.SignupRequest true "Signup Request"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /v1/users/signup [post]
func (handler *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".Signup")
	defer scope.End()

	req := dto.SignupRequest{}
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Warn().Err(err).Msg("failed to validate request body")

		response.WithError(w, r, err)

		return
	}

	session, err := handler.service.Signup(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to sign up")

		response.WithError(w, r, err)

		return
	}

	handler.sendSession(w, r, http.StatusCreated, session)
}

// Login handles email and password sign-in.
// @Summary Log in
// @Description Start a session. Unknown email and wrong password answer the same.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login Request"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /v1/users/login [post]
func (handler *Handler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".Login")
	defer scope.End()

	req := dto.LoginRequest{}
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)

		response.WithError(w, r, err)

		return
	}

	session, err := handler.service.Login(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Warn().Err(err).Msg("failed to log in")

		response.WithError(w, r, err)

		return
	}

	handler.sendSession(w, r, http.StatusOK, session)
}

// Logout overwrites the session cookie.
// @Summary Log out
// @Tags Auth
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /v1/users/logout [get]
func (handler *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     constant.CookieSession,
		Value:    constant.CookieLoggedOut,
		Path:     "/",
		Expires:  time.Now().Add(constant.CookieLoggedOutSecs * time.Second),
		HttpOnly: true,
		Secure:   secure(r),
	})

	response.WithMessage(w, http.StatusOK, "")
}

// ForgotPassword sends a reset link to the account's email.
// @Summary Forgot password
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.ForgotPasswordRequest true "Forgot Password Request"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 500 {object} response.Envelope
// @Router /v1/users/forgotPassword [post]
func (handler *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".ForgotPassword")
	defer scope.End()

	req := dto.ForgotPasswordRequest{}
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)

		response.WithError(w, r, err)

		return
	}

	if err := handler.service.ForgotPassword(ctx, req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to issue reset token")

		response.WithError(w, r, err)

		return
	}

	response.WithMessage(w, http.StatusOK, "Token sent to email!")
}

// ResetPassword redeems a reset token.
// @Summary Reset password
// @Tags Auth
// @Accept json
// @Produce json
// @Param token path string true "Reset token"
// @Param request body dto.ResetPasswordRequest true "Reset Password Request"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /v1/users/resetPassword/{token} [patch]
func (handler *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".ResetPassword")
	defer scope.End()

	req := dto.ResetPasswordRequest{}
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)

		response.WithError(w, r, err)

		return
	}

	session, err := handler.service.ResetPassword(ctx, chi.URLParam(r, paramToken), req)
	if err != nil {
		scope.TraceError(err)
		log.Warn().Err(err).Msg("failed to reset password")

		response.WithError(w, r, err)

		return
	}

	handler.sendSession(w, r, http.StatusOK, session)
}

// UpdatePassword changes the session user's password.
// @Summary Update my password
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.UpdatePasswordRequest true "Update Password Request"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /v1/users/updateMyPassword [patch]
// @Security BearerAuth
func (handler *Handler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdatePassword")
	defer scope.End()

	req := dto.UpdatePasswordRequest{}
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)

		response.WithError(w, r, err)

		return
	}

	userID, _ := ctx.Value(constant.ContextKeyUserID).(string)

	session, err := handler.service.UpdatePassword(ctx, userID, req)
	if err != nil {
		scope.TraceError(err)
		log.Warn().Err(err).Str("user_id", userID).Msg("failed to update password")

		response.WithError(w, r, err)

		return
	}

	handler.sendSession(w, r, http.StatusOK, session)
}

func (handler *Handler) sendSession(w http.ResponseWriter, r *http.Request, code int, session dto.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     constant.CookieSession,
		Value:    session.Token,
		Path:     "/",
		Expires:  time.Now().Add(time.Duration(handler.cfg.JWT.CookieExpireDays) * 24 * time.Hour),
		HttpOnly: true,
		Secure:   secure(r),
		SameSite: http.SameSiteLaxMode,
	})

	response.WithToken(w, code, session.Token, SessionData{User: session.User})
}

func secure(r *http.Request) bool {
	return r.TLS != nil || r.Header.Get(constant.RequestHeaderForwardedProto) == "https"
}
