package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"natours/config"
	"natours/infras/jwt"
	"natours/infras/otel"
	"natours/internal/domains/auth/model/dto"
	notifModel "natours/internal/domains/notification/model"
	notifService "natours/internal/domains/notification/service"
	userModel "natours/internal/domains/user/model"
	userDto "natours/internal/domains/user/model/dto"
	userRepo "natours/internal/domains/user/repository"
	"natours/shared"
	"natours/shared/cache"
	"natours/shared/constant"
	"natours/shared/crud"
	gDto "natours/shared/dto"
	"natours/shared/failure"
	"natours/shared/password"
	"natours/shared/timezone"

	"github.com/rs/zerolog/log"
)

const (
	resetTokenTTL = 10 * time.Minute
	// Stamped slightly in the past so a token issued right after the change stays valid.
	passwordChangedSkew = time.Second

	resetPasswordPath = "/api/v1/users/resetPassword/"
	accountPath       = "/me"
)

var (
	errTokenExpired    = failure.Unauthorized("Your token has expired! Please log in again.")
	errTokenInvalid    = failure.Unauthorized("Invalid token. Please log in again!")
	errWrongPassword   = failure.Unauthorized("Your current password is wrong.")
	errNoUserWithEmail = failure.NotFound("There is no user with that email address.")
	errSendingEmail    = &failure.Failure{Code: http.StatusInternalServerError, Message: "There was an error sending the email. Try again later!"}
)

type Auth interface {
	Signup(ctx context.Context, req dto.SignupRequest) (dto.Session, error)
	Login(ctx context.Context, req dto.LoginRequest) (dto.Session, error)
	// Verify resolves a session token to its still-valid user.
	Verify(ctx context.Context, token string) (userModel.User, error)
	ForgotPassword(ctx context.Context, req dto.ForgotPasswordRequest) error
	ResetPassword(ctx context.Context, token string, req dto.ResetPasswordRequest) (dto.Session, error)
	UpdatePassword(ctx context.Context, userID string, req dto.UpdatePasswordRequest) (dto.Session, error)
}

type serviceImpl struct {
	userRepo userRepo.User
	notifier notifService.Notifier
	jwt      jwt.JWT
	cfg      *config.Config
	cache    cache.RedisCache
	otel     otel.Otel
}

func New(userRepo userRepo.User, notifier notifService.Notifier, jwt jwt.JWT, cfg *config.Config, cache cache.RedisCache, otel otel.Otel) Auth {
	return &serviceImpl{
		userRepo: userRepo,
		notifier: notifier,
		jwt:      jwt,
		cfg:      cfg,
		cache:    cache,
		otel:     otel,
	}
}

func (s *serviceImpl) Signup(ctx context.Context, req dto.SignupRequest) (res dto.Session, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".auth.Signup")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	user, err := req.ToModel(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to build user")

		return res, fmt.Errorf("failed to build user: %w", err)
	}

	if err = s.userRepo.Insert(ctx, user); err != nil {
		log.Error().Err(err).Msg("failed to insert user")

		return res, fmt.Errorf("failed to insert user: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		shared.InvalidateCaches(c, s.cache, crud.CachePrefix(userModel.EntityName))
	}()

	err = s.notifier.Send(ctx, notifModel.Message{
		Type: notifModel.TypeWelcome,
		To:   user.Email,
		Name: user.Name,
		URL:  s.url(accountPath),
	})
	if err != nil {
		log.Warn().Err(err).Str("user_id", user.ID).Msg("failed to send welcome notification")
	}

	return s.session(user)
}

func (s *serviceImpl) Login(ctx context.Context, req dto.LoginRequest) (res dto.Session, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".auth.Login")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	user, err := s.userRepo.GetWithHidden(ctx, byEmail(req.Email))
	if err != nil {
		log.Error().Err(err).Msg("failed to get user by email")

		return res, fmt.Errorf("failed to get user by email: %w", err)
	}

	if user.ID == "" {
		return res, failure.InvalidCredentials
	}

	if err = password.Verify(req.Password, user.Password); err != nil {
		if errors.Is(err, password.ErrInvalidPassword) {
			return res, failure.InvalidCredentials
		}

		log.Error().Err(err).Msg("failed to verify password")

		return res, fmt.Errorf("failed to verify password: %w", err)
	}

	return s.session(user)
}

func (s *serviceImpl) Verify(ctx context.Context, token string) (user userModel.User, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".auth.Verify")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if token == "" {
		return user, failure.NotLoggedIn
	}

	claims, err := s.jwt.Validate(token)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrMissingToken):
			return user, failure.NotLoggedIn
		case errors.Is(err, jwt.ErrExpiredToken):
			return user, errTokenExpired
		default:
			return user, errTokenInvalid
		}
	}

	user, err = s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		if failure.GetCode(err) == http.StatusNotFound {
			return user, failure.UserNoLongerExists
		}

		log.Error().Err(err).Str("user_id", claims.UserID).Msg("failed to get session user")

		return user, fmt.Errorf("failed to get session user: %w", err)
	}

	if user.ChangedPasswordAfter(claims.IssuedAtTime()) {
		return userModel.User{}, failure.PasswordChanged
	}

	return user, nil
}

func (s *serviceImpl) ForgotPassword(ctx context.Context, req dto.ForgotPasswordRequest) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".auth.ForgotPassword")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	user, err := s.userRepo.Get(ctx, byEmail(req.Email))
	if err != nil {
		log.Error().Err(err).Msg("failed to get user by email")

		return fmt.Errorf("failed to get user by email: %w", err)
	}

	if user.ID == "" {
		return errNoUserWithEmail
	}

	token, err := dto.NewResetToken()
	if err != nil {
		log.Error().Err(err).Msg("failed to generate reset token")

		return fmt.Errorf("failed to generate reset token: %w", err)
	}

	err = s.userRepo.UpdateByID(ctx, user.ID, map[string]any{
		userModel.FieldPasswordResetToken:   token.Hashed,
		userModel.FieldPasswordResetExpires: timezone.Now().Add(resetTokenTTL),
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to store reset token")

		return fmt.Errorf("failed to store reset token: %w", err)
	}

	err = s.notifier.Send(ctx, notifModel.Message{
		Type: notifModel.TypePasswordReset,
		To:   user.Email,
		Name: user.Name,
		URL:  s.url(resetPasswordPath + token.Plain),
	})
	if err == nil {
		return nil
	}

	log.Error().Err(err).Str("user_id", user.ID).Msg("failed to send reset notification")

	clearErr := s.userRepo.UpdateByID(ctx, user.ID, map[string]any{
		userModel.FieldPasswordResetToken:   nil,
		userModel.FieldPasswordResetExpires: nil,
	})
	if clearErr != nil {
		log.Error().Err(clearErr).Str("user_id", user.ID).Msg("failed to clear reset token")
	}

	return errSendingEmail
}

func (s *serviceImpl) ResetPassword(ctx context.Context, token string, req dto.ResetPasswordRequest) (res dto.Session, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".auth.ResetPassword")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	user, err := s.userRepo.GetWithHidden(ctx, gDto.Where(
		gDto.Filter{
			Field:    userModel.FieldPasswordResetToken,
			Value:    dto.HashResetToken(token),
			Operator: gDto.FilterOperatorEq,
		},
		gDto.Filter{
			Field:    userModel.FieldPasswordResetExpires,
			Value:    timezone.Now(),
			Operator: gDto.FilterOperatorGreater,
		},
	))
	if err != nil {
		log.Error().Err(err).Msg("failed to get user by reset token")

		return res, fmt.Errorf("failed to get user by reset token: %w", err)
	}

	if user.ID == "" {
		return res, failure.InvalidResetToken
	}

	if err = s.changePassword(ctx, &user, req.Password); err != nil {
		return res, err
	}

	return s.session(user)
}

func (s *serviceImpl) UpdatePassword(ctx context.Context, userID string, req dto.UpdatePasswordRequest) (res dto.Session, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".auth.UpdatePassword")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	user, err := s.userRepo.GetWithHidden(ctx, gDto.Where(gDto.Filter{
		Field:    userModel.FieldID,
		Value:    userID,
		Operator: gDto.FilterOperatorEq,
	}))
	if err != nil {
		log.Error().Err(err).Msg("failed to get user")

		return res, fmt.Errorf("failed to get user: %w", err)
	}

	if user.ID == "" {
		return res, failure.UserNoLongerExists
	}

	if err = password.Verify(req.PasswordCurrent, user.Password); err != nil {
		if errors.Is(err, password.ErrInvalidPassword) {
			return res, errWrongPassword
		}

		return res, fmt.Errorf("failed to verify password: %w", err)
	}

	if err = s.changePassword(ctx, &user, req.Password); err != nil {
		return res, err
	}

	return s.session(user)
}

func (s *serviceImpl) changePassword(ctx context.Context, user *userModel.User, plain string) error {
	hashed, err := password.Hash(plain)
	if err != nil {
		log.Error().Err(err).Msg("failed to hash password")

		return fmt.Errorf("failed to hash password: %w", err)
	}

	now := timezone.Now()
	changedAt := now.Add(-passwordChangedSkew)

	err = s.userRepo.UpdateByID(ctx, user.ID, map[string]any{
		userModel.FieldPassword:             hashed,
		userModel.FieldPasswordChangedAt:    changedAt,
		userModel.FieldPasswordResetToken:   nil,
		userModel.FieldPasswordResetExpires: nil,
		constant.FieldModifiedAt:            now,
		constant.FieldModifiedBy:            user.ID,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to update password")

		return fmt.Errorf("failed to update password: %w", err)
	}

	user.Password = hashed
	user.PasswordChangedAt = &changedAt
	user.PasswordResetToken = nil
	user.PasswordResetExpires = nil

	return nil
}

func (s *serviceImpl) session(user userModel.User) (dto.Session, error) {
	token, expiresAt, err := s.jwt.Generate(user.ID)
	if err != nil {
		log.Error().Err(err).Msg("failed to sign session token")

		return dto.Session{}, fmt.Errorf("failed to sign session token: %w", err)
	}

	return dto.Session{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      userDto.Render(user),
	}, nil
}

func (s *serviceImpl) url(path string) string {
	return strings.TrimSuffix(s.cfg.App.BaseURL, "/") + path
}

func byEmail(email string) gDto.FilterGroup {
	return gDto.Where(gDto.Filter{
		Field:    userModel.FieldEmail,
		Value:    strings.ToLower(strings.TrimSpace(email)),
		Operator: gDto.FilterOperatorEq,
	})
}
