package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks -mock_names=User=MockService

import (
	"context"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"natours/config"
	"natours/infras/otel"
	"natours/infras/s3"
	"natours/internal/domains/user/model"
	"natours/internal/domains/user/model/dto"
	"natours/internal/domains/user/repository"
	"natours/shared"
	"natours/shared/cache"
	"natours/shared/constant"
	"natours/shared/crud"
	"natours/shared/failure"
	"natours/shared/timezone"

	"github.com/rs/zerolog/log"
)

const photoDirectory = "users"

// Reviews and bookings embed the author's name and photo.
var dependentCaches = []string{crud.CachePrefix("review"), crud.CachePrefix("booking")}

type User interface {
	crud.Service[model.User, dto.UserResponse]
	UpdateMe(ctx context.Context, id string, req dto.UpdateMeRequest, photo *multipart.FileHeader) (dto.UserResponse, error)
	DeleteMe(ctx context.Context, id string) error
}

type serviceImpl struct {
	crud.Service[model.User, dto.UserResponse]
	repo  repository.User
	s3    s3.S3
	cfg   *config.Config
	cache cache.RedisCache
	otel  otel.Otel
}

func New(repo repository.User, s3 s3.S3, cfg *config.Config, cache cache.RedisCache, otel otel.Otel) User {
	return &serviceImpl{
		Service: crud.New(model.EntityName, repo, crud.Hooks[model.User, dto.UserResponse]{
			Render:      dto.Render,
			Invalidates: dependentCaches,
		}, cfg, cache, otel),
		repo:  repo,
		s3:    s3,
		cfg:   cfg,
		cache: cache,
		otel:  otel,
	}
}

func (s *serviceImpl) UpdateMe(ctx context.Context, id string, req dto.UpdateMeRequest, photo *multipart.FileHeader) (res dto.UserResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".user.UpdateMe")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if req.HasPassword() {
		return res, failure.BadRequestFromString("This route is not for password updates. Please use /updateMyPassword.") //nolint:wrapcheck
	}

	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return res, fmt.Errorf("failed to get user: %w", err)
	}

	if req.Email != nil {
		lowered := strings.ToLower(strings.TrimSpace(*req.Email))
		req.Email = &lowered
	}

	fields := shared.TransformFields(req, id)

	if photo != nil {
		fileName := fmt.Sprintf("user-%s-%d%s", id, timezone.Now().UnixMilli(), strings.ToLower(filepath.Ext(photo.Filename)))

		url, err := s.s3.UploadFile(ctx, photoDirectory, photo, fileName)
		if err != nil {
			log.Error().Err(err).Msg("failed to upload user photo")

			return res, fmt.Errorf("failed to upload user photo: %w", err)
		}

		if len(fields) == 0 {
			fields = map[string]any{
				constant.FieldModifiedAt: timezone.Now(),
				constant.FieldModifiedBy: id,
			}
		}

		fields[model.FieldPhoto] = url
	}

	res, err = s.Service.Update(ctx, id, fields)
	if err != nil {
		return res, err //nolint:wrapcheck
	}

	if photo != nil {
		s.deleteOldPhoto(ctx, current.Photo)
	}

	return res, nil
}

// DeleteMe deactivates the caller's account. The repository turns the delete into a soft delete.
func (s *serviceImpl) DeleteMe(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".user.DeleteMe")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	return s.Service.Delete(ctx, id) //nolint:wrapcheck
}

func (s *serviceImpl) deleteOldPhoto(ctx context.Context, url string) {
	domain := s.cfg.External.S3.PublicDomain
	if domain == "" || !strings.HasPrefix(url, domain) {
		return
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.s3.DeleteFile(c, url); err != nil {
			log.Warn().Err(err).Str("url", url).Msg("failed to delete old user photo")
		}
	}()
}
