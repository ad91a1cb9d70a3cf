package user

import (
	"context"
	"mime/multipart"
	"net/http"
	"strings"

	"natours/infras/otel"
	"natours/internal/domains/user/model"
	"natours/internal/domains/user/model/dto"
	"natours/internal/domains/user/service"
	"natours/internal/handlers/factory"
	"natours/permissions"
	"natours/shared/constant"
	"natours/shared/failure"
	"natours/shared/validator"
	"natours/transport/http/middleware"
	"natours/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

const formPhoto = "photo"

type Handler struct {
	service  service.User
	resource factory.Resource[model.User, dto.UserResponse]
	auth     middleware.Auth
	otel     otel.Otel
}

func New(service service.User, auth middleware.Auth, otel otel.Otel) Handler {
	return Handler{
		service:  service,
		resource: factory.New[model.User, dto.UserResponse]("user", service, otel),
		auth:     auth,
		otel:     otel,
	}
}

// Router registers profile and admin routes on the /users group.
func (handler *Handler) Router(router chi.Router) {
	router.Group(func(protected chi.Router) {
		protected.Use(handler.auth.Protect)

		protected.Get("/me", handler.GetMe)
		protected.Patch("/updateMe", handler.UpdateMe)
		protected.Delete("/deleteMe", handler.DeleteMe)

		protected.Group(func(admin chi.Router) {
			admin.Use(handler.auth.RestrictTo(permissions.Admin...))

			admin.Get("/", handler.resource.GetAll(nil))
			admin.Post("/", factory.Create[model.User, dto.UserResponse, dto.CreateUserRequest](handler.resource, nil))
			admin.Get("/{id}", handler.resource.GetOne)
			admin.Patch("/{id}", factory.Update[model.User, dto.UserResponse, dto.UpdateUserRequest](handler.resource))
			admin.Delete("/{id}", handler.resource.Delete)
		})
	})
}

// GetMe returns the session user.
// @Summary Get my profile
// @Tags User
// @Produce json
// @Success 200 {object} response.Envelope{data=dto.UserResponse}
// @Failure 401 {object} response.Envelope
// @Router /v1/users/me [get]
// @Security BearerAuth
func (handler *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetMe")
	defer scope.End()

	user, err := handler.service.Get(ctx, sessionUser(ctx))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get session user")

		response.WithError(w, r, err)

		return
	}

	response.WithJSON(w, http.StatusOK, user)
}

// UpdateMe changes the session user's name, email or photo.
// Accepts JSON or a multipart form with an optional photo file.
// @Summary Update my profile
// @Tags User
// @Accept json,mpfd
// @Produce json
// @Param request body dto.UpdateMeRequest false "Update Me Request"
// @Param photo formData file false "Profile photo"
// @Success 200 {object} response.Envelope{data=dto.UserResponse}
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /v1/users/updateMe [patch]
// @Security BearerAuth
func (handler *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateMe")
	defer scope.End()

	req, photo, err := decodeUpdateMe(r)
	if err != nil {
		scope.TraceError(err)
		log.Warn().Err(err).Msg("failed to validate request body")

		response.WithError(w, r, err)

		return
	}

	user, err := handler.service.UpdateMe(ctx, sessionUser(ctx), req, photo)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to update session user")

		response.WithError(w, r, err)

		return
	}

	response.WithJSON(w, http.StatusOK, user)
}

// DeleteMe deactivates the session user.
// @Summary Delete my account
// @Tags User
// @Success 204
// @Failure 401 {object} response.Envelope
// @Router /v1/users/deleteMe [delete]
// @Security BearerAuth
func (handler *Handler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeleteMe")
	defer scope.End()

	if err := handler.service.DeleteMe(ctx, sessionUser(ctx)); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to deactivate session user")

		response.WithError(w, r, err)

		return
	}

	response.WithNoContent(w)
}

func decodeUpdateMe(r *http.Request) (dto.UpdateMeRequest, *multipart.FileHeader, error) {
	req := dto.UpdateMeRequest{}

	if !strings.HasPrefix(r.Header.Get(constant.RequestHeaderContentType), constant.ContentTypeMultipartFormData) {
		return req, nil, validator.Validate(r.Body, &req) //nolint:wrapcheck
	}

	if err := r.ParseMultipartForm(constant.RequestMaxMemory); err != nil {
		return req, nil, failure.BadRequestFromString("malformed multipart form")
	}

	req.Name = formValue(r.MultipartForm, "name")
	req.Email = formValue(r.MultipartForm, "email")
	req.Password = formValue(r.MultipartForm, "password")
	req.PasswordConfirm = formValue(r.MultipartForm, "password_confirm")

	if err := validator.ValidateStruct(&req); err != nil {
		return req, nil, err
	}

	upload := dto.PhotoRequest{}

	if files := r.MultipartForm.File[formPhoto]; len(files) > 0 {
		upload.Photo = files[0]
	}

	if err := validator.ValidateStruct(&upload); err != nil {
		return req, nil, err
	}

	return req, upload.Photo, nil
}

func formValue(form *multipart.Form, key string) *string {
	values, ok := form.Value[key]
	if !ok || len(values) == 0 {
		return nil
	}

	return &values[0]
}

func sessionUser(ctx context.Context) string {
	id, _ := ctx.Value(constant.ContextKeyUserID).(string)

	return id
}
