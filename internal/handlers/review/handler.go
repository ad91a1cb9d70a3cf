package review

import (
	"net/http"

	"natours/infras/otel"
	"natours/internal/domains/review/model"
	"natours/internal/domains/review/model/dto"
	"natours/internal/domains/review/service"
	"natours/internal/handlers/factory"
	"natours/permissions"
	"natours/shared/constant"
	gDto "natours/shared/dto"
	"natours/transport/http/middleware"

	"github.com/go-chi/chi/v5"
)

// Handler serves reviews both at /reviews and nested under /tours/{id}/reviews.
// Review ids use their own path parameter so the tour's {id} stays readable.
type Handler struct {
	resource factory.Resource[model.Review, dto.ReviewResponse]
	auth     middleware.Auth
}

func New(service service.Review, auth middleware.Auth, otel otel.Otel) Handler {
	return Handler{
		resource: factory.New[model.Review, dto.ReviewResponse]("review", service, otel).
			WithIDParam(constant.RequestParamReviewID),
		auth: auth,
	}
}

// Router registers the review routes. Every route needs a session.
func (handler *Handler) Router(router chi.Router) {
	router.Use(handler.auth.Protect)

	router.Get("/", handler.resource.GetAll(ByTour))
	router.With(handler.auth.RestrictTo(permissions.Reviewers...)).
		Post("/", factory.Create[model.Review, dto.ReviewResponse, dto.CreateReviewRequest](handler.resource, FillReview))

	router.Get("/{reviewId}", handler.resource.GetOne)

	router.Group(func(edit chi.Router) {
		edit.Use(handler.auth.RestrictTo(permissions.ReviewEdit...))

		edit.Patch("/{reviewId}", factory.Update[model.Review, dto.ReviewResponse, dto.UpdateReviewRequest](handler.resource))
		edit.Delete("/{reviewId}", handler.resource.Delete)
	})
}

// ByTour scopes read-many to the tour in the path, if any.
func ByTour(r *http.Request) gDto.FilterGroup {
	tourID := chi.URLParam(r, constant.RequestParamID)
	if tourID == "" {
		return gDto.FilterGroup{}
	}

	return gDto.Where(gDto.Filter{
		Field:    model.FieldTourID,
		Value:    tourID,
		Operator: gDto.FilterOperatorEq,
		Table:    model.TableName,
	})
}

// FillReview defaults the tour to the path and the author to the session user.
func FillReview(r *http.Request, req *dto.CreateReviewRequest) {
	if req.TourID == "" {
		req.TourID = chi.URLParam(r, constant.RequestParamID)
	}

	if req.UserID == "" {
		req.UserID, _ = r.Context().Value(constant.ContextKeyUserID).(string)
	}
}
