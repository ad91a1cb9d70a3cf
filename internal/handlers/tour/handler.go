package tour

import (
	"net/http"
	"strconv"
	"strings"

	"natours/infras/otel"
	"natours/internal/domains/tour/model"
	"natours/internal/domains/tour/model/dto"
	"natours/internal/domains/tour/service"
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

const (
	paramYear     = "year"
	paramDistance = "distance"
	paramLatLng   = "latlng"
	paramUnit     = "unit"

	formImageCover = "imageCover"
	formImages     = "images"
)

var topCheap = map[string]string{
	constant.RequestParamLimit:  "5",
	constant.RequestParamSort:   "-ratings_average,price",
	constant.RequestParamFields: "name,price,ratings_average,summary,difficulty",
}

type Handler struct {
	service  service.Tour
	resource factory.Resource[model.Tour, dto.TourResponse]
	auth     middleware.Auth
	otel     otel.Otel
}

func New(service service.Tour, auth middleware.Auth, otel otel.Otel) Handler {
	return Handler{
		service:  service,
		resource: factory.New[model.Tour, dto.TourResponse]("tour", service, otel),
		auth:     auth,
		otel:     otel,
	}
}

// Router registers the /tours group. Nested review and booking routes are mounted by the caller.
func (handler *Handler) Router(router chi.Router) {
	router.With(AliasTopTours).Get("/top-5-cheap", handler.resource.GetAll(nil))
	router.Get("/tour-stats", handler.Stats)
	router.With(handler.auth.Protect, handler.auth.RestrictTo(permissions.Guides...)).
		Get("/monthly-plan/{year}", handler.MonthlyPlan)
	router.Get("/tours-within/{distance}/center/{latlng}/unit/{unit}", handler.Within)
	router.Get("/distances/{latlng}/unit/{unit}", handler.Distances)

	router.Get("/", handler.resource.GetAll(nil))
	router.With(handler.auth.IsLoggedIn).Get("/{id}", handler.GetTour)

	router.Group(func(staff chi.Router) {
		staff.Use(handler.auth.Protect, handler.auth.RestrictTo(permissions.Staff...))

		staff.Post("/", factory.Create[model.Tour, dto.TourResponse, dto.CreateTourRequest](handler.resource, nil))
		staff.Patch("/{id}", handler.UpdateTour)
		staff.Delete("/{id}", handler.resource.Delete)
	})
}

// AliasTopTours presets the query of the five best cheap tours.
func AliasTopTours(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		values := r.URL.Query()
		for key, val := range topCheap {
			values.Set(key, val)
		}

		r.URL.RawQuery = values.Encode()

		next.ServeHTTP(w, r)
	})
}

// GetTour returns one tour with its guides and reviews. Admins may also read secret tours.
// @Summary Get a tour by ID
// @Tags Tour
// @Produce json
// @Param id path string true "Tour ID"
// @Success 200 {object} response.Envelope{data=dto.TourResponse}
// @Failure 404 {object} response.Envelope
// @Router /v1/tours/{id} [get]
func (handler *Handler) GetTour(w http.ResponseWriter, r *http.Request) {
	role, _ := r.Context().Value(constant.ContextKeyUserRole).(string)
	if !permissions.Allow(role, permissions.Admin...) {
		handler.resource.GetOne(w, r)

		return
	}

	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetAnyTour")
	defer scope.End()

	tour, err := handler.service.GetAny(ctx, chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get tour")

		response.WithError(w, r, err)

		return
	}

	response.WithJSON(w, http.StatusOK, tour)
}

// UpdateTour patches a tour from JSON, or replaces its images from a multipart form.
// @Summary Update a tour
// @Tags Tour
// @Accept json,mpfd
// @Produce json
// @Param id path string true "Tour ID"
// @Param request body dto.UpdateTourRequest false "Update Tour Request"
// @Param imageCover formData file false "Cover image"
// @Param images formData file false "Up to three images"
// @Success 200 {object} response.Envelope{data=dto.TourResponse}
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /v1/tours/{id} [patch]
// @Security BearerAuth
func (handler *Handler) UpdateTour(w http.ResponseWriter, r *http.Request) {
	if !strings.HasPrefix(r.Header.Get(constant.RequestHeaderContentType), constant.ContentTypeMultipartFormData) {
		factory.Update[model.Tour, dto.TourResponse, dto.UpdateTourRequest](handler.resource)(w, r)

		return
	}

	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateTourImages")
	defer scope.End()

	if err := r.ParseMultipartForm(constant.RequestMaxMemory); err != nil {
		scope.TraceError(err)

		response.WithError(w, r, failure.BadRequestFromString("malformed multipart form"))

		return
	}

	req := dto.TourImagesRequest{Images: r.MultipartForm.File[formImages]}
	if covers := r.MultipartForm.File[formImageCover]; len(covers) > 0 {
		req.ImageCover = covers[0]
	}

	if req.Empty() {
		response.WithError(w, r, failure.BadRequestFromString("no images in request"))

		return
	}

	if err := validator.ValidateStruct(&req); err != nil {
		scope.TraceError(err)

		response.WithError(w, r, err)

		return
	}

	by, _ := ctx.Value(constant.ContextKeyUserID).(string)

	tour, err := handler.service.UpdateImages(ctx, chi.URLParam(r, constant.RequestParamID), by, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to update tour images")

		response.WithError(w, r, err)

		return
	}

	response.WithJSON(w, http.StatusOK, tour)
}

// Stats aggregates well-rated tours by difficulty.
// @Summary Tour statistics
// @Tags Tour
// @Produce json
// @Success 200 {object} response.Envelope{data=[]model.Stat}
// @Router /v1/tours/tour-stats [get]
func (handler *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".TourStats")
	defer scope.End()

	stats, err := handler.service.Stats(ctx)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get tour stats")

		response.WithError(w, r, err)

		return
	}

	response.WithJSON(w, http.StatusOK, stats)
}

// MonthlyPlan counts tour starts per month of a year.
// @Summary Monthly plan
// @Tags Tour
// @Produce json
// @Param year path int true "Year"
// @Success 200 {object} response.Envelope{data=[]model.MonthlyPlan}
// @Failure 400 {object} response.Envelope
// @Router /v1/tours/monthly-plan/{year} [get]
// @Security BearerAuth
func (handler *Handler) MonthlyPlan(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".MonthlyPlan")
	defer scope.End()

	year, err := strconv.Atoi(chi.URLParam(r, paramYear))
	if err != nil || year < 1 {
		response.WithError(w, r, failure.BadRequestFromString("year must be a positive number"))

		return
	}

	plan, err := handler.service.MonthlyPlan(ctx, year)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Int("year", year).Msg("failed to get monthly plan")

		response.WithError(w, r, err)

		return
	}

	response.WithJSON(w, http.StatusOK, plan)
}

// Within lists tours starting inside a radius.
// @Summary Tours within a radius
// @Tags Tour
// @Produce json
// @Param distance path number true "Radius"
// @Param latlng path string true "Center as lat,lng"
// @Param unit path string true "mi or km"
// @Success 200 {object} response.Envelope{data=[]dto.TourResponse}
// @Failure 400 {object} response.Envelope
// @Router /v1/tours/tours-within/{distance}/center/{latlng}/unit/{unit} [get]
func (handler *Handler) Within(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".ToursWithin")
	defer scope.End()

	geo, err := dto.ParseGeoQuery(chi.URLParam(r, paramLatLng), chi.URLParam(r, paramUnit))
	if err != nil {
		response.WithError(w, r, err)

		return
	}

	distance, err := strconv.ParseFloat(chi.URLParam(r, paramDistance), 64)
	if err != nil {
		response.WithError(w, r, failure.BadRequestFromString("distance must be a number"))

		return
	}

	tours, err := handler.service.Within(ctx, distance, geo)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get tours within radius")

		response.WithError(w, r, err)

		return
	}

	response.WithList(w, len(tours), len(tours), tours)
}

// Distances lists every tour's distance from a point, nearest first.
// @Summary Tour distances
// @Tags Tour
// @Produce json
// @Param latlng path string true "Point as lat,lng"
// @Param unit path string true "mi or km"
// @Success 200 {object} response.Envelope{data=[]model.Distance}
// @Failure 400 {object} response.Envelope
// @Router /v1/tours/distances/{latlng}/unit/{unit} [get]
func (handler *Handler) Distances(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".TourDistances")
	defer scope.End()

	geo, err := dto.ParseGeoQuery(chi.URLParam(r, paramLatLng), chi.URLParam(r, paramUnit))
	if err != nil {
		response.WithError(w, r, err)

		return
	}

	distances, err := handler.service.Distances(ctx, geo)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get tour distances")

		response.WithError(w, r, err)

		return
	}

	response.WithJSON(w, http.StatusOK, distances)
}
