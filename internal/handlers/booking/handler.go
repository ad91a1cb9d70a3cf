package booking

import (
	"io"
	"net/http"

	"natours/infras/otel"
	"natours/internal/domains/booking/model"
	"natours/internal/domains/booking/model/dto"
	"natours/internal/domains/booking/service"
	paymentService "natours/internal/domains/payment/service"
	userModel "natours/internal/domains/user/model"
	"natours/internal/handlers/factory"
	"natours/permissions"
	"natours/shared/constant"
	gDto "natours/shared/dto"
	"natours/shared/failure"
	"natours/shared/query"
	"natours/transport/http/middleware"
	"natours/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

const (
	paramTourID = "tourId"

	// Provider events are small; anything larger is not a checkout notification.
	maxWebhookBytes = 1 << 16
)

type Handler struct {
	service  service.Booking
	payment  paymentService.Payment
	resource factory.Resource[model.Booking, dto.BookingResponse]
	auth     middleware.Auth
	otel     otel.Otel
}

type WebhookAck struct {
	Received bool `json:"received"`
}

func New(service service.Booking, payment paymentService.Payment, auth middleware.Auth, otel otel.Otel) Handler {
	return Handler{
		service:  service,
		payment:  payment,
		resource: factory.New[model.Booking, dto.BookingResponse]("booking", service, otel),
		auth:     auth,
		otel:     otel,
	}
}

// Router registers the /bookings group. The webhook is authenticated by its signature only.
func (handler *Handler) Router(router chi.Router) {
	router.Post("/webhook-checkout", handler.Webhook)

	router.Group(func(protected chi.Router) {
		protected.Use(handler.auth.Protect)

		protected.Get("/checkout-session/{tourId}", handler.CheckoutSession)
		protected.Get("/my-bookings", handler.MyBookings)

		protected.Group(func(staff chi.Router) {
			staff.Use(handler.auth.RestrictTo(permissions.Staff...))

			staff.Get("/", handler.resource.GetAll(nil))
			staff.Post("/", factory.Create[model.Booking, dto.BookingResponse, dto.CreateBookingRequest](handler.resource, nil))
			staff.Get("/{id}", handler.resource.GetOne)
			staff.Patch("/{id}", factory.Update[model.Booking, dto.BookingResponse, dto.UpdateBookingRequest](handler.resource))
			staff.Delete("/{id}", handler.resource.Delete)
		})
	})
}

// TourRouter registers the bookings of one tour under /tours/{id}/bookings.
func (handler *Handler) TourRouter(router chi.Router) {
	router.Use(handler.auth.Protect, handler.auth.RestrictTo(permissions.Staff...))

	router.Get("/", handler.resource.GetAll(ByTour))
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

// CheckoutSession starts a hosted checkout for one tour.
// @Summary Create a checkout session
// @Tags Booking
// @Produce json
// @Param tourId path string true "Tour ID"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /v1/bookings/checkout-session/{tourId} [get]
// @Security BearerAuth
func (handler *Handler) CheckoutSession(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CheckoutSession")
	defer scope.End()

	buyer := userModel.User{}
	buyer.ID, _ = ctx.Value(constant.ContextKeyUserID).(string)
	buyer.Email, _ = ctx.Value(constant.ContextKeyUserEmail).(string)

	session, err := handler.payment.CheckoutSession(ctx, chi.URLParam(r, paramTourID), buyer)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create checkout session")

		response.WithError(w, r, err)

		return
	}

	response.WithJSON(w, http.StatusOK, session)
}

// Webhook consumes the provider's payment notifications.
// @Summary Checkout webhook
// @Tags Booking
// @Accept json
// @Produce json
// @Param Stripe-Signature header string true "Provider signature"
// @Success 200 {object} WebhookAck
// @Failure 400 {object} response.Envelope
// @Router /v1/bookings/webhook-checkout [post]
func (handler *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".WebhookCheckout")
	defer scope.End()

	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBytes))
	if err != nil {
		scope.TraceError(err)

		response.WithError(w, r, failure.BadRequestFromString("failed to read webhook body"))

		return
	}

	if err = handler.payment.HandleWebhook(ctx, payload, r.Header.Get(constant.RequestHeaderStripeSignature)); err != nil {
		scope.TraceError(err)

		response.WithError(w, r, err)

		return
	}

	response.WithRaw(w, http.StatusOK, WebhookAck{Received: true})
}

// MyBookings lists the session user's bookings.
// @Summary My bookings
// @Tags Booking
// @Produce json
// @Success 200 {object} response.Envelope{data=[]dto.BookingResponse}
// @Failure 401 {object} response.Envelope
// @Router /v1/bookings/my-bookings [get]
// @Security BearerAuth
func (handler *Handler) MyBookings(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".MyBookings")
	defer scope.End()

	params, _, err := query.Apply(r.URL.Query())
	if err != nil {
		response.WithError(w, r, err)

		return
	}

	userID, _ := ctx.Value(constant.ContextKeyUserID).(string)

	bookings, err := handler.service.Mine(ctx, userID, params)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("user_id", userID).Msg("failed to get user bookings")

		response.WithError(w, r, err)

		return
	}

	response.WithList(w, len(bookings.Items), bookings.Total, bookings.Items)
}
