package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"

	"natours/config"
	"natours/infras/metrics"
	"natours/infras/otel"
	"natours/infras/stripe"
	bookingDto "natours/internal/domains/booking/model/dto"
	bookingService "natours/internal/domains/booking/service"
	tourRepo "natours/internal/domains/tour/repository"
	userModel "natours/internal/domains/user/model"
	userRepo "natours/internal/domains/user/repository"
	"natours/shared/constant"
	gDto "natours/shared/dto"
	"natours/shared/failure"

	"github.com/rs/zerolog/log"
)

const (
	successPath = "/my-tours?alert=booking"
	tourPath    = "/tour/"
	centsPerUSD = 100
)

var errProviderUnavailable = &failure.Failure{
	Code:    http.StatusServiceUnavailable,
	Message: "Payments are temporarily unavailable. Please try again later.",
}

// Payment bridges bookings to the hosted checkout provider.
type Payment interface {
	CheckoutSession(ctx context.Context, tourID string, buyer userModel.User) (stripe.Session, error)
	// HandleWebhook verifies a provider notification and books the tour of a completed checkout.
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
}

type serviceImpl struct {
	gateway  stripe.Gateway
	bookings bookingService.Booking
	tourRepo tourRepo.Tour
	userRepo userRepo.User
	cfg      *config.Config
	otel     otel.Otel
}

func New(gateway stripe.Gateway, bookings bookingService.Booking, tourRepo tourRepo.Tour, userRepo userRepo.User, cfg *config.Config, otel otel.Otel) Payment {
	return &serviceImpl{
		gateway:  gateway,
		bookings: bookings,
		tourRepo: tourRepo,
		userRepo: userRepo,
		cfg:      cfg,
		otel:     otel,
	}
}

func (s *serviceImpl) CheckoutSession(ctx context.Context, tourID string, buyer userModel.User) (res stripe.Session, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".payment.CheckoutSession")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	tour, err := s.tourRepo.FindByID(ctx, tourID)
	if err != nil {
		return res, fmt.Errorf("failed to get tour: %w", err)
	}

	res, err = s.gateway.CreateCheckoutSession(ctx, stripe.CheckoutRequest{
		TourID:        tour.ID,
		TourName:      tour.Name,
		TourSummary:   tour.Summary,
		TourImage:     s.imageURL(tour.ImageCover),
		Price:         tour.Price,
		CustomerEmail: buyer.Email,
		SuccessURL:    s.url(successPath),
		CancelURL:     s.url(tourPath + tour.Slug),
	})
	if err != nil {
		if errors.Is(err, stripe.ErrUnavailable) {
			return res, errProviderUnavailable
		}

		log.Error().Err(err).Str("tour_id", tourID).Msg("failed to create checkout session")

		return res, fmt.Errorf("failed to create checkout session: %w", err)
	}

	return res, nil
}

func (s *serviceImpl) HandleWebhook(ctx context.Context, payload []byte, signature string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".payment.HandleWebhook")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	completed, err := s.gateway.ParseWebhook(payload, signature)
	if err != nil {
		log.Warn().Err(err).Msg("rejected checkout webhook")

		return failure.PaymentVerification(err) //nolint:wrapcheck
	}

	if completed == nil {
		return nil
	}

	scope.SetAttribute("checkout.session_id", completed.SessionID)

	buyer, err := s.userRepo.Get(ctx, gDto.Where(gDto.Filter{
		Field:    userModel.FieldEmail,
		Value:    strings.ToLower(completed.CustomerEmail),
		Operator: gDto.FilterOperatorEq,
	}))
	if err != nil {
		log.Error().Err(err).Msg("failed to get buyer")

		return fmt.Errorf("failed to get buyer: %w", err)
	}

	if buyer.ID == "" {
		log.Error().Str("session_id", completed.SessionID).Msg("no active user for completed checkout")

		return failure.NotFound("There is no user with that email address.") //nolint:wrapcheck
	}

	booking := bookingDto.NewBooking(completed.TourID, buyer.ID, float64(completed.AmountTotal)/centsPerUSD, true, buyer.ID)
	booking.SessionID = &completed.SessionID
	booking.Price = math.Round(booking.Price*centsPerUSD) / centsPerUSD

	_, err = s.bookings.Book(ctx, booking, metrics.SourceCheckout)
	if failure.GetCode(err) == http.StatusConflict {
		log.Info().Str("session_id", completed.SessionID).Msg("checkout already booked")

		return nil
	}

	if err != nil {
		log.Error().Err(err).Str("session_id", completed.SessionID).Msg("failed to book checkout")

		return fmt.Errorf("failed to book checkout: %w", err)
	}

	return nil
}

func (s *serviceImpl) url(path string) string {
	return strings.TrimSuffix(s.cfg.App.BaseURL, "/") + path
}

func (s *serviceImpl) imageURL(image string) string {
	if image == "" || strings.HasPrefix(image, "http://") || strings.HasPrefix(image, "https://") {
		return image
	}

	base := s.cfg.External.Stripe.ImageBaseURL
	if base == "" {
		return ""
	}

	return strings.TrimSuffix(base, "/") + "/" + image
}
