package stripe

//go:generate go run go.uber.org/mock/mockgen -source=./stripe.go -destination=./mocks/stripe_mock.go -package=mocks

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"natours/config"
	"natours/infras/metrics"
	"natours/infras/otel"
	"natours/shared/constant"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	gobreaker "github.com/sony/gobreaker/v2"
	stripeGo "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
	"github.com/stripe/stripe-go/v82/webhook"
)

const (
	breakerName        = "stripe-checkout"
	breakerMinRequests = 5
	breakerFailureRate = 0.6
)

var (
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrUnavailable      = errors.New("payment provider unavailable")
)

type CheckoutRequest struct {
	TourID        string
	TourName      string
	TourSummary   string
	TourImage     string
	Price         float64
	CustomerEmail string
	SuccessURL    string
	CancelURL     string
}

type Session struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// CompletedCheckout is what a paid checkout session carries back to us.
type CompletedCheckout struct {
	SessionID     string
	TourID        string
	CustomerEmail string
	AmountTotal   int64
}

// Gateway is the hosted checkout provider.
type Gateway interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (Session, error)
	// ParseWebhook verifies the signature and returns nil for events other than a completed checkout.
	ParseWebhook(payload []byte, signature string) (*CompletedCheckout, error)
}

type gatewayImpl struct {
	api     *client.API
	config  *config.Config
	otel    otel.Otel
	breaker *gobreaker.CircuitBreaker[*stripeGo.CheckoutSession]
}

func New(cfg *config.Config, otl otel.Otel) Gateway {
	api := &client.API{}
	api.Init(cfg.External.Stripe.SecretKey, nil)

	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)

	breaker := gobreaker.NewCircuitBreaker[*stripeGo.CheckoutSession](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < breakerMinRequests {
				return false
			}

			return float64(counts.TotalFailures)/float64(counts.Requests) >= breakerFailureRate
		},
		// rejected requests are the caller's fault, not an outage
		IsSuccessful: func(err error) bool {
			var stripeErr *stripeGo.Error
			if errors.As(err, &stripeErr) {
				return stripeErr.HTTPStatusCode < http.StatusInternalServerError
			}

			return err == nil
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
	})

	return &gatewayImpl{
		api:     api,
		config:  cfg,
		otel:    otl,
		breaker: breaker,
	}
}

func (g *gatewayImpl) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (res Session, err error) {
	ctx, scope := g.otel.NewScope(ctx, constant.OtelStripeScopeName, constant.OtelStripeScopeName+".CreateCheckoutSession")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	scope.SetAttribute("tour_id", req.TourID)

	params := buildCheckoutParams(g.config.External.Stripe.Currency, req)
	params.Context = ctx

	session, err := g.breaker.Execute(func() (*stripeGo.CheckoutSession, error) {
		return g.api.CheckoutSessions.New(params)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CheckoutSessionsTotal.WithLabelValues(metrics.OutcomeRejected).Inc()

			return res, fmt.Errorf("%w: %w", ErrUnavailable, err)
		}

		metrics.CheckoutSessionsTotal.WithLabelValues(metrics.OutcomeFailure).Inc()
		log.Error().Err(err).Str("tour_id", req.TourID).Msg("failed to create checkout session")

		return res, fmt.Errorf("failed to create checkout session: %w", err)
	}

	metrics.CheckoutSessionsTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()

	return Session{ID: session.ID, URL: session.URL}, nil
}

func (g *gatewayImpl) ParseWebhook(payload []byte, signature string) (*CompletedCheckout, error) {
	return ParseWebhook(payload, signature, g.config.External.Stripe.WebhookSecret)
}

// ParseWebhook verifies payload against secret and decodes a completed checkout session.
func ParseWebhook(payload []byte, signature, secret string) (*CompletedCheckout, error) {
	if secret == "" {
		return nil, fmt.Errorf("%w: webhook secret is not configured", ErrInvalidSignature)
	}

	event, err := webhook.ConstructEventWithOptions(payload, signature, secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}

	if event.Type != stripeGo.EventTypeCheckoutSessionCompleted || event.Data == nil {
		return nil, nil //nolint:nilnil
	}

	var session stripeGo.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return nil, fmt.Errorf("failed to decode checkout session: %w", err)
	}

	email := session.CustomerEmail
	if email == "" && session.CustomerDetails != nil {
		email = session.CustomerDetails.Email
	}

	return &CompletedCheckout{
		SessionID:     session.ID,
		TourID:        session.ClientReferenceID,
		CustomerEmail: email,
		AmountTotal:   session.AmountTotal,
	}, nil
}

func buildCheckoutParams(currency string, req CheckoutRequest) *stripeGo.CheckoutSessionParams {
	product := &stripeGo.CheckoutSessionLineItemPriceDataProductDataParams{
		Name: stripeGo.String(req.TourName + " Tour"),
	}

	if req.TourSummary != "" {
		product.Description = stripeGo.String(req.TourSummary)
	}

	if req.TourImage != "" {
		product.Images = stripeGo.StringSlice([]string{req.TourImage})
	}

	return &stripeGo.CheckoutSessionParams{
		Mode:               stripeGo.String(string(stripeGo.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripeGo.StringSlice([]string{"card"}),
		SuccessURL:         stripeGo.String(req.SuccessURL),
		CancelURL:          stripeGo.String(req.CancelURL),
		CustomerEmail:      stripeGo.String(req.CustomerEmail),
		ClientReferenceID:  stripeGo.String(req.TourID),
		LineItems: []*stripeGo.CheckoutSessionLineItemParams{
			{
				Quantity: stripeGo.Int64(1),
				PriceData: &stripeGo.CheckoutSessionLineItemPriceDataParams{
					Currency:    stripeGo.String(currency),
					UnitAmount:  stripeGo.Int64(int64(math.Round(req.Price * 100))),
					ProductData: product,
				},
			},
		},
	}
}
