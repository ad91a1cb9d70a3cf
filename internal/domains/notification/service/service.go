package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks

import (
	"context"
	"fmt"

	"natours/config"
	"natours/infras/kafka"
	"natours/infras/otel"
	"natours/internal/domains/notification/model"
	"natours/shared/constant"

	"github.com/rs/zerolog/log"
)

// Notifier hands messages to the mail pipeline. Delivery happens elsewhere.
type Notifier interface {
	Send(ctx context.Context, msg model.Message) error
}

type serviceImpl struct {
	kafka kafka.Client
	cfg   *config.Config
	otel  otel.Otel
}

func New(kafka kafka.Client, cfg *config.Config, otel otel.Otel) Notifier {
	return &serviceImpl{
		kafka: kafka,
		cfg:   cfg,
		otel:  otel,
	}
}

func (s *serviceImpl) Send(ctx context.Context, msg model.Message) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".notification.Send")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	scope.SetAttribute("notification.type", msg.Type)

	err = s.kafka.SendMessages(ctx, s.cfg.Kafka.NotificationTopic, kafka.Message{Key: msg.To, Value: msg})
	if err != nil {
		log.Error().Err(err).Str("type", msg.Type).Msg("failed to publish notification")

		return fmt.Errorf("failed to publish notification: %w", err)
	}

	return nil
}
