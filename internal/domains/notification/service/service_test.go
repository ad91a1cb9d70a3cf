package service_test

import (
	"context"
	"errors"
	"testing"

	"natours/config"
	kafkaMocks "natours/infras/kafka/mocks"
	"natours/infras/kafka"
	"natours/infras/otel/mocks"
	"natours/internal/domains/notification/model"
	"natours/internal/domains/notification/service"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func TestNotifier_Send(t *testing.T) {
	msg := model.Message{Type: model.TypeWelcome, To: "jonas@natours.io", Name: "Jonas Schmedtmann", URL: "http://localhost:3000/me"}

	tests := []struct {
		name    string
		sendErr error
		wantErr bool
	}{
		{name: "published"},
		{name: "broker down", sendErr: errors.New("dial tcp: connection refused"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			client := kafkaMocks.NewMockClient(ctrl)

			cfg := &config.Config{}
			cfg.Kafka.NotificationTopic = "notifications"

			client.EXPECT().
				SendMessages(gomock.Any(), "notifications", kafka.Message{Key: msg.To, Value: msg}).
				Return(tt.sendErr)

			err := service.New(client, cfg, mocks.NewOtel()).Send(context.Background(), msg)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMessage_FirstName(t *testing.T) {
	assert.Equal(t, "Jonas", model.Message{Name: "Jonas Schmedtmann"}.FirstName())
	assert.Equal(t, "Lourdes", model.Message{Name: "Lourdes"}.FirstName())
}
