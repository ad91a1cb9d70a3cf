package kafka_test

import (
	"testing"

	"natours/infras/kafka"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Type string `json:"type"`
	To   string `json:"to"`
}

func TestMessageRoundTrip(t *testing.T) {
	msg := kafka.Message{Key: "user-1", Value: payload{Type: "welcome", To: "a@b.io"}}

	encoded, err := msg.ToKafkaMessage("notifications")
	require.NoError(t, err)
	assert.Equal(t, "notifications", encoded.Topic)
	assert.Equal(t, []byte("user-1"), encoded.Key)
	assert.JSONEq(t, `{"type":"welcome","to":"a@b.io"}`, string(encoded.Value))

	decoded, err := kafka.DecodeKafkaMessage[payload](encoded)
	require.NoError(t, err)
	assert.Equal(t, payload{Type: "welcome", To: "a@b.io"}, decoded)
}

func TestToKafkaMessage_Unencodable(t *testing.T) {
	msg := kafka.Message{Value: make(chan int)}

	_, err := msg.ToKafkaMessage("notifications")
	assert.Error(t, err)
}
