package stripe_test

import (
	"testing"
	"time"

	"natours/infras/stripe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82/webhook"
)

const secret = "whsec_test_secret"

func sign(t *testing.T, payload string) string {
	t.Helper()

	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   []byte(payload),
		Secret:    secret,
		Timestamp: time.Now(),
	})

	return signed.Header
}

func TestParseWebhook(t *testing.T) {
	completed := `{
		"id": "evt_1",
		"object": "event",
		"type": "checkout.session.completed",
		"data": {"object": {
			"id": "cs_test_1",
			"object": "checkout.session",
			"client_reference_id": "tour-1",
			"customer_email": "buyer@natours.io",
			"amount_total": 49700
		}}
	}`

	t.Run("completed checkout", func(t *testing.T) {
		res, err := stripe.ParseWebhook([]byte(completed), sign(t, completed), secret)
		require.NoError(t, err)
		require.NotNil(t, res)

		assert.Equal(t, "cs_test_1", res.SessionID)
		assert.Equal(t, "tour-1", res.TourID)
		assert.Equal(t, "buyer@natours.io", res.CustomerEmail)
		assert.Equal(t, int64(49700), res.AmountTotal)
	})

	t.Run("other event types are ignored", func(t *testing.T) {
		other := `{"id":"evt_2","object":"event","type":"checkout.session.expired","data":{"object":{"id":"cs_test_2","object":"checkout.session"}}}`

		res, err := stripe.ParseWebhook([]byte(other), sign(t, other), secret)
		require.NoError(t, err)
		assert.Nil(t, res)
	})

	t.Run("bad signature fails closed", func(t *testing.T) {
		res, err := stripe.ParseWebhook([]byte(completed), "t=1,v1=deadbeef", secret)
		assert.ErrorIs(t, err, stripe.ErrInvalidSignature)
		assert.Nil(t, res)
	})

	t.Run("unconfigured secret rejects everything", func(t *testing.T) {
		signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
			Payload:   []byte(completed),
			Secret:    "",
			Timestamp: time.Now(),
		})

		res, err := stripe.ParseWebhook([]byte(completed), signed.Header, "")
		assert.ErrorIs(t, err, stripe.ErrInvalidSignature)
		assert.Nil(t, res)
	})

	t.Run("tampered payload", func(t *testing.T) {
		header := sign(t, completed)
		tampered := completed + " "

		_, err := stripe.ParseWebhook([]byte(tampered), header, secret)
		assert.ErrorIs(t, err, stripe.ErrInvalidSignature)
	})
}
