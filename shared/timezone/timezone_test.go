package timezone_test

import (
	"testing"
	"time"

	"natours/config"
	"natours/shared/timezone"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	tests := []struct {
		name     string
		timezone string
		want     string
	}{
		{name: "standard name", timezone: "Europe/Vienna", want: "Europe/Vienna"},
		{name: "empty falls back to UTC", timezone: "", want: "UTC"},
		{name: "unknown falls back to UTC", timezone: "Mars/Olympus", want: "UTC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{}
			cfg.App.Timezone = tt.timezone

			timezone.Init(cfg)

			assert.Equal(t, tt.want, timezone.GetLocation().String())
			assert.Equal(t, tt.want, timezone.Now().Location().String())
		})
	}
}

func TestParseAndFormat(t *testing.T) {
	cfg := &config.Config{}
	cfg.App.Timezone = "UTC"
	timezone.Init(cfg)

	parsed, err := timezone.Parse("2006-01-02", "2021-06-19")
	require.NoError(t, err)

	assert.Equal(t, "2021-06-19 00:00", timezone.Format(parsed, "2006-01-02 15:04"))
	assert.Equal(t, time.UTC, timezone.ToAppTime(parsed).Location())
}
