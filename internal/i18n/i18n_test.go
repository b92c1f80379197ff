package i18n

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidLocale(t *testing.T) {
	assert.True(t, IsValidLocale("en"))
	assert.True(t, IsValidLocale("pt"))
	assert.False(t, IsValidLocale("fr"))
	assert.False(t, IsValidLocale(""))
}

func TestGet_FallsBackToDefault(t *testing.T) {
	en, err := Get(English)
	require.NoError(t, err)
	other, err := Get("fr")
	require.NoError(t, err)
	assert.Equal(t, en, other)

	pt, err := Get(Portuguese)
	require.NoError(t, err)
	assert.Equal(t, "agora mesmo", T(pt, "time.just_now", nil))
}

func TestT(t *testing.T) {
	dict := Dictionary{
		"activity": map[string]any{
			"comment": "{user} commented on {deliverable}",
		},
		"flat": "value",
	}

	assert.Equal(t, "value", T(dict, "flat", nil))
	assert.Equal(t, "Ana commented on Logo", T(dict, "activity.comment", map[string]string{"user": "Ana", "deliverable": "Logo"}))
	assert.Equal(t, "missing.key", T(dict, "missing.key", nil))
	assert.Equal(t, "activity", T(dict, "activity", nil), "non-string values return the key")
	assert.Equal(t, "flat.deeper", T(dict, "flat.deeper", nil))
}

func TestInterpolate(t *testing.T) {
	assert.Equal(t, "3 days ago", Interpolate("{count} days ago", map[string]string{"count": "3"}))
	assert.Equal(t, "{count} days ago", Interpolate("{count} days ago", nil))
	assert.Equal(t, "{count} days ago", Interpolate("{count} days ago", map[string]string{"count": ""}))
	assert.Equal(t, "a-b {c}", Interpolate("{x}-{y} {c}", map[string]string{"x": "a", "y": "b"}))
}

func TestFormatRelativeTime(t *testing.T) {
	dict, err := Get(English)
	require.NoError(t, err)
	now := time.Date(2023, time.November, 20, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		ago  time.Duration
		want string
	}{
		{30 * time.Second, "just now"},
		{time.Minute, "1 minute ago"},
		{45 * time.Minute, "45 minutes ago"},
		{time.Hour, "1 hour ago"},
		{5 * time.Hour, "5 hours ago"},
		{24 * time.Hour, "1 day ago"},
		{72 * time.Hour, "3 days ago"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatRelativeTime(now, now.Add(-tt.ago), dict))
		})
	}
}

func TestNegotiateLocale(t *testing.T) {
	assert.Equal(t, English, NegotiateLocale(""))
	assert.Equal(t, Portuguese, NegotiateLocale("pt-BR,pt;q=0.9,en;q=0.8"))
	assert.Equal(t, English, NegotiateLocale("en-US"))
	assert.Equal(t, English, NegotiateLocale("fr-FR"))
	assert.Equal(t, English, NegotiateLocale(";;;garbage"))
}
