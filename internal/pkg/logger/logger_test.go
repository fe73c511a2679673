package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigFromSettings(t *testing.T) {
	cfg := ConfigFromSettings(" DEBUG ", "pretty")
	assert.Equal(t, DebugLevel, cfg.Level)
	assert.True(t, cfg.Pretty)

	cfg = ConfigFromSettings("warn", "json")
	assert.Equal(t, WarnLevel, cfg.Level)
	assert.False(t, cfg.Pretty)
}

func TestConfigure_JSONOutputRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Level: WarnLevel, Output: &buf})
	t.Cleanup(func() { Configure(Config{Level: InfoLevel, Pretty: true}) })

	Info().Msg("dropped")
	assert.Zero(t, buf.Len())

	Warn().Str("component", "test").Msg("kept")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "kept", entry["message"])
	assert.Equal(t, "test", entry["component"])
	assert.Equal(t, "mentorbridge", entry["service"])
	assert.Equal(t, "warn", entry["level"])
}

func TestWithFieldTagsChildLogger(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Level: InfoLevel, Output: &buf})
	t.Cleanup(func() { Configure(Config{Level: InfoLevel, Pretty: true}) })

	child := WithField("component", "stream")
	child.Info().Msg("subscribed")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "stream", entry["component"])
	assert.Equal(t, "mentorbridge", entry["service"])
}
