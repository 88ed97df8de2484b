package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		"INFO":    zerolog.InfoLevel,
		"warn":    zerolog.WarnLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"off":     zerolog.Disabled,
		"":        zerolog.InfoLevel,
		"bogus":   zerolog.InfoLevel,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestComponentField(t *testing.T) {
	var buf bytes.Buffer
	log := Component(NewWithWriter(Config{Level: "debug", Format: "json"}, &buf), "session")
	log.Info().Msg("hello")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "session", rec["component"])
	assert.Equal(t, "hello", rec["message"])
}

func TestLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(Config{Level: "warn"}, &buf)
	log.Info().Msg("dropped")
	assert.Zero(t, buf.Len())
	log.Warn().Msg("kept")
	assert.NotZero(t, buf.Len())
}
