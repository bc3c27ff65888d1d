package logger

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestSetOutputWritesFormattedLines(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	t.Cleanup(func() { SetOutput(&bytes.Buffer{}) })

	Info("loaded %d holdings", 3)
	Debug("hidden at info level")

	out := buf.String()
	assert.Contains(t, out, "loaded 3 holdings")
	assert.Contains(t, out, "[info]")
	assert.NotContains(t, out, "hidden at info level")
}

func TestLogLevelFromEnvironment(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")
	setLevelFromEnvironment()
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())
}
