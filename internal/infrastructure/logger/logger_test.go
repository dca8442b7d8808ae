package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RejectsBadInput(t *testing.T) {
	_, _, err := New(Options{Level: "chatty", Format: "json"})
	assert.Error(t, err)

	_, _, err = New(Options{Level: "info", Format: "xml"})
	assert.Error(t, err)
}

func TestNew_WritesToFile(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.TraceLevel) })

	path := filepath.Join(t.TempDir(), "logs", "agents.log")
	log, closer, err := New(Options{Level: "warn", Format: "json", File: path, Service: "trading-agents"})
	require.NoError(t, err)

	log.Info().Msg("dropped")
	log.Warn().Str("op", "get").Msg("kept")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"kept"`)
	assert.Contains(t, string(data), `"service":"trading-agents"`)
	assert.NotContains(t, string(data), "dropped")
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())
}
