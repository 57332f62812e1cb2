package logger_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/hbnbclone/hbnb/pkg/logger"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestLog(t *testing.T) {
	buff := bytes.NewBuffer([]byte{})
	templogger, err := logger.New().FromBuffer(buff).Make()
	require.NoError(t, err)
	require.NotNil(t, templogger)
	// Get Stats Before
	require.Equal(t, buff.Len(), 0)
	templogger.Logger.Info().Msg("Test")
	// Get Stats After
	require.Contains(t, buff.String(), "Test")
}

func TestLogLevel(t *testing.T) {
	buff := bytes.NewBuffer([]byte{})
	templogger, err := logger.New().FromBuffer(buff).Level(zerolog.WarnLevel).Make()
	require.NoError(t, err)

	templogger.Logger.Info().Msg("hidden")
	require.Equal(t, 0, buff.Len())

	templogger.Logger.Warn().Msg("shown")
	require.Contains(t, buff.String(), "shown")
}

func TestLogLevelString(t *testing.T) {
	buff := bytes.NewBuffer([]byte{})
	templogger, err := logger.New().FromBuffer(buff).LevelString("debug").Make()
	require.NoError(t, err)
	templogger.Logger.Debug().Msg("dbg")
	require.Contains(t, buff.String(), "dbg")

	buff.Reset()
	templogger, err = logger.New().FromBuffer(buff).LevelString("bogus").Make()
	require.NoError(t, err)
	templogger.Logger.Debug().Msg("dbg")
	require.Equal(t, 0, buff.Len())
}

func TestLogFromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hbnb.log")
	templogger, err := logger.New().FromPath(path).Make()
	require.NoError(t, err)
	templogger.Logger.Info().Msg("to file")
	require.NoError(t, templogger.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "to file")
}

func TestNop(t *testing.T) {
	l := logger.Nop()
	l.Logger.Error().Msg("nothing")
	require.NoError(t, l.Close())
}
