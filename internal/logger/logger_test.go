package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestPrepareLogger(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		l := log.New()
		require.NoError(t, prepare(l, Config{}, &bytes.Buffer{}))
		require.Equal(t, log.WarnLevel, l.Level)
		require.IsType(t, &log.TextFormatter{}, l.Formatter)
	})

	t.Run("json output", func(t *testing.T) {
		l := log.New()
		out := &bytes.Buffer{}
		require.NoError(t, prepare(l, Config{Level: "debug", Format: "JSON"}, out))
		require.Equal(t, log.DebugLevel, l.Level)

		l.WithField("op", "load").Debug("loading events")
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(out.Bytes(), &entry))
		require.Equal(t, "load", entry["op"])
		require.Equal(t, "loading events", entry["msg"])
	})

	t.Run("level filters", func(t *testing.T) {
		l := log.New()
		out := &bytes.Buffer{}
		require.NoError(t, prepare(l, Config{Level: "ERROR"}, out))
		l.Warn("skipped")
		require.Empty(t, out.String())
	})

	t.Run("incorrect level", func(t *testing.T) {
		require.Error(t, prepare(log.New(), Config{Level: "LOUD"}, &bytes.Buffer{}))
	})

	t.Run("incorrect format", func(t *testing.T) {
		require.ErrorIs(t, prepare(log.New(), Config{Format: "xml"}, &bytes.Buffer{}), ErrUnknownFormat)
	})
}
