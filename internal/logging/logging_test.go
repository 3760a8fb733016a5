package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		" WARN ":  zerolog.WarnLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"":        zerolog.InfoLevel,
		"verbose": zerolog.InfoLevel,
	}
	for in, want := range cases {
		require.Equal(t, want, ParseLevel(in), "level %q", in)
	}
}

func TestNew_JSONCarriesService(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Service: "storefront", Level: "info", Out: &buf})

	l.Debug().Msg("hidden")
	l.Info().Int64("order_id", 7).Msg("order placed")

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	require.Equal(t, "storefront", line["service"])
	require.Equal(t, "order placed", line["message"])
	require.EqualValues(t, 7, line["order_id"])
}
