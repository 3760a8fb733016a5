package config

import (
	"bytes"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"HTTP_ADDR", "DEBUG", "ALLOWED_HOSTS", "SESSION_TTL", "INVOICE_PDF_ENABLED", "SECRET_KEY"} {
		t.Setenv(k, "")
	}
	cfg := Load()

	require.Equal(t, ":8000", cfg.HTTPAddr)
	require.True(t, cfg.Debug)
	require.Equal(t, []string{"127.0.0.1", "localhost", ".onrender.com"}, cfg.AllowedHosts)
	require.Equal(t, 14*24*time.Hour, cfg.SessionTTL)
	require.True(t, cfg.InvoicePDFEnabled)
	require.Equal(t, "unsafe-local-key", cfg.SecretKey)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("DEBUG", "False")
	t.Setenv("ALLOWED_HOSTS", " shop.example.com , ,api.example.com")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("INVOICE_PDF_ENABLED", "false")
	t.Setenv("CLOUDINARY_CLOUD_NAME", "demo")

	cfg := Load()

	require.False(t, cfg.Debug)
	require.Equal(t, []string{"shop.example.com", "api.example.com"}, cfg.AllowedHosts)
	require.Equal(t, 2*time.Hour, cfg.SessionTTL)
	require.False(t, cfg.InvoicePDFEnabled)
	require.Equal(t, "demo", cfg.Cloudinary.CloudName)
}

func TestLoad_BadDurationFallsBack(t *testing.T) {
	t.Setenv("SESSION_TTL", "soon")
	require.Equal(t, 14*24*time.Hour, Load().SessionTTL)
}

func TestLoad_DebugOnlyForExactTrue(t *testing.T) {
	cases := map[string]bool{"True": true, "true": false, "1": false, "yes": false, "False": false}
	for v, want := range cases {
		t.Setenv("DEBUG", v)
		require.Equal(t, want, Load().Debug, v)
	}
}

func TestLogSummary(t *testing.T) {
	var buf bytes.Buffer
	cfg := Config{HTTPAddr: ":9000", SecretKey: "unsafe-local-key", AllowedHosts: []string{"localhost"}}

	cfg.LogSummary(zerolog.New(&buf).With().Str("service", "storefront").Logger())

	out := buf.String()
	require.Contains(t, out, `"service":"storefront"`)
	require.Contains(t, out, `"http_addr":":9000"`)
	require.Contains(t, out, "SECRET_KEY is the development default")
	require.NotContains(t, out, "unsafe-local-key")

	buf.Reset()
	cfg.SecretKey = "s3cret"
	cfg.LogSummary(zerolog.New(&buf).Level(zerolog.WarnLevel))
	require.Empty(t, buf.String())
}
