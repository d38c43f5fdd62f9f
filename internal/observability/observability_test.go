package observability

import (
	"testing"

	"github.com/fulmenhq/gofulmen/crucible"
	"github.com/fulmenhq/gofulmen/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInitCLILogger(t *testing.T) {
	InitCLILogger("govguide-test", true)
	require.NotNil(t, CLILogger)
	CLILogger.Debug("verbose cli logger", zap.String("test", "value"))
}

func TestInitServerLogger(t *testing.T) {
	t.Run("Structured", func(t *testing.T) {
		InitServerLogger("govguide-test", "debug", ProfileStructured, "govguide")
		require.NotNil(t, ServerLogger)
		ServerLogger.Info("structured entry", zap.String("component", "test"))
	})

	t.Run("Simple", func(t *testing.T) {
		InitServerLogger("govguide-test", "info", "SIMPLE")
		require.NotNil(t, ServerLogger)
		ServerLogger.Info("simple entry")
	})
}

func TestServerLoggerConfig(t *testing.T) {
	structured := serverLoggerConfig("svc", "warn", ProfileStructured, "ns")
	assert.Equal(t, logging.ProfileStructured, structured.Profile)
	assert.Equal(t, "WARN", structured.DefaultLevel)
	assert.Equal(t, "ns", structured.StaticFields["namespace"])
	assert.Equal(t, "json", structured.Sinks[0].Format)
	assert.Len(t, structured.Middleware, 1)

	simple := serverLoggerConfig("svc", "", ProfileSimple)
	assert.Equal(t, logging.ProfileSimple, simple.Profile)
	assert.Equal(t, "INFO", simple.DefaultLevel)
	assert.Equal(t, "console", simple.Sinks[0].Format)
	assert.Empty(t, simple.StaticFields)
	assert.Empty(t, simple.Middleware)
}

func TestParseLogLevel(t *testing.T) {
	cases := map[string]string{
		"trace":   "TRACE",
		"DEBUG":   "DEBUG",
		" warn ":  "WARN",
		"warning": "WARN",
		"error":   "ERROR",
		"info":    "INFO",
		"bogus":   "INFO",
		"":        "INFO",
	}
	for in, want := range cases {
		assert.Equal(t, want, parseLogLevel(in), "level %q", in)
	}
}

func TestResolvePort(t *testing.T) {
	port, err := resolvePort("[::]:9191")
	require.NoError(t, err)
	assert.Equal(t, 9191, port)

	_, err = resolvePort("no-port")
	assert.Error(t, err)

	_, err = resolvePort("host:abc")
	assert.Error(t, err)
}

func TestEmbeddedCrucibleVersion(t *testing.T) {
	version := crucible.GetVersion()
	assert.NotEmpty(t, version.Gofulmen)
	assert.NotEmpty(t, version.Crucible)
}
