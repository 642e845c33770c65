package logging_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/birkland/xmlcatalog/logging"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, logging.ParseLevel("DEBUG"))
	assert.Equal(t, zerolog.WarnLevel, logging.ParseLevel("warning"))
	assert.Equal(t, zerolog.WarnLevel, logging.ParseLevel(""))
	assert.Equal(t, zerolog.WarnLevel, logging.ParseLevel("bogus"))
	assert.Equal(t, zerolog.Disabled, logging.ParseLevel("off"))
}

func TestNewWritesToFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "log.json")

	logger := logging.New(&logging.Config{Level: "info", Format: "json", Output: out})
	logger.Debug().Msg("hidden")
	logger.Info().Str("catalog", "file:///etc/xml/catalog").Msg("loaded")

	content, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(content), `"catalog":"file:///etc/xml/catalog"`)
	assert.Contains(t, string(content), "loaded")
	assert.NotContains(t, string(content), "hidden")
}

func TestContextLogger(t *testing.T) {
	assert.Equal(t, logging.Default().GetLevel(), logging.FromContext(context.Background()).GetLevel())

	logger := zerolog.Nop()
	ctx := logging.WithLogger(context.Background(), &logger)
	assert.Same(t, &logger, logging.FromContext(ctx))
}

func TestConfigure(t *testing.T) {
	original := *logging.Default()
	defer logging.SetDefault(original)

	logging.Configure(&logging.Config{Level: "error", Output: "discard"})
	assert.Equal(t, zerolog.ErrorLevel, logging.Default().GetLevel())
}
