package testutil_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/clearfreight/tariffscope/internal/infrastructure/monitoring/logging"
	"github.com/clearfreight/tariffscope/internal/testutil"
)

func TestMockLogger(t *testing.T) {
	logger := testutil.NewMockLogger()

	logger.Info("cache warmed", logging.String("key", "value"))

	messages := logger.Messages()
	assert.Len(t, messages, 1)
	assert.Equal(t, "info", messages[0].Level)
	assert.Equal(t, "cache warmed", messages[0].Message)

	logger.Clear()
	assert.Empty(t, logger.Messages())

	logger.Error("lookup failed")
	assert.True(t, logger.HasMessage("error", "lookup failed"))
	assert.False(t, logger.HasMessage("info", "cache warmed"))
}

func TestMockLoggerNamedSharesRecorder(t *testing.T) {
	logger := testutil.NewMockLogger()

	child := logger.Named("sub").With(logging.Int("n", 1))
	child.Warn("degraded")

	assert.True(t, logger.HasMessage("warn", "degraded"))
}
