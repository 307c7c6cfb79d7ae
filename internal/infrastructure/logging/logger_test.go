package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsUnknownLevel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Level = "chatty"

	_, err := New(cfg)
	assert.Error(t, err)
}

func TestNewForFallsBackToNop(t *testing.T) {
	logger := NewFor("chatty", false)
	require.NotNil(t, logger)
	assert.NotPanics(t, func() { logger.Info("discarded") })
}

func TestComponent(t *testing.T) {
	logger, err := New(Config{Level: "debug", Development: true})
	require.NoError(t, err)

	child := logger.Component("sandbox")
	require.NotNil(t, child)
	assert.NotSame(t, logger.Logger, child.Logger)
}
