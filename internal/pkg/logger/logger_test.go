package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLoggerForwardsFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	log := FromZap(zap.New(core))

	log.Warn("Primary backend failed, trying fallback: openai", map[string]interface{}{"provider": "openai"})
	log.Error("audit write failed", errors.New("disk full"), nil)

	entries := logs.All()
	if assert.Len(t, entries, 2) {
		assert.Equal(t, "openai", entries[0].ContextMap()["provider"])
		assert.Equal(t, "disk full", entries[1].ContextMap()["error"])
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	log := NewNop()
	log.Debug("ignored", map[string]interface{}{"k": 1})
	log.Info("ignored", nil)
	assert.NoError(t, log.Sync())
}
