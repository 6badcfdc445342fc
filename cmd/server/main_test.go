package main

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warning"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel(""))
	assert.Equal(t, slog.LevelInfo, parseLevel("verbose"))
}

func TestRun_MissingSecretIsFatal(t *testing.T) {
	t.Setenv("SECRET_KEY", "")
	t.Setenv("CONFIG_FILE", "")

	err := run(nil)
	assert.ErrorContains(t, err, "signing secret")
}

func TestRun_BadFlag(t *testing.T) {
	assert.Error(t, run([]string{"--no-such-flag"}))
}
