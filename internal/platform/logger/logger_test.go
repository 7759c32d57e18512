package logger_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/melih/mapserver/internal/platform/logger"
	"github.com/stretchr/testify/assert"
)

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Options{Level: "warn", DisableColors: true, Output: &buf})

	log.Info("hidden")
	log.Warn("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "WARNING: shown")
}

func TestLogger_InvalidLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Options{Level: "loud", DisableColors: true, Output: &buf})

	log.Debug("debug line")
	log.Info("info line")

	out := buf.String()
	assert.NotContains(t, out, "debug line")
	assert.Contains(t, out, "info line")
}

func TestLogger_WithAttachesSortedFields(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Options{Level: "debug", DisableColors: true, Output: &buf})

	log.With(logger.WithField("ref", "master")).Error("stage failed",
		logger.WithField("stage", "build"),
		logger.WithError(errors.New("boom")))

	line := strings.TrimSpace(buf.String())
	assert.Contains(t, line, "ERROR: stage failed")
	assert.Contains(t, line, "{error=boom, ref=master, stage=build}")
}

func TestNop(t *testing.T) {
	log := logger.Nop()
	log.With(logger.WithField("k", "v")).Info("nothing")
}
