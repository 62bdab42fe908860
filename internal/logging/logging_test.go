package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestLevelRouting(t *testing.T) {
	var out, errOut bytes.Buffer
	logger := slog.New(NewHandler(&out, &errOut, slog.LevelInfo))

	logger.Debug("hidden")
	logger.Info("hello")
	logger.Warn("careful")
	logger.Error("broken")

	if strings.Contains(out.String(), "hidden") {
		t.Error("debug record should be filtered at info level")
	}
	if !strings.Contains(out.String(), "hello") || !strings.Contains(out.String(), "careful") {
		t.Errorf("expected info and warn on stdout, got %q", out.String())
	}
	if strings.Contains(out.String(), "broken") {
		t.Error("error record should not go to stdout")
	}
	if !strings.Contains(errOut.String(), "broken") {
		t.Errorf("expected error on stderr, got %q", errOut.String())
	}
}

func TestWithAttrsKeepsRouting(t *testing.T) {
	var out, errOut bytes.Buffer
	logger := slog.New(NewHandler(&out, &errOut, slog.LevelDebug)).With("component", "web")

	logger.Debug("visible")
	logger.Error("failed")

	if !strings.Contains(out.String(), "component=web") || !strings.Contains(out.String(), "visible") {
		t.Errorf("unexpected stdout: %q", out.String())
	}
	if !strings.Contains(errOut.String(), "component=web") {
		t.Errorf("unexpected stderr: %q", errOut.String())
	}
}
