package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestNewFanoutHandlerCollapsesTrivialCases(t *testing.T) {
	if _, ok := newFanoutHandler(nil, nil).(NoopHandler); !ok {
		t.Fatal("expected NoopHandler when every handler is nil")
	}
	var buf bytes.Buffer
	inner := slog.NewJSONHandler(&buf, nil)
	if h := newFanoutHandler(nil, inner); h != inner {
		t.Fatal("expected single non-nil handler to be returned unwrapped")
	}
}

func TestFanoutHandlerRespectsPerHandlerLevels(t *testing.T) {
	var info, debug bytes.Buffer
	h := newFanoutHandler(
		slog.NewJSONHandler(&info, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewJSONHandler(&debug, &slog.HandlerOptions{Level: slog.LevelDebug}),
	)
	logger := slog.New(h).With("collection", "one-piece-en")
	logger.Debug("debug only")
	logger.Info("both")

	if strings.Contains(info.String(), "debug only") {
		t.Fatalf("info handler received debug record: %s", info.String())
	}
	if !strings.Contains(debug.String(), "debug only") || !strings.Contains(debug.String(), "both") {
		t.Fatalf("debug handler missing records: %s", debug.String())
	}
	if !strings.Contains(info.String(), `"collection":"one-piece-en"`) {
		t.Fatalf("expected WithAttrs to propagate, got %s", info.String())
	}
	if h.Enabled(context.Background(), slog.LevelDebug-4) {
		t.Fatal("expected fanout disabled below every handler level")
	}
}

func TestTeeLoggerWritesToBaseAndExtra(t *testing.T) {
	var base, extra bytes.Buffer
	logger := TeeLogger(slog.New(slog.NewTextHandler(&base, nil)), slog.NewJSONHandler(&extra, nil))
	logger.Info("hello")
	if !strings.Contains(base.String(), "hello") || !strings.Contains(extra.String(), "hello") {
		t.Fatalf("expected both outputs, got base=%q extra=%q", base.String(), extra.String())
	}
}
