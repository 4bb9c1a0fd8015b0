package logger

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLogger(t *testing.T) {
	for _, env := range []string{"prod", "local", "dev", "docker"} {
		if _, err := NewLogger(env, ""); err != nil {
			t.Errorf("NewLogger(%q): %v", env, err)
		}
	}
	if _, err := NewLogger("staging", ""); err == nil {
		t.Error("expected error for unknown environment")
	}
	if _, err := NewLogger("prod", "verbose"); err == nil {
		t.Error("expected error for invalid level")
	}
}

func TestWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	base, err := NewLogger("prod", "info")
	if err != nil {
		t.Fatal(err)
	}

	l := WithFile(base, FileOptions{Path: path, MaxSizeMB: 1})
	l.Debug("hidden")
	l.Info("catalog warmed up", zap.Int("fields", 3))
	_ = l.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, `"msg":"catalog warmed up"`) || !strings.Contains(out, `"fields":3`) {
		t.Errorf("unexpected log file content: %s", out)
	}
	if strings.Contains(out, "hidden") {
		t.Error("file output must respect the logger level")
	}
}

func TestWithFile_NoPath(t *testing.T) {
	base := zap.NewNop()
	if WithFile(base, FileOptions{}) != base {
		t.Error("expected the same logger without a path")
	}
}

func TestFromContext(t *testing.T) {
	if FromContext(context.Background()) == nil {
		t.Fatal("expected a no-op logger")
	}
	l := zap.NewExample()
	if FromContext(ContextWithLogger(context.Background(), l)) != l {
		t.Error("expected the stored logger")
	}
}

func TestFromContext_WithFields(t *testing.T) {
	ctx := WithFields(context.Background())
	if FromContext(ctx) == nil {
		t.Fatal("expected a no-op logger")
	}

	core, logs := observer.New(zap.DebugLevel)
	ctx = ContextWithLogger(context.Background(), zap.New(core))
	ctx = WithFields(ctx, zap.String("class", "shop.Product"))
	FromContext(ctx).Info("pushed")

	entries := logs.FilterField(zap.String("class", "shop.Product")).All()
	if len(entries) != 1 || entries[0].Message != "pushed" {
		t.Errorf("entries = %v, want one line tagged with the class", entries)
	}
}
