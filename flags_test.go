package main

import (
	"flag"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/olivier-w/glyphcam/internal/config"
)

func newFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("glyphcam", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func TestParseFlagsOverridesOnlyGivenFlags(t *testing.T) {
	opts, apply, err := parseFlags(newFlagSet(), []string{
		"-config", "cfg.json",
		"-video", "clip.mp4",
		"-columns", "80",
		"-no-mirror",
	})
	if err != nil {
		t.Fatalf("parseFlags() error = %v", err)
	}
	if opts.configPath != "cfg.json" {
		t.Fatalf("configPath = %q", opts.configPath)
	}

	cfg := config.New()
	cfg.Render.Rows = 40 // from a config file; no -rows flag given
	apply(cfg)

	if cfg.Camera.File != "clip.mp4" {
		t.Fatalf("camera file = %q", cfg.Camera.File)
	}
	if cfg.Render.Columns != 80 {
		t.Fatalf("columns = %d", cfg.Render.Columns)
	}
	if cfg.Render.Rows != 40 {
		t.Fatalf("rows = %d, config value should survive", cfg.Render.Rows)
	}
	if cfg.Camera.Mirror {
		t.Fatal("expected mirroring disabled")
	}
}

func TestParseFlagsDefaults(t *testing.T) {
	opts, apply, err := parseFlags(newFlagSet(), nil)
	if err != nil {
		t.Fatalf("parseFlags() error = %v", err)
	}
	if opts.logLevel != "info" {
		t.Fatalf("logLevel = %q", opts.logLevel)
	}
	if !strings.HasSuffix(opts.logPath, "glyphcam.log") {
		t.Fatalf("logPath = %q", opts.logPath)
	}

	cfg := config.New()
	apply(cfg)
	if !reflect.DeepEqual(cfg, config.New()) {
		t.Fatal("defaults should leave config untouched")
	}
}

func TestParseFlagsRejectsPositionalArgs(t *testing.T) {
	if _, _, err := parseFlags(newFlagSet(), []string{"extra"}); err == nil {
		t.Fatal("expected error for positional argument")
	}
}

func TestParseFlagsRejectsUnknownFlag(t *testing.T) {
	if _, _, err := parseFlags(newFlagSet(), []string{"-bogus"}); err == nil {
		t.Fatal("expected error for unknown flag")
	}
}

func TestSetupLogging(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	path := filepath.Join(t.TempDir(), "glyphcam.log")
	f, err := setupLogging(path, "warn")
	if err != nil {
		t.Fatalf("setupLogging() error = %v", err)
	}
	slog.Info("hidden")
	slog.Warn("shown", "key", "value")
	f.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(data)
	if strings.Contains(out, "hidden") {
		t.Fatalf("info record written at warn level: %q", out)
	}
	if !strings.Contains(out, "msg=shown key=value") {
		t.Fatalf("missing warn record: %q", out)
	}
}

func TestSetupLoggingRejectsBadLevel(t *testing.T) {
	if _, err := setupLogging(filepath.Join(t.TempDir(), "x.log"), "loud"); err == nil {
		t.Fatal("expected error for bad level")
	}
}
