// Package main renders a live camera feed as glyph art in the terminal, with
// brightness and jitter driven by microphone loudness.
//
// Usage:
//
//	glyphcam [-config config.json] [-camera dev | -video file] [-mic dev | -audio file]
//
// Keys: space changes the glyph set, r recalibrates the microphone, q quits.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/olivier-w/glyphcam/internal/camera"
	"github.com/olivier-w/glyphcam/internal/capture"
	"github.com/olivier-w/glyphcam/internal/config"
	"github.com/olivier-w/glyphcam/internal/loudness"
	"github.com/olivier-w/glyphcam/internal/render"
	"github.com/olivier-w/glyphcam/internal/ui"
	"github.com/olivier-w/glyphcam/internal/util"
)

const samplerStopTimeout = time.Second

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	opts, override, err := parseFlags(flag.NewFlagSet("glyphcam", flag.ContinueOnError), args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	override(cfg)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	logFile, err := setupLogging(opts.logPath, opts.logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer logFile.Close()

	ffmpegPath := util.ResolveFFmpegPath(cfg.System.FFmpegPath)
	if ffmpegPath == "" {
		slog.Warn("FFmpeg not found", "configured_path", cfg.System.FFmpegPath)
	} else {
		slog.Info("FFmpeg found", "path", ffmpegPath)
	}

	audio, title, err := openAudio(cfg, ffmpegPath)
	if err != nil {
		slog.Error("failed to open audio input", "error", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	est := loudness.NewEstimator(cfg.Audio.CalibrationChunks)
	sampler := loudness.NewSampler(audio, est, cfg.Audio.ChunkSize, cfg.Warmup())
	sampler.Start(context.Background())

	cam, err := camera.Open(ffmpegPath, camera.Options{
		Device: cfg.Camera.Device,
		File:   cfg.Camera.File,
		Width:  cfg.Camera.CaptureWidth,
		Height: cfg.Camera.CaptureHeight,
		FPS:    cfg.Camera.FPS,
		Mirror: cfg.Camera.Mirror,
	})
	if err != nil {
		slog.Error("failed to open camera", "error", err)
		shutdown(sampler, audio, nil)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	model := ui.New(ui.Options{
		Camera:           cam,
		Loudness:         est,
		Palette:          cfg.Palette(),
		Compositor:       render.NewCompositor(cfg.Theme(), nil),
		StatusColor:      cfg.StatusColor(),
		Columns:          cfg.Render.Columns,
		Rows:             cfg.Render.Rows,
		RotationInterval: cfg.RotationInterval(),
		Title:            title,
	})
	program := tea.NewProgram(model, tea.WithAltScreen())
	finalModel, runErr := program.Run()

	shutdown(sampler, audio, cam)

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", runErr)
		return 1
	}
	if m, ok := finalModel.(ui.Model); ok && m.Err() != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", m.Err())
		return 1
	}
	return 0
}

// openAudio opens the configured audio file or microphone.
func openAudio(cfg *config.Config, ffmpegPath string) (capture.Source, string, error) {
	if cfg.Audio.File != "" {
		src, err := capture.OpenFile(cfg.Audio.File, cfg.Audio.SampleRate, cfg.Audio.Monitor)
		if err != nil {
			return nil, "", err
		}
		return src, src.Title(), nil
	}
	mic, err := capture.OpenMicrophone(cfg.Audio.Device, ffmpegPath, cfg.Audio.SampleRate)
	if err != nil {
		return nil, "", err
	}
	return mic, "", nil
}

// shutdown stops the sampler before closing the devices it reads from.
func shutdown(sampler *loudness.Sampler, audio capture.Source, cam *camera.Session) {
	slog.Info("shutting down")
	if err := sampler.Stop(samplerStopTimeout); err != nil {
		slog.Warn("audio sampler stop", "error", err)
	}
	if err := audio.Close(); err != nil {
		slog.Warn("closing audio input", "error", err)
	}
	if cam != nil {
		if err := cam.Close(); err != nil {
			slog.Warn("closing camera", "error", err)
		}
	}
	slog.Info("shutdown complete")
}
