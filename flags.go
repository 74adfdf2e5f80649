package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/olivier-w/glyphcam/internal/config"
)

// options holds command line settings that are not part of the config file.
type options struct {
	configPath string
	logPath    string
	logLevel   string
}

// parseFlags reads args into opts and returns the config overrides to apply
// once the config file has been loaded. Only flags given on the command line override.
func parseFlags(fs *flag.FlagSet, args []string) (options, func(*config.Config), error) {
	var opts options
	fs.StringVar(&opts.configPath, "config", "", "Path to JSON config file")
	fs.StringVar(&opts.logPath, "log", filepath.Join(os.TempDir(), "glyphcam.log"), "Log file path")
	fs.StringVar(&opts.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	cameraDevice := fs.String("camera", "", "Camera device (default: platform default)")
	videoFile := fs.String("video", "", "Video file to loop instead of a camera")
	micDevice := fs.String("mic", "", "Audio input device (default: platform default)")
	audioFile := fs.String("audio", "", "Audio file to analyse instead of a microphone (wav, mp3, flac, ogg)")
	monitor := fs.Bool("monitor", false, "Play the audio file while analysing it")
	columns := fs.Int("columns", config.DefaultColumns, "Maximum glyph columns")
	rows := fs.Int("rows", config.DefaultRows, "Maximum glyph rows")
	fps := fs.Int("fps", config.DefaultFPS, "Camera frame rate")
	noMirror := fs.Bool("no-mirror", false, "Do not flip the camera image horizontally")
	rotateMs := fs.Int64("rotate-ms", config.DefaultRotationIntervalMs, "Glyph set rotation interval in milliseconds")
	ffmpegPath := fs.String("ffmpeg", "", "Path to ffmpeg binary (default: PATH lookup)")

	if err := fs.Parse(args); err != nil {
		return opts, nil, err
	}
	if fs.NArg() > 0 {
		return opts, nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	apply := func(c *config.Config) {
		if set["camera"] {
			c.Camera.Device = *cameraDevice
		}
		if set["video"] {
			c.Camera.File = *videoFile
		}
		if set["mic"] {
			c.Audio.Device = *micDevice
		}
		if set["audio"] {
			c.Audio.File = *audioFile
		}
		if set["monitor"] {
			c.Audio.Monitor = *monitor
		}
		if set["columns"] {
			c.Render.Columns = *columns
		}
		if set["rows"] {
			c.Render.Rows = *rows
		}
		if set["fps"] {
			c.Camera.FPS = *fps
		}
		if set["no-mirror"] {
			c.Camera.Mirror = !*noMirror
		}
		if set["rotate-ms"] {
			c.Render.RotationIntervalMs = *rotateMs
		}
		if set["ffmpeg"] {
			c.System.FFmpegPath = *ffmpegPath
		}
	}
	return opts, apply, nil
}

// setupLogging sends slog output to path, since the terminal belongs to the UI.
func setupLogging(path, level string) (*os.File, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: lvl})))
	return f, nil
}
