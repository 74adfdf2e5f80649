// Package config provides application configuration management.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/olivier-w/glyphcam/internal/glyph"
	"github.com/olivier-w/glyphcam/internal/render"
)

// Configuration defaults are used when values are not specified.
const (
	DefaultCaptureWidth       = 320
	DefaultCaptureHeight      = 240
	DefaultFPS                = 30
	DefaultSampleRate         = 44100
	DefaultChunkSize          = 1024
	DefaultCalibrationChunks  = 10
	DefaultWarmupMs           = 500
	DefaultColumns            = 250
	DefaultRows               = 100
	DefaultRotationIntervalMs = 5000 // 5 seconds in milliseconds
	DefaultBackground         = "#051E05"
	DefaultDim                = "#0A961E"
	DefaultBright             = "#14FF3C"
	DefaultStatus             = "#C8FFC8"
)

// validate is the shared validator instance.
var validate = validator.New(validator.WithRequiredStructEnabled())

// CameraConfig holds frame source settings.
type CameraConfig struct {
	Device        string `json:"device"`                                    // Platform camera device (empty = default)
	File          string `json:"file"`                                      // Video file used instead of a camera
	CaptureWidth  int    `json:"capture_width" validate:"gte=16,lte=1920"`  // Capture width in pixels
	CaptureHeight int    `json:"capture_height" validate:"gte=16,lte=1080"` // Capture height in pixels
	FPS           int    `json:"fps" validate:"gte=1,lte=60"`               // Capture frame rate
	Mirror        bool   `json:"mirror"`                                    // Flip frames horizontally
}

// AudioConfig holds loudness input settings.
type AudioConfig struct {
	Device            string `json:"device"`                                       // Audio input device (empty = default)
	File              string `json:"file"`                                         // Audio file used instead of a microphone
	Monitor           bool   `json:"monitor"`                                      // Play the audio file while analysing it
	SampleRate        int    `json:"sample_rate" validate:"gte=8000,lte=192000"`   // Capture sample rate
	ChunkSize         int    `json:"chunk_size" validate:"gte=64,lte=65536"`       // Samples per loudness update
	CalibrationChunks int    `json:"calibration_chunks" validate:"gte=1,lte=1000"` // Chunks averaged into the noise floor
	WarmupMs          int64  `json:"warmup_ms" validate:"gte=0,lte=10000"`         // Delay before the first read
}

// RenderConfig holds glyph art settings.
type RenderConfig struct {
	Columns            int      `json:"columns" validate:"gte=1,lte=1000"`                   // Maximum grid width in cells
	Rows               int      `json:"rows" validate:"gte=1,lte=500"`                       // Maximum grid height in cells
	RotationIntervalMs int64    `json:"rotation_interval_ms" validate:"gte=100,lte=3600000"` // Automatic glyph set rotation
	Background         string   `json:"background" validate:"hexcolor,len=7"`                // Background colour (#RRGGBB)
	Dim                string   `json:"dim" validate:"hexcolor,len=7"`                       // Darkest glyph colour (#RRGGBB)
	Bright             string   `json:"bright" validate:"hexcolor,len=7"`                    // Brightest glyph colour (#RRGGBB)
	Status             string   `json:"status" validate:"hexcolor,len=7"`                    // Status line colour (#RRGGBB)
	Palettes           []string `json:"palettes" validate:"omitempty,dive,min=2,max=256"`    // Glyph sets, darkest to lightest
}

// SystemConfig holds external tool settings.
type SystemConfig struct {
	FFmpegPath string `json:"ffmpeg_path"` // Path to FFmpeg binary (empty = use PATH)
}

// Config holds all application configuration.
type Config struct {
	Camera CameraConfig `json:"camera"`
	Audio  AudioConfig  `json:"audio"`
	Render RenderConfig `json:"render"`
	System SystemConfig `json:"system"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Camera: CameraConfig{
			CaptureWidth:  DefaultCaptureWidth,
			CaptureHeight: DefaultCaptureHeight,
			FPS:           DefaultFPS,
			Mirror:        true,
		},
		Audio: AudioConfig{
			SampleRate:        DefaultSampleRate,
			ChunkSize:         DefaultChunkSize,
			CalibrationChunks: DefaultCalibrationChunks,
			WarmupMs:          DefaultWarmupMs,
		},
		Render: RenderConfig{
			Columns:            DefaultColumns,
			Rows:               DefaultRows,
			RotationIntervalMs: DefaultRotationIntervalMs,
			Background:         DefaultBackground,
			Dim:                DefaultDim,
			Bright:             DefaultBright,
			Status:             DefaultStatus,
		},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	c := New()
	if path == "" {
		return c, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := json.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	c.applyDefaults()
	return c, nil
}

// applyDefaults sets default values for zero-value fields.
func (c *Config) applyDefaults() {
	// Camera defaults
	if c.Camera.CaptureWidth == 0 {
		c.Camera.CaptureWidth = DefaultCaptureWidth
	}
	if c.Camera.CaptureHeight == 0 {
		c.Camera.CaptureHeight = DefaultCaptureHeight
	}
	if c.Camera.FPS == 0 {
		c.Camera.FPS = DefaultFPS
	}
	// Audio defaults
	if c.Audio.SampleRate == 0 {
		c.Audio.SampleRate = DefaultSampleRate
	}
	if c.Audio.ChunkSize == 0 {
		c.Audio.ChunkSize = DefaultChunkSize
	}
	if c.Audio.CalibrationChunks == 0 {
		c.Audio.CalibrationChunks = DefaultCalibrationChunks
	}
	// Render defaults
	if c.Render.Columns == 0 {
		c.Render.Columns = DefaultColumns
	}
	if c.Render.Rows == 0 {
		c.Render.Rows = DefaultRows
	}
	if c.Render.RotationIntervalMs == 0 {
		c.Render.RotationIntervalMs = DefaultRotationIntervalMs
	}
	if c.Render.Background == "" {
		c.Render.Background = DefaultBackground
	}
	if c.Render.Dim == "" {
		c.Render.Dim = DefaultDim
	}
	if c.Render.Bright == "" {
		c.Render.Bright = DefaultBright
	}
	if c.Render.Status == "" {
		c.Render.Status = DefaultStatus
	}
}

// Validate checks all configuration fields for correctness.
func (c *Config) Validate() error {
	if err := c.Palette().Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, e := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s %s", e.Namespace(), formatValidationMessage(e)))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Camera.File != "" && c.Camera.Device != "" {
		return errors.New("invalid config: camera device and file are mutually exclusive")
	}
	if c.Audio.File != "" && c.Audio.Device != "" {
		return errors.New("invalid config: audio device and file are mutually exclusive")
	}
	if c.Audio.Monitor && c.Audio.File == "" {
		return errors.New("invalid config: audio monitor requires an audio file")
	}
	return nil
}

// formatValidationMessage creates a human-readable message from a validator error.
func formatValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "min":
		return fmt.Sprintf("must be at least %s characters", e.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", e.Param())
	case "len":
		return fmt.Sprintf("must be %s characters", e.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", e.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", e.Param())
	case "hexcolor":
		return "must be hex format (#RRGGBB)"
	default:
		return fmt.Sprintf("failed validation '%s'", e.Tag())
	}
}

// Palette returns the configured glyph sets, or the built-in ones.
func (c *Config) Palette() glyph.Palette {
	if len(c.Render.Palettes) == 0 {
		return glyph.DefaultPalette()
	}
	return glyph.PaletteFromStrings(c.Render.Palettes)
}

// Theme returns the art colours. Call after Validate.
func (c *Config) Theme() render.Theme {
	return render.Theme{
		Background: mustColor(c.Render.Background),
		Dim:        mustColor(c.Render.Dim),
		Bright:     mustColor(c.Render.Bright),
	}
}

// StatusColor returns the status line colour. Call after Validate.
func (c *Config) StatusColor() render.RGB {
	return mustColor(c.Render.Status)
}

func mustColor(s string) render.RGB {
	rgb, err := render.ParseHex(s)
	if err != nil {
		panic(err)
	}
	return rgb
}

// RotationInterval returns the automatic glyph set rotation period.
func (c *Config) RotationInterval() time.Duration {
	return time.Duration(c.Render.RotationIntervalMs) * time.Millisecond
}

// Warmup returns the delay before the first audio read.
func (c *Config) Warmup() time.Duration {
	return time.Duration(c.Audio.WarmupMs) * time.Millisecond
}
