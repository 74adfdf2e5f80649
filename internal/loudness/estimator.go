// Package loudness turns raw microphone chunks into a smoothed 0–1 loudness scalar
// with an automatically calibrated noise floor.
package loudness

import (
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
)

const (
	initialNoiseFloor = 500.0  // starting guess, replaced by the first calibration chunk
	initialMaxLevel   = 1000.0 // starting ceiling for the dynamic range
	noiseMargin       = 1.2
	outlierCeiling    = 20000.0
	minRange          = 100.0
	responseCurve     = 1.5
	smoothing         = 0.8 // weight kept from the previous level

	// DefaultCalibrationChunks is how many chunks are averaged into the noise floor.
	DefaultCalibrationChunks = 10
)

// State is a point-in-time copy of the estimator's state.
type State struct {
	Level            float64
	NoiseFloor       float64
	MaxLevelSeen     float64
	Calibrating      bool
	CalibrationCount int
}

// Estimator tracks loudness across audio chunks. Process is called by a single
// capture goroutine; CurrentLevel may be called from anywhere without blocking.
type Estimator struct {
	calibrationChunks int

	mu               sync.Mutex
	level            float64
	noiseFloor       float64
	maxLevelSeen     float64
	calibrationCount int

	published   atomic.Uint64 // math.Float64bits of level
	calibrating atomic.Bool
}

// NewEstimator creates an estimator that calibrates over calibrationChunks chunks.
// Values below 1 select DefaultCalibrationChunks.
func NewEstimator(calibrationChunks int) *Estimator {
	if calibrationChunks < 1 {
		calibrationChunks = DefaultCalibrationChunks
	}
	e := &Estimator{
		calibrationChunks: calibrationChunks,
		noiseFloor:        initialNoiseFloor,
		maxLevelSeen:      initialMaxLevel,
	}
	e.calibrating.Store(true)
	return e
}

// CurrentLevel returns the smoothed loudness in [0,1], or 0 while calibrating.
func (e *Estimator) CurrentLevel() float64 {
	if e.calibrating.Load() {
		return 0
	}
	return math.Float64frombits(e.published.Load())
}

// Calibrating reports whether the noise floor is still being measured.
func (e *Estimator) Calibrating() bool {
	return e.calibrating.Load()
}

// TriggerRecalibration restarts noise floor measurement from the next chunk.
// The dynamic range ceiling is kept.
func (e *Estimator) TriggerRecalibration() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calibrationCount = 0
	e.calibrating.Store(true)
	slog.Info("recalibrating audio, stay quiet")
}

// Snapshot returns a consistent copy of the full state.
func (e *Estimator) Snapshot() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return State{
		Level:            e.level,
		NoiseFloor:       e.noiseFloor,
		MaxLevelSeen:     e.maxLevelSeen,
		Calibrating:      e.calibrating.Load(),
		CalibrationCount: e.calibrationCount,
	}
}

// Process folds one chunk of signed 16-bit mono samples into the estimate.
func (e *Estimator) Process(samples []int16) {
	if len(samples) == 0 {
		return
	}
	rms := RMS(samples)

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.calibrating.Load() {
		e.calibrationCount++
		n := float64(e.calibrationCount)
		e.noiseFloor = (e.noiseFloor*(n-1) + rms) / n
		if e.calibrationCount >= e.calibrationChunks {
			e.noiseFloor *= noiseMargin
			e.calibrating.Store(false)
			slog.Info("audio calibration complete", "noise_floor", math.Round(e.noiseFloor*10)/10)
		}
	} else if rms > e.noiseFloor && rms < outlierCeiling && rms > e.maxLevelSeen {
		e.maxLevelSeen = rms
	}

	normalized := Normalize(rms, e.noiseFloor, e.maxLevelSeen)
	e.level = e.level*smoothing + normalized*(1-smoothing)
	e.published.Store(math.Float64bits(e.level))
}

// RMS returns the root mean square of the samples.
func RMS(samples []int16) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		v := float64(s)
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(samples)))
}

// Normalize gates rms by the noise floor, scales it by the observed dynamic range
// and applies the response curve. The result is always in [0,1].
func Normalize(rms, noiseFloor, maxLevelSeen float64) float64 {
	adjusted := max(0, rms-noiseFloor)
	effectiveRange := max(minRange, maxLevelSeen-noiseFloor)
	n := min(1, adjusted/effectiveRange)
	return math.Pow(n, responseCurve)
}
