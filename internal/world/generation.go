// Population density field using layered simplex noise.
// Drives the "clustered" placement mode: agents settle where the noise peaks,
// producing towns and empty stretches instead of a uniform scatter.
package world

import (
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// FieldConfig holds density field parameters.
type FieldConfig struct {
	Seed        int64   // Noise seed
	Frequency   float64 // Base sampling frequency per grid unit
	Octaves     int     // Noise layers
	Persistence float64 // Amplitude falloff per octave
	Threshold   float64 // Density below this is never settled (0.0–1.0)
}

// DefaultFieldConfig returns a field that yields a handful of clusters on a
// 100×100 grid.
func DefaultFieldConfig() FieldConfig {
	return FieldConfig{
		Frequency:   0.03,
		Octaves:     3,
		Persistence: 0.5,
		Threshold:   0.45,
	}
}

// Field is a normalized noise surface over the plane.
type Field struct {
	cfg   FieldConfig
	noise opensimplex.Noise
}

// NewField creates a density field from the configuration.
func NewField(cfg FieldConfig) *Field {
	if cfg.Octaves < 1 {
		cfg.Octaves = 1
	}
	return &Field{
		cfg:   cfg,
		noise: opensimplex.NewNormalized(cfg.Seed),
	}
}

// Density returns the field value at (x, y), in [0, 1].
func (f *Field) Density(x, y float64) float64 {
	return octaveNoise(f.noise, x, y, f.cfg.Octaves, f.cfg.Frequency, f.cfg.Persistence)
}

// maxSampleAttempts bounds rejection sampling before falling back to a
// uniform draw.
const maxSampleAttempts = 64

// Sample draws a point inside b shrunk by margin on every side, weighted by
// density. Points under the threshold are rejected.
func (f *Field) Sample(rng *rand.Rand, b Bounds, margin float64) (float64, float64) {
	x, y := 0.0, 0.0
	for i := 0; i < maxSampleAttempts; i++ {
		x = uniform(rng, margin, b.Width-margin)
		y = uniform(rng, margin, b.Height-margin)
		d := f.Density(x, y)
		if d < f.cfg.Threshold {
			continue
		}
		if rng.Float64() <= d {
			return x, y
		}
	}
	return x, y
}

// octaveNoise generates fractal noise by layering multiple frequencies.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}

// uniform returns a value in [lo, hi). A degenerate range returns its midpoint.
func uniform(rng *rand.Rand, lo, hi float64) float64 {
	if hi <= lo {
		return (lo + hi) / 2
	}
	return lo + rng.Float64()*(hi-lo)
}

// Uniform draws a point inside b shrunk by margin on every side.
func Uniform(rng *rand.Rand, b Bounds, margin float64) (float64, float64) {
	return uniform(rng, margin, b.Width-margin), uniform(rng, margin, b.Height-margin)
}
