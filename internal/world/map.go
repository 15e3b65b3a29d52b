// Package world provides the bounded plane agents move in and the density
// field used to seed clustered populations.
package world

import "fmt"

// Bounds is the closed rectangle [0, Width] × [0, Height].
type Bounds struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NewBounds creates bounds with the given dimensions.
func NewBounds(width, height float64) Bounds {
	return Bounds{Width: width, Height: height}
}

// Contains returns true if the point lies inside the bounds (edges included).
func (b Bounds) Contains(x, y float64) bool {
	return x >= 0 && x <= b.Width && y >= 0 && y <= b.Height
}

// Reflect clamps a coordinate to [0, limit] and reports the direction the
// coordinate must travel afterwards. dir is returned unchanged when no wall
// was crossed.
func Reflect(pos, limit float64, dir int) (float64, int) {
	switch {
	case pos < 0:
		return 0, -dir
	case pos > limit:
		return limit, -dir
	default:
		return pos, dir
	}
}

// Chebyshev returns max(|x1-x2|, |y1-y2|).
func Chebyshev(x1, y1, x2, y2 float64) float64 {
	dx := x1 - x2
	if dx < 0 {
		dx = -dx
	}
	dy := y1 - y2
	if dy < 0 {
		dy = -dy
	}
	if dx > dy {
		return dx
	}
	return dy
}

// String returns a summary of the bounds.
func (b Bounds) String() string {
	return fmt.Sprintf("Bounds(%gx%g)", b.Width, b.Height)
}
