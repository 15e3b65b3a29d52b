package engine

import (
	"errors"
	"fmt"

	"github.com/talgya/mini-epidemic/internal/agents"
	"github.com/talgya/mini-epidemic/internal/world"
)

// ErrInvalidConfig is wrapped by every Config validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Placement selects how the initial population is scattered.
type Placement string

const (
	PlacementUniform   Placement = "uniform"   // Even scatter over the plane
	PlacementClustered Placement = "clustered" // Weighted by a noise density field
)

// Config holds every simulation parameter. The engine reads nothing from
// package-level state.
type Config struct {
	Width           float64          // Plane width
	Height          float64          // Plane height
	Population      int              // Initial number of agents
	InfectionRadius float64          // Chebyshev contact distance
	Durations       agents.Durations // Canonical stage durations in days
	BirthRate       float64          // Probability of a first child per eligible contact
	Speeds          []int            // Speed set agents draw from
	MaxAge          int              // Terminal age
	InitialMaxAge   int              // Upper bound of the initial age draw
	Margin          float64          // Initial distance from the walls
	Placement       Placement
	Field           world.FieldConfig // Used by PlacementClustered
	Seed            int64             // 0 = seed from crypto/rand
}

// DefaultConfig returns the reference parameters: a 100×100 plane with 100
// agents.
func DefaultConfig() Config {
	return Config{
		Width:           100,
		Height:          100,
		Population:      100,
		InfectionRadius: 2,
		Durations:       agents.DefaultDurations(),
		BirthRate:       0.1,
		Speeds:          []int{1, 2, 3},
		MaxAge:          100,
		InitialMaxAge:   60,
		Margin:          0.5,
		Placement:       PlacementUniform,
		Field:           world.DefaultFieldConfig(),
	}
}

// Bounds returns the plane the agents live in.
func (c Config) Bounds() world.Bounds {
	return world.NewBounds(c.Width, c.Height)
}

// Validate checks the configuration before any agent is created.
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: grid size must be positive (got %gx%g)", ErrInvalidConfig, c.Width, c.Height)
	}
	if c.Population <= 0 {
		return fmt.Errorf("%w: population must be positive (got %d)", ErrInvalidConfig, c.Population)
	}
	if err := c.Durations.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.InfectionRadius < 0 {
		return fmt.Errorf("%w: infection radius must not be negative (got %g)", ErrInvalidConfig, c.InfectionRadius)
	}
	if c.BirthRate < 0 || c.BirthRate > 1 {
		return fmt.Errorf("%w: birth rate must be within [0, 1] (got %g)", ErrInvalidConfig, c.BirthRate)
	}
	if len(c.Speeds) == 0 {
		return fmt.Errorf("%w: speed set is empty", ErrInvalidConfig)
	}
	for _, sp := range c.Speeds {
		if sp <= 0 {
			return fmt.Errorf("%w: speeds must be positive (got %d)", ErrInvalidConfig, sp)
		}
	}
	if c.MaxAge <= 0 {
		return fmt.Errorf("%w: max age must be positive (got %d)", ErrInvalidConfig, c.MaxAge)
	}
	if c.InitialMaxAge < 0 || c.InitialMaxAge > c.MaxAge {
		return fmt.Errorf("%w: initial max age must be within [0, %d] (got %d)", ErrInvalidConfig, c.MaxAge, c.InitialMaxAge)
	}
	if c.Margin < 0 || 2*c.Margin > c.Width || 2*c.Margin > c.Height {
		return fmt.Errorf("%w: margin %g does not fit the grid", ErrInvalidConfig, c.Margin)
	}
	switch c.Placement {
	case PlacementUniform, PlacementClustered, "":
	default:
		return fmt.Errorf("%w: unknown placement %q", ErrInvalidConfig, c.Placement)
	}
	return nil
}
