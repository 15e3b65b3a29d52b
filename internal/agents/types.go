// Package agents provides the agent data model, its per-day self-updates,
// and the spawner for initial populations and newborns.
package agents

import "fmt"

// AgentID is a unique identifier for an agent within one simulation.
type AgentID uint64

// Stage is an agent's position in the disease cycle.
type Stage uint8

const (
	StageInfected     Stage = iota // Carrying the disease, not yet symptomatic
	StageIll                       // Symptomatic
	StageConvalescing              // Recovering
	StageHealthy                   // No disease; leaves only through contact
)

// NumStages is the total number of disease stages.
const NumStages = 4

// Stages lists every stage in cycle order.
var Stages = [NumStages]Stage{StageInfected, StageIll, StageConvalescing, StageHealthy}

var stageCodes = [NumStages]string{"Z", "C", "ZD", "ZZ"}

var stageNames = [NumStages]string{"Infected", "Ill", "Convalescing", "Healthy"}

var stageColors = [NumStages]string{"yellow", "red", "orange", "green"}

// String returns the stage name.
func (s Stage) String() string {
	if int(s) >= NumStages {
		return fmt.Sprintf("Stage(%d)", s)
	}
	return stageNames[s]
}

// Code returns the short stage code (Z, C, ZD, ZZ).
func (s Stage) Code() string {
	if int(s) >= NumStages {
		return fmt.Sprintf("Stage(%d)", s)
	}
	return stageCodes[s]
}

// Color returns the marker color renderers draw the stage with.
func (s Stage) Color() string {
	if int(s) >= NumStages {
		return ""
	}
	return stageColors[s]
}

// Next returns the stage that follows s when its duration runs out.
// Healthy is terminal.
func (s Stage) Next() Stage {
	switch s {
	case StageInfected:
		return StageIll
	case StageIll:
		return StageConvalescing
	default:
		return StageHealthy
	}
}

// ParseStage accepts a stage code or name.
func ParseStage(v string) (Stage, error) {
	for i := 0; i < NumStages; i++ {
		if v == stageCodes[i] || v == stageNames[i] {
			return Stage(i), nil
		}
	}
	return 0, fmt.Errorf("unknown stage %q", v)
}

// ImmunityBracket classifies an immunity value for the contact rules.
type ImmunityBracket uint8

const (
	BracketLow    ImmunityBracket = iota // immunity <= 3
	BracketMedium                        // 3 < immunity <= 6
	BracketHigh                          // immunity > 6
)

func (b ImmunityBracket) String() string {
	switch b {
	case BracketLow:
		return "low"
	case BracketMedium:
		return "medium"
	default:
		return "high"
	}
}

// Durations holds the canonical length, in days, of each expiring stage.
// Healthy never expires and carries no entry.
type Durations [NumStages]int

// DefaultDurations returns Infected 2, Ill 7, Convalescing 5.
func DefaultDurations() Durations {
	return Durations{
		StageInfected:     2,
		StageIll:          7,
		StageConvalescing: 5,
	}
}

// For returns the canonical duration of a stage (0 for Healthy).
func (d Durations) For(s Stage) int {
	if s == StageHealthy {
		return 0
	}
	return d[s]
}

// Validate reports a missing or non-positive entry for a reachable stage.
func (d Durations) Validate() error {
	for _, s := range Stages {
		if s == StageHealthy {
			continue
		}
		if d[s] <= 0 {
			return fmt.Errorf("stage %s has no positive duration (got %d)", s, d[s])
		}
	}
	return nil
}

// Immunity limits.
const (
	NewbornImmunity = 10.0
	// ImmunityFloor is added to drawn initial immunity so no agent starts at
	// exactly zero.
	ImmunityFloor = 1e-9
)

// Agent is a single person moving through the plane.
type Agent struct {
	ID AgentID `json:"id"`

	// Kinematics
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	DX    int     `json:"dx"` // -1, 0 or 1
	DY    int     `json:"dy"` // -1, 0 or 1; (DX, DY) != (0, 0)
	Speed int     `json:"speed"`

	// Demographics
	Age    int `json:"age"`     // Days
	MaxAge int `json:"max_age"` // Natural death on reaching this age

	// Epidemiology
	Stage      Stage   `json:"stage"`
	StageTicks int     `json:"stage_ticks"` // Days remaining in Stage; unused while Healthy
	Immunity   float64 `json:"immunity"`

	// Metadata
	BornTick uint64 `json:"born_tick"`
	Alive    bool   `json:"alive"`
}
