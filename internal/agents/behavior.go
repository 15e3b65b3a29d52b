// Agent self-updates for aging, movement, immunity drift and disease progression.
// Update runs them in a fixed order each day; once an agent dies, nothing
// else about it changes.
package agents

import (
	"fmt"
	"math/rand"

	"github.com/talgya/mini-epidemic/internal/world"
)

// Per-day immunity drift by stage.
var stageImmunityDelta = [NumStages]float64{
	StageInfected:     -0.1,
	StageIll:          -0.5,
	StageConvalescing: 0.1,
	StageHealthy:      0.05,
}

// Directions lists the eight compass directions an agent can travel in.
var Directions = [8][2]int{
	{0, 1}, {1, 0}, {0, -1}, {-1, 0},
	{1, 1}, {-1, 1}, {1, -1}, {-1, -1},
}

// Update runs one day of self-updates: age, position, immunity, stage.
func (a *Agent) Update(b world.Bounds, d Durations) {
	a.UpdateAge()
	a.UpdatePosition(b)
	a.UpdateImmunity()
	a.UpdateState(d)
}

// UpdateAge adds a day to the agent's age and applies natural death.
func (a *Agent) UpdateAge() {
	if !a.Alive {
		return
	}
	a.Age++
	if a.Age >= a.MaxAge {
		a.Alive = false
	}
}

// UpdatePosition moves the agent Speed units along its direction. Walls
// reflect: the coordinate is clamped and that direction component flips.
func (a *Agent) UpdatePosition(b world.Bounds) {
	if !a.Alive {
		return
	}
	a.X, a.DX = world.Reflect(a.X+float64(a.Speed*a.DX), b.Width, a.DX)
	a.Y, a.DY = world.Reflect(a.Y+float64(a.Speed*a.DY), b.Height, a.DY)
}

// UpdateImmunity applies the stage's daily immunity drift.
func (a *Agent) UpdateImmunity() {
	if !a.Alive {
		return
	}
	a.AdjustImmunity(stageImmunityDelta[a.Stage])
}

// AdjustImmunity applies an explicit immunity change. Losses always apply;
// the result never exceeds the age ceiling. An agent left with no immunity
// dies.
func (a *Agent) AdjustImmunity(delta float64) {
	if !a.Alive {
		return
	}
	a.Immunity += delta
	if ceiling := a.MaxImmunity(); a.Immunity > ceiling {
		a.Immunity = ceiling
	}
	if a.Immunity <= 0 {
		a.Alive = false
	}
}

// UpdateState counts down the current stage and advances the cycle when it
// runs out. Healthy agents stay Healthy.
func (a *Agent) UpdateState(d Durations) {
	if !a.Alive || a.Stage == StageHealthy {
		return
	}
	a.StageTicks--
	if a.StageTicks <= 0 {
		a.Transition(a.Stage.Next(), d)
	}
}

// Transition moves the agent into stage s and restarts its duration.
func (a *Agent) Transition(s Stage, d Durations) {
	a.Stage = s
	a.ResetStageDuration(d)
}

// ResetStageDuration restarts the current stage's countdown.
func (a *Agent) ResetStageDuration(d Durations) {
	a.StageTicks = d.For(a.Stage)
}

// Redirect picks a new direction different from the current one.
func (a *Agent) Redirect(rng *rand.Rand) {
	for {
		dir := Directions[rng.Intn(len(Directions))]
		if dir[0] != a.DX || dir[1] != a.DY {
			a.DX, a.DY = dir[0], dir[1]
			return
		}
	}
}

// MaxImmunity returns the immunity ceiling for the agent's current age.
func (a *Agent) MaxImmunity() float64 {
	return ImmunityCeiling(a.Age)
}

// ImmunityCeiling is the age-dependent immunity maximum. The brackets
// cover every non-negative age; anything else is a programming error.
func ImmunityCeiling(age int) float64 {
	switch {
	case age < 0:
		panic(fmt.Sprintf("agents: immunity ceiling for negative age %d", age))
	case age < 15 || age >= 70:
		return 3
	case age >= 40:
		return 6
	default:
		return 10
	}
}

// ImmunityBracket classifies the agent's current immunity.
func (a *Agent) ImmunityBracket() ImmunityBracket {
	switch {
	case a.Immunity <= 3:
		return BracketLow
	case a.Immunity <= 6:
		return BracketMedium
	default:
		return BracketHigh
	}
}

// IsAlive reports whether the agent is still part of the simulation.
func (a *Agent) IsAlive() bool {
	return a.Alive
}

// CanReproduce returns true for agents aged 20 to 40 inclusive.
func (a *Agent) CanReproduce() bool {
	return a.Alive && a.Age >= 20 && a.Age <= 40
}
