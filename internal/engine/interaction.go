// Contact rules: what happens when two agents come within the infection
// radius of each other.
package engine

import (
	"github.com/talgya/mini-epidemic/internal/agents"
	"github.com/talgya/mini-epidemic/internal/world"
)

// rule applies the effect of a contact. first is the agent that comes
// earlier in the population order.
type rule func(s *Simulation, first, second *agents.Agent)

// rules is keyed by (first.Stage, second.Stage). The table is directed:
// a nil cell, including the mirror of most listed cells, has no effect.
var rules = [agents.NumStages][agents.NumStages]rule{
	agents.StageHealthy: {
		agents.StageInfected:     healthyMeetsInfected,
		agents.StageIll:          healthyMeetsIll,
		agents.StageConvalescing: healthyMeetsConvalescing,
		agents.StageHealthy:      healthyMeetsHealthy,
	},
	agents.StageIll: {
		agents.StageInfected:     illMeetsInfected,
		agents.StageIll:          illMeetsIll,
		agents.StageConvalescing: illMeetsConvalescing,
	},
	agents.StageInfected: {
		agents.StageConvalescing: infectedMeetsConvalescing,
	},
}

// Immunity shifts applied through contact.
const (
	illExposureLoss      = -3.0
	convalescentBoost    = 1.0
	convalescentExposure = -1.0
)

// resolveContacts visits every unordered pair of the population once.
// Membership is fixed for the pass: newborns wait in s.newborns.
func (s *Simulation) resolveContacts() {
	live := s.pop
	for i := 0; i < len(live); i++ {
		first := live[i]
		for j := i + 1; j < len(live); j++ {
			second := live[j]
			// An earlier contact this pass may have killed either agent.
			if !first.Alive || !second.Alive {
				continue
			}
			if !s.InRange(first, second) {
				continue
			}
			s.interact(first, second)
		}
	}
}

// InRange reports whether two agents are within the infection radius.
func (s *Simulation) InRange(a, b *agents.Agent) bool {
	return world.Chebyshev(a.X, a.Y, b.X, b.Y) <= s.cfg.InfectionRadius
}

// interact applies one contact between first and second.
func (s *Simulation) interact(first, second *agents.Agent) {
	// Agents on the exact same spot scatter.
	if first.X == second.X && first.Y == second.Y {
		first.Redirect(s.rng)
		second.Redirect(s.rng)
	}

	if r := rules[first.Stage][second.Stage]; r != nil {
		r(s, first, second)
	}

	s.reproduce(first, second)
}

// setStage moves a into stage st via contact and restarts its countdown.
func (s *Simulation) setStage(a *agents.Agent, st agents.Stage) {
	from := a.Stage
	a.Transition(st, s.cfg.Durations)
	if st == agents.StageInfected {
		s.stats.Infections++
		s.record("infection", "agent %d infected (was %s)", a.ID, from)
	}
}

// moveImmunityTo shifts a's immunity toward target as a single adjustment.
func moveImmunityTo(a *agents.Agent, target float64) {
	a.AdjustImmunity(target - a.Immunity)
}

func healthyMeetsInfected(s *Simulation, first, second *agents.Agent) {
	if first.ImmunityBracket() == agents.BracketLow {
		s.setStage(first, agents.StageInfected)
	}
}

func healthyMeetsIll(s *Simulation, first, second *agents.Agent) {
	switch first.ImmunityBracket() {
	case agents.BracketLow, agents.BracketMedium:
		s.setStage(first, agents.StageInfected)
	case agents.BracketHigh:
		first.AdjustImmunity(illExposureLoss)
	}
}

func healthyMeetsConvalescing(s *Simulation, first, second *agents.Agent) {
	second.AdjustImmunity(convalescentBoost)
}

func healthyMeetsHealthy(s *Simulation, first, second *agents.Agent) {
	target := max(first.Immunity, second.Immunity)
	moveImmunityTo(first, target)
	moveImmunityTo(second, target)
}

func illMeetsInfected(s *Simulation, first, second *agents.Agent) {
	if second.ImmunityBracket() != agents.BracketHigh {
		s.setStage(second, agents.StageIll)
	}
	first.ResetStageDuration(s.cfg.Durations)
}

func illMeetsConvalescing(s *Simulation, first, second *agents.Agent) {
	if second.ImmunityBracket() != agents.BracketHigh {
		s.setStage(second, agents.StageInfected)
	}
}

func illMeetsIll(s *Simulation, first, second *agents.Agent) {
	target := min(first.Immunity, second.Immunity)
	moveImmunityTo(first, target)
	moveImmunityTo(second, target)
	first.ResetStageDuration(s.cfg.Durations)
	second.ResetStageDuration(s.cfg.Durations)
}

func infectedMeetsConvalescing(s *Simulation, first, second *agents.Agent) {
	second.AdjustImmunity(convalescentExposure)
}
