// Population dynamics: purging the dead, births and newborn admission.
package engine

import (
	"log/slog"

	"github.com/talgya/mini-epidemic/internal/agents"
)

// Reproduction age window, inclusive.
const (
	MinParentAge = 20
	MaxParentAge = 40
)

// RemoveDead drops every agent that is no longer alive.
func (s *Simulation) RemoveDead() {
	kept := s.pop[:0]
	for _, a := range s.pop {
		if a.Alive {
			kept = append(kept, a)
			continue
		}
		s.stats.Deaths++
		if a.Age >= a.MaxAge {
			s.record("death", "agent %d died of old age at %d", a.ID, a.Age)
		} else {
			s.record("death", "agent %d died while %s", a.ID, a.Stage)
		}
	}
	// Clear the tail so purged agents can be collected.
	for i := len(kept); i < len(s.pop); i++ {
		s.pop[i] = nil
	}
	s.pop = kept
}

// reproduce rolls for children when both partners are of parenting age.
// A second child is only possible after a first.
func (s *Simulation) reproduce(first, second *agents.Agent) {
	if !first.CanReproduce() || !second.CanReproduce() {
		return
	}
	if s.rng.Float64() >= s.cfg.BirthRate {
		return
	}
	s.birth(first)

	if s.rng.Float64() < s.cfg.BirthRate/2 {
		s.birth(first)
	}
}

func (s *Simulation) birth(parent *agents.Agent) {
	child := s.Spawner.SpawnNewborn(parent, s.day)
	s.newborns = append(s.newborns, child)
	s.stats.Births++
	s.record("birth", "agent %d is born to agent %d", child.ID, parent.ID)
}

// admitNewborns moves this tick's newborns into the population.
func (s *Simulation) admitNewborns() {
	if len(s.newborns) == 0 {
		return
	}
	s.pop = append(s.pop, s.newborns...)
	slog.Debug("newborns admitted", "day", s.day, "count", len(s.newborns), "population", len(s.pop))
	s.newborns = nil
}
