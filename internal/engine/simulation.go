// Simulation owns the population and runs one day of the epidemic per tick.
package engine

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/talgya/mini-epidemic/internal/agents"
	"github.com/talgya/mini-epidemic/internal/entropy"
	"github.com/talgya/mini-epidemic/internal/world"
)

// maxEvents bounds the recent-event buffer.
const maxEvents = 1000

// Simulation holds the complete population state. It is not safe for
// concurrent use; the driver calls Tick from a single goroutine.
type Simulation struct {
	cfg    Config
	bounds world.Bounds
	rng    *rand.Rand

	pop      []*agents.Agent // Live agents (plus any that died since the last purge)
	newborns []*agents.Agent // Born this tick, admitted after the contact pass
	day      uint64          // Most recent day processed

	// Agent spawner for the initial population and births.
	Spawner *agents.Spawner

	events  []Event // Recent events, bounded by maxEvents
	pending []Event // Events not yet handed to TakeEvents, bounded by maxEvents

	stats Census
}

// Event is a notable occurrence in the population.
type Event struct {
	Tick        uint64 `json:"tick" db:"tick"`
	Description string `json:"description" db:"description"`
	Category    string `json:"category" db:"category"` // "infection", "birth", "death"
}

// Census is the population summary for one day.
type Census struct {
	Tick         uint64  `json:"tick" db:"tick"`
	Population   int     `json:"population" db:"population"`
	Infected     int     `json:"infected" db:"infected"`
	Ill          int     `json:"ill" db:"ill"`
	Convalescing int     `json:"convalescing" db:"convalescing"`
	Healthy      int     `json:"healthy" db:"healthy"`
	Births       int     `json:"births" db:"births"`
	Deaths       int     `json:"deaths" db:"deaths"`
	Infections   int     `json:"infections" db:"infections"`
	AvgImmunity  float64 `json:"avg_immunity" db:"avg_immunity"`
}

// AgentView is the read-only projection renderers draw from.
type AgentView struct {
	ID       agents.AgentID `json:"id"`
	X        float64        `json:"x"`
	Y        float64        `json:"y"`
	Stage    agents.Stage   `json:"stage"`
	Age      int            `json:"age"`
	Immunity float64        `json:"immunity"`
}

// NewSimulation validates cfg and spawns the initial population. A nil rng
// is replaced by one seeded from cfg.Seed.
func NewSimulation(cfg Config, rng *rand.Rand) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = entropy.NewRand(cfg.Seed)
	}

	s := newSimulation(cfg, rng)
	s.pop = s.Spawner.SpawnPopulation(cfg.Population, 0)
	s.updateStats()

	slog.Debug("population spawned",
		"agents", len(s.pop),
		"bounds", s.bounds.String(),
		"placement", cfg.Placement,
	)
	return s, nil
}

// NewSimulationFromAgents builds a simulation around a caller-supplied
// population. cfg.Population is ignored.
func NewSimulationFromAgents(cfg Config, rng *rand.Rand, ag []*agents.Agent) (*Simulation, error) {
	cfg.Population = max(len(ag), 1)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = entropy.NewRand(cfg.Seed)
	}

	s := newSimulation(cfg, rng)
	s.pop = append([]*agents.Agent(nil), ag...)

	var maxID agents.AgentID
	for _, a := range s.pop {
		if a.ID > maxID {
			maxID = a.ID
		}
	}
	s.Spawner.SetNextID(maxID + 1)
	s.updateStats()
	return s, nil
}

func newSimulation(cfg Config, rng *rand.Rand) *Simulation {
	spawnCfg := agents.SpawnConfig{
		Bounds:        cfg.Bounds(),
		Margin:        cfg.Margin,
		Speeds:        cfg.Speeds,
		Durations:     cfg.Durations,
		MaxAge:        cfg.MaxAge,
		InitialMaxAge: cfg.InitialMaxAge,
	}
	if cfg.Placement == PlacementClustered {
		fieldCfg := cfg.Field
		if fieldCfg.Seed == 0 {
			fieldCfg.Seed = rng.Int63()
		}
		spawnCfg.Field = world.NewField(fieldCfg)
	}

	return &Simulation{
		cfg:     cfg,
		bounds:  cfg.Bounds(),
		rng:     rng,
		Spawner: agents.NewSpawner(spawnCfg, rng),
	}
}

// Tick advances the simulation by one day: self-updates, purge of the dead,
// the contact pass, then admission of newborns.
func (s *Simulation) Tick() {
	s.day++
	s.stats = Census{Tick: s.day}

	for _, a := range s.pop {
		if a.Alive {
			a.Update(s.bounds, s.cfg.Durations)
		}
	}

	s.RemoveDead()
	s.resolveContacts()
	s.admitNewborns()
	s.updateStats()
}

// Day returns the most recently processed day (0 before the first tick).
func (s *Simulation) Day() uint64 {
	return s.day
}

// DayLabel returns the human-readable day counter shown by renderers.
func (s *Simulation) DayLabel() string {
	return DayLabel(s.day)
}

// DayLabel formats a day number for display.
func DayLabel(day uint64) string {
	return fmt.Sprintf("Day: %d", day)
}

// Config returns the configuration the simulation was built with.
func (s *Simulation) Config() Config {
	return s.cfg
}

// Population returns the number of agents currently held.
func (s *Simulation) Population() int {
	return len(s.pop)
}

// Agents returns a snapshot of every living agent for rendering.
func (s *Simulation) Agents() []AgentView {
	views := make([]AgentView, 0, len(s.pop))
	for _, a := range s.pop {
		if !a.Alive {
			continue
		}
		views = append(views, AgentView{
			ID:       a.ID,
			X:        a.X,
			Y:        a.Y,
			Stage:    a.Stage,
			Age:      a.Age,
			Immunity: a.Immunity,
		})
	}
	return views
}

// Stats returns the census of the most recent day.
func (s *Simulation) Stats() Census {
	return s.stats
}

// RecentEvents returns up to the last maxEvents events, oldest first.
func (s *Simulation) RecentEvents() []Event {
	return append([]Event(nil), s.events...)
}

// TakeEvents returns the events recorded since the previous call. Only the
// most recent maxEvents are kept between calls.
func (s *Simulation) TakeEvents() []Event {
	out := s.pending
	s.pending = nil
	return out
}

func (s *Simulation) record(category, format string, args ...any) {
	e := Event{
		Tick:        s.day,
		Description: fmt.Sprintf(format, args...),
		Category:    category,
	}
	s.events = append(s.events, e)
	s.pending = append(s.pending, e)
	// Trim old events to prevent unbounded growth.
	if len(s.events) > maxEvents {
		s.events = s.events[len(s.events)-maxEvents:]
	}
	if len(s.pending) > maxEvents {
		s.pending = s.pending[len(s.pending)-maxEvents:]
	}
}

func (s *Simulation) updateStats() {
	s.stats.Population = len(s.pop)
	s.stats.Infected, s.stats.Ill, s.stats.Convalescing, s.stats.Healthy = 0, 0, 0, 0

	total := 0.0
	for _, a := range s.pop {
		switch a.Stage {
		case agents.StageInfected:
			s.stats.Infected++
		case agents.StageIll:
			s.stats.Ill++
		case agents.StageConvalescing:
			s.stats.Convalescing++
		case agents.StageHealthy:
			s.stats.Healthy++
		}
		total += a.Immunity
	}

	s.stats.AvgImmunity = 0
	if len(s.pop) > 0 {
		s.stats.AvgImmunity = total / float64(len(s.pop))
	}
}
