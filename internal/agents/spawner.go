// Agent spawning: the initial population with random ages, stages
// and immunity, plus newborns at their parent's side.
package agents

import (
	"math/rand"

	"github.com/talgya/mini-epidemic/internal/world"
)

// SpawnConfig controls population generation.
type SpawnConfig struct {
	Bounds        world.Bounds
	Margin        float64 // Initial positions keep this distance from the walls
	Speeds        []int   // Speed set agents draw from
	Durations     Durations
	MaxAge        int // Terminal age for every agent
	InitialMaxAge int // Upper bound of the initial age draw

	// Field, when set, weights initial placement by density.
	Field *world.Field
}

// Spawner creates agents for the simulation.
type Spawner struct {
	cfg    SpawnConfig
	rng    *rand.Rand
	nextID AgentID
}

// NewSpawner creates an agent spawner drawing from rng.
func NewSpawner(cfg SpawnConfig, rng *rand.Rand) *Spawner {
	return &Spawner{
		cfg:    cfg,
		rng:    rng,
		nextID: 1,
	}
}

// SetNextID sets the next agent ID to be issued.
func (s *Spawner) SetNextID(id AgentID) {
	s.nextID = id
}

// SpawnPopulation creates count agents scattered over the plane.
func (s *Spawner) SpawnPopulation(count int, tick uint64) []*Agent {
	agents := make([]*Agent, 0, count)
	for i := 0; i < count; i++ {
		agents = append(agents, s.spawnOne(tick))
	}
	return agents
}

func (s *Spawner) spawnOne(tick uint64) *Agent {
	a := s.base(tick)

	if s.cfg.Field != nil {
		a.X, a.Y = s.cfg.Field.Sample(s.rng, s.cfg.Bounds, s.cfg.Margin)
	} else {
		a.X, a.Y = world.Uniform(s.rng, s.cfg.Bounds, s.cfg.Margin)
	}

	a.Age = s.rng.Intn(s.cfg.InitialMaxAge + 1)
	a.Immunity = s.initialImmunity(a.Age)
	a.Stage = Stages[s.rng.Intn(NumStages)]
	if a.Stage != StageHealthy {
		// Partway through the stage: 1..duration days remain.
		a.StageTicks = 1 + s.rng.Intn(s.cfg.Durations.For(a.Stage))
	}
	return a
}

// SpawnNewborn creates a Healthy newborn at the parent's position.
func (s *Spawner) SpawnNewborn(parent *Agent, tick uint64) *Agent {
	a := s.base(tick)
	a.X, a.Y = parent.X, parent.Y
	a.Age = 0
	a.Immunity = NewbornImmunity
	a.Stage = StageHealthy
	a.ResetStageDuration(s.cfg.Durations)
	return a
}

// base issues an ID and draws kinematics shared by every new agent.
func (s *Spawner) base(tick uint64) *Agent {
	id := s.nextID
	s.nextID++

	dir := Directions[s.rng.Intn(len(Directions))]
	return &Agent{
		ID:       id,
		DX:       dir[0],
		DY:       dir[1],
		Speed:    s.cfg.Speeds[s.rng.Intn(len(s.cfg.Speeds))],
		MaxAge:   s.cfg.MaxAge,
		BornTick: tick,
		Alive:    true,
	}
}

// initialImmunity draws immunity from the age bracket's range:
// [0,3) for the young and old, [3,6) for 40–69, [6,10) for 15–39.
func (s *Spawner) initialImmunity(age int) float64 {
	lo, hi := 6.0, 10.0
	switch {
	case age < 15 || age >= 70:
		lo, hi = 0, 3
	case age >= 40:
		lo, hi = 3, 6
	}
	return min(lo+s.rng.Float64()*(hi-lo)+ImmunityFloor, hi)
}
