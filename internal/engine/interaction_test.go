package engine

import (
	"math"
	"math/rand"
	"testing"

	"github.com/talgya/mini-epidemic/internal/agents"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.BirthRate = 0
	cfg.Seed = 1
	return cfg
}

func newTestAgent(id agents.AgentID, x, y float64, stage agents.Stage, age int, immunity float64) *agents.Agent {
	a := &agents.Agent{
		ID:       id,
		X:        x,
		Y:        y,
		DX:       1,
		DY:       0,
		Speed:    1,
		Age:      age,
		MaxAge:   100,
		Stage:    stage,
		Immunity: immunity,
		Alive:    true,
	}
	a.ResetStageDuration(agents.DefaultDurations())
	return a
}

func newTestSim(t *testing.T, cfg Config, ag ...*agents.Agent) *Simulation {
	t.Helper()
	s, err := NewSimulationFromAgents(cfg, rand.New(rand.NewSource(cfg.Seed)), ag)
	if err != nil {
		t.Fatalf("expected simulation, got error %v", err)
	}
	return s
}

// contact places two agents one unit apart and resolves the pass.
func contact(t *testing.T, first, second *agents.Agent) *Simulation {
	t.Helper()
	first.X, first.Y = 50, 50
	second.X, second.Y = 51, 50
	s := newTestSim(t, testConfig(), first, second)
	s.resolveContacts()
	return s
}

func closeTo(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestHealthyLowMeetsIllBecomesInfected(t *testing.T) {
	first := newTestAgent(1, 0, 0, agents.StageHealthy, 10, 2)
	second := newTestAgent(2, 0, 0, agents.StageIll, 30, 5)
	s := contact(t, first, second)

	if first.Stage != agents.StageInfected {
		t.Fatalf("expected first Infected, got %s", first.Stage)
	}
	if first.StageTicks != 2 {
		t.Fatalf("expected stage ticks reset to 2, got %d", first.StageTicks)
	}
	if second.Stage != agents.StageIll {
		t.Errorf("expected second to stay Ill, got %s", second.Stage)
	}
	if s.Stats().Infections != 1 {
		t.Errorf("expected 1 infection counted, got %d", s.Stats().Infections)
	}
}

func TestHealthyMeetsIllByBracket(t *testing.T) {
	medium := newTestAgent(1, 0, 0, agents.StageHealthy, 30, 5)
	contact(t, medium, newTestAgent(2, 0, 0, agents.StageIll, 30, 5))
	if medium.Stage != agents.StageInfected {
		t.Errorf("medium bracket: expected Infected, got %s", medium.Stage)
	}

	high := newTestAgent(1, 0, 0, agents.StageHealthy, 30, 8)
	contact(t, high, newTestAgent(2, 0, 0, agents.StageIll, 30, 5))
	if high.Stage != agents.StageHealthy {
		t.Errorf("high bracket: expected Healthy, got %s", high.Stage)
	}
	if !closeTo(high.Immunity, 5) {
		t.Errorf("high bracket: expected immunity 5, got %v", high.Immunity)
	}
}

func TestHealthyMeetsInfectedOnlyLowIsInfected(t *testing.T) {
	low := newTestAgent(1, 0, 0, agents.StageHealthy, 30, 2.5)
	contact(t, low, newTestAgent(2, 0, 0, agents.StageInfected, 30, 5))
	if low.Stage != agents.StageInfected {
		t.Errorf("low bracket: expected Infected, got %s", low.Stage)
	}

	medium := newTestAgent(1, 0, 0, agents.StageHealthy, 30, 4)
	contact(t, medium, newTestAgent(2, 0, 0, agents.StageInfected, 30, 5))
	if medium.Stage != agents.StageHealthy || medium.Immunity != 4 {
		t.Errorf("medium bracket: expected untouched, got %s at %v", medium.Stage, medium.Immunity)
	}
}

func TestHealthyMeetsConvalescingBoostsSecond(t *testing.T) {
	first := newTestAgent(1, 0, 0, agents.StageHealthy, 30, 5)
	second := newTestAgent(2, 0, 0, agents.StageConvalescing, 30, 4)
	contact(t, first, second)
	if second.Immunity != 5 {
		t.Errorf("expected second immunity 5, got %v", second.Immunity)
	}
	if first.Immunity != 5 {
		t.Errorf("expected first untouched, got %v", first.Immunity)
	}
}

func TestHealthyPairEqualImmunityUnchanged(t *testing.T) {
	first := newTestAgent(1, 0, 0, agents.StageHealthy, 25, 5)
	second := newTestAgent(2, 0, 0, agents.StageHealthy, 30, 5)
	contact(t, first, second)
	if first.Immunity != 5 || second.Immunity != 5 {
		t.Fatalf("expected both at 5, got %v and %v", first.Immunity, second.Immunity)
	}
}

func TestHealthyPairRaisedToMaxWithinCeiling(t *testing.T) {
	first := newTestAgent(1, 0, 0, agents.StageHealthy, 50, 4)  // ceiling 6
	second := newTestAgent(2, 0, 0, agents.StageHealthy, 25, 8) // ceiling 10
	contact(t, first, second)
	if first.Immunity != 6 {
		t.Errorf("expected first clamped to 6, got %v", first.Immunity)
	}
	if second.Immunity != 8 {
		t.Errorf("expected second unchanged at 8, got %v", second.Immunity)
	}
}

func TestIllMeetsInfected(t *testing.T) {
	first := newTestAgent(1, 0, 0, agents.StageIll, 30, 5)
	first.StageTicks = 3
	second := newTestAgent(2, 0, 0, agents.StageInfected, 30, 4)
	contact(t, first, second)
	if second.Stage != agents.StageIll || second.StageTicks != 7 {
		t.Errorf("expected second Ill with 7 ticks, got %s with %d", second.Stage, second.StageTicks)
	}
	if first.StageTicks != 7 {
		t.Errorf("expected first ticks reset to 7, got %d", first.StageTicks)
	}

	first = newTestAgent(1, 0, 0, agents.StageIll, 30, 5)
	first.StageTicks = 3
	resistant := newTestAgent(2, 0, 0, agents.StageInfected, 30, 9)
	contact(t, first, resistant)
	if resistant.Stage != agents.StageInfected {
		t.Errorf("expected high bracket to stay Infected, got %s", resistant.Stage)
	}
	if first.StageTicks != 7 {
		t.Errorf("expected first ticks reset regardless, got %d", first.StageTicks)
	}
}

func TestIllMeetsConvalescingReinfects(t *testing.T) {
	second := newTestAgent(2, 0, 0, agents.StageConvalescing, 30, 5)
	contact(t, newTestAgent(1, 0, 0, agents.StageIll, 30, 5), second)
	if second.Stage != agents.StageInfected || second.StageTicks != 2 {
		t.Errorf("expected second Infected with 2 ticks, got %s with %d", second.Stage, second.StageTicks)
	}

	high := newTestAgent(2, 0, 0, agents.StageConvalescing, 30, 7)
	contact(t, newTestAgent(1, 0, 0, agents.StageIll, 30, 5), high)
	if high.Stage != agents.StageConvalescing {
		t.Errorf("expected high bracket to stay Convalescing, got %s", high.Stage)
	}
}

func TestIllPairLoweredToMin(t *testing.T) {
	first := newTestAgent(1, 0, 0, agents.StageIll, 30, 7)
	first.StageTicks = 2
	second := newTestAgent(2, 0, 0, agents.StageIll, 30, 4)
	second.StageTicks = 1
	contact(t, first, second)
	if first.Immunity != 4 || second.Immunity != 4 {
		t.Errorf("expected both at 4, got %v and %v", first.Immunity, second.Immunity)
	}
	if first.StageTicks != 7 || second.StageTicks != 7 {
		t.Errorf("expected both ticks reset to 7, got %d and %d", first.StageTicks, second.StageTicks)
	}
}

func TestInfectedMeetsConvalescingWeakensSecond(t *testing.T) {
	second := newTestAgent(2, 0, 0, agents.StageConvalescing, 30, 5)
	contact(t, newTestAgent(1, 0, 0, agents.StageInfected, 30, 5), second)
	if second.Immunity != 4 {
		t.Errorf("expected second immunity 4, got %v", second.Immunity)
	}
}

func TestMirroredPairsHaveNoEffect(t *testing.T) {
	cases := []struct {
		first, second agents.Stage
	}{
		{agents.StageIll, agents.StageHealthy},
		{agents.StageInfected, agents.StageHealthy},
		{agents.StageConvalescing, agents.StageHealthy},
		{agents.StageInfected, agents.StageIll},
		{agents.StageConvalescing, agents.StageIll},
		{agents.StageConvalescing, agents.StageInfected},
		{agents.StageConvalescing, agents.StageConvalescing},
		{agents.StageInfected, agents.StageInfected},
	}
	for _, c := range cases {
		first := newTestAgent(1, 0, 0, c.first, 30, 2)
		second := newTestAgent(2, 0, 0, c.second, 30, 2)
		firstTicks, secondTicks := first.StageTicks, second.StageTicks
		contact(t, first, second)
		if first.Stage != c.first || second.Stage != c.second {
			t.Errorf("%s/%s: expected stages untouched, got %s/%s", c.first, c.second, first.Stage, second.Stage)
		}
		if first.Immunity != 2 || second.Immunity != 2 {
			t.Errorf("%s/%s: expected immunity untouched, got %v/%v", c.first, c.second, first.Immunity, second.Immunity)
		}
		if first.StageTicks != firstTicks || second.StageTicks != secondTicks {
			t.Errorf("%s/%s: expected durations untouched", c.first, c.second)
		}
	}
}

func TestContactRequiresInfectionRadius(t *testing.T) {
	far := newTestAgent(1, 10, 10, agents.StageHealthy, 10, 2)
	ill := newTestAgent(2, 12.5, 10.5, agents.StageIll, 30, 5)
	s := newTestSim(t, testConfig(), far, ill)
	s.resolveContacts()
	if far.Stage != agents.StageHealthy {
		t.Fatalf("expected no contact beyond radius, got %s", far.Stage)
	}

	// Chebyshev distance exactly 2 is in range.
	near := newTestAgent(1, 10, 10, agents.StageHealthy, 10, 2)
	ill = newTestAgent(2, 12, 8.5, agents.StageIll, 30, 5)
	s = newTestSim(t, testConfig(), near, ill)
	s.resolveContacts()
	if near.Stage != agents.StageInfected {
		t.Fatalf("expected contact at radius, got %s", near.Stage)
	}
}

func TestColocatedAgentsScatter(t *testing.T) {
	first := newTestAgent(1, 20, 20, agents.StageHealthy, 30, 5)
	second := newTestAgent(2, 20, 20, agents.StageHealthy, 30, 5)
	s := newTestSim(t, testConfig(), first, second)
	s.resolveContacts()
	if first.DX == 1 && first.DY == 0 {
		t.Errorf("expected first to change direction")
	}
	if second.DX == 1 && second.DY == 0 {
		t.Errorf("expected second to change direction")
	}
}

func TestKilledAgentTakesNoFurtherPart(t *testing.T) {
	infected := newTestAgent(1, 30, 30, agents.StageInfected, 30, 5)
	ill := newTestAgent(2, 30.5, 30, agents.StageIll, 30, 5)
	weak := newTestAgent(3, 31, 30, agents.StageConvalescing, 30, 0.5)
	s := newTestSim(t, testConfig(), infected, ill, weak)

	s.resolveContacts()
	if weak.IsAlive() {
		t.Fatalf("expected convalescing agent killed by contact")
	}
	// The later Ill contact would have reinfected it.
	if weak.Stage != agents.StageConvalescing {
		t.Errorf("expected dead agent left Convalescing, got %s", weak.Stage)
	}

	s.RemoveDead()
	if s.Population() != 2 {
		t.Errorf("expected 2 agents after purge, got %d", s.Population())
	}
	if s.Stats().Deaths != 1 {
		t.Errorf("expected 1 death counted, got %d", s.Stats().Deaths)
	}
}
