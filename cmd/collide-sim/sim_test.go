package main

import (
	"bytes"
	"context"
	"math/rand"
	"strings"
	"testing"

	"github.com/opd-ai/go-quadcollide/pkg/config"
	"github.com/opd-ai/go-quadcollide/pkg/logging"
)

func newTestSimulation(t *testing.T, n int) *simulation {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Room.Width = 320
	cfg.Room.Height = 240
	cfg.Debug = true
	sim, err := newSimulation(cfg, logging.NewNopLogger(), n, rand.New(rand.NewSource(7)))
	if err != nil {
		t.Fatalf("newSimulation failed: %v", err)
	}
	return sim
}

func TestSimulation_RunSteps(t *testing.T) {
	sim := newTestSimulation(t, 12)

	if sim.room.Len() != 16 {
		t.Fatalf("Expected 4 walls and 12 movers, got %d instances", sim.room.Len())
	}

	sum := sim.runSteps(context.Background(), 50)
	if sum.steps != 50 {
		t.Errorf("Expected 50 steps, got %d", sum.steps)
	}
	if sim.room.CurrentTick != 50 {
		t.Errorf("Expected tick 50, got %d", sim.room.CurrentTick)
	}
	if sum.pairs == 0 {
		t.Error("Expected walls and movers to share leaves")
	}
}

func TestSimulation_RunStepsStopsOnCancel(t *testing.T) {
	sim := newTestSimulation(t, 4)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if sum := sim.runSteps(ctx, 10); sum.steps != 0 {
		t.Errorf("Expected no steps after cancel, got %d", sum.steps)
	}
}

func TestSimulation_ASCIIFrames(t *testing.T) {
	sim := newTestSimulation(t, 4)
	var buf bytes.Buffer
	sim.enableASCII(&buf, 5)

	sim.runSteps(context.Background(), 10)

	frames := strings.Count(buf.String(), "+"+strings.Repeat("-", asciiWidth)+"+\n")
	if frames != 4 {
		t.Errorf("Expected 2 frames with top and bottom borders, got %d borders", frames)
	}
	if !strings.Contains(buf.String(), "#") {
		t.Error("Expected solid instances in the frame")
	}
}

func TestSimulation_HealthChecker(t *testing.T) {
	sim := newTestSimulation(t, 4)
	sim.runSteps(context.Background(), 3)

	status := sim.healthChecker().CheckHealth(context.Background())
	if status.Status != "healthy" {
		t.Errorf("Expected healthy simulation, got %+v", status)
	}
	for _, name := range []string{"simulation", "collision_tree", "memory"} {
		if _, ok := status.Checks[name]; !ok {
			t.Errorf("Expected check %q", name)
		}
	}
}

func TestSummary_Add(t *testing.T) {
	sim := newTestSimulation(t, 0)
	var sum summary
	sum.add(sim.step(context.Background()))
	sum.add(sim.step(context.Background()))

	if sum.steps != 2 {
		t.Errorf("Expected 2 steps, got %d", sum.steps)
	}
	sum.log(context.Background(), logging.NewNopLogger())
}
