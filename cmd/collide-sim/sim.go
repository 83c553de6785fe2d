package main

import (
	"context"
	"io"
	"math/rand"
	"time"

	"github.com/opd-ai/go-quadcollide/pkg/collision"
	"github.com/opd-ai/go-quadcollide/pkg/config"
	"github.com/opd-ai/go-quadcollide/pkg/entity"
	"github.com/opd-ai/go-quadcollide/pkg/health"
	"github.com/opd-ai/go-quadcollide/pkg/logging"
	"github.com/opd-ai/go-quadcollide/pkg/render"
	"github.com/opd-ai/go-quadcollide/pkg/room"
	"github.com/opd-ai/go-quadcollide/pkg/scenario"
)

const (
	// memoryLimitMB bounds heap usage reported as healthy.
	memoryLimitMB = 500
	// stallSteps is how many step intervals may pass without progress
	// before readiness fails.
	stallSteps = 30

	asciiWidth = 80
)

type simulation struct {
	room     *room.Room
	scenario *scenario.Scenario
	logger   *logging.Logger

	terminal *render.TerminalRenderer
	every    int
}

// newSimulation builds a walled room with n movers.
func newSimulation(cfg *config.Config, logger *logging.Logger, n int, rng *rand.Rand) (*simulation, error) {
	r := room.NewRoom(cfg)
	r.SetLogger(logger)

	s := scenario.New(r)
	if err := s.AddWalls(); err != nil {
		return nil, err
	}
	if err := s.Populate(n, rng); err != nil {
		return nil, err
	}
	s.Attach()

	return &simulation{room: r, scenario: s, logger: logger}, nil
}

// enableASCII prints a frame to w every n steps.
func (s *simulation) enableASCII(w io.Writer, n int) {
	b := s.room.Bounds()
	scale := b.Width / asciiWidth
	height := int(b.Height/scale + 0.5)
	s.terminal = render.NewTerminalRenderer(asciiWidth, height, scale)
	s.terminal.SetOutput(w)
	s.every = n
}

func (s *simulation) step(ctx context.Context) room.StepStats {
	stats := s.room.Step(ctx)
	if s.terminal != nil && stats.Tick%uint64(s.every) == 0 {
		s.room.View(func(tree *collision.Tree, instances []*entity.Instance) {
			render.Frame(s.terminal, tree, instances)
		})
	}
	return stats
}

// runSteps runs n steps as fast as possible.
func (s *simulation) runSteps(ctx context.Context, n int) summary {
	var sum summary
	start := time.Now()
	for i := 0; i < n && ctx.Err() == nil; i++ {
		sum.add(s.step(ctx))
	}
	sum.elapsed = time.Since(start)
	return sum
}

// runRealtime steps at the configured rate until ctx is done.
func (s *simulation) runRealtime(ctx context.Context) summary {
	var sum summary
	start := time.Now()
	ticker := time.NewTicker(s.room.Config.StepInterval())
	defer ticker.Stop()

	rate := uint64(s.room.Config.Room.StepRate)
	for {
		select {
		case <-ctx.Done():
			sum.elapsed = time.Since(start)
			return sum
		case <-ticker.C:
			stats := s.step(ctx)
			sum.add(stats)
			if rate > 0 && stats.Tick%rate == 0 {
				s.logger.Info(logging.WithTick(ctx, stats.Tick), "Simulation progress",
					"instances", stats.Instances,
					"pairs", stats.Pairs,
					"collisions", stats.Collisions,
					"resolved", stats.Resolved,
				)
			}
		}
	}
}

// healthChecker reports the simulation as ready while it keeps stepping, its
// tree is sound and memory stays bounded.
func (s *simulation) healthChecker() *health.HealthChecker {
	checker := health.NewHealthChecker()
	checker.AddCheck(health.NewStepHealthCheck(
		func() uint64 {
			s.room.EntityLock.RLock()
			defer s.room.EntityLock.RUnlock()
			return s.room.CurrentTick
		},
		stallSteps*s.room.Config.StepInterval(),
	))
	checker.AddCheck(health.NewTreeHealthCheck(func() error {
		var err error
		s.room.View(func(tree *collision.Tree, _ []*entity.Instance) {
			err = tree.Validate()
		})
		return err
	}))
	checker.AddCheck(health.NewMemoryHealthCheck(memoryLimitMB, nil))
	return checker
}

// summary accumulates step statistics.
type summary struct {
	steps      int
	pairs      int
	collisions int
	resolved   int
	settled    int
	rejected   int
	elapsed    time.Duration
}

func (s *summary) add(stats room.StepStats) {
	s.steps++
	s.pairs += stats.Pairs
	s.collisions += stats.Collisions
	s.resolved += stats.Resolved
	s.settled += stats.Settled
	s.rejected += stats.Rejected
}

func (s summary) log(ctx context.Context, logger *logging.Logger) {
	var perStep time.Duration
	if s.steps > 0 {
		perStep = s.elapsed / time.Duration(s.steps)
	}
	logger.Info(ctx, "Simulation finished",
		"steps", s.steps,
		"pairs", s.pairs,
		"collisions", s.collisions,
		"resolved", s.resolved,
		"settled", s.settled,
		"rejected", s.rejected,
		"elapsed", s.elapsed.String(),
		"per_step", perStep.String(),
	)
}
