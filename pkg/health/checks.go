package health

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"
)

// StepHealthCheck fails when the simulation tick has not advanced for longer
// than MaxStall.
type StepHealthCheck struct {
	tick     func() uint64
	maxStall time.Duration
	now      func() time.Time

	mu         sync.Mutex
	lastTick   uint64
	lastChange time.Time
}

// NewStepHealthCheck creates a stall check reading the current tick.
func NewStepHealthCheck(tick func() uint64, maxStall time.Duration) *StepHealthCheck {
	return &StepHealthCheck{
		tick:       tick,
		maxStall:   maxStall,
		now:        time.Now,
		lastChange: time.Now(),
	}
}

// Name returns the name of this health check.
func (s *StepHealthCheck) Name() string {
	return "simulation"
}

// Check reports a stalled simulation.
func (s *StepHealthCheck) Check(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if tick := s.tick(); tick != s.lastTick {
		s.lastTick = tick
		s.lastChange = now
		return nil
	}
	if stalled := now.Sub(s.lastChange); stalled > s.maxStall {
		return fmt.Errorf("simulation stalled at tick %d for %s", s.lastTick, stalled.Round(time.Millisecond))
	}
	return nil
}

// TreeHealthCheck reports structural damage in the collision tree.
type TreeHealthCheck struct {
	validate func() error
}

// NewTreeHealthCheck creates a check around a validation function, usually
// one that runs Tree.Validate under the room's read lock.
func NewTreeHealthCheck(validate func() error) *TreeHealthCheck {
	return &TreeHealthCheck{validate: validate}
}

// Name returns the name of this health check.
func (t *TreeHealthCheck) Name() string {
	return "collision_tree"
}

// Check runs the validation.
func (t *TreeHealthCheck) Check(ctx context.Context) error {
	if err := t.validate(); err != nil {
		return fmt.Errorf("collision tree invalid: %w", err)
	}
	return nil
}

// MemoryHealthCheck fails when heap usage exceeds a limit.
type MemoryHealthCheck struct {
	maxMemoryMB    int64
	getMemoryUsage func() int64
}

// NewMemoryHealthCheck creates a health check for memory usage. A nil
// getMemoryUsage reads the runtime's allocated heap.
func NewMemoryHealthCheck(maxMemoryMB int64, getMemoryUsage func() int64) *MemoryHealthCheck {
	if getMemoryUsage == nil {
		getMemoryUsage = HeapAllocMB
	}
	return &MemoryHealthCheck{
		maxMemoryMB:    maxMemoryMB,
		getMemoryUsage: getMemoryUsage,
	}
}

// Name returns the name of this health check.
func (m *MemoryHealthCheck) Name() string {
	return "memory"
}

// Check verifies that memory usage is within acceptable limits.
func (m *MemoryHealthCheck) Check(ctx context.Context) error {
	currentMB := m.getMemoryUsage()
	if currentMB > m.maxMemoryMB {
		return fmt.Errorf("memory usage %dMB exceeds limit %dMB", currentMB, m.maxMemoryMB)
	}
	return nil
}

// HeapAllocMB returns the allocated heap in megabytes.
func HeapAllocMB() int64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return int64(m.Alloc / 1024 / 1024)
}
