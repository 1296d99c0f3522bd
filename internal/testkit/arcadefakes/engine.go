// Package arcadefakes provides in-memory fakes of the engine and chat
// collaborators for tests and the development harness.
package arcadefakes

import (
	"fmt"
	"sync"

	"github.com/0xDEADCADE/PokemonArcade/internal/arcade/engine"
)

// Engine is a scriptable in-memory engine instance.
type Engine struct {
	mu      sync.Mutex
	romPath string
	steps   int
	inputs  []engine.Primitive
	stopped bool
	saved   bool

	// Frame is returned by Render. When nil, Render derives a frame that
	// changes with every accepted input so cache tests see distinct bytes.
	Frame []byte

	AdvanceErr error
	InputErr   error
	RenderErr  error
	StopErr    error
}

// NewEngine creates a fake engine for a ROM path.
func NewEngine(romPath string) *Engine {
	return &Engine{romPath: romPath}
}

// Advance records advanced steps.
func (e *Engine) Advance(n int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.AdvanceErr != nil {
		return e.AdvanceErr
	}
	e.steps += n
	return nil
}

// SendInput records a primitive.
func (e *Engine) SendInput(p engine.Primitive) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.InputErr != nil {
		return e.InputErr
	}
	e.inputs = append(e.inputs, p)
	return nil
}

// Render returns the configured frame or one derived from input history.
func (e *Engine) Render() ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.RenderErr != nil {
		return nil, e.RenderErr
	}
	if e.Frame != nil {
		frame := make([]byte, len(e.Frame))
		copy(frame, e.Frame)
		return frame, nil
	}
	return []byte(fmt.Sprintf("frame rom=%s inputs=%d steps=%d", e.romPath, len(e.inputs), e.steps)), nil
}

// Stop marks the engine stopped.
func (e *Engine) Stop(save bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.StopErr != nil {
		return e.StopErr
	}
	e.stopped = true
	e.saved = save
	return nil
}

// Steps returns the total advanced steps.
func (e *Engine) Steps() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.steps
}

// Inputs snapshots the received primitives.
func (e *Engine) Inputs() []engine.Primitive {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]engine.Primitive, len(e.inputs))
	copy(out, e.inputs)
	return out
}

// Stopped reports whether Stop was called, and whether it saved.
func (e *Engine) Stopped() (stopped, saved bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stopped, e.saved
}

// ROMPath returns the path the engine was started with.
func (e *Engine) ROMPath() string { return e.romPath }

// EngineFactory hands out fake engines and remembers every instance.
type EngineFactory struct {
	mu       sync.Mutex
	started  []*Engine
	StartErr error
}

// NewEngineFactory creates an engine factory.
func NewEngineFactory() *EngineFactory {
	return &EngineFactory{}
}

// Start implements engine.Starter.
func (f *EngineFactory) Start(romPath string) (engine.Engine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.StartErr != nil {
		return nil, f.StartErr
	}
	instance := NewEngine(romPath)
	f.started = append(f.started, instance)
	return instance, nil
}

// Started snapshots every engine the factory booted.
func (f *EngineFactory) Started() []*Engine {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*Engine, len(f.started))
	copy(out, f.started)
	return out
}
