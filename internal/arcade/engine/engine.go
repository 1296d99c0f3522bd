// Package engine declares the contract for the emulator collaborator.
//
// The coordinator only needs "accept input primitive, advance state, render
// a frame, stop with optional save". Concrete emulator bindings live outside
// this module; tests and the development harness use the fakes under
// internal/testkit/arcadefakes.
package engine

// Primitive is a raw input event understood by the emulator.
type Primitive int

const (
	// PrimitiveUnspecified represents an invalid primitive.
	PrimitiveUnspecified Primitive = iota
	PressA
	ReleaseA
	PressB
	ReleaseB
	PressUp
	ReleaseUp
	PressDown
	ReleaseDown
	PressLeft
	ReleaseLeft
	PressRight
	ReleaseRight
	PressStart
	ReleaseStart
	PressSelect
	ReleaseSelect
)

// Engine is one running emulator instance. Implementations are not required
// to be safe for concurrent use: the owning session's critical section
// serializes every call.
type Engine interface {
	// Advance steps the emulation forward n steps.
	Advance(n int) error
	// SendInput delivers a press or release primitive.
	SendInput(p Primitive) error
	// Render returns the current frame as PNG-encodable raw bytes.
	Render() ([]byte, error)
	// Stop halts the instance, persisting state when save is true.
	Stop(save bool) error
}

// Starter boots a new engine instance for a ROM path. The instance is
// exclusively owned by the session it is started for.
type Starter func(romPath string) (Engine, error)

// WarmupSteps is how far a freshly started engine is advanced before the
// first render, so boot screens settle.
const WarmupSteps = 2000
