// Package input maps vote symbols to emulator input primitives.
package input

import (
	"fmt"

	"github.com/0xDEADCADE/PokemonArcade/internal/arcade/domain"
	"github.com/0xDEADCADE/PokemonArcade/internal/arcade/engine"
)

// Engine step counts for applying one action.
const (
	holdSteps   = 15  // steps a button stays pressed
	releaseStep = 1   // steps after release before settling
	settleSteps = 15  // steps after every action so effects land on screen
	waitSteps   = 105 // steps for the wait symbol, about two in-game seconds
)

// action binds a symbol to its press/release primitives and caption text.
type action struct {
	press    engine.Primitive
	release  engine.Primitive
	describe string
}

var actions = map[domain.Symbol]action{
	domain.SymbolA:      {engine.PressA, engine.ReleaseA, "Pressed A"},
	domain.SymbolB:      {engine.PressB, engine.ReleaseB, "Pressed B"},
	domain.SymbolUp:     {engine.PressUp, engine.ReleaseUp, "Pressed Up"},
	domain.SymbolDown:   {engine.PressDown, engine.ReleaseDown, "Pressed Down"},
	domain.SymbolLeft:   {engine.PressLeft, engine.ReleaseLeft, "Pressed Left"},
	domain.SymbolRight:  {engine.PressRight, engine.ReleaseRight, "Pressed Right"},
	domain.SymbolStart:  {engine.PressStart, engine.ReleaseStart, "Pressed Start"},
	domain.SymbolSelect: {engine.PressSelect, engine.ReleaseSelect, "Pressed Select"},
}

// Describe returns the caption text for a symbol without touching an engine.
func Describe(symbol domain.Symbol) string {
	if symbol == domain.SymbolWait {
		return "Waited 2 seconds"
	}
	if a, ok := actions[symbol]; ok {
		return a.describe
	}
	return ""
}

// Apply performs one symbol's action on an engine: press, hold, release,
// settle. The wait symbol only advances emulation time. It returns the
// caption text describing the action.
func Apply(e engine.Engine, symbol domain.Symbol) (string, error) {
	if e == nil {
		return "", fmt.Errorf("engine is required")
	}

	if symbol == domain.SymbolWait {
		if err := e.Advance(waitSteps); err != nil {
			return "", fmt.Errorf("advance for wait: %w", err)
		}
		if err := e.Advance(settleSteps); err != nil {
			return "", fmt.Errorf("settle after wait: %w", err)
		}
		return "Waited 2 seconds", nil
	}

	a, ok := actions[symbol]
	if !ok {
		return "", fmt.Errorf("unrecognized symbol %s", symbol)
	}

	if err := e.SendInput(a.press); err != nil {
		return "", fmt.Errorf("press %s: %w", symbol, err)
	}
	if err := e.Advance(holdSteps); err != nil {
		return "", fmt.Errorf("hold %s: %w", symbol, err)
	}
	if err := e.SendInput(a.release); err != nil {
		return "", fmt.Errorf("release %s: %w", symbol, err)
	}
	if err := e.Advance(releaseStep); err != nil {
		return "", fmt.Errorf("step after release of %s: %w", symbol, err)
	}
	if err := e.Advance(settleSteps); err != nil {
		return "", fmt.Errorf("settle after %s: %w", symbol, err)
	}
	return a.describe, nil
}
