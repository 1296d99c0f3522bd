package domain

import "strings"

// Symbol identifies one of the nine recognized input actions.
type Symbol int

const (
	// SymbolUnspecified represents an unrecognized input.
	SymbolUnspecified Symbol = iota
	// SymbolA presses the A button.
	SymbolA
	// SymbolB presses the B button.
	SymbolB
	// SymbolUp presses the up arrow.
	SymbolUp
	// SymbolDown presses the down arrow.
	SymbolDown
	// SymbolLeft presses the left arrow.
	SymbolLeft
	// SymbolRight presses the right arrow.
	SymbolRight
	// SymbolStart presses the start button.
	SymbolStart
	// SymbolSelect presses the select button.
	SymbolSelect
	// SymbolWait advances emulation time without pressing anything.
	SymbolWait
)

// symbolOrder is the canonical priority order of the alphabet. Vote ties
// resolve to the earliest entry, so this order is part of the contract.
var symbolOrder = [...]Symbol{
	SymbolA,
	SymbolB,
	SymbolUp,
	SymbolDown,
	SymbolLeft,
	SymbolRight,
	SymbolStart,
	SymbolSelect,
	SymbolWait,
}

var symbolNames = map[Symbol]string{
	SymbolA:      "A",
	SymbolB:      "B",
	SymbolUp:     "Up",
	SymbolDown:   "Down",
	SymbolLeft:   "Left",
	SymbolRight:  "Right",
	SymbolStart:  "Start",
	SymbolSelect: "Select",
	SymbolWait:   "Wait",
}

var symbolReactions = map[Symbol]string{
	SymbolA:      "\U0001F170", // 🅰
	SymbolB:      "\U0001F171", // 🅱
	SymbolUp:     "⬆",
	SymbolDown:   "⬇",
	SymbolLeft:   "⬅",
	SymbolRight:  "➡",
	SymbolStart:  "▶",
	SymbolSelect: "\U0001F7E6", // 🟦
	SymbolWait:   "\U0001F550", // 🕐
}

// Symbols returns the recognized alphabet in canonical priority order.
func Symbols() []Symbol {
	out := make([]Symbol, len(symbolOrder))
	copy(out, symbolOrder[:])
	return out
}

// Valid reports whether the symbol is part of the recognized alphabet.
func (s Symbol) Valid() bool {
	_, ok := symbolNames[s]
	return ok
}

// String returns the human-readable symbol name.
func (s Symbol) String() string {
	if name, ok := symbolNames[s]; ok {
		return name
	}
	return "Unspecified"
}

// Reaction returns the chat reaction glyph bound to the symbol.
func (s Symbol) Reaction() string {
	return symbolReactions[s]
}

// ParseSymbol resolves a raw inbound value, either a reaction glyph or a
// symbol name, to a Symbol. The second return is false for anything outside
// the alphabet.
func ParseSymbol(raw string) (Symbol, bool) {
	raw = strings.TrimSpace(raw)
	for _, s := range symbolOrder {
		if raw == symbolReactions[s] || strings.EqualFold(raw, symbolNames[s]) {
			return s, true
		}
	}
	return SymbolUnspecified, false
}
