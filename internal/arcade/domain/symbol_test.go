package domain

import "testing"

func TestSymbolsCanonicalOrder(t *testing.T) {
	symbols := Symbols()
	if len(symbols) != 9 {
		t.Fatalf("expected 9 symbols, got %d", len(symbols))
	}
	want := []Symbol{
		SymbolA, SymbolB, SymbolUp, SymbolDown, SymbolLeft,
		SymbolRight, SymbolStart, SymbolSelect, SymbolWait,
	}
	for i, s := range want {
		if symbols[i] != s {
			t.Fatalf("expected %s at position %d, got %s", s, i, symbols[i])
		}
	}
}

func TestParseSymbol(t *testing.T) {
	tests := []struct {
		raw  string
		want Symbol
		ok   bool
	}{
		{"\U0001F170", SymbolA, true},
		{"⬆", SymbolUp, true},
		{"\U0001F550", SymbolWait, true},
		{"A", SymbolA, true},
		{"a", SymbolA, true},
		{"Select", SymbolSelect, true},
		{" Up ", SymbolUp, true},
		{"", SymbolUnspecified, false},
		{"ZZ", SymbolUnspecified, false},
		{"\U0001F600", SymbolUnspecified, false},
	}
	for _, tt := range tests {
		got, ok := ParseSymbol(tt.raw)
		if got != tt.want || ok != tt.ok {
			t.Fatalf("ParseSymbol(%q) = %s, %v; want %s, %v", tt.raw, got, ok, tt.want, tt.ok)
		}
	}
}

func TestSymbolRoundTripThroughReaction(t *testing.T) {
	for _, s := range Symbols() {
		got, ok := ParseSymbol(s.Reaction())
		if !ok || got != s {
			t.Fatalf("expected reaction %q to parse back to %s, got %s", s.Reaction(), s, got)
		}
	}
}

func TestSymbolValid(t *testing.T) {
	if SymbolUnspecified.Valid() {
		t.Fatal("unspecified symbol should not be valid")
	}
	if !SymbolWait.Valid() {
		t.Fatal("wait symbol should be valid")
	}
	if Symbol(42).Valid() {
		t.Fatal("out-of-range symbol should not be valid")
	}
}
