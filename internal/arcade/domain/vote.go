package domain

import "time"

// maxDebounceSeconds caps the debounce delay regardless of participant count.
const maxDebounceSeconds = 5

// VoteWindow batches one debounce interval of user votes. Each user holds
// exactly one effective vote per window: recording again overwrites the
// previous choice. A VoteWindow is not safe for concurrent use; callers
// serialize access through the session critical section.
type VoteWindow struct {
	choices map[string]Symbol
}

// NewVoteWindow opens an empty vote window.
func NewVoteWindow() *VoteWindow {
	return &VoteWindow{choices: make(map[string]Symbol)}
}

// Record stores the user's latest choice, replacing any earlier one.
func (w *VoteWindow) Record(userID string, symbol Symbol) {
	if !symbol.Valid() {
		return
	}
	w.choices[userID] = symbol
}

// Empty reports whether no votes have been recorded.
func (w *VoteWindow) Empty() bool {
	return len(w.choices) == 0
}

// Tally counts effective votes per symbol over the full alphabet. Symbols
// nobody voted for appear with a zero count.
func (w *VoteWindow) Tally() map[Symbol]int {
	tally := make(map[Symbol]int, len(symbolOrder))
	for _, s := range symbolOrder {
		tally[s] = 0
	}
	for _, s := range w.choices {
		tally[s]++
	}
	return tally
}

// Resolve returns the winning symbol and the final tally. Ties resolve to
// the earliest symbol in canonical order. Resolving an empty window returns
// SymbolUnspecified.
func (w *VoteWindow) Resolve() (Symbol, map[Symbol]int) {
	tally := w.Tally()
	if len(w.choices) == 0 {
		return SymbolUnspecified, tally
	}
	winner := SymbolUnspecified
	best := -1
	for _, s := range symbolOrder {
		if tally[s] > best {
			winner = s
			best = tally[s]
		}
	}
	return winner, tally
}

// DebounceDelay returns how long a window stays open before resolution:
// one second per participant, capped at five.
func DebounceDelay(participants int) time.Duration {
	if participants > maxDebounceSeconds {
		participants = maxDebounceSeconds
	}
	if participants < 1 {
		participants = 1
	}
	return time.Duration(participants) * time.Second
}
