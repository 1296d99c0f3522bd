// Package domain defines the entities for arcade sessions.
//
// A Session is one running emulator instance shared by one or more chat
// channels. The channel that created the session hosts it and owns the
// engine handle; every other attached channel holds a back-reference to the
// host and receives synchronized display updates.
//
// # Voting
//
// When a session has more than one participant, raw inputs are batched into
// a VoteWindow for a debounce interval and resolved to a single winning
// Symbol by plurality. Ties resolve to the earliest symbol in canonical
// order, so resolution is deterministic regardless of submission order.
package domain
