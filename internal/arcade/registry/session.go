package registry

import (
	"context"
	"sync"
	"time"

	"github.com/0xDEADCADE/PokemonArcade/internal/arcade/domain"
	"github.com/0xDEADCADE/PokemonArcade/internal/arcade/engine"
)

// Attachment is one channel bound to a session and its game message.
type Attachment struct {
	ChannelID string
	MessageID string
}

// Session is the runtime state of one live session: metadata, the engine
// handle, attached channels, inactivity deadline, and the vote window.
//
// All runtime state is guarded by the session's own lock. Callers hold the
// lock across multi-step sequences (vote bookkeeping, engine input, render)
// so engine access stays serialized; the registry takes it internally for
// attach/detach/teardown.
type Session struct {
	Meta domain.Session

	mu          sync.Mutex
	engine      engine.Engine
	attached    map[string]string // channel id → game message id
	deadline    time.Time
	window      *domain.VoteWindow
	reaperStop  context.CancelFunc
	removed     bool
}

// Lock acquires the session critical section.
func (s *Session) Lock() { s.mu.Lock() }

// Unlock releases the session critical section.
func (s *Session) Unlock() { s.mu.Unlock() }

// Removed reports whether the session has been torn down. Callers must hold
// the session lock.
func (s *Session) Removed() bool { return s.removed }

// EngineHandle returns the exclusively owned engine. Callers must hold the
// session lock for the whole interaction with the handle.
func (s *Session) EngineHandle() engine.Engine { return s.engine }

// ParticipantCount returns the number of attached channels counted as
// players. Callers must hold the session lock.
func (s *Session) ParticipantCount() int { return len(s.attached) }

// Attachments snapshots the attached channels. Callers must hold the
// session lock.
func (s *Session) Attachments() []Attachment {
	out := make([]Attachment, 0, len(s.attached))
	for channelID, messageID := range s.attached {
		out = append(out, Attachment{ChannelID: channelID, MessageID: messageID})
	}
	return out
}

// SetMessage records the game message a channel displays. Callers must hold
// the session lock.
func (s *Session) SetMessage(channelID, messageID string) {
	if _, ok := s.attached[channelID]; ok {
		s.attached[channelID] = messageID
	}
}

// MessageFor returns the game message a channel displays, or empty when
// none is tracked yet. Callers must hold the session lock.
func (s *Session) MessageFor(channelID string) string {
	return s.attached[channelID]
}

// RefreshDeadline extends the inactivity deadline for qualifying activity.
// Callers must hold the session lock.
func (s *Session) RefreshDeadline(now time.Time, timeout time.Duration) {
	s.deadline = domain.NextDeadline(s.deadline, now, timeout)
}

// Deadline returns the current inactivity deadline. Callers must hold the
// session lock.
func (s *Session) Deadline() time.Time { return s.deadline }

// OpenWindow returns the session's vote window, opening one when absent.
// The second return reports whether this call opened it; the opener owns
// scheduling the debounce resolution. Callers must hold the session lock.
func (s *Session) OpenWindow() (*domain.VoteWindow, bool) {
	if s.window != nil {
		return s.window, false
	}
	s.window = domain.NewVoteWindow()
	return s.window, true
}

// CloseWindow clears and returns the active vote window, releasing the
// debounce guard so a later input opens a fresh one. Callers must hold the
// session lock.
func (s *Session) CloseWindow() (*domain.VoteWindow, bool) {
	window := s.window
	s.window = nil
	return window, window != nil
}

// SetReaperStop stores the cancellation hook for the session's inactivity
// reaper. Callers must hold the session lock.
func (s *Session) SetReaperStop(stop context.CancelFunc) { s.reaperStop = stop }

// ReaperStarted reports whether an inactivity reaper is registered. Callers
// must hold the session lock.
func (s *Session) ReaperStarted() bool { return s.reaperStop != nil }
