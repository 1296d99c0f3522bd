package domain

import (
	"strings"
	"time"

	"github.com/0xDEADCADE/PokemonArcade/internal/platform/id"
)

// Kind describes how a session was created and shared.
type Kind int

const (
	// KindUnspecified represents an invalid session kind.
	KindUnspecified Kind = iota
	// KindGlobal is the permanent shared session every channel may join.
	KindGlobal
	// KindMultiplayer is a private session joined by code.
	KindMultiplayer
	// KindSingleplayer is a private session for its host channel.
	KindSingleplayer
)

// String returns the kind label.
func (k Kind) String() string {
	switch k {
	case KindGlobal:
		return "global"
	case KindMultiplayer:
		return "multiplayer"
	case KindSingleplayer:
		return "singleplayer"
	default:
		return "unspecified"
	}
}

// Session holds the descriptive metadata of a running session. Runtime
// state (attachments, vote window, deadline) lives with the registry, which
// serializes access to it.
type Session struct {
	Code        string // short join code, stable for the session's life
	HostChannel string // channel that created the session and owns the engine
	Kind        Kind
	Permanent   bool // permanent sessions are never reaped and need an admin to stop
	ROMPath     string
	StartedAt   time.Time
}

// NewSessionInput describes the metadata needed to create a session.
type NewSessionInput struct {
	HostChannel string
	Kind        Kind
	Permanent   bool
	ROMPath     string
}

// NewSession creates session metadata with a generated join code.
func NewSession(input NewSessionInput, now func() time.Time) Session {
	if now == nil {
		now = time.Now
	}
	startedAt := now().UTC()
	return Session{
		Code:        id.NewShortCode(strings.TrimSpace(input.HostChannel), startedAt),
		HostChannel: strings.TrimSpace(input.HostChannel),
		Kind:        input.Kind,
		Permanent:   input.Permanent,
		ROMPath:     input.ROMPath,
		StartedAt:   startedAt,
	}
}

// NextDeadline refreshes an inactivity deadline on qualifying activity.
// A late-arriving refresh never shortens an existing deadline.
func NextDeadline(existing time.Time, now time.Time, timeout time.Duration) time.Time {
	refreshed := now.Add(timeout)
	if existing.After(refreshed) {
		return existing
	}
	return refreshed
}
