// Package registry owns the set of live sessions and the channel→session
// referral graph.
//
// Two maps are kept consistent under one registry lock: sessions keyed by
// host channel, and an index from every attached channel to its host. A
// channel appears in at most one session's attachment set at any time, and
// removing a session atomically detaches every channel referring to it.
package registry

import (
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/0xDEADCADE/PokemonArcade/internal/arcade/domain"
	"github.com/0xDEADCADE/PokemonArcade/internal/arcade/engine"
	apperrors "github.com/0xDEADCADE/PokemonArcade/internal/platform/errors"
)

// GlobalHostChannel is the pseudo-channel hosting the permanent global
// session. It never receives display updates itself.
const GlobalHostChannel = "global"

// Registry tracks live sessions and channel bindings.
type Registry struct {
	mu        sync.Mutex
	sessions  map[string]*Session // keyed by host channel id
	byChannel map[string]string   // channel id → host channel id
	start     engine.Starter
	clock     func() time.Time
}

// New creates a registry that boots engines through start.
func New(start engine.Starter) (*Registry, error) {
	if start == nil {
		return nil, fmt.Errorf("engine starter is required")
	}
	return &Registry{
		sessions:  make(map[string]*Session),
		byChannel: make(map[string]string),
		start:     start,
		clock:     time.Now,
	}, nil
}

// CreateInput describes a session to create.
type CreateInput struct {
	HostChannel string
	Kind        domain.Kind
	Permanent   bool
	ROMPath     string
}

// CreateSession starts an engine and binds a fresh session to the host
// channel. The global session attaches no channels at creation; every other
// kind attaches its host.
func (r *Registry) CreateSession(input CreateInput) (*Session, error) {
	host := strings.TrimSpace(input.HostChannel)
	if host == "" {
		return nil, fmt.Errorf("host channel is required")
	}

	if host != GlobalHostChannel && r.bound(host) {
		return nil, apperrors.New(apperrors.CodeSessionAlreadyBound, "only one game per channel")
	}

	// Boot outside the lock; engine start and warm-up are slow.
	handle, err := r.start(input.ROMPath)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeEngineFailure, "start engine", err)
	}
	if err := handle.Advance(engine.WarmupSteps); err != nil {
		_ = handle.Stop(false)
		return nil, apperrors.Wrap(apperrors.CodeEngineFailure, "warm up engine", err)
	}

	session := &Session{
		Meta: domain.NewSession(domain.NewSessionInput{
			HostChannel: host,
			Kind:        input.Kind,
			Permanent:   input.Permanent,
			ROMPath:     input.ROMPath,
		}, r.clock),
		engine:   handle,
		attached: make(map[string]string),
	}

	r.mu.Lock()
	if _, taken := r.byChannel[host]; taken || r.sessions[host] != nil {
		r.mu.Unlock()
		// Lost the race to a concurrent create for the same channel.
		if err := handle.Stop(false); err != nil {
			log.Printf("stop redundant engine host_channel=%s: %v", host, err)
		}
		return nil, apperrors.New(apperrors.CodeSessionAlreadyBound, "only one game per channel")
	}
	r.sessions[host] = session
	if host != GlobalHostChannel {
		r.byChannel[host] = host
		session.attached[host] = ""
	}
	r.mu.Unlock()

	return session, nil
}

// JoinGlobal attaches a channel to the permanent global session.
func (r *Registry) JoinGlobal(channelID string) (*Session, error) {
	return r.join(channelID, func() (*Session, error) {
		session, ok := r.sessions[GlobalHostChannel]
		if !ok {
			return nil, apperrors.New(apperrors.CodeSessionUnknownCode, "global session is not running")
		}
		return session, nil
	})
}

// JoinByCode attaches a channel to the live session with a matching join
// code.
func (r *Registry) JoinByCode(channelID, code string) (*Session, error) {
	code = strings.ToLower(strings.TrimSpace(code))
	return r.join(channelID, func() (*Session, error) {
		for _, session := range r.sessions {
			if session.Meta.Code == code {
				return session, nil
			}
		}
		return nil, apperrors.New(apperrors.CodeSessionUnknownCode, "invalid session id")
	})
}

// join binds channelID to the session picked by find, updating the index
// and the attachment set together. A singleplayer session gaining a guest
// becomes multiplayer.
func (r *Registry) join(channelID string, find func() (*Session, error)) (*Session, error) {
	channelID = strings.TrimSpace(channelID)
	if channelID == "" {
		return nil, fmt.Errorf("channel id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byChannel[channelID]; taken {
		return nil, apperrors.New(apperrors.CodeSessionAlreadyBound, "only one game per channel")
	}
	session, err := find()
	if err != nil {
		return nil, err
	}

	session.Lock()
	session.attached[channelID] = ""
	if session.Meta.Kind == domain.KindSingleplayer {
		session.Meta.Kind = domain.KindMultiplayer
	}
	session.Unlock()
	r.byChannel[channelID] = session.Meta.HostChannel

	return session, nil
}

// Resolve returns the session a channel is bound to. A dangling index entry
// pointing at a removed session self-heals to not-bound.
func (r *Registry) Resolve(channelID string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	host, ok := r.byChannel[channelID]
	if !ok {
		return nil, apperrors.New(apperrors.CodeSessionNotBound, "no game active in the channel")
	}
	session, ok := r.sessions[host]
	if !ok {
		delete(r.byChannel, channelID)
		log.Printf("healed dangling binding channel=%s host_channel=%s", channelID, host)
		return nil, apperrors.New(apperrors.CodeSessionNotBound, "no game active in the channel")
	}
	return session, nil
}

// LeaveOutcome describes what a Leave did.
type LeaveOutcome struct {
	// Ended reports whether the whole session was torn down.
	Ended bool
	// Detached lists every channel unbound by the operation, including the
	// issuing one. Callers notify these best-effort.
	Detached []Attachment
	// Session holds the metadata of the affected session.
	Session domain.Session
}

// Leave unbinds a channel. A host leaving tears down the whole session,
// saving the engine and detaching every referrer; a guest leaving detaches
// only itself. Permanent sessions require an admin to tear down.
func (r *Registry) Leave(channelID string, isAdmin bool) (LeaveOutcome, error) {
	channelID = strings.TrimSpace(channelID)

	r.mu.Lock()
	defer r.mu.Unlock()

	host, ok := r.byChannel[channelID]
	if !ok {
		return LeaveOutcome{}, apperrors.New(apperrors.CodeSessionNotBound, "no game active in the channel")
	}
	session, ok := r.sessions[host]
	if !ok {
		delete(r.byChannel, channelID)
		return LeaveOutcome{}, apperrors.New(apperrors.CodeSessionNotBound, "no game active in the channel")
	}

	if channelID == session.Meta.HostChannel {
		if session.Meta.Permanent && !isAdmin {
			return LeaveOutcome{}, apperrors.New(apperrors.CodeSessionPermissionDenied, "only administrators can close permanent games")
		}
		detached := r.removeLocked(session, true)
		return LeaveOutcome{Ended: true, Detached: detached, Session: session.Meta}, nil
	}

	session.Lock()
	messageID := session.attached[channelID]
	delete(session.attached, channelID)
	session.Unlock()
	delete(r.byChannel, channelID)

	return LeaveOutcome{
		Detached: []Attachment{{ChannelID: channelID, MessageID: messageID}},
		Session:  session.Meta,
	}, nil
}

// Remove tears down the session hosted by hostChannel, detaching every
// bound channel. It is safe to race with Leave: the second actor finds
// nothing and gets ok=false.
func (r *Registry) Remove(hostChannel string, save bool) ([]Attachment, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[hostChannel]
	if !ok {
		return nil, false
	}
	return r.removeLocked(session, save), true
}

// removeLocked performs teardown with the registry lock held.
func (r *Registry) removeLocked(session *Session, save bool) []Attachment {
	session.Lock()
	defer session.Unlock()

	session.removed = true
	session.window = nil
	if session.reaperStop != nil {
		session.reaperStop()
		session.reaperStop = nil
	}
	if err := session.engine.Stop(save); err != nil {
		log.Printf("stop engine host_channel=%s save=%v: %v", session.Meta.HostChannel, save, err)
	}

	detached := session.Attachments()
	for channelID := range session.attached {
		delete(r.byChannel, channelID)
	}
	session.attached = make(map[string]string)
	delete(r.sessions, session.Meta.HostChannel)

	return detached
}

// Host returns the live session hosted by hostChannel. Unlike Resolve this
// also finds the global session, whose pseudo host channel is never indexed.
func (r *Registry) Host(hostChannel string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[hostChannel]
	return session, ok
}

// Hosts snapshots the host channel ids of every live session.
func (r *Registry) Hosts() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	hosts := make([]string, 0, len(r.sessions))
	for host := range r.sessions {
		hosts = append(hosts, host)
	}
	return hosts
}

// bound reports whether a channel currently has a session.
func (r *Registry) bound(channelID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.byChannel[channelID]
	return ok
}
