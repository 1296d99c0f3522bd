package game

import (
	"context"
	"log"
	"time"

	"github.com/0xDEADCADE/PokemonArcade/internal/arcade/chat"
	"github.com/0xDEADCADE/PokemonArcade/internal/arcade/registry"
	"github.com/0xDEADCADE/PokemonArcade/internal/telemetry"
)

// startReaper registers the inactivity reaper for a session. Permanent
// sessions never expire, and a session gets at most one reaper; repeated
// calls only refresh the deadline.
func (c *Coordinator) startReaper(session *registry.Session) {
	session.Lock()
	defer session.Unlock()

	if session.Removed() {
		return
	}
	session.RefreshDeadline(c.clock(), c.timeout)
	if session.Meta.Permanent || session.ReaperStarted() {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	session.SetReaperStop(cancel)
	go c.runReaper(ctx, session)
}

// runReaper sleeps until the session's deadline, re-checking after every
// wake because activity keeps pushing the deadline forward. Teardown cancels
// the context.
func (c *Coordinator) runReaper(ctx context.Context, session *registry.Session) {
	for {
		session.Lock()
		if session.Removed() {
			session.Unlock()
			return
		}
		deadline := session.Deadline()
		session.Unlock()

		wait := deadline.Sub(c.clock())
		if wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
			continue
		}

		c.reap(ctx, session)
		return
	}
}

// reap tears the session down for inactivity, saving progress and notifying
// every detached channel. Racing a concurrent leave is safe: the loser finds
// the session gone and does nothing.
func (c *Coordinator) reap(ctx context.Context, session *registry.Session) {
	host := session.Meta.HostChannel
	detached, ok := c.registry.Remove(host, true)
	if !ok {
		return
	}

	log.Printf("session reaped host_channel=%s session=%s", host, session.Meta.Code)
	for _, att := range detached {
		c.display(ctx, nil, chat.DisplayUpdate{
			ChannelID: att.ChannelID,
			MessageID: att.MessageID,
			Caption:   "Kicked due to inactivity!",
		})
	}
	c.emit(ctx, "session_reaped", telemetry.SeverityWarn, host, map[string]string{
		"session": session.Meta.Code,
	})
}
