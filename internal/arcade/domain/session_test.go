package domain

import (
	"testing"
	"time"
)

func TestNewSessionGeneratesJoinCode(t *testing.T) {
	now := func() time.Time { return time.Unix(1700000000, 0) }
	session := NewSession(NewSessionInput{
		HostChannel: " chan-1 ",
		Kind:        KindSingleplayer,
		ROMPath:     "SinglePlayerSaves/red-chan-1.gb",
	}, now)

	if session.HostChannel != "chan-1" {
		t.Fatalf("expected trimmed host channel, got %q", session.HostChannel)
	}
	if len(session.Code) != 5 {
		t.Fatalf("expected 5-character join code, got %q", session.Code)
	}
	if session.Kind != KindSingleplayer {
		t.Fatalf("expected singleplayer kind, got %s", session.Kind)
	}
	if session.Permanent {
		t.Fatal("expected non-permanent session by default")
	}
	if !session.StartedAt.Equal(time.Unix(1700000000, 0).UTC()) {
		t.Fatalf("unexpected start time %v", session.StartedAt)
	}
}

func TestNewSessionCodesDifferPerHost(t *testing.T) {
	now := func() time.Time { return time.Unix(1700000000, 0) }
	a := NewSession(NewSessionInput{HostChannel: "chan-a", Kind: KindMultiplayer}, now)
	b := NewSession(NewSessionInput{HostChannel: "chan-b", Kind: KindMultiplayer}, now)
	if a.Code == b.Code {
		t.Fatalf("expected different codes for different hosts, both %q", a.Code)
	}
}

func TestNextDeadlineExtends(t *testing.T) {
	now := time.Unix(1000, 0)
	timeout := 1800 * time.Second

	deadline := NextDeadline(time.Time{}, now, timeout)
	if !deadline.Equal(now.Add(timeout)) {
		t.Fatalf("expected now+timeout, got %v", deadline)
	}

	later := NextDeadline(deadline, now.Add(10*time.Second), timeout)
	if !later.Equal(now.Add(10*time.Second).Add(timeout)) {
		t.Fatalf("expected refreshed deadline, got %v", later)
	}
}

func TestNextDeadlineNeverShortens(t *testing.T) {
	now := time.Unix(1000, 0)
	existing := now.Add(3000 * time.Second)

	// A refresh computed from an earlier now must not pull the deadline in.
	got := NextDeadline(existing, now, 1800*time.Second)
	if !got.Equal(existing) {
		t.Fatalf("expected existing later deadline to win, got %v", got)
	}
}
