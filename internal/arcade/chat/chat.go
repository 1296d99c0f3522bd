// Package chat declares the contract for the chat-platform collaborator.
//
// The coordinator never talks to a chat service directly; it consumes
// inbound events from a Gateway and pushes frames through a Notifier.
// Message sending mechanics, reaction clean-up, and attachment download are
// the adapter's concern.
package chat

import (
	"context"

	"github.com/0xDEADCADE/PokemonArcade/internal/arcade/domain"
)

// InputEvent is one raw user input keyed by (channel, user, reaction).
type InputEvent struct {
	ChannelID string
	UserID    string
	MessageID string
	Reaction  string // raw reaction glyph; unrecognized values are dropped
}

// CommandKind identifies an inbound session command.
type CommandKind int

const (
	// CommandUnspecified represents an invalid command.
	CommandUnspecified CommandKind = iota
	// CommandJoin joins the global session, or a private one when Arg holds a code.
	CommandJoin
	// CommandLeave leaves or stops the channel's session.
	CommandLeave
	// CommandSingleplayer starts a private session. Arg selects a stock ROM
	// name or custom ROM id; Attachment may carry an uploaded ROM.
	CommandSingleplayer
)

// Command is one inbound session command.
type Command struct {
	Kind       CommandKind
	ChannelID  string
	UserID     string
	Arg        string
	Permanent  bool
	IsAdmin    bool
	Attachment []byte // uploaded ROM bytes, nil when absent
}

// Event is one inbound gateway event: exactly one of Input or Command is set.
type Event struct {
	Input   *InputEvent
	Command *Command
}

// DisplayUpdate refreshes one channel's game message.
type DisplayUpdate struct {
	ChannelID string
	MessageID string
	Caption   string
	ImageRef  string // empty when publishing failed; caption-only update
}

// Notifier delivers display updates and action affordances to channels.
// Delivery is best-effort: callers deliberately ignore the failure branch
// when a channel update must not block session progress.
type Notifier interface {
	// Display edits the channel's game message, or posts a new one when
	// MessageID is empty, and returns the id of the message shown.
	Display(ctx context.Context, update DisplayUpdate) (string, error)
	// AttachActions offers the selectable input symbols on a message.
	AttachActions(ctx context.Context, channelID, messageID string, symbols []domain.Symbol) error
	// PublishImage uploads a rendered frame and returns its reference.
	PublishImage(ctx context.Context, name string, png []byte) (string, error)
}

// Gateway is the inbound half of the chat collaborator.
type Gateway interface {
	// Events returns the stream of inbound events. The channel closes when
	// the gateway shuts down.
	Events(ctx context.Context) (<-chan Event, error)
}
