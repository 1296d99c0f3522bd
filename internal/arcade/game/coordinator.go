// Package game coordinates live sessions: it turns inbound chat events into
// session commands and emulator inputs, batches concurrent votes behind a
// debounce window, and fans rendered frames back out to every attached
// channel.
package game

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/0xDEADCADE/PokemonArcade/internal/arcade/chat"
	"github.com/0xDEADCADE/PokemonArcade/internal/arcade/domain"
	"github.com/0xDEADCADE/PokemonArcade/internal/arcade/input"
	"github.com/0xDEADCADE/PokemonArcade/internal/arcade/registry"
	"github.com/0xDEADCADE/PokemonArcade/internal/arcade/rom"
	"github.com/0xDEADCADE/PokemonArcade/internal/arcade/screenshot"
	"github.com/0xDEADCADE/PokemonArcade/internal/arcade/storage"
	apperrors "github.com/0xDEADCADE/PokemonArcade/internal/platform/errors"
	"github.com/0xDEADCADE/PokemonArcade/internal/telemetry"
)

// DefaultInactivityTimeout is how long a session survives without
// qualifying activity.
const DefaultInactivityTimeout = 30 * time.Minute

// Options configures a Coordinator.
type Options struct {
	// InactivityTimeout overrides DefaultInactivityTimeout when positive.
	InactivityTimeout time.Duration
	// GlobalROM is the ROM path booted for the global session.
	GlobalROM string
	// DefaultStock is the stock title started when a singleplayer command
	// names no game.
	DefaultStock string
}

// Coordinator drives sessions end to end: commands, votes, inputs, frames.
type Coordinator struct {
	registry *registry.Registry
	roms     *rom.Library
	notifier chat.Notifier
	shots    *screenshot.Publisher
	emitter  *telemetry.Emitter
	tracer   trace.Tracer

	timeout      time.Duration
	globalROM    string
	defaultStock string

	clock    func() time.Time
	schedule func(d time.Duration, fn func())
}

// New creates a coordinator over its collaborators.
func New(reg *registry.Registry, roms *rom.Library, notifier chat.Notifier, shots *screenshot.Publisher, emitter *telemetry.Emitter, opts Options) (*Coordinator, error) {
	if reg == nil {
		return nil, fmt.Errorf("registry is required")
	}
	if roms == nil {
		return nil, fmt.Errorf("rom library is required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notifier is required")
	}
	if shots == nil {
		return nil, fmt.Errorf("screenshot publisher is required")
	}
	timeout := opts.InactivityTimeout
	if timeout <= 0 {
		timeout = DefaultInactivityTimeout
	}
	return &Coordinator{
		registry:     reg,
		roms:         roms,
		notifier:     notifier,
		shots:        shots,
		emitter:      emitter,
		tracer:       otel.Tracer("arcade/game"),
		timeout:      timeout,
		globalROM:    opts.GlobalROM,
		defaultStock: opts.DefaultStock,
		clock:        time.Now,
		schedule:     func(d time.Duration, fn func()) { time.AfterFunc(d, fn) },
	}, nil
}

// StartGlobal boots the permanent global session every channel can join.
func (c *Coordinator) StartGlobal(ctx context.Context) error {
	_, err := c.registry.CreateSession(registry.CreateInput{
		HostChannel: registry.GlobalHostChannel,
		Kind:        domain.KindGlobal,
		Permanent:   true,
		ROMPath:     c.globalROM,
	})
	if err != nil {
		return fmt.Errorf("start global session: %w", err)
	}
	log.Printf("global session started rom=%s", c.globalROM)
	c.emit(ctx, "session_started", telemetry.SeverityInfo, registry.GlobalHostChannel, map[string]string{
		"kind": domain.KindGlobal.String(),
		"rom":  c.globalROM,
	})
	return nil
}

// HandleEvent dispatches one inbound gateway event.
func (c *Coordinator) HandleEvent(ctx context.Context, event chat.Event) {
	switch {
	case event.Input != nil:
		c.SubmitInput(ctx, *event.Input)
	case event.Command != nil:
		c.HandleCommand(ctx, *event.Command)
	}
}

// HandleCommand executes one session command, reporting user errors back to
// the issuing channel.
func (c *Coordinator) HandleCommand(ctx context.Context, cmd chat.Command) {
	ctx, span := c.tracer.Start(ctx, "game.HandleCommand", trace.WithAttributes(
		attribute.Int("command.kind", int(cmd.Kind)),
		attribute.String("channel.id", cmd.ChannelID),
	))
	defer span.End()

	var err error
	switch cmd.Kind {
	case chat.CommandJoin:
		err = c.join(ctx, cmd)
	case chat.CommandLeave:
		err = c.leave(ctx, cmd)
	case chat.CommandSingleplayer:
		err = c.startPrivate(ctx, cmd)
	default:
		return
	}
	if err == nil {
		return
	}
	span.RecordError(err)
	if code := apperrors.CodeOf(err); code.UserFacing() {
		c.display(ctx, nil, chat.DisplayUpdate{ChannelID: cmd.ChannelID, Caption: err.Error()})
		return
	}
	log.Printf("command failed kind=%d channel=%s: %v", cmd.Kind, cmd.ChannelID, err)
}

// join attaches the channel to the global session, or to a private one when
// the command carries a join code.
func (c *Coordinator) join(ctx context.Context, cmd chat.Command) error {
	var (
		session *registry.Session
		err     error
	)
	code := strings.TrimSpace(cmd.Arg)
	if code == "" {
		session, err = c.registry.JoinGlobal(cmd.ChannelID)
	} else {
		session, err = c.registry.JoinByCode(cmd.ChannelID, code)
	}
	if err != nil {
		return err
	}

	c.startReaper(session)
	caption := "Joined the game! React to the message below to play."
	c.showFrame(ctx, session, []string{cmd.ChannelID}, caption)
	c.emit(ctx, "channel_joined", telemetry.SeverityInfo, cmd.ChannelID, map[string]string{
		"session": session.Meta.Code,
	})
	return nil
}

// startPrivate boots a private session for the channel. The game is picked
// from an uploaded ROM, a stored custom id, or a stock title, in that order.
func (c *Coordinator) startPrivate(ctx context.Context, cmd chat.Command) error {
	if cmd.Permanent && !cmd.IsAdmin {
		return apperrors.New(apperrors.CodeSessionPermissionDenied, "Only administrators can start permanent games")
	}

	name, romPath, err := c.pickROM(cmd)
	if err != nil {
		return err
	}
	savePath, err := c.roms.ProvisionSave(romPath, name, cmd.ChannelID)
	if err != nil {
		return fmt.Errorf("provision save for %s: %w", cmd.ChannelID, err)
	}

	session, err := c.registry.CreateSession(registry.CreateInput{
		HostChannel: cmd.ChannelID,
		Kind:        domain.KindSingleplayer,
		Permanent:   cmd.Permanent,
		ROMPath:     savePath,
	})
	if err != nil {
		return err
	}

	c.startReaper(session)
	caption := fmt.Sprintf("Now playing %s! Friends can join with the id %s.", name, session.Meta.Code)
	c.showFrame(ctx, session, []string{cmd.ChannelID}, caption)
	c.emit(ctx, "session_started", telemetry.SeverityInfo, cmd.ChannelID, map[string]string{
		"kind":    session.Meta.Kind.String(),
		"rom":     name,
		"session": session.Meta.Code,
	})
	return nil
}

// pickROM resolves the command to a game name and a ROM path.
func (c *Coordinator) pickROM(cmd chat.Command) (name, path string, err error) {
	if len(cmd.Attachment) > 0 {
		contentID, stored, err := c.roms.IngestCustom(cmd.Attachment)
		if err != nil {
			return "", "", err
		}
		return contentID, stored, nil
	}

	arg := strings.ToLower(strings.TrimSpace(cmd.Arg))
	if arg == "" {
		arg = c.defaultStock
	}
	if stored, err := c.roms.ResolveCustom(arg); err == nil {
		return arg, stored, nil
	}
	path, err = c.roms.ResolveStock(arg)
	if err != nil {
		return "", "", err
	}
	return arg, path, nil
}

// leave unbinds the channel, notifying every channel the operation detached.
func (c *Coordinator) leave(ctx context.Context, cmd chat.Command) error {
	outcome, err := c.registry.Leave(cmd.ChannelID, cmd.IsAdmin)
	if err != nil {
		return err
	}

	caption := "Left the game."
	if outcome.Ended {
		caption = "Game over! Progress has been saved."
	}
	for _, att := range outcome.Detached {
		c.display(ctx, nil, chat.DisplayUpdate{
			ChannelID: att.ChannelID,
			MessageID: att.MessageID,
			Caption:   caption,
		})
	}
	c.emit(ctx, "channel_left", telemetry.SeverityInfo, cmd.ChannelID, map[string]string{
		"session": outcome.Session.Code,
		"ended":   fmt.Sprintf("%v", outcome.Ended),
	})
	return nil
}

// SubmitInput registers one user input. Solo sessions apply the symbol
// immediately; shared sessions batch it into the debounce vote window, and
// the vote that opens the window schedules its resolution. Reactions on
// anything but the channel's tracked game message are ignored.
func (c *Coordinator) SubmitInput(ctx context.Context, ev chat.InputEvent) {
	ctx, span := c.tracer.Start(ctx, "game.SubmitInput", trace.WithAttributes(
		attribute.String("channel.id", ev.ChannelID),
		attribute.String("input.reaction", ev.Reaction),
	))
	defer span.End()

	symbol, ok := domain.ParseSymbol(ev.Reaction)
	if !ok {
		return
	}
	session, err := c.registry.Resolve(ev.ChannelID)
	if err != nil {
		return
	}

	session.Lock()
	if session.Removed() {
		session.Unlock()
		return
	}
	if ev.MessageID != "" {
		if tracked := session.MessageFor(ev.ChannelID); tracked != "" && tracked != ev.MessageID {
			session.Unlock()
			return
		}
	}
	session.RefreshDeadline(c.clock(), c.timeout)
	participants := session.ParticipantCount()

	if participants <= 1 {
		caption, frame, applyErr := c.applyLocked(session, symbol, participants, nil)
		targets := session.Attachments()
		session.Unlock()
		if applyErr != nil {
			c.reportEngineFailure(ctx, session, targets, applyErr)
			return
		}
		c.publishFrame(ctx, session, targets, caption, frame)
		return
	}

	window, opened := session.OpenWindow()
	window.Record(ev.UserID, symbol)
	delay := domain.DebounceDelay(participants)
	session.Unlock()

	if opened {
		host := session.Meta.HostChannel
		c.schedule(delay, func() {
			c.resolveWindow(context.Background(), host)
		})
	}
}

// resolveWindow closes the host session's vote window and applies the
// winning symbol. A session torn down while the window was open resolves to
// a no-op.
func (c *Coordinator) resolveWindow(ctx context.Context, hostChannel string) {
	ctx, span := c.tracer.Start(ctx, "game.ResolveWindow", trace.WithAttributes(
		attribute.String("channel.id", hostChannel),
	))
	defer span.End()

	session, ok := c.registry.Host(hostChannel)
	if !ok {
		return
	}

	session.Lock()
	if session.Removed() {
		session.Unlock()
		return
	}
	window, open := session.CloseWindow()
	if !open {
		session.Unlock()
		return
	}
	winner, tally := window.Resolve()
	if winner == domain.SymbolUnspecified {
		session.Unlock()
		return
	}
	participants := session.ParticipantCount()
	caption, frame, applyErr := c.applyLocked(session, winner, participants, tally)
	targets := session.Attachments()
	session.Unlock()

	if applyErr != nil {
		c.reportEngineFailure(ctx, session, targets, applyErr)
		return
	}
	c.publishFrame(ctx, session, targets, caption, frame)
}

// applyLocked performs the symbol's action and renders the resulting frame.
// Callers hold the session lock. A nil tally produces a solo caption; a
// tally produces the shared caption with the vote breakdown.
func (c *Coordinator) applyLocked(session *registry.Session, symbol domain.Symbol, participants int, tally map[domain.Symbol]int) (string, []byte, error) {
	desc, err := input.Apply(session.EngineHandle(), symbol)
	if err != nil {
		return "", nil, fmt.Errorf("apply %s: %w", symbol, err)
	}
	frame, err := session.EngineHandle().Render()
	if err != nil {
		return "", nil, fmt.Errorf("render after %s: %w", symbol, err)
	}
	if tally == nil {
		return desc, frame, nil
	}
	return voteCaption(desc, participants, tally), frame, nil
}

// voteCaption formats the shared-session caption: action, player count, and
// the full per-symbol breakdown in canonical order.
func voteCaption(desc string, participants int, tally map[domain.Symbol]int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\nPlayers: %d\n", desc, participants)
	for i, symbol := range domain.Symbols() {
		if i > 0 {
			b.WriteString(" | ")
		}
		fmt.Fprintf(&b, "%s: %d", symbol, tally[symbol])
	}
	return b.String()
}

// publishFrame uploads the frame once and fans the update out to every
// attached channel best-effort.
func (c *Coordinator) publishFrame(ctx context.Context, session *registry.Session, targets []registry.Attachment, caption string, frame []byte) {
	ref := c.publishScreenshot(ctx, session, frame)
	for _, att := range targets {
		c.display(ctx, session, chat.DisplayUpdate{
			ChannelID: att.ChannelID,
			MessageID: att.MessageID,
			Caption:   caption,
			ImageRef:  ref,
		})
	}
}

// showFrame renders the session's current frame and displays it to the given
// channels, attaching the input affordances to fresh messages.
func (c *Coordinator) showFrame(ctx context.Context, session *registry.Session, channels []string, caption string) {
	session.Lock()
	if session.Removed() {
		session.Unlock()
		return
	}
	frame, err := session.EngineHandle().Render()
	session.RefreshDeadline(c.clock(), c.timeout)
	session.Unlock()
	if err != nil {
		targets := make([]registry.Attachment, len(channels))
		for i, channelID := range channels {
			targets[i] = registry.Attachment{ChannelID: channelID}
		}
		c.reportEngineFailure(ctx, session, targets, fmt.Errorf("render: %w", err))
		return
	}

	ref := c.publishScreenshot(ctx, session, frame)
	for _, channelID := range channels {
		messageID, err := c.notifier.Display(ctx, chat.DisplayUpdate{
			ChannelID: channelID,
			Caption:   caption,
			ImageRef:  ref,
		})
		if err != nil {
			log.Printf("display frame channel=%s: %v", channelID, err)
			continue
		}
		if err := c.notifier.AttachActions(ctx, channelID, messageID, domain.Symbols()); err != nil {
			log.Printf("attach actions channel=%s message=%s: %v", channelID, messageID, err)
		}
		session.Lock()
		session.SetMessage(channelID, messageID)
		session.Unlock()
	}
}

// publishScreenshot uploads one frame, degrading to a caption-only update
// when publishing fails. The failure is logged and recorded, never fatal.
func (c *Coordinator) publishScreenshot(ctx context.Context, session *registry.Session, frame []byte) string {
	ref, err := c.shots.Publish(ctx, frame)
	if err != nil {
		log.Printf("publish screenshot host_channel=%s: %v", session.Meta.HostChannel, err)
		c.emit(ctx, "screenshot_publish_failed", telemetry.SeverityWarn, session.Meta.HostChannel, map[string]string{
			"session": session.Meta.Code,
			"error":   err.Error(),
		})
		return ""
	}
	return ref
}

// display delivers one update best-effort, recording a fresh message id on
// the session when the notifier posted a new message.
func (c *Coordinator) display(ctx context.Context, session *registry.Session, update chat.DisplayUpdate) {
	messageID, err := c.notifier.Display(ctx, update)
	if err != nil {
		log.Printf("display channel=%s: %v", update.ChannelID, err)
		return
	}
	if session != nil && messageID != update.MessageID {
		session.Lock()
		session.SetMessage(update.ChannelID, messageID)
		session.Unlock()
	}
}

// reportEngineFailure logs and records an engine error and tells the
// affected channels, without tearing the session down; a later input may
// well succeed.
func (c *Coordinator) reportEngineFailure(ctx context.Context, session *registry.Session, targets []registry.Attachment, err error) {
	log.Printf("engine failure host_channel=%s: %v", session.Meta.HostChannel, err)
	for _, att := range targets {
		c.display(ctx, session, chat.DisplayUpdate{
			ChannelID: att.ChannelID,
			MessageID: att.MessageID,
			Caption:   "Something went wrong, try again!",
		})
	}
	c.emit(ctx, "engine_failure", telemetry.SeverityError, session.Meta.HostChannel, map[string]string{
		"session": session.Meta.Code,
		"error":   err.Error(),
	})
}

// emit records a telemetry event best-effort.
func (c *Coordinator) emit(ctx context.Context, name string, severity telemetry.Severity, channelID string, attrs map[string]string) {
	if c.emitter == nil {
		return
	}
	sessionID := ""
	if attrs != nil {
		sessionID = attrs["session"]
	}
	if err := c.emitter.Emit(ctx, storage.TelemetryEvent{
		EventName:  name,
		Severity:   string(severity),
		ChannelID:  channelID,
		SessionID:  sessionID,
		Attributes: attrs,
	}); err != nil {
		log.Printf("emit telemetry event=%s: %v", name, err)
	}
}
