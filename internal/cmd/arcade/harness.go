package arcade

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/0xDEADCADE/PokemonArcade/internal/arcade/chat"
	"github.com/0xDEADCADE/PokemonArcade/internal/arcade/domain"
	"github.com/0xDEADCADE/PokemonArcade/internal/arcade/engine"
)

// ConsoleGateway reads commands from a reader, one per line, for local
// development without a chat platform:
//
//	join <channel> [code]
//	start <channel> [game]
//	stop <channel>
//	press <channel> <user> <symbol>
type ConsoleGateway struct {
	reader io.Reader
}

// NewConsoleGateway creates a gateway over a line-oriented reader.
func NewConsoleGateway(reader io.Reader) *ConsoleGateway {
	return &ConsoleGateway{reader: reader}
}

// Events implements chat.Gateway.
func (g *ConsoleGateway) Events(ctx context.Context) (<-chan chat.Event, error) {
	events := make(chan chat.Event)
	go func() {
		defer close(events)
		scanner := bufio.NewScanner(g.reader)
		for scanner.Scan() {
			event, ok := parseLine(scanner.Text())
			if !ok {
				continue
			}
			select {
			case events <- event:
			case <-ctx.Done():
				return
			}
		}
	}()
	return events, nil
}

func parseLine(line string) (chat.Event, bool) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return chat.Event{}, false
	}
	verb, channelID := fields[0], fields[1]
	arg := ""
	if len(fields) > 2 {
		arg = fields[2]
	}

	switch verb {
	case "join":
		return chat.Event{Command: &chat.Command{
			Kind: chat.CommandJoin, ChannelID: channelID, UserID: "console", Arg: arg,
		}}, true
	case "start":
		return chat.Event{Command: &chat.Command{
			Kind: chat.CommandSingleplayer, ChannelID: channelID, UserID: "console", Arg: arg, IsAdmin: true,
		}}, true
	case "stop":
		return chat.Event{Command: &chat.Command{
			Kind: chat.CommandLeave, ChannelID: channelID, UserID: "console", IsAdmin: true,
		}}, true
	case "press":
		if len(fields) < 4 {
			return chat.Event{}, false
		}
		return chat.Event{Input: &chat.InputEvent{
			ChannelID: channelID, UserID: fields[2], Reaction: fields[3],
		}}, true
	default:
		return chat.Event{}, false
	}
}

// ConsoleNotifier logs display updates and writes published frames to a
// directory.
type ConsoleNotifier struct {
	frameDir string

	mu     sync.Mutex
	posted int
}

// NewConsoleNotifier creates a notifier writing frames under frameDir.
func NewConsoleNotifier(frameDir string) (*ConsoleNotifier, error) {
	if err := os.MkdirAll(frameDir, 0o755); err != nil {
		return nil, fmt.Errorf("create frame dir: %w", err)
	}
	return &ConsoleNotifier{frameDir: frameDir}, nil
}

// Display implements chat.Notifier.
func (n *ConsoleNotifier) Display(_ context.Context, update chat.DisplayUpdate) (string, error) {
	log.Printf("display channel=%s image=%s caption=%q", update.ChannelID, update.ImageRef, update.Caption)
	if update.MessageID != "" {
		return update.MessageID, nil
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.posted++
	return fmt.Sprintf("console-%d", n.posted), nil
}

// AttachActions implements chat.Notifier.
func (n *ConsoleNotifier) AttachActions(_ context.Context, channelID, messageID string, symbols []domain.Symbol) error {
	names := make([]string, len(symbols))
	for i, s := range symbols {
		names[i] = s.String()
	}
	log.Printf("actions channel=%s message=%s symbols=%s", channelID, messageID, strings.Join(names, ","))
	return nil
}

// PublishImage implements chat.Notifier by writing the frame to disk.
func (n *ConsoleNotifier) PublishImage(_ context.Context, name string, pngBytes []byte) (string, error) {
	path := filepath.Join(n.frameDir, name)
	if err := os.WriteFile(path, pngBytes, 0o644); err != nil {
		return "", fmt.Errorf("write frame %s: %w", name, err)
	}
	return path, nil
}

// FrameEngine is a stand-in emulator for local development: it renders a
// synthetic frame that changes with emulated time, so the whole input,
// dedup, and publish pipeline can be exercised without an emulator build.
type FrameEngine struct {
	mu     sync.Mutex
	steps  int
	inputs int
}

// StartFrameEngine is an engine.Starter for the development engine.
func StartFrameEngine(romPath string) (engine.Engine, error) {
	log.Printf("frame engine started rom=%s", romPath)
	return &FrameEngine{}, nil
}

// Advance implements engine.Engine.
func (e *FrameEngine) Advance(n int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.steps += n
	return nil
}

// SendInput implements engine.Engine.
func (e *FrameEngine) SendInput(engine.Primitive) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.inputs++
	return nil
}

// Render implements engine.Engine with a Game Boy sized synthetic frame.
func (e *FrameEngine) Render() ([]byte, error) {
	e.mu.Lock()
	steps, inputs := e.steps, e.inputs
	e.mu.Unlock()

	img := image.NewRGBA(image.Rect(0, 0, 160, 144))
	shade := uint8(steps % 200)
	tint := uint8((inputs * 16) % 200)
	for y := 0; y < 144; y++ {
		for x := 0; x < 160; x++ {
			img.Set(x, y, color.RGBA{R: shade, G: tint, B: uint8((x + y) % 255), A: 255})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	return buf.Bytes(), nil
}

// Stop implements engine.Engine.
func (e *FrameEngine) Stop(save bool) error {
	log.Printf("frame engine stopped save=%v", save)
	return nil
}
