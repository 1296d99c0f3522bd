package arcadefakes

import (
	"context"
	"fmt"
	"sync"

	"github.com/0xDEADCADE/PokemonArcade/internal/arcade/chat"
	"github.com/0xDEADCADE/PokemonArcade/internal/arcade/domain"
)

// AttachCall records one AttachActions invocation.
type AttachCall struct {
	ChannelID string
	MessageID string
	Symbols   []domain.Symbol
}

// PublishCall records one PublishImage invocation.
type PublishCall struct {
	Name string
	Size int
}

// Notifier is an in-memory chat.Notifier recording every delivery.
type Notifier struct {
	mu        sync.Mutex
	displays  []chat.DisplayUpdate
	attaches  []AttachCall
	published []PublishCall
	posted    int

	DisplayErr error
	AttachErr  error
	PublishErr error
}

// NewNotifier creates a recording notifier.
func NewNotifier() *Notifier {
	return &Notifier{}
}

// Display records a display update and returns a synthetic message id. An
// update without a message id is treated as posting a fresh message.
func (n *Notifier) Display(_ context.Context, update chat.DisplayUpdate) (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.DisplayErr != nil {
		return "", n.DisplayErr
	}
	n.displays = append(n.displays, update)
	if update.MessageID != "" {
		return update.MessageID, nil
	}
	n.posted++
	return fmt.Sprintf("msg-%d", n.posted), nil
}

// AttachActions records an affordance attachment.
func (n *Notifier) AttachActions(_ context.Context, channelID, messageID string, symbols []domain.Symbol) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.AttachErr != nil {
		return n.AttachErr
	}
	n.attaches = append(n.attaches, AttachCall{ChannelID: channelID, MessageID: messageID, Symbols: symbols})
	return nil
}

// PublishImage records an upload and returns a synthetic reference.
func (n *Notifier) PublishImage(_ context.Context, name string, png []byte) (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.PublishErr != nil {
		return "", n.PublishErr
	}
	n.published = append(n.published, PublishCall{Name: name, Size: len(png)})
	return "ref://" + name, nil
}

// Displays snapshots recorded display updates.
func (n *Notifier) Displays() []chat.DisplayUpdate {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]chat.DisplayUpdate, len(n.displays))
	copy(out, n.displays)
	return out
}

// DisplaysFor returns the display updates delivered to one channel.
func (n *Notifier) DisplaysFor(channelID string) []chat.DisplayUpdate {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []chat.DisplayUpdate
	for _, update := range n.displays {
		if update.ChannelID == channelID {
			out = append(out, update)
		}
	}
	return out
}

// Attaches snapshots recorded affordance attachments.
func (n *Notifier) Attaches() []AttachCall {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]AttachCall, len(n.attaches))
	copy(out, n.attaches)
	return out
}

// Published snapshots recorded image uploads.
func (n *Notifier) Published() []PublishCall {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]PublishCall, len(n.published))
	copy(out, n.published)
	return out
}

// Gateway is an in-memory chat.Gateway fed by tests.
type Gateway struct {
	events chan chat.Event
	once   sync.Once
}

// NewGateway creates a gateway with a buffered event stream.
func NewGateway(buffer int) *Gateway {
	if buffer < 0 {
		buffer = 0
	}
	return &Gateway{events: make(chan chat.Event, buffer)}
}

// Events implements chat.Gateway.
func (g *Gateway) Events(_ context.Context) (<-chan chat.Event, error) {
	return g.events, nil
}

// Send queues one inbound event.
func (g *Gateway) Send(event chat.Event) {
	g.events <- event
}

// Close ends the event stream.
func (g *Gateway) Close() {
	g.once.Do(func() { close(g.events) })
}
