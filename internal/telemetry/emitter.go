// Package telemetry records operational events through a storage backend.
package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/0xDEADCADE/PokemonArcade/internal/arcade/storage"
	"github.com/0xDEADCADE/PokemonArcade/internal/platform/id"
)

// Severity describes the telemetry severity level.
type Severity string

const (
	SeverityInfo  Severity = "INFO"
	SeverityWarn  Severity = "WARN"
	SeverityError Severity = "ERROR"
)

// Emitter records operational telemetry events.
type Emitter struct {
	store storage.TelemetryStore
	clock func() time.Time
}

// NewEmitter creates a new telemetry emitter.
func NewEmitter(store storage.TelemetryStore) *Emitter {
	return &Emitter{store: store, clock: time.Now}
}

// Emit records a telemetry event. It is a no-op when the store is nil.
// Events without an id get a fresh one, and the active span context is
// stamped for trace correlation.
func (e *Emitter) Emit(ctx context.Context, event storage.TelemetryEvent) error {
	if e == nil || e.store == nil {
		return nil
	}
	if event.EventID == "" {
		eventID, err := id.NewID()
		if err != nil {
			return fmt.Errorf("generate telemetry event id: %w", err)
		}
		event.EventID = eventID
	}
	if sc := trace.SpanFromContext(ctx).SpanContext(); sc.IsValid() {
		event.TraceID = sc.TraceID().String()
		event.SpanID = sc.SpanID().String()
	}
	if event.Timestamp.IsZero() {
		if e.clock == nil {
			event.Timestamp = time.Now().UTC()
		} else {
			event.Timestamp = e.clock().UTC()
		}
	}
	return e.store.AppendTelemetryEvent(ctx, event)
}
