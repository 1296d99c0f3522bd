// Package storage declares persistence interfaces for the arcade service.
package storage

import (
	"context"
	"time"

	apperrors "github.com/0xDEADCADE/PokemonArcade/internal/platform/errors"
)

// ErrNotFound indicates a requested record is missing.
var ErrNotFound = apperrors.New(apperrors.CodeNotFound, "record not found")

// ScreenshotRef maps a frame's content hash to its published reference.
type ScreenshotRef struct {
	Hash      string
	URL       string
	CreatedAt time.Time
}

// ScreenshotStore persists the content-addressed screenshot cache.
type ScreenshotStore interface {
	// GetScreenshotRef returns the published URL for a content hash, or
	// ErrNotFound when the frame was never published.
	GetScreenshotRef(ctx context.Context, hash string) (string, error)
	// PutScreenshotRef records a published frame. Entries are append-only;
	// re-recording an existing hash keeps the first reference.
	PutScreenshotRef(ctx context.Context, ref ScreenshotRef) error
}

// TelemetryEvent captures one operational event for later inspection.
// EventID, Timestamp, and the trace correlation fields are stamped by the
// emitter when absent.
type TelemetryEvent struct {
	EventID    string
	Timestamp  time.Time
	EventName  string
	Severity   string
	ChannelID  string
	SessionID  string
	TraceID    string
	SpanID     string
	Attributes map[string]string
}

// TelemetryStore persists operational telemetry events.
type TelemetryStore interface {
	AppendTelemetryEvent(ctx context.Context, event TelemetryEvent) error
}
