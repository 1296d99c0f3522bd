// Package app assembles the arcade service: storage, screenshot pipeline,
// session registry, and the coordinator consuming the chat gateway.
package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/0xDEADCADE/PokemonArcade/internal/arcade/chat"
	"github.com/0xDEADCADE/PokemonArcade/internal/arcade/engine"
	"github.com/0xDEADCADE/PokemonArcade/internal/arcade/game"
	"github.com/0xDEADCADE/PokemonArcade/internal/arcade/registry"
	"github.com/0xDEADCADE/PokemonArcade/internal/arcade/rom"
	"github.com/0xDEADCADE/PokemonArcade/internal/arcade/screenshot"
	"github.com/0xDEADCADE/PokemonArcade/internal/arcade/storage/sqlite"
	"github.com/0xDEADCADE/PokemonArcade/internal/telemetry"
)

// Config holds the service assembly configuration.
type Config struct {
	// DBPath is the sqlite database file backing caches and telemetry.
	DBPath string
	// GlobalROM boots the permanent global session when non-empty.
	GlobalROM string
	// DefaultStock is the stock title started when a command names no game.
	DefaultStock string
	// StockROMs maps stock title names to ROM paths.
	StockROMs map[string]string
	// CustomROMDir stores uploaded ROMs by content id.
	CustomROMDir string
	// SaveDir holds per-channel save provisioning.
	SaveDir string
	// InactivityTimeout expires idle sessions.
	InactivityTimeout time.Duration
	// ScreenshotLRUSize bounds the in-memory screenshot cache front.
	ScreenshotLRUSize int
	// ImageScale upscales frames before publishing.
	ImageScale int
}

// Deps are the external collaborators the service runs against.
type Deps struct {
	// Gateway streams inbound chat events.
	Gateway chat.Gateway
	// Notifier delivers display updates and publishes frames.
	Notifier chat.Notifier
	// Starter boots emulator engines.
	Starter engine.Starter
}

// Run assembles the service and consumes gateway events until the context
// is cancelled or the gateway closes. Every live engine is stopped with a
// save on the way out.
func Run(ctx context.Context, cfg Config, deps Deps) error {
	if deps.Gateway == nil || deps.Notifier == nil || deps.Starter == nil {
		return fmt.Errorf("gateway, notifier, and engine starter are required")
	}

	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("close store: %v", err)
		}
	}()

	shots, err := screenshot.NewPublisher(store, deps.Notifier, screenshot.Options{
		LRUSize: cfg.ScreenshotLRUSize,
		Scale:   cfg.ImageScale,
	})
	if err != nil {
		return fmt.Errorf("init screenshot publisher: %w", err)
	}

	reg, err := registry.New(deps.Starter)
	if err != nil {
		return fmt.Errorf("init registry: %w", err)
	}
	roms, err := rom.NewLibrary(cfg.StockROMs, cfg.CustomROMDir, cfg.SaveDir)
	if err != nil {
		return fmt.Errorf("init rom library: %w", err)
	}

	coord, err := game.New(reg, roms, deps.Notifier, shots, telemetry.NewEmitter(store), game.Options{
		InactivityTimeout: cfg.InactivityTimeout,
		GlobalROM:         cfg.GlobalROM,
		DefaultStock:      cfg.DefaultStock,
	})
	if err != nil {
		return fmt.Errorf("init coordinator: %w", err)
	}

	if cfg.GlobalROM != "" {
		if err := coord.StartGlobal(ctx); err != nil {
			return err
		}
	}
	defer stopAll(reg)

	events, err := deps.Gateway.Events(ctx)
	if err != nil {
		return fmt.Errorf("open gateway: %w", err)
	}

	log.Printf("arcade running db=%s stock_titles=%d", cfg.DBPath, len(cfg.StockROMs))
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-events:
			if !ok {
				return nil
			}
			coord.HandleEvent(ctx, event)
		}
	}
}

// stopAll tears every live session down, saving progress.
func stopAll(reg *registry.Registry) {
	for _, host := range reg.Hosts() {
		if _, ok := reg.Remove(host, true); ok {
			log.Printf("session stopped host_channel=%s", host)
		}
	}
}
