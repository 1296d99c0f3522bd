package arcade

import (
	"flag"
	"path/filepath"
	"testing"
	"time"

	"github.com/0xDEADCADE/PokemonArcade/internal/arcade/chat"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("arcade", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.DBPath != "arcade.db" {
		t.Fatalf("expected default db path, got %q", cfg.DBPath)
	}
	if cfg.InactivityTimeout != 30*time.Minute {
		t.Fatalf("expected 30m inactivity timeout, got %v", cfg.InactivityTimeout)
	}
	if cfg.GlobalGame != "red" {
		t.Fatalf("expected red as global game, got %q", cfg.GlobalGame)
	}
	if cfg.ImageScale != 3 {
		t.Fatalf("expected 3x image scale, got %d", cfg.ImageScale)
	}
}

func TestParseConfigEnvOverride(t *testing.T) {
	t.Setenv("POKEMON_ARCADE_DB_PATH", "/tmp/other.db")
	t.Setenv("POKEMON_ARCADE_INACTIVITY_TIMEOUT", "5m")

	fs := flag.NewFlagSet("arcade", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.DBPath != "/tmp/other.db" {
		t.Fatalf("expected env db path, got %q", cfg.DBPath)
	}
	if cfg.InactivityTimeout != 5*time.Minute {
		t.Fatalf("expected 5m inactivity timeout, got %v", cfg.InactivityTimeout)
	}
}

func TestParseConfigFlagBeatsEnv(t *testing.T) {
	t.Setenv("POKEMON_ARCADE_DB_PATH", "/tmp/env.db")

	fs := flag.NewFlagSet("arcade", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-db", "/tmp/flag.db"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.DBPath != "/tmp/flag.db" {
		t.Fatalf("expected flag db path, got %q", cfg.DBPath)
	}
}

func TestAppConfigResolvesGlobalROM(t *testing.T) {
	cfg := Config{ROMDir: "ROMs", GlobalGame: "red", DefaultGame: "red"}
	appCfg, err := cfg.AppConfig()
	if err != nil {
		t.Fatalf("app config: %v", err)
	}
	if appCfg.GlobalROM != filepath.Join("ROMs", "pokemonred.gb") {
		t.Fatalf("unexpected global rom %q", appCfg.GlobalROM)
	}
	if len(appCfg.StockROMs) != len(stockTitles) {
		t.Fatalf("expected every stock title mapped, got %d", len(appCfg.StockROMs))
	}
}

func TestAppConfigRejectsUnknownGlobalGame(t *testing.T) {
	cfg := Config{ROMDir: "ROMs", GlobalGame: "tetris"}
	if _, err := cfg.AppConfig(); err == nil {
		t.Fatal("expected error for unknown global game")
	}
}

func TestParseLine(t *testing.T) {
	tests := []struct {
		line string
		ok   bool
		kind chat.CommandKind
	}{
		{"join chan-1", true, chat.CommandJoin},
		{"join chan-1 ab12c", true, chat.CommandJoin},
		{"start chan-1 red", true, chat.CommandSingleplayer},
		{"stop chan-1", true, chat.CommandLeave},
		{"press chan-1", false, 0},
		{"bogus chan-1", false, 0},
		{"", false, 0},
	}
	for _, tt := range tests {
		event, ok := parseLine(tt.line)
		if ok != tt.ok {
			t.Fatalf("parseLine(%q) ok = %v, want %v", tt.line, ok, tt.ok)
		}
		if !ok {
			continue
		}
		if event.Command == nil || event.Command.Kind != tt.kind {
			t.Fatalf("parseLine(%q) = %+v, want kind %v", tt.line, event, tt.kind)
		}
	}
}

func TestParseLineInput(t *testing.T) {
	event, ok := parseLine("press chan-1 user-1 🅰")
	if !ok || event.Input == nil {
		t.Fatalf("expected an input event, got %+v", event)
	}
	if event.Input.ChannelID != "chan-1" || event.Input.UserID != "user-1" || event.Input.Reaction != "🅰" {
		t.Fatalf("unexpected input event %+v", event.Input)
	}
}

func TestFrameEngineRendersDistinctFrames(t *testing.T) {
	e, err := StartFrameEngine("red.gb")
	if err != nil {
		t.Fatalf("start frame engine: %v", err)
	}

	first, err := e.Render()
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if err := e.Advance(15); err != nil {
		t.Fatalf("advance: %v", err)
	}
	second, err := e.Render()
	if err != nil {
		t.Fatalf("render after advance: %v", err)
	}
	if string(first) == string(second) {
		t.Fatal("expected the frame to change with emulated time")
	}
}
