// Package arcade wires the arcade service command.
package arcade

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/0xDEADCADE/PokemonArcade/internal/arcade/app"
	entrypoint "github.com/0xDEADCADE/PokemonArcade/internal/platform/cmd"
)

// stockTitles maps the stock game names to their ROM file names under the
// ROM directory.
var stockTitles = map[string]string{
	"red":     "pokemonred.gb",
	"blue":    "pokemonblue.gb",
	"yellow":  "pokemonyellow.gb",
	"gold":    "pokemongold.gb",
	"silver":  "pokemonsilver.gb",
	"crystal": "pokemoncrystal.gb",
}

// Config holds the arcade command configuration.
type Config struct {
	DBPath            string        `env:"POKEMON_ARCADE_DB_PATH" envDefault:"arcade.db"`
	ROMDir            string        `env:"POKEMON_ARCADE_ROM_DIR" envDefault:"ROMs"`
	SaveDir           string        `env:"POKEMON_ARCADE_SAVE_DIR" envDefault:"SinglePlayerSaves"`
	CustomROMDir      string        `env:"POKEMON_ARCADE_CUSTOM_ROM_DIR" envDefault:"CustomROMs"`
	GlobalGame        string        `env:"POKEMON_ARCADE_GLOBAL_GAME" envDefault:"red"`
	DefaultGame       string        `env:"POKEMON_ARCADE_DEFAULT_GAME" envDefault:"red"`
	FrameDir          string        `env:"POKEMON_ARCADE_FRAME_DIR" envDefault:"Frames"`
	InactivityTimeout time.Duration `env:"POKEMON_ARCADE_INACTIVITY_TIMEOUT" envDefault:"30m"`
	ScreenshotLRUSize int           `env:"POKEMON_ARCADE_SCREENSHOT_LRU_SIZE" envDefault:"1024"`
	ImageScale        int           `env:"POKEMON_ARCADE_IMAGE_SCALE" envDefault:"3"`
}

// ParseConfig loads environment defaults and parses flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "sqlite database path")
	fs.StringVar(&cfg.ROMDir, "rom-dir", cfg.ROMDir, "stock ROM directory")
	fs.StringVar(&cfg.SaveDir, "save-dir", cfg.SaveDir, "per-channel save directory")
	fs.StringVar(&cfg.CustomROMDir, "custom-rom-dir", cfg.CustomROMDir, "uploaded ROM directory")
	fs.StringVar(&cfg.GlobalGame, "global-game", cfg.GlobalGame, "stock title for the global session, empty disables it")
	fs.StringVar(&cfg.DefaultGame, "default-game", cfg.DefaultGame, "stock title started when none is named")
	fs.StringVar(&cfg.FrameDir, "frame-dir", cfg.FrameDir, "directory published frames are written to")
	fs.DurationVar(&cfg.InactivityTimeout, "inactivity-timeout", cfg.InactivityTimeout, "idle time before a session is closed")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// AppConfig translates the command configuration into the service assembly
// configuration.
func (c Config) AppConfig() (app.Config, error) {
	stock := make(map[string]string, len(stockTitles))
	for name, file := range stockTitles {
		stock[name] = filepath.Join(c.ROMDir, file)
	}

	globalROM := ""
	if c.GlobalGame != "" {
		path, ok := stock[c.GlobalGame]
		if !ok {
			return app.Config{}, fmt.Errorf("unknown global game %q", c.GlobalGame)
		}
		globalROM = path
	}

	return app.Config{
		DBPath:            c.DBPath,
		GlobalROM:         globalROM,
		DefaultStock:      c.DefaultGame,
		StockROMs:         stock,
		CustomROMDir:      c.CustomROMDir,
		SaveDir:           c.SaveDir,
		InactivityTimeout: c.InactivityTimeout,
		ScreenshotLRUSize: c.ScreenshotLRUSize,
		ImageScale:        c.ImageScale,
	}, nil
}

// Run starts the arcade service with the console harness adapters.
func Run(ctx context.Context, cfg Config) error {
	appCfg, err := cfg.AppConfig()
	if err != nil {
		return err
	}

	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceArcade, func(ctx context.Context) error {
		gateway := NewConsoleGateway(os.Stdin)
		notifier, err := NewConsoleNotifier(cfg.FrameDir)
		if err != nil {
			return err
		}
		return app.Run(ctx, appCfg, app.Deps{
			Gateway:  gateway,
			Notifier: notifier,
			Starter:  StartFrameEngine,
		})
	})
}
