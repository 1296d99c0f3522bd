package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	arcadecmd "github.com/0xDEADCADE/PokemonArcade/internal/cmd/arcade"
	"github.com/0xDEADCADE/PokemonArcade/internal/platform/config"
)

func main() {
	cfg, err := arcadecmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("parse flags: %v", err)
	}
	log.SetPrefix("[ARCADE] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := arcadecmd.Run(ctx, cfg); err != nil {
		config.Exitf("failed to serve: %v", err)
	}
}
