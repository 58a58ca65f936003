package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var cli struct {
	Debug bool `help:"enable debug logging" env:"POSTFLOP_DEBUG"`

	Build   BuildCmd   `cmd:"" help:"build the postflop strategy table"`
	Resolve ResolveCmd `cmd:"" help:"recommend an action for a live spot"`
	Preflop PreflopCmd `cmd:"" help:"recommend a preflop action from stack-depth charts"`
	Inspect InspectCmd `cmd:"" help:"show a strategy table's metadata and states"`
	Archive ArchiveCmd `cmd:"" help:"store and retrieve built tables in a SQL archive"`
}

// runContext is bound into every command's Run method
type runContext struct {
	ctx context.Context
	log zerolog.Logger
}

func main() {
	// A missing .env file is fine; real environment variables still apply
	_ = godotenv.Load()

	kctx := kong.Parse(&cli,
		kong.Name("postflop-solver"),
		kong.Description("Postflop MCCFR strategy table builder and runtime resolver"),
		kong.UsageOnError(),
	)

	setupLogger(cli.Debug)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := kctx.Run(&runContext{ctx: ctx, log: log.Logger}); err != nil {
		log.Fatal().Err(err).Str("command", kctx.Command()).Msg("command failed")
	}
}

func setupLogger(debug bool) {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level)
}
