package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/andrebq/gistbox/cmd/gistbox/gist"
	"github.com/andrebq/gistbox/cmd/gistbox/serve"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "gistbox",
		Usage: "Share snippets with anyone who knows the password!",
		Commands: []*cli.Command{
			serve.Cmd(),
			gist.Cmd(),
		},
	}
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	err := app.RunContext(ctx, os.Args)
	if err != nil {
		log.Error().Err(err).Msg("Application failed")
	}
}
