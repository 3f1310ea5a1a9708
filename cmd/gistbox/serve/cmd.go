package serve

import (
	"fmt"

	"github.com/andrebq/gistbox/gist"
	gistapi "github.com/andrebq/gistbox/gist/api"
	"github.com/andrebq/gistbox/internal/cmdflags"
	"github.com/andrebq/gistbox/internal/httpserver"
	"github.com/andrebq/gistbox/session"
	sessionapi "github.com/andrebq/gistbox/session/api"
	"github.com/andrebq/gistbox/web"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

const (
	// development-only fallbacks, kept on purpose so a bare
	// `gistbox serve --dev` works out of the box. Outside --dev the
	// process refuses to start without real secrets.
	devPassword   = "thisisapassword"
	devSigningKey = "gistbox-dev-only-signing-key"
)

func Cmd() *cli.Command {
	bindAddr := "localhost:7013"
	dbPath := "gistbox.db"
	staticDir := ""
	sessionTimeout := session.DefaultTimeout
	dev := false
	var passwdEnvVar, signKeyEnvVar string
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the gistbox HTTP server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "bind",
				Usage:       "Address to bind and serve gists",
				Value:       bindAddr,
				Destination: &bindAddr,
			},
			cmdflags.Database(&dbPath),
			&cli.StringFlag{
				Name:        "static-dir",
				Usage:       "Directory with static assets, served under /static/ without any session check (empty disables it)",
				Value:       staticDir,
				Destination: &staticDir,
			},
			&cli.DurationFlag{
				Name:        "session-timeout",
				Usage:       "How long a session stays valid after a login",
				Value:       sessionTimeout,
				Destination: &sessionTimeout,
			},
			&cli.BoolFlag{
				Name:        "dev",
				Usage:       "Development mode: plain http cookies and fixed fallback secrets",
				Destination: &dev,
			},
			cmdflags.PasswordEnvVar(&passwdEnvVar),
			cmdflags.SigningKeyEnvVar(&signKeyEnvVar),
		},
		Action: func(ctx *cli.Context) error {
			// a .env next to the binary is a convenience, absence is
			// not an error
			godotenv.Load()
			passwd, signKey, err := loadSecrets(passwdEnvVar, signKeyEnvVar, dev)
			if err != nil {
				return err
			}
			store, err := gist.Open(ctx.Context, dbPath)
			if err != nil {
				return err
			}
			defer store.Close()
			auth := session.NewAuthority(passwd, sessionTimeout, nil)
			gate, err := sessionapi.NewGate(auth, []byte(signKey), dev)
			if err != nil {
				return err
			}
			handler := web.AsHandler(store, staticDir, gistapi.AsHandler(store))
			return httpserver.Serve(ctx.Context, bindAddr, gate.Protect(handler))
		},
	}
}

func loadSecrets(passwdEnvVar, signKeyEnvVar string, dev bool) (string, string, error) {
	passwd, perr := session.SecretFromEnv(passwdEnvVar, nil, nil)
	signKey, kerr := session.SecretFromEnv(signKeyEnvVar, nil, nil)
	if !dev {
		if perr != nil {
			return "", "", fmt.Errorf("refusing to start without a password, set %v or run with --dev", passwdEnvVar)
		}
		if kerr != nil {
			return "", "", fmt.Errorf("refusing to start without a signing key, set %v or run with --dev", signKeyEnvVar)
		}
		return passwd, signKey, nil
	}
	if perr != nil {
		passwd = devPassword
		log.Warn().Msg("Using the development password, anyone who read the source knows it")
	}
	if kerr != nil {
		signKey = devSigningKey
		log.Warn().Msg("Using the development signing key, session cookies are forgeable")
	}
	return passwd, signKey, nil
}
