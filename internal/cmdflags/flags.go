package cmdflags

import (
	"github.com/andrebq/gistbox/session"
	"github.com/urfave/cli/v2"
)

func Database(out *string) cli.Flag {
	return &cli.StringFlag{
		Name:        "db",
		Aliases:     []string{"d"},
		Usage:       "Path to the gist database",
		Destination: out,
		Value:       *out,
	}
}

func PasswordEnvVar(out *string) cli.Flag {
	if len(*out) == 0 {
		*out = session.PasswordEnvVar
	}
	return &cli.StringFlag{
		Name:        "password-envvar-name",
		Usage:       "Name of the environment variable that holds the shared password. The password itself should not be passed as an argument",
		Value:       *out,
		Destination: out,
	}
}

func SigningKeyEnvVar(out *string) cli.Flag {
	if len(*out) == 0 {
		*out = session.SigningKeyEnvVar
	}
	return &cli.StringFlag{
		Name:        "signing-key-envvar-name",
		Usage:       "Name of the environment variable that holds the cookie signing key. The key itself should not be passed as an argument",
		Value:       *out,
		Destination: out,
	}
}
