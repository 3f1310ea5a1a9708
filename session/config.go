package session

import (
	"fmt"
	"os"
)

const (
	PasswordEnvVar   = "GISTBOX_PASSWORD"
	SigningKeyEnvVar = "GISTBOX_SIGNING_KEY"
)

// SecretFromEnv reads varname and immediately clears it, so the
// secret does not stay visible in the process environment for its
// whole lifetime. Returns an error when the variable is unset or
// empty, deciding what to do about that is up to the caller.
func SecretFromEnv(varname string, getfn func(string) string, setfn func(string, string) error) (string, error) {
	if getfn == nil {
		getfn = os.Getenv
	}
	if setfn == nil {
		setfn = os.Setenv
	}
	val := getfn(varname)
	setfn(varname, "")
	if len(val) == 0 {
		return "", fmt.Errorf("session: environment variable %v is not set", varname)
	}
	return val, nil
}
