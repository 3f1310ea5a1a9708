package session

import (
	"os"
	"testing"
)

func TestSecretFromEnv(t *testing.T) {
	os.Setenv("GISTBOX_TEST_SECRET", "hunter2")
	val, err := SecretFromEnv("GISTBOX_TEST_SECRET", nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if val != "hunter2" {
		t.Fatalf("unexpected secret %q", val)
	}
	if os.Getenv("GISTBOX_TEST_SECRET") != "" {
		t.Fatal("reading the secret should remove it from the environment")
	}
	_, err = SecretFromEnv("GISTBOX_TEST_SECRET", nil, nil)
	if err == nil {
		t.Fatal("an unset variable must be an error")
	}
}
