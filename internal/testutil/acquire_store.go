package testutil

import (
	"context"
	"os"
	"path/filepath"

	"github.com/andrebq/gistbox/gist"
)

type (
	TestLog interface {
		Fatal(...interface{})
		Log(...interface{})
	}
)

// AcquireStore opens a throwaway gist store backed by a temp dir. The
// cleanup closes the store and removes the directory, content files
// written with WriteContent included.
func AcquireStore(ctx context.Context, t TestLog) (*gist.Store, string, func()) {
	dir, err := os.MkdirTemp("", "gistbox-tests")
	if err != nil {
		t.Fatal(err)
	}
	store, err := gist.Open(ctx, filepath.Join(dir, "gists.db"))
	if err != nil {
		t.Fatal(err)
	}
	return store, dir, func() {
		err := store.Close()
		if err != nil {
			t.Log("unable to close gist store", err)
		}
		err = os.RemoveAll(dir)
		if err != nil {
			t.Log("unable to cleanup temp dir", dir)
		}
	}
}

// WriteContent drops a content file inside the store's temp dir and
// returns its full path.
func WriteContent(t TestLog, dir, name, body string) string {
	path := filepath.Join(dir, name)
	err := os.WriteFile(path, []byte(body), 0644)
	if err != nil {
		t.Fatal(err)
	}
	return path
}
