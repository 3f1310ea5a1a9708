package gist_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/andrebq/gistbox/gist"
	"github.com/andrebq/gistbox/internal/testutil"
	"github.com/stretchr/testify/require"
)

func TestCreateAndGet(t *testing.T) {
	ctx := context.Background()
	store, dir, cleanup := testutil.AcquireStore(ctx, t)
	defer cleanup()

	path := testutil.WriteContent(t, dir, "hello.txt", "hello world")
	g, err := store.Create(ctx, "greetings", "ana", path, true)
	require.NoError(t, err)
	require.NotZero(t, g.ID)

	got, err := store.Get(ctx, g.ID)
	require.NoError(t, err)
	require.Equal(t, "greetings", got.Title)
	require.Equal(t, "ana", got.Author)
	require.True(t, got.Public)
	require.Len(t, got.Files, 1)
	require.Equal(t, "hello world", got.Files[0].Body)
	require.NotEmpty(t, got.Files[0].Checksum)
	require.False(t, got.Files[0].Added.IsZero())
}

func TestGetNotFound(t *testing.T) {
	ctx := context.Background()
	store, _, cleanup := testutil.AcquireStore(ctx, t)
	defer cleanup()

	_, err := store.Get(ctx, 42)
	var notFound gist.GistNotFound
	require.ErrorAs(t, err, &notFound)
	require.EqualValues(t, 42, notFound.ID)
}

func TestCreateRequiresTitle(t *testing.T) {
	ctx := context.Background()
	store, dir, cleanup := testutil.AcquireStore(ctx, t)
	defer cleanup()

	path := testutil.WriteContent(t, dir, "hello.txt", "hello world")
	_, err := store.Create(ctx, "", "ana", path, true)
	require.Error(t, err)
}

func TestAddFile(t *testing.T) {
	ctx := context.Background()
	store, dir, cleanup := testutil.AcquireStore(ctx, t)
	defer cleanup()

	g, err := store.Create(ctx, "snippets", "bob", testutil.WriteContent(t, dir, "one.txt", "first"), true)
	require.NoError(t, err)

	f, err := store.AddFile(ctx, g.ID, testutil.WriteContent(t, dir, "two.txt", "second"))
	require.NoError(t, err)
	require.Equal(t, g.ID, f.GistID)

	got, err := store.Get(ctx, g.ID)
	require.NoError(t, err)
	require.Len(t, got.Files, 2)

	_, err = store.AddFile(ctx, 9000, testutil.WriteContent(t, dir, "three.txt", "third"))
	var notFound gist.GistNotFound
	require.ErrorAs(t, err, &notFound)
}

func TestChecksumUniqueness(t *testing.T) {
	ctx := context.Background()
	store, dir, cleanup := testutil.AcquireStore(ctx, t)
	defer cleanup()

	g, err := store.Create(ctx, "dupes", "bob", testutil.WriteContent(t, dir, "one.txt", "same body"), true)
	require.NoError(t, err)

	// different path, identical content
	_, err = store.AddFile(ctx, g.ID, testutil.WriteContent(t, dir, "two.txt", "same body"))
	var dup gist.DuplicateContent
	require.ErrorAs(t, err, &dup)
}

func TestListRecentOrderingAndVisibility(t *testing.T) {
	ctx := context.Background()
	store, dir, cleanup := testutil.AcquireStore(ctx, t)
	defer cleanup()

	older, err := store.Create(ctx, "older", "ana", testutil.WriteContent(t, dir, "a.txt", "body a"), true)
	require.NoError(t, err)
	_, err = store.Create(ctx, "hidden", "ana", testutil.WriteContent(t, dir, "b.txt", "body b"), false)
	require.NoError(t, err)
	newer, err := store.Create(ctx, "newer", "bob", testutil.WriteContent(t, dir, "c.txt", "body c"), true)
	require.NoError(t, err)

	out, err := store.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, out, 2, "private gists must not show up in the listing")
	require.Equal(t, newer.ID, out[0].ID)
	require.Equal(t, older.ID, out[1].ID)

	// limit counts gists, not file rows
	out, err = store.ListRecent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, "newer", out[0].Title)
}

func TestListRecentFileOrdering(t *testing.T) {
	ctx := context.Background()
	store, dir, cleanup := testutil.AcquireStore(ctx, t)
	defer cleanup()

	g, err := store.Create(ctx, "multi", "ana", testutil.WriteContent(t, dir, "first.txt", "first"), true)
	require.NoError(t, err)
	_, err = store.AddFile(ctx, g.ID, testutil.WriteContent(t, dir, "second.txt", "second"))
	require.NoError(t, err)
	_, err = store.AddFile(ctx, g.ID, testutil.WriteContent(t, dir, "third.txt", "third"))
	require.NoError(t, err)

	out, err := store.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, out, 1)
	files := out[0].Files
	require.Len(t, files, 3)
	// most recently added first, file id breaks ties within the
	// same timestamp second
	require.Equal(t, "third", files[0].Body)
	require.Equal(t, "second", files[1].Body)
	require.Equal(t, "first", files[2].Body)
}

func TestMissingContentFile(t *testing.T) {
	ctx := context.Background()
	store, dir, cleanup := testutil.AcquireStore(ctx, t)
	defer cleanup()

	path := testutil.WriteContent(t, dir, "gone.txt", "soon to disappear")
	g, err := store.Create(ctx, "fragile", "ana", path, true)
	require.NoError(t, err)

	// fetching again still works, the body is cached
	_, err = store.Get(ctx, g.ID)
	require.NoError(t, err)

	require.NoError(t, os.Remove(path))

	// a fresh store has no cache to fall back on
	store2, err := gist.Open(ctx, dirDB(dir))
	require.NoError(t, err)
	defer store2.Close()
	_, err = store2.Get(ctx, g.ID)
	var unavailable gist.ContentUnavailable
	require.ErrorAs(t, err, &unavailable)
	require.Equal(t, path, unavailable.Path)
	require.True(t, errors.Is(err, os.ErrNotExist))
}

func dirDB(dir string) string {
	return dir + "/gists.db"
}
