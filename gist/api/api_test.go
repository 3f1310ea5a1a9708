package api

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/andrebq/gistbox/internal/testutil"
	"github.com/steinfletcher/apitest"
	jsonpath "github.com/steinfletcher/apitest-jsonpath"
)

func TestListAndGet(t *testing.T) {
	ctx := context.Background()
	store, dir, cleanup := testutil.AcquireStore(ctx, t)
	defer cleanup()

	older, err := store.Create(ctx, "older", "ana", testutil.WriteContent(t, dir, "a.txt", "body a"), true)
	if err != nil {
		t.Fatal(err)
	}
	_, err = store.Create(ctx, "hidden", "ana", testutil.WriteContent(t, dir, "b.txt", "body b"), false)
	if err != nil {
		t.Fatal(err)
	}
	_, err = store.Create(ctx, "newer", "bob", testutil.WriteContent(t, dir, "c.txt", "body c"), true)
	if err != nil {
		t.Fatal(err)
	}

	handler := AsHandler(store)

	apitest.New().
		Handler(handler).
		Get("/api/gists").
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Len(`$`, 2)).
		Assert(jsonpath.Equal(`$[0].title`, "newer")).
		Assert(jsonpath.Equal(`$[1].title`, "older")).
		Assert(jsonpath.Equal(`$[0].files[0].body`, "body c")).
		End()

	apitest.New().
		Handler(handler).
		Get(fmt.Sprintf("/api/gists/%v", older.ID)).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal(`$.title`, "older")).
		Assert(jsonpath.Equal(`$.author`, "ana")).
		Assert(jsonpath.Len(`$.files`, 1)).
		End()

	apitest.New().
		Handler(handler).
		Get("/api/gists/12345").
		Expect(t).
		Status(http.StatusNotFound).
		End()

	apitest.New().
		Handler(handler).
		Get("/api/gists/not-a-number").
		Expect(t).
		Status(http.StatusBadRequest).
		End()
}

func TestCreateAndAddFile(t *testing.T) {
	ctx := context.Background()
	store, dir, cleanup := testutil.AcquireStore(ctx, t)
	defer cleanup()

	handler := AsHandler(store)
	path := testutil.WriteContent(t, dir, "hello.txt", "hello world")

	apitest.New().
		Handler(handler).
		Post("/api/gists").
		JSON(fmt.Sprintf(`{"title": "greetings", "author": "ana", "path": %q}`, path)).
		Expect(t).
		Status(http.StatusCreated).
		Assert(jsonpath.Equal(`$.title`, "greetings")).
		Assert(jsonpath.Equal(`$.public`, true)).
		Assert(jsonpath.Equal(`$.files[0].body`, "hello world")).
		End()

	second := testutil.WriteContent(t, dir, "more.txt", "more content")
	apitest.New().
		Handler(handler).
		Post("/api/gists/1/files").
		JSON(fmt.Sprintf(`{"path": %q}`, second)).
		Expect(t).
		Status(http.StatusCreated).
		End()

	// same content again lands on the checksum unique constraint
	dup := testutil.WriteContent(t, dir, "copy.txt", "more content")
	apitest.New().
		Handler(handler).
		Post("/api/gists/1/files").
		JSON(fmt.Sprintf(`{"path": %q}`, dup)).
		Expect(t).
		Status(http.StatusConflict).
		End()

	// unknown gist
	other := testutil.WriteContent(t, dir, "other.txt", "other content")
	apitest.New().
		Handler(handler).
		Post("/api/gists/999/files").
		JSON(fmt.Sprintf(`{"path": %q}`, other)).
		Expect(t).
		Status(http.StatusNotFound).
		End()

	// missing fields
	apitest.New().
		Handler(handler).
		Post("/api/gists").
		JSON(`{"author": "ana"}`).
		Expect(t).
		Status(http.StatusBadRequest).
		End()
}
