// Package api exposes the gist store as a small JSON api, mounted
// behind the session gate next to the HTML views.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/andrebq/gistbox/gist"
	"github.com/andrebq/gistbox/internal/logutil"
	"github.com/julienschmidt/httprouter"
)

const (
	maxListLimit = 100
)

type (
	gistJSON struct {
		ID     int64      `json:"id"`
		Title  string     `json:"title"`
		Author string     `json:"author,omitempty"`
		Public bool       `json:"public"`
		Files  []fileJSON `json:"files"`
	}

	fileJSON struct {
		ID       int64     `json:"id"`
		Path     string    `json:"path"`
		Checksum string    `json:"checksum"`
		Added    time.Time `json:"added"`
		Body     string    `json:"body"`
	}

	createGistReq struct {
		Title  string `json:"title"`
		Author string `json:"author"`
		Path   string `json:"path"`
		Public *bool  `json:"public"`
	}

	addFileReq struct {
		Path string `json:"path"`
	}
)

// AsHandler mounts the JSON api routes on a fresh router.
func AsHandler(s *gist.Store) http.Handler {
	router := httprouter.New()
	router.HandlerFunc("GET", "/api/gists", listGists(s))
	router.Handler("GET", "/api/gists/:id", getGist(s))
	router.HandlerFunc("POST", "/api/gists", createGist(s))
	router.Handler("POST", "/api/gists/:id/files", addFile(s))
	return router
}

func listGists(s *gist.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
		if err != nil || limit <= 0 || limit > maxListLimit {
			limit = 10
		}
		out, err := s.ListRecent(r.Context(), limit)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toJSON(out))
	}
}

func getGist(s *gist.Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := gistID(r)
		if err != nil {
			http.Error(w, "invalid gist id", http.StatusBadRequest)
			return
		}
		out, err := s.Get(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toJSON([]gist.Listing{out})[0])
	})
}

func createGist(s *gist.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createGistReq
		err := json.NewDecoder(r.Body).Decode(&req)
		if err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if req.Title == "" || req.Path == "" {
			http.Error(w, "title and path are required", http.StatusBadRequest)
			return
		}
		public := true
		if req.Public != nil {
			public = *req.Public
		}
		g, err := s.Create(r.Context(), req.Title, req.Author, req.Path, public)
		if err != nil {
			writeError(w, r, err)
			return
		}
		out, err := s.Get(r.Context(), g.ID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, toJSON([]gist.Listing{out})[0])
	}
}

func addFile(s *gist.Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := gistID(r)
		if err != nil {
			http.Error(w, "invalid gist id", http.StatusBadRequest)
			return
		}
		var req addFileReq
		err = json.NewDecoder(r.Body).Decode(&req)
		if err != nil || req.Path == "" {
			http.Error(w, "path is required", http.StatusBadRequest)
			return
		}
		f, err := s.AddFile(r.Context(), id, req.Path)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, fileJSON{
			ID: f.ID, Path: f.Path, Checksum: f.Checksum, Added: f.Added,
		})
	})
}

func gistID(r *http.Request) (int64, error) {
	params := httprouter.ParamsFromContext(r.Context())
	return strconv.ParseInt(params.ByName("id"), 10, 64)
}

func toJSON(in []gist.Listing) []gistJSON {
	out := make([]gistJSON, 0, len(in))
	for _, l := range in {
		g := gistJSON{ID: l.ID, Title: l.Title, Author: l.Author, Public: l.Public}
		for _, f := range l.Files {
			g.Files = append(g.Files, fileJSON{
				ID: f.File.ID, Path: f.Path, Checksum: f.Checksum, Added: f.Added, Body: f.Body,
			})
		}
		out = append(out, g)
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Add("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	log := logutil.GetOrDefault(r.Context())
	var notFound gist.GistNotFound
	var dup gist.DuplicateContent
	var unavailable gist.ContentUnavailable
	switch {
	case errors.As(err, &notFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.As(err, &dup):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.As(err, &unavailable):
		log.Warn().Err(err).Msg("Gist content missing from disk")
		http.Error(w, "gist content is not available, server is mis-behaving", http.StatusBadGateway)
	default:
		log.Error().Err(err).Msg("Unexpected gist store failure")
		http.Error(w, "unable to serve gists, check logs for more information", http.StatusInternalServerError)
	}
}
