// Package web renders the HTML side of the service: the login form,
// the listing of recent gists and the single gist view.
package web

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strconv"

	"github.com/andrebq/gistbox/gist"
	"github.com/andrebq/gistbox/internal/logutil"
	sessionapi "github.com/andrebq/gistbox/session/api"
	"github.com/julienschmidt/httprouter"
)

//go:embed templates/*.html
var templateFS embed.FS

var views = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type (
	authView struct {
		Flash string
	}

	listingView struct {
		Flash    string
		Listings []gist.Listing
	}

	gistView struct {
		Flash   string
		Listing gist.Listing
	}
)

// AsHandler mounts the HTML routes. staticDir, when not empty, is
// served under /static/ (the one prefix the session gate never
// touches). fallback handles anything the HTML routes do not cover,
// which is how the JSON api ends up mounted behind the same gate.
func AsHandler(store *gist.Store, staticDir string, fallback http.Handler) http.Handler {
	router := httprouter.New()
	router.HandlerFunc("GET", "/", index(store))
	router.Handler("GET", "/gists/:id", show(store))
	router.HandlerFunc("GET", sessionapi.AuthPath, authPage)
	router.HandlerFunc("POST", sessionapi.AuthPath, authPage)
	if staticDir != "" {
		router.ServeFiles("/static/*filepath", http.Dir(staticDir))
	}
	if fallback != nil {
		router.NotFound = fallback
	}
	return router
}

// authPage serves the login form. A caller that already holds a valid
// session (including the one minted a moment ago by the gate) has
// nothing to see here and is sent to the listing.
func authPage(w http.ResponseWriter, r *http.Request) {
	if sessionapi.Authenticated(r.Context()) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	flash, _ := sessionapi.TakeFlash(w, r)
	render(w, r, "auth.html", authView{Flash: flash})
}

func index(store *gist.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		listings, err := store.ListRecent(r.Context(), 10)
		if err != nil {
			htmlError(w, r, err)
			return
		}
		flash, _ := sessionapi.TakeFlash(w, r)
		render(w, r, "listing.html", listingView{Flash: flash, Listings: listings})
	}
}

func show(store *gist.Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		params := httprouter.ParamsFromContext(r.Context())
		id, err := strconv.ParseInt(params.ByName("id"), 10, 64)
		if err != nil {
			http.Error(w, "invalid gist id", http.StatusBadRequest)
			return
		}
		listing, err := store.Get(r.Context(), id)
		if err != nil {
			htmlError(w, r, err)
			return
		}
		flash, _ := sessionapi.TakeFlash(w, r)
		render(w, r, "gist.html", gistView{Flash: flash, Listing: listing})
	})
}

func render(w http.ResponseWriter, r *http.Request, name string, data interface{}) {
	var buf bytes.Buffer
	err := views.ExecuteTemplate(&buf, name, data)
	if err != nil {
		log := logutil.GetOrDefault(r.Context())
		log.Error().Err(err).Str("template", name).Msg("Unable to render view")
		http.Error(w, "unable to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Add("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func htmlError(w http.ResponseWriter, r *http.Request, err error) {
	log := logutil.GetOrDefault(r.Context())
	var notFound gist.GistNotFound
	var unavailable gist.ContentUnavailable
	switch {
	case errors.As(err, &notFound):
		http.Error(w, "gist not found", http.StatusNotFound)
	case errors.As(err, &unavailable):
		log.Warn().Err(err).Msg("Gist content missing from disk")
		http.Error(w, "gist content is not available", http.StatusBadGateway)
	default:
		log.Error().Err(err).Msg("Unexpected gist store failure")
		http.Error(w, "unable to serve gists", http.StatusInternalServerError)
	}
}
