package api

import (
	"encoding/base64"
	"net/http"
)

const (
	flashCookie = "flash"
)

// TakeFlash returns the pending one-shot notice for this caller, if
// any, and clears it so the next render starts clean.
func TakeFlash(w http.ResponseWriter, r *http.Request) (string, bool) {
	c, err := r.Cookie(flashCookie)
	if err != nil {
		return "", false
	}
	http.SetCookie(w, &http.Cookie{
		Name:   flashCookie,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
	msg, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil || len(msg) == 0 {
		return "", false
	}
	return string(msg), true
}
