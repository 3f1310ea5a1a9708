package api

import (
	"crypto/hmac"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"

	"github.com/andrebq/gistbox/internal/logutil"
	"github.com/andrebq/gistbox/session"
	"golang.org/x/crypto/blake2b"
)

const (
	// SessionCookie carries the signed session token on the client side.
	SessionCookie = "session_id"

	// AuthPath is the only route where an unauthenticated caller is
	// allowed to interact with the service.
	AuthPath = "/auth"

	staticPrefix = "/static/"
)

type (
	// Gate runs in front of every request and decides between three
	// outcomes: pass the request through, serve the login challenge,
	// or redirect the caller to the login page.
	//
	// The session token travels in a cookie whose value is signed
	// with a keyed MAC. A cookie that fails verification counts as no
	// cookie at all, so a forged value lands on the same path as an
	// anonymous caller.
	Gate struct {
		auth           *session.Authority
		signKey        []byte
		insecureCookie bool
	}
)

// NewGate builds a gate around the given authority. signKey is the
// cookie signing key, anything between 16 and 64 bytes. Set
// allowHTTPCookie only in development, it drops the Secure attribute
// from the session cookie.
func NewGate(auth *session.Authority, signKey []byte, allowHTTPCookie bool) (*Gate, error) {
	if len(signKey) < 16 {
		return nil, errors.New("session/api: signing key must have at least 16 bytes")
	}
	if len(signKey) > 64 {
		return nil, errors.New("session/api: signing key must have at most 64 bytes")
	}
	return &Gate{
		auth:           auth,
		signKey:        signKey,
		insecureCookie: allowHTTPCookie,
	}, nil
}

// Protect wraps sensitive with the per-request session check.
func (g *Gate) Protect(sensitive http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, staticPrefix) {
			// static assets skip session handling entirely
			sensitive.ServeHTTP(w, r)
			return
		}
		ctx := r.Context()
		log := logutil.GetOrDefault(ctx)
		token, carried := g.readToken(r)
		if carried {
			if g.auth.IsValid(token) {
				log.Debug().Str("remote", r.RemoteAddr).Str("token", truncate(token)).Msg("Request with valid session")
				sensitive.ServeHTTP(w, r.WithContext(withToken(ctx, token)))
				return
			}
			log.Debug().Str("remote", r.RemoteAddr).Str("token", truncate(token)).Msg("Request with expired or unknown session")
			g.clearSession(w)
			g.pushFlash(w, "Your session is no longer valid, please sign in again.")
			if r.URL.Path != AuthPath {
				http.Redirect(w, r, AuthPath, http.StatusSeeOther)
				return
			}
			// already heading to the login page, let the password
			// handling below have a look at the request
		}
		if r.URL.Path == AuthPath {
			g.handleAuth(w, r, sensitive)
			return
		}
		// no session at all and the route is neither static nor the
		// login page. Deny by default instead of letting the request
		// leak through unauthenticated.
		http.Redirect(w, r, AuthPath, http.StatusSeeOther)
	})
}

func (g *Gate) handleAuth(w http.ResponseWriter, r *http.Request, sensitive http.Handler) {
	ctx := r.Context()
	log := logutil.GetOrDefault(ctx)
	if r.Method == http.MethodPost {
		passwd := r.PostFormValue("passwd")
		if passwd != "" {
			if g.auth.CheckCredential(passwd) {
				token, err := g.auth.Mint()
				if err != nil {
					log.Error().Err(err).Msg("Unable to mint session token")
					http.Error(w, "unable to create session", http.StatusInternalServerError)
					return
				}
				g.auth.Register(token, g.auth.DefaultTimeout())
				g.setSession(w, token)
				log.Debug().Str("remote", r.RemoteAddr).Str("token", truncate(token)).Msg("Password accepted, session created")
				sensitive.ServeHTTP(w, r.WithContext(withToken(ctx, token)))
				return
			}
			// the submitted value itself stays out of logs, flashes
			// and anything else that outlives the request
			log.Debug().Str("remote", r.RemoteAddr).Int("attempt_len", len(passwd)).Msg("Password rejected")
			g.pushFlash(w, "Wrong password.")
		}
	}
	sensitive.ServeHTTP(w, r)
}

func (g *Gate) readToken(r *http.Request) (string, bool) {
	c, err := r.Cookie(SessionCookie)
	if err != nil {
		return "", false
	}
	idx := strings.LastIndexByte(c.Value, '.')
	if idx <= 0 {
		return "", false
	}
	token := c.Value[:idx]
	mac, err := base64.RawURLEncoding.DecodeString(c.Value[idx+1:])
	if err != nil {
		return "", false
	}
	if !hmac.Equal(mac, g.sign(token)) {
		return "", false
	}
	return token, true
}

func (g *Gate) setSession(w http.ResponseWriter, token string) {
	value := token + "." + base64.RawURLEncoding.EncodeToString(g.sign(token))
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   !g.insecureCookie,
	})
}

func (g *Gate) clearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   !g.insecureCookie,
	})
}

func (g *Gate) sign(token string) []byte {
	h, err := blake2b.New256(g.signKey)
	if err != nil {
		// key length was validated at construction
		panic(err)
	}
	h.Write([]byte(token))
	return h.Sum(nil)
}

func (g *Gate) pushFlash(w http.ResponseWriter, msg string) {
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    base64.RawURLEncoding.EncodeToString([]byte(msg)),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   !g.insecureCookie,
	})
}

func truncate(token string) string {
	if len(token) > 8 {
		return token[:8]
	}
	return token
}
