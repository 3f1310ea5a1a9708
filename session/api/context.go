package api

import "context"

type (
	key byte
)

var (
	tokenKey = key(1)
)

func withToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey, token)
}

// Token returns the session token the gate attached to the request,
// if the request passed the gate authenticated.
func Token(ctx context.Context) (string, bool) {
	v := ctx.Value(tokenKey)
	if v == nil {
		return "", false
	}
	return v.(string), true
}

// Authenticated reports whether the request went through the gate with
// a valid session, either carried or freshly minted by a login.
func Authenticated(ctx context.Context) bool {
	_, ok := Token(ctx)
	return ok
}
