package auth

import (
	"context"
	"time"
)

// Token represents an authenticated console session. Raw holds the bearer
// credential as presented, for forwarding to upstream collaborators.
type Token struct {
	Sub       string
	Email     string
	Name      string
	Raw       string
	ExpiresAt time.Time
}

// IsAnonymous reports whether the token belongs to the anonymous user
func (t *Token) IsAnonymous() bool {
	return t.Sub == anonymousSub
}

const anonymousSub = "anonymous"

// NewAnonymousUser returns the token used when authentication is disabled
func NewAnonymousUser() *Token {
	return &Token{
		Sub:  anonymousSub,
		Name: "Anonymous User",
	}
}

type ctxTokenKey struct{}

// ContextWithToken returns a context carrying the token
func ContextWithToken(ctx context.Context, token *Token) context.Context {
	return context.WithValue(ctx, ctxTokenKey{}, token)
}

// TokenFromContext returns the token stored in the context, if any
func TokenFromContext(ctx context.Context) (*Token, bool) {
	token, ok := ctx.Value(ctxTokenKey{}).(*Token)
	return token, ok
}
