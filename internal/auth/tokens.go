package auth

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/Adda-Baaj/arogya-feed/internal/domain"
)

// ErrUnauthenticated is returned for missing, unknown or revoked credentials.
var ErrUnauthenticated = errors.New("unauthenticated")

// Verifier resolves the identity behind a bearer token.
type Verifier interface {
	Verify(ctx context.Context, token string) (*domain.Identity, error)
}

// Grant binds a bearer token to an identity.
type Grant struct {
	Token       string `mapstructure:"token"`
	UID         string `mapstructure:"uid"`
	Email       string `mapstructure:"email"`
	DisplayName string `mapstructure:"name"`
}

// Tokens is a Verifier over a table of issued tokens. Only token digests
// are kept. Every grant and revoke is published on Changes.
type Tokens struct {
	mu      sync.RWMutex
	byHash  map[[sha256.Size]byte]domain.Identity
	changes *Broadcaster
}

// NewTokens builds the table from grants. A grant without token or uid is an error.
func NewTokens(grants []Grant) (*Tokens, error) {
	t := &Tokens{
		byHash:  make(map[[sha256.Size]byte]domain.Identity, len(grants)),
		changes: NewBroadcaster(),
	}
	for i, g := range grants {
		if err := t.Grant(g); err != nil {
			return nil, fmt.Errorf("auth grant %d: %w", i, err)
		}
	}
	return t, nil
}

// Grant issues or replaces a token.
func (t *Tokens) Grant(g Grant) error {
	token := strings.TrimSpace(g.Token)
	uid := strings.TrimSpace(g.UID)
	if token == "" {
		return errors.New("token is required")
	}
	if uid == "" {
		return errors.New("uid is required")
	}
	id := domain.Identity{
		UID:         uid,
		Email:       strings.TrimSpace(g.Email),
		DisplayName: strings.TrimSpace(g.DisplayName),
	}

	t.mu.Lock()
	t.byHash[sha256.Sum256([]byte(token))] = id
	t.mu.Unlock()

	t.changes.Publish(&id)
	return nil
}

// Revoke invalidates a token. Revoking an unknown token is a no-op.
func (t *Tokens) Revoke(token string) {
	key := sha256.Sum256([]byte(strings.TrimSpace(token)))
	t.mu.Lock()
	_, ok := t.byHash[key]
	delete(t.byHash, key)
	t.mu.Unlock()

	if ok {
		t.changes.Publish(nil)
	}
}

// Len reports the number of live tokens.
func (t *Tokens) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.byHash)
}

// Verify returns a copy of the identity bound to token.
func (t *Tokens) Verify(ctx context.Context, token string) (*domain.Identity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrUnauthenticated
	}

	t.mu.RLock()
	id, ok := t.byHash[sha256.Sum256([]byte(token))]
	t.mu.RUnlock()
	if !ok {
		return nil, ErrUnauthenticated
	}
	return &id, nil
}

// Changes reports grants (the granted identity) and revocations (nil).
func (t *Tokens) Changes() Signal {
	return t.changes
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
