package battle

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// ErrConcurrentBattle is returned when an identity is already in a battle.
var ErrConcurrentBattle = errors.New("already in an active battle")

// Token is the receipt for a set of identities held by Acquire.
type Token string

// Registry is the process-wide table of identities currently in a battle.
type Registry struct {
	mu     sync.Mutex
	held   map[string]Token
	tokens map[Token][]string
}

func NewRegistry() *Registry {
	return &Registry{held: map[string]Token{}, tokens: map[Token][]string{}}
}

// Acquire locks every id or none of them.
func (r *Registry) Acquire(ids ...string) (Token, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := map[string]bool{}
	uniq := make([]string, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if _, busy := r.held[id]; busy {
			return "", fmt.Errorf("%s: %w", id, ErrConcurrentBattle)
		}
		uniq = append(uniq, id)
	}

	t := Token(uuid.NewString())
	for _, id := range uniq {
		r.held[id] = t
	}
	r.tokens[t] = uniq
	return t, nil
}

// Release frees everything held by t. Releasing twice is a no-op.
func (r *Registry) Release(t Token) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.tokens[t] {
		if r.held[id] == t {
			delete(r.held, id)
		}
	}
	delete(r.tokens, t)
}

// Active reports whether id is currently held.
func (r *Registry) Active(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.held[id]
	return ok
}
