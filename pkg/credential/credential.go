// Package credential resolves the bearer token used to authenticate API calls.
package credential

import (
	"sync"

	"github.com/samvad-hq/samvad-request/internal/logger"
)

// DefaultKey is the store key holding the bearer token.
const DefaultKey = "TOKEN"

// Source yields the current bearer token. An empty string means unauthenticated.
type Source interface {
	Token() string
}

// SourceFunc adapts a function to Source.
type SourceFunc func() string

func (f SourceFunc) Token() string { return f() }

// Reader is the read side of the persistent credential store.
type Reader interface {
	Get(key string) (string, error)
}

// Accessor caches the token read from the persistent store. The cache is only
// populated with non-empty values and is emptied explicitly on logout.
type Accessor struct {
	store Reader
	key   string
	log   logger.Logger

	mu     sync.RWMutex
	cached string
}

// NewAccessor returns an Accessor reading key from store ("" selects DefaultKey).
func NewAccessor(store Reader, key string, log logger.Logger) *Accessor {
	if key == "" {
		key = DefaultKey
	}
	return &Accessor{store: store, key: key, log: logger.Ensure(log)}
}

// Get returns the cached token, falling back to the store on a cache miss.
func (a *Accessor) Get() string {
	a.mu.RLock()
	token := a.cached
	a.mu.RUnlock()
	if token != "" {
		return token
	}

	token = readToken(a.store, a.key, a.log)
	if token == "" {
		return ""
	}

	a.mu.Lock()
	a.cached = token
	a.mu.Unlock()
	return token
}

// Token implements Source.
func (a *Accessor) Token() string { return a.Get() }

// Clear empties the cache. The persistent store is cleared by its owner.
func (a *Accessor) Clear() {
	a.mu.Lock()
	a.cached = ""
	a.mu.Unlock()
}

// StoreSource reads the token straight from the store on every call.
type StoreSource struct {
	Store Reader
	Key   string
	Log   logger.Logger
}

// Token implements Source.
func (s StoreSource) Token() string {
	key := s.Key
	if key == "" {
		key = DefaultKey
	}
	return readToken(s.Store, key, logger.Ensure(s.Log))
}

func readToken(store Reader, key string, log logger.Logger) string {
	if store == nil {
		return ""
	}
	token, err := store.Get(key)
	if err != nil {
		log.WarnObj("credential store read failed", "credential_error", map[string]any{
			"key":   key,
			"error": err.Error(),
		})
		return ""
	}
	return token
}
