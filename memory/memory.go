// Package memory implements an in-process [chatlib.Persister] backed by
// go-cache. State is stored encoded, so it goes through the same
// serialization and timestamp rehydration as the durable backends and a
// loaded State never aliases a saved one.
package memory

import (
	"context"
	"fmt"

	"github.com/fwojciec/chatlib"
	chatjson "github.com/fwojciec/chatlib/json"
	"github.com/patrickmn/go-cache"
)

// Interface compliance check.
var _ chatlib.Persister = (*Persister)(nil)

// Persister keeps the store state in memory under a namespace key.
// Entries never expire.
type Persister struct {
	cache     *cache.Cache
	namespace string
}

// New returns a Persister using chatlib.DefaultNamespace.
func New() *Persister {
	return NewWithCache(cache.New(cache.NoExpiration, 0), chatlib.DefaultNamespace)
}

// NewWithCache returns a Persister that shares c with other namespaces,
// for example an authentication store.
func NewWithCache(c *cache.Cache, namespace string) *Persister {
	return &Persister{cache: c, namespace: namespace}
}

// Save encodes and stores the state.
func (p *Persister) Save(_ context.Context, s chatlib.State) error {
	data, err := chatjson.MarshalState(s)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	p.cache.Set(p.namespace, data, cache.NoExpiration)
	return nil
}

// Load returns the stored state, or the empty state if nothing was saved.
func (p *Persister) Load(_ context.Context) (chatlib.State, error) {
	x, found := p.cache.Get(p.namespace)
	if !found {
		return chatlib.State{}, nil
	}
	data, ok := x.([]byte)
	if !ok {
		return chatlib.State{}, fmt.Errorf("namespace %q holds %T, not encoded state", p.namespace, x)
	}
	return chatjson.UnmarshalState(data)
}

// Clear removes the stored state. Other namespaces are untouched.
func (p *Persister) Clear() {
	p.cache.Delete(p.namespace)
}
