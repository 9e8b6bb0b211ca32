// Package redis implements a [chatlib.Persister] that keeps the encoded
// store state under a single Redis key. It is a storage backend only: one
// writer, no merging.
package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/fwojciec/chatlib"
	chatjson "github.com/fwojciec/chatlib/json"
	goredis "github.com/redis/go-redis/v9"
)

// Interface compliance check.
var _ chatlib.Persister = (*Persister)(nil)

// Persister stores the state at Key.
type Persister struct {
	client goredis.Cmdable
	key    string
}

// Option configures a [Persister].
type Option func(*Persister)

// WithKey sets the Redis key. Default is chatlib.DefaultNamespace.
func WithKey(key string) Option {
	return func(p *Persister) { p.key = key }
}

// New returns a Persister using client.
func New(client goredis.Cmdable, opts ...Option) *Persister {
	p := &Persister{client: client, key: chatlib.DefaultNamespace}
	for _, o := range opts {
		o(p)
	}
	return p
}

// NewClient builds a client from a redis:// URL, falling back to treating
// addr as a plain host:port.
func NewClient(addr string) *goredis.Client {
	opt, err := goredis.ParseURL(addr)
	if err != nil {
		opt = &goredis.Options{Addr: addr}
	}
	return goredis.NewClient(opt)
}

// Save encodes and stores the state without expiry.
func (p *Persister) Save(ctx context.Context, s chatlib.State) error {
	data, err := chatjson.MarshalState(s)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if err := p.client.Set(ctx, p.key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", p.key, err)
	}
	return nil
}

// Load returns the stored state, or the empty state if the key is absent.
func (p *Persister) Load(ctx context.Context) (chatlib.State, error) {
	data, err := p.client.Get(ctx, p.key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return chatlib.State{}, nil
	}
	if err != nil {
		return chatlib.State{}, fmt.Errorf("redis get %s: %w", p.key, err)
	}
	return chatjson.UnmarshalState(data)
}
