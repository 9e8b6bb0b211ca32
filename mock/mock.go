// Package mock provides test doubles for chatlib interfaces using function
// fields.
package mock

import (
	"context"

	"github.com/fwojciec/chatlib"
)

// Interface compliance checks.
var (
	_ chatlib.Persister    = (*Persister)(nil)
	_ chatlib.Answerer     = (*Answerer)(nil)
	_ chatlib.SessionCodec = (*Codec)(nil)
)

// Persister is a test double for chatlib.Persister.
// Set the function fields for the methods you need.
type Persister struct {
	SaveFn func(ctx context.Context, s chatlib.State) error
	LoadFn func(ctx context.Context) (chatlib.State, error)
}

// Save delegates to SaveFn.
func (p *Persister) Save(ctx context.Context, s chatlib.State) error {
	return p.SaveFn(ctx, s)
}

// Load delegates to LoadFn.
func (p *Persister) Load(ctx context.Context) (chatlib.State, error) {
	return p.LoadFn(ctx)
}

// Answerer is a test double for chatlib.Answerer.
// Set AnswerFn before calling Answer.
type Answerer struct {
	AnswerFn func(ctx context.Context, history []chatlib.Message) (chatlib.Reply, error)
}

// Answer delegates to AnswerFn.
func (a *Answerer) Answer(ctx context.Context, history []chatlib.Message) (chatlib.Reply, error) {
	return a.AnswerFn(ctx, history)
}

// Codec is a test double for chatlib.SessionCodec.
type Codec struct {
	EncodeSessionFn func(s chatlib.Session) ([]byte, error)
	DecodeSessionFn func(data []byte) (chatlib.Session, error)
}

// EncodeSession delegates to EncodeSessionFn.
func (c *Codec) EncodeSession(s chatlib.Session) ([]byte, error) {
	return c.EncodeSessionFn(s)
}

// DecodeSession delegates to DecodeSessionFn.
func (c *Codec) DecodeSession(data []byte) (chatlib.Session, error) {
	return c.DecodeSessionFn(data)
}
