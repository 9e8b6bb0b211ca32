package main

import (
	"context"
	"fmt"
	"io"

	"github.com/fwojciec/chatlib"
	"github.com/fwojciec/chatlib/gemini"
	chatjson "github.com/fwojciec/chatlib/json"
	"github.com/fwojciec/chatlib/memory"
	"github.com/fwojciec/chatlib/redis"
	"github.com/fwojciec/chatlib/rest"
	"github.com/patrickmn/go-cache"
)

// newPersister selects the storage backend. The closer releases any
// connection the backend holds.
func newPersister(cfg config) (chatlib.Persister, io.Closer, error) {
	switch cfg.StorageBackend {
	case "file":
		return &chatjson.FileStore{Dir: cfg.StorageDir, Namespace: cfg.Namespace}, io.NopCloser(nil), nil
	case "memory":
		return memory.NewWithCache(cache.New(cache.NoExpiration, 0), cfg.Namespace), io.NopCloser(nil), nil
	case "redis":
		client := redis.NewClient(cfg.RedisAddr)
		return redis.New(client, redis.WithKey(cfg.Namespace)), client, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q: must be \"file\", \"memory\" or \"redis\"", cfg.StorageBackend)
	}
}

// newAnswerer selects the answer backend.
func newAnswerer(ctx context.Context, cfg config) (chatlib.Answerer, error) {
	switch cfg.AnswerBackend {
	case "echo":
		return echoAnswerer{}, nil
	case "rest":
		return rest.New(cfg.AnswerURL, rest.WithAPIKey(cfg.AnswerAPIKey)), nil
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY not set (use CHATLIB_GEMINI_API_KEY, GEMINI_API_KEY or gemini.api_key in the config file)")
		}
		return gemini.New(ctx, cfg.GeminiAPIKey, gemini.WithModel(cfg.GeminiModel), gemini.WithSearchGrounding())
	default:
		return nil, fmt.Errorf("unknown answer backend %q: must be \"echo\", \"rest\" or \"gemini\"", cfg.AnswerBackend)
	}
}

// echoAnswerer replies without a backend, for trying the client offline.
type echoAnswerer struct{}

func (echoAnswerer) Answer(_ context.Context, history []chatlib.Message) (chatlib.Reply, error) {
	q := chatlib.LastUserText(history)
	if q == "" {
		return chatlib.Reply{}, chatlib.ErrEmptyAnswer
	}
	return chatlib.Reply{Text: fmt.Sprintf("No answer backend is configured. You asked:\n\n> %s", q)}, nil
}
