// Package statestore persists a registry aggregate as one versioned blob.
//
// Every mutating call goes through Runner.RunInTx: the whole aggregate is
// loaded once, mutated in memory and written back once with an optimistic
// version check. A failing callback writes nothing, so a failed call leaves
// the persisted state untouched.
package statestore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"soulbound/pkg/platform/sentinel"
)

// Blob is a versioned single-value store. Version 0 means "absent".
type Blob interface {
	Load(ctx context.Context, key string) (data []byte, version uint64, err error)
	// CompareAndSwap stores data if the current version equals version and
	// returns the new version. A mismatch returns sentinel.ErrConflict.
	CompareAndSwap(ctx context.Context, key string, version uint64, data []byte) (uint64, error)
}

// Codec converts an aggregate to and from its persisted form.
type Codec[S any] interface {
	Empty() *S
	Encode(state *S) ([]byte, error)
	Decode(data []byte) (*S, error)
}

type options struct {
	maxRetries int
	logger     *slog.Logger
}

type Option func(*options)

// WithMaxRetries bounds how often a conflicting write is replayed.
func WithMaxRetries(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxRetries = n
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// Runner serializes calls against one aggregate.
type Runner[S any] struct {
	blob  Blob
	key   string
	codec Codec[S]
	opts  options

	mu sync.Mutex
}

func NewRunner[S any](blob Blob, key string, codec Codec[S], opts ...Option) *Runner[S] {
	o := options{maxRetries: 5}
	for _, opt := range opts {
		opt(&o)
	}
	return &Runner[S]{blob: blob, key: key, codec: codec, opts: o}
}

// RunInTx loads the aggregate, runs fn and persists the result. fn may run
// more than once when another process wins the version race, so it must only
// touch the state it is given. Side effects belong after RunInTx returns.
// If fn leaves the encoded state unchanged nothing is written.
func (r *Runner[S]) RunInTx(ctx context.Context, fn func(ctx context.Context, state *S) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		raw, version, state, err := r.load(ctx)
		if err != nil {
			return err
		}
		if err := fn(ctx, state); err != nil {
			return err
		}
		encoded, err := r.codec.Encode(state)
		if err != nil {
			return fmt.Errorf("encode %s: %w", r.key, err)
		}
		if version != 0 && bytes.Equal(raw, encoded) {
			return nil
		}

		_, err = r.blob.CompareAndSwap(ctx, r.key, version, encoded)
		if err == nil {
			return nil
		}
		if !errors.Is(err, sentinel.ErrConflict) || attempt+1 >= r.opts.maxRetries {
			return fmt.Errorf("persist %s: %w", r.key, err)
		}
		if r.opts.logger != nil {
			r.opts.logger.DebugContext(ctx, "state version conflict, retrying",
				"key", r.key,
				"attempt", attempt+1,
			)
		}
	}
}

// View runs fn against a freshly loaded copy. Changes are discarded.
func (r *Runner[S]) View(ctx context.Context, fn func(ctx context.Context, state *S) error) error {
	_, _, state, err := r.load(ctx)
	if err != nil {
		return err
	}
	return fn(ctx, state)
}

// Snapshot returns the persisted bytes as they are now, encoding the empty
// aggregate when nothing has been written yet.
func (r *Runner[S]) Snapshot(ctx context.Context) ([]byte, error) {
	raw, version, state, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	if version != 0 {
		return raw, nil
	}
	return r.codec.Encode(state)
}

func (r *Runner[S]) load(ctx context.Context) ([]byte, uint64, *S, error) {
	raw, version, err := r.blob.Load(ctx, r.key)
	if err != nil {
		return nil, 0, nil, fmt.Errorf("load %s: %w", r.key, err)
	}
	if version == 0 {
		return nil, 0, r.codec.Empty(), nil
	}
	state, err := r.codec.Decode(raw)
	if err != nil {
		return nil, 0, nil, fmt.Errorf("decode %s: %w", r.key, err)
	}
	return raw, version, state, nil
}
