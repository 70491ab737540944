// Package query is the per-session cache in front of the backend resources.
//
// Every key goes through idle → loading → fresh | error, and fresh → stale on invalidation.
// Reads of a fresh key inside the stale time are served from memory; concurrent reads of a
// loading key share one fetch. Mutations never touch cached data: on success they mark
// the keys they affect as stale so the next read fetches again.
package query

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Status of a cache entry.
type Status int

const (
	Idle Status = iota
	Loading
	Fresh
	Stale
	Error
)

var statusNames = [...]string{"idle", "loading", "fresh", "stale", "error"}

func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return "status(" + strconv.Itoa(int(s)) + ")"
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// KeySep separates the levels of a hierarchical key ("courses:frozen").
const KeySep = ":"

// DefaultStaleTime is how long fetched data is served without a refetch.
const DefaultStaleTime = 5 * time.Minute

type (
	// Entry is a snapshot of one cache key.
	Entry struct {
		Key       string      `json:"key"`
		Data      interface{} `json:"-"`
		Err       error       `json:"-"`
		UpdatedAt time.Time   `json:"updated_at"`
		Status    Status      `json:"status"`
	}

	// Mutation describes a write: its kind and the keys it leaves stale.
	Mutation struct {
		Name    string
		Affects []string
	}

	FetchFunc func(ctx context.Context) (interface{}, error)

	entry struct {
		data      interface{}
		err       error
		updatedAt time.Time
		status    Status
		gen       uint64 // bumped on every invalidation
		dataGen   uint64 // gen the stored data was fetched under
	}

	Option func(*Client)

	// Client is the cache of one session. It is safe for concurrent use.
	Client struct {
		staleTime time.Duration
		now       func() time.Time

		mu       sync.Mutex
		entries  map[string]*entry
		pending  map[string]int
		lastUsed time.Time

		flight singleflight.Group
	}
)

// WithStaleTime sets how long fetched data stays fresh.
func WithStaleTime(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.staleTime = d
		}
	}
}

// WithClock replaces time.Now (tests).
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		staleTime: DefaultStaleTime,
		now:       time.Now,
		entries:   make(map[string]*entry),
		pending:   make(map[string]int),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.lastUsed = c.now()
	return c
}

// lookup returns the entry for key, creating it idle. c.mu must be held.
func (c *Client) lookup(key string) *entry {
	e, ok := c.entries[key]
	if !ok {
		e = &entry{status: Idle}
		c.entries[key] = e
	}
	return e
}

// Fetch returns the data cached under key, loading it with fn when missing, stale or expired.
// A caller whose ctx ends gets ctx.Err() at once; the shared load carries on for the other
// callers and still lands in the cache.
func (c *Client) Fetch(ctx context.Context, key string, fn FetchFunc) (interface{}, error) {
	c.mu.Lock()
	c.lastUsed = c.now()
	e := c.lookup(key)
	if e.status == Fresh && c.now().Sub(e.updatedAt) < c.staleTime {
		data := e.data
		c.mu.Unlock()
		recordHit(ctx, key)
		return data, nil
	}
	gen := e.gen
	e.status = Loading
	c.mu.Unlock()
	recordMiss(ctx, key)

	// readers issued after an invalidation never join a pre-invalidation load
	ch := c.flight.DoChan(key+"#"+strconv.FormatUint(gen, 10), func() (interface{}, error) {
		data, err := fn(context.WithoutCancel(ctx))
		c.store(key, gen, data, err)
		if err != nil {
			recordFailure(ctx, key)
		}
		return data, err
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		return res.Val, res.Err
	}
}

// store lands the result of a load started under gen.
func (c *Client) store(key string, gen uint64, data interface{}, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.lookup(key)
	superseded := gen != e.gen
	if err != nil {
		// last good data stays
		e.err = err
		if superseded {
			e.status = Stale
		} else {
			e.status = Error
		}
		return
	}
	if superseded && e.dataGen > gen {
		return // a newer load already landed
	}
	e.data = data
	e.err = nil
	e.dataGen = gen
	e.updatedAt = c.now()
	if superseded {
		e.status = Stale
	} else {
		e.status = Fresh
	}
}

// Invalidate marks every key equal to or below one of prefixes as stale.
func (c *Client) Invalidate(ctx context.Context, prefixes ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, e := range c.entries {
		if !matchesAny(key, prefixes) {
			continue
		}
		e.gen++
		if e.status != Idle {
			e.status = Stale
		}
		recordInvalidation(ctx, key)
	}
}

func matchesAny(key string, prefixes []string) bool {
	for _, p := range prefixes {
		if key == p || strings.HasPrefix(key, p+KeySep) {
			return true
		}
	}
	return false
}

// Mutate runs fn and, on success only, invalidates m.Affects.
func (c *Client) Mutate(ctx context.Context, m Mutation, fn func(ctx context.Context) error) error {
	c.mu.Lock()
	c.lastUsed = c.now()
	c.pending[m.Name]++
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		if c.pending[m.Name]--; c.pending[m.Name] <= 0 {
			delete(c.pending, m.Name)
		}
		c.mu.Unlock()
	}()

	if err := fn(ctx); err != nil {
		return err
	}
	c.Invalidate(ctx, m.Affects...)
	return nil
}

// Pending reports whether a mutation named name is running. Screens use it to disable
// their controls; concurrent mutations are not prevented.
func (c *Client) Pending(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending[name] > 0
}

// Peek returns a snapshot of key without loading it.
func (c *Client) Peek(key string) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return Entry{Key: key, Status: Idle}, false
	}
	return e.snapshot(key), true
}

// Snapshot returns every known key, sorted.
func (c *Client) Snapshot() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Entry, 0, len(c.entries))
	for key, e := range c.entries {
		out = append(out, e.snapshot(key))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// LastUsed is when the client last served a read or a write.
func (c *Client) LastUsed() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastUsed
}

func (e *entry) snapshot(key string) Entry {
	return Entry{Key: key, Data: e.data, Err: e.err, UpdatedAt: e.updatedAt, Status: e.status}
}

// Query is the typed form of Client.Fetch. A nil client loads without caching.
func Query[T any](ctx context.Context, c *Client, key string, fn func(ctx context.Context) (T, error)) (T, error) {
	if c == nil {
		return fn(ctx)
	}
	data, err := c.Fetch(ctx, key, func(ctx context.Context) (interface{}, error) {
		return fn(ctx)
	})
	var zero T
	if err != nil {
		return zero, err
	}
	typed, ok := data.(T)
	if !ok {
		return zero, nil
	}
	return typed, nil
}

// Exec is the typed form of Client.Mutate. A nil client runs fn without invalidating anything.
func Exec[T any](ctx context.Context, c *Client, m Mutation, fn func(ctx context.Context) (T, error)) (T, error) {
	var res T
	if c == nil {
		return fn(ctx)
	}
	err := c.Mutate(ctx, m, func(ctx context.Context) error {
		var err error
		res, err = fn(ctx)
		return err
	})
	return res, err
}

type ctxKey struct{}

// NewContext returns a copy of ctx carrying c.
func NewContext(ctx context.Context, c *Client) context.Context {
	return context.WithValue(ctx, ctxKey{}, c)
}

// FromContext returns the client carried by ctx, or nil.
func FromContext(ctx context.Context) *Client {
	c, _ := ctx.Value(ctxKey{}).(*Client)
	return c
}
