package query

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"

	"github.com/trezcool/markaz/core"
)

// DefaultGCTime is how long an unused session cache is kept.
const DefaultGCTime = 10 * time.Minute

// Registry keeps one Client per session token.
type Registry struct {
	opts []Option
	now  func() time.Time

	mu      sync.Mutex
	clients map[string]*Client
}

func NewRegistry(opts ...Option) *Registry {
	return &Registry{
		opts:    opts,
		now:     NewClient(opts...).now, // same clock as the clients
		clients: make(map[string]*Client),
	}
}

// tokens never sit in memory as map keys
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// Client returns the session's cache, creating it on first use.
func (r *Registry) Client(token string) *Client {
	key := hashToken(token)

	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.clients[key]
	if !ok {
		c = NewClient(r.opts...)
		r.clients[key] = c
		sessionGauge.Add(context.Background(), 1)
	}
	return c
}

// Remove drops the session's cache (logout).
func (r *Registry) Remove(token string) {
	key := hashToken(token)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.clients[key]; ok {
		delete(r.clients, key)
		sessionGauge.Add(context.Background(), -1)
	}
}

// Sweep drops the caches unused for longer than idle and returns how many went.
func (r *Registry) Sweep(idle time.Duration) int {
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()
	var n int
	for key, c := range r.clients {
		if now.Sub(c.LastUsed()) > idle {
			delete(r.clients, key)
			n++
		}
	}
	if n > 0 {
		sessionGauge.Add(context.Background(), int64(-n))
	}
	return n
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}

// StartJanitor sweeps idle caches on schedule (cron expression, e.g. "@every 1m").
// The returned func stops it and waits for a running sweep.
func (r *Registry) StartJanitor(schedule string, idle time.Duration, logger core.Logger) (func(), error) {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	_, err := c.AddFunc(schedule, func() {
		if n := r.Sweep(idle); n > 0 {
			logger.Debug(fmt.Sprintf("query: dropped %d idle session caches", n))
		}
	})
	if err != nil {
		return nil, errors.Wrapf(err, "scheduling cache janitor %q", schedule)
	}
	c.Start()
	return func() { <-c.Stop().Done() }, nil
}
