// Package modellist keeps a cached view of each provider's remote model list.
//
// Results are keyed by (provider, auto-fetch flag). A key starts idle and is
// fetched on first observation only when auto-fetch is on, or when Revalidate
// is called. Concurrent requests for a key share one catalog call. A fetched
// list stays valid until Revalidate or Invalidate; there is no time-based
// expiry. Successful non-nil results are written back to settings together
// with the fetch time.
package modellist

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"llmsettings/pkg/types"
)

// CatalogClient is the only network boundary. A nil slice with a nil error
// means the provider reported nothing.
type CatalogClient interface {
	GetChatModels(ctx context.Context, provider types.ProviderKey) ([]types.ModelCard, error)
}

// ConfigWriter is the settings merge entry point used for write-back.
type ConfigWriter interface {
	SetModelProviderConfig(ctx context.Context, provider types.ProviderKey, patch types.ProviderConfigPatch) error
}

// State is the lifecycle state of one cache key.
type State string

const (
	StateIdle     State = "idle"
	StatePending  State = "pending"
	StateResolved State = "resolved"
	StateFailed   State = "failed"
)

// Key identifies one fetch/cache lifecycle.
type Key struct {
	Provider  types.ProviderKey
	AutoFetch bool
}

func (k Key) String() string { return fmt.Sprintf("%s:%t", k.Provider, k.AutoFetch) }

// Result is what an observer of a key sees.
type Result struct {
	Key   Key
	State State
	// Data is the last successfully fetched list, nil when none.
	Data      []types.ModelCard
	FetchedAt time.Time
	// Err is set when the latest fetch failed, or when the caller stopped
	// waiting for a pending fetch.
	Err error
}

// entry is what the result table stores per key.
type entry struct {
	data      []types.ModelCard
	fetchedAt time.Time
	err       error
}

// Config encapsulates all inputs for Cache construction.
type Config struct {
	Client CatalogClient
	Writer ConfigWriter
	// FetchTimeout bounds a single catalog call. Zero means no bound.
	FetchTimeout time.Duration
	Logger       *zerolog.Logger
	// Now overrides the clock; defaults to time.Now.
	Now func() time.Time
}

// Cache coordinates model list fetches per key.
type Cache struct {
	client       CatalogClient
	writer       ConfigWriter
	fetchTimeout time.Duration
	now          func() time.Time
	log          zerolog.Logger

	group   singleflight.Group
	results *gocache.Cache

	// inflight counts waiters per key; a key is pending while any waiter
	// has an unfinished call.
	mu       sync.Mutex
	inflight map[string]int
}

// New constructs a Cache from cfg.
func New(cfg Config) *Cache {
	c := &Cache{
		client:       cfg.Client,
		writer:       cfg.Writer,
		fetchTimeout: cfg.FetchTimeout,
		now:          cfg.Now,
		log:          zerolog.Nop(),
		results:      gocache.New(gocache.NoExpiration, 0),
		inflight:     make(map[string]int),
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.fetchTimeout < 0 {
		c.fetchTimeout = 0
	}
	if cfg.Logger != nil {
		c.log = cfg.Logger.With().Str("component", "modellist").Logger()
	}
	return c
}

// Fetch observes the key (provider, autoFetch). A resolved or failed key is
// answered from the table without network access. An idle key is fetched
// only when autoFetch is true; otherwise an idle result is returned. A
// pending key is joined rather than fetched again.
//
// If ctx ends before a joined fetch completes, Fetch returns a pending result
// carrying ctx.Err(); the fetch itself keeps running.
func (c *Cache) Fetch(ctx context.Context, provider types.ProviderKey, autoFetch bool) Result {
	key := Key{Provider: provider, AutoFetch: autoFetch}
	if e, ok := c.lookup(key); ok {
		r := e.result(key)
		if c.isInflight(key) {
			r.State = StatePending
		}
		return r
	}
	if !autoFetch && !c.isInflight(key) {
		return Result{Key: key, State: StateIdle}
	}
	return c.wait(ctx, key, false)
}

// Revalidate fetches the key again even if it is resolved or failed. It joins
// a catalog call already in flight for the key instead of starting another,
// but never settles for a call that only read the table.
func (c *Cache) Revalidate(ctx context.Context, provider types.ProviderKey, autoFetch bool) Result {
	return c.wait(ctx, Key{Provider: provider, AutoFetch: autoFetch}, true)
}

// Peek reports the current state of a key without triggering a fetch.
func (c *Cache) Peek(provider types.ProviderKey, autoFetch bool) Result {
	key := Key{Provider: provider, AutoFetch: autoFetch}
	r := Result{Key: key, State: StateIdle}
	if e, ok := c.lookup(key); ok {
		r = e.result(key)
	}
	if c.isInflight(key) {
		r.State = StatePending
	}
	return r
}

// Invalidate drops cached results for both keys of provider. A fetch in
// flight is not affected and stores its result when it completes.
func (c *Cache) Invalidate(provider types.ProviderKey) {
	for _, auto := range []bool{false, true} {
		c.results.Delete(Key{Provider: provider, AutoFetch: auto}.String())
	}
}

// flight is the value shared by one singleflight call.
type flight struct {
	entry entry
	// fetched is false when the call answered from the table.
	fetched bool
}

func (c *Cache) wait(ctx context.Context, key Key, force bool) Result {
	c.acquire(key)
	// The fetch outlives any single caller.
	detached := context.WithoutCancel(ctx)
	for {
		ch := c.group.DoChan(key.String(), func() (any, error) {
			if !force {
				// another caller may have finished this key since our lookup
				if e, ok := c.lookup(key); ok {
					return flight{entry: e}, nil
				}
			}
			return flight{entry: c.load(detached, key), fetched: true}, nil
		})
		select {
		case res := <-ch:
			f := res.Val.(flight)
			if force && !f.fetched {
				// joined a call that only read the table
				continue
			}
			c.release(key)
			if res.Shared {
				sharedTotal.WithLabelValues(string(key.Provider)).Inc()
			}
			return f.entry.result(key)
		case <-ctx.Done():
			go func() {
				<-ch
				c.release(key)
			}()
			r := Result{Key: key, State: StatePending, Err: ctx.Err()}
			if e, ok := c.lookup(key); ok {
				r.Data = slices.Clone(e.data)
				r.FetchedAt = e.fetchedAt
			}
			return r
		}
	}
}

// list performs the catalog call, bounded by the fetch timeout.
func (c *Cache) list(ctx context.Context, provider types.ProviderKey) ([]types.ModelCard, error) {
	if c.fetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.fetchTimeout)
		defer cancel()
	}
	return c.client.GetChatModels(ctx, provider)
}

// load performs one catalog call for key, stores the outcome and writes a
// successful non-nil list back to settings. The write-back runs on ctx, not
// on the fetch deadline.
func (c *Cache) load(ctx context.Context, key Key) entry {
	provider := string(key.Provider)
	began := time.Now()
	data, err := c.list(ctx, key.Provider)
	fetchDuration.WithLabelValues(provider).Observe(time.Since(began).Seconds())

	if err != nil {
		fetchTotal.WithLabelValues(provider, "error").Inc()
		c.log.Warn().Err(err).Str("provider", provider).Bool("auto_fetch", key.AutoFetch).Msg("model list fetch failed")
		// keep the last good list visible next to the error
		prev, _ := c.lookup(key)
		e := entry{data: prev.data, fetchedAt: prev.fetchedAt, err: fetchError{provider: key.Provider, err: err}}
		c.store(key, e)
		return e
	}

	e := entry{data: slices.Clone(data), fetchedAt: c.now()}
	c.store(key, e)
	if data == nil {
		fetchTotal.WithLabelValues(provider, "empty").Inc()
		c.log.Debug().Str("provider", provider).Msg("model list fetch returned no data; settings left unchanged")
		return e
	}

	fetchTotal.WithLabelValues(provider, "ok").Inc()
	cards := slices.Clone(data)
	at := e.fetchedAt
	if c.writer != nil {
		if werr := c.writer.SetModelProviderConfig(ctx, key.Provider, types.ProviderConfigPatch{
			RemoteModelCards: &cards,
			LatestFetchTime:  &at,
		}); werr != nil {
			fetchTotal.WithLabelValues(provider, "writeback_error").Inc()
			c.log.Error().Err(werr).Str("provider", provider).Msg("model list write-back failed")
		}
	}
	c.log.Debug().Str("provider", provider).Int("models", len(data)).Msg("model list fetched")
	return e
}

func (c *Cache) lookup(key Key) (entry, bool) {
	v, ok := c.results.Get(key.String())
	if !ok {
		return entry{}, false
	}
	return v.(entry), true
}

func (c *Cache) store(key Key, e entry) {
	c.results.Set(key.String(), e, gocache.NoExpiration)
}

func (c *Cache) isInflight(key Key) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inflight[key.String()] > 0
}

func (c *Cache) acquire(key Key) {
	c.mu.Lock()
	c.inflight[key.String()]++
	c.mu.Unlock()
}

func (c *Cache) release(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	k := key.String()
	if c.inflight[k]--; c.inflight[k] <= 0 {
		delete(c.inflight, k)
	}
}

func (e entry) result(key Key) Result {
	r := Result{Key: key, State: StateResolved, Data: slices.Clone(e.data), FetchedAt: e.fetchedAt, Err: e.err}
	if e.err != nil {
		r.State = StateFailed
	}
	return r
}
