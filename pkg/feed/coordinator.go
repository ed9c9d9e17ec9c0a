package feed

import (
	"cmp"
	"context"
	"encoding/json"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/hemicycle/pkg/cache"
	"github.com/matzehuels/hemicycle/pkg/errors"
	"github.com/matzehuels/hemicycle/pkg/frame"
	"github.com/matzehuels/hemicycle/pkg/observability"
	"github.com/matzehuels/hemicycle/pkg/pipeline"
	"github.com/matzehuels/hemicycle/pkg/store"
)

// subscriberBuffer is the number of frames a slow subscriber may fall behind
// before frames are dropped for it.
const subscriberBuffer = 4

// ErrStopped is returned by [Coordinator.Submit] once the coordinator has
// stopped.
var ErrStopped = errors.New(errors.ErrCodeUnsupported, "coordinator stopped")

// Option configures a [Coordinator].
type Option func(*Coordinator)

// WithStore persists every applied update to st.
func WithStore(st store.Store) Option {
	return func(c *Coordinator) { c.store = st }
}

// WithCache publishes the JSON of every new frame to c under the frame key
// of the broadcast.
func WithCache(ch cache.Cache, keyer cache.Keyer) Option {
	return func(c *Coordinator) {
		if keyer == nil {
			keyer = cache.NewDefaultKeyer()
		}
		c.cache, c.keyer = ch, keyer
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(c *Coordinator) { c.logger = l }
}

// WithClock sets the time source used to stamp updates.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

type request struct {
	ctx    context.Context
	source string
	update Update
	reply  chan response
}

type response struct {
	update Update
	frame  frame.Frame
	err    error
}

// Coordinator owns a broadcast and applies updates to it one at a time.
//
// Only the goroutine running [Coordinator.Run] touches the broadcast. Every
// other method is safe for concurrent use.
type Coordinator struct {
	broadcast *pipeline.Broadcast
	store     store.Store
	cache     cache.Cache
	keyer     cache.Keyer
	logger    *log.Logger
	now       func() time.Time

	requests chan request
	done     chan struct{}
	stopOnce sync.Once
	seq      uint64

	current atomic.Pointer[frame.Frame]

	latestMu sync.RWMutex
	latest   map[string]Update

	mu     sync.Mutex
	subs   map[uint64]*subscriber
	nextID uint64
}

// NewCoordinator returns a coordinator for b. Call [Coordinator.Run] to start
// applying updates.
func NewCoordinator(b *pipeline.Broadcast, opts ...Option) *Coordinator {
	c := &Coordinator{
		broadcast: b,
		logger:    log.Default(),
		now:       time.Now,
		requests:  make(chan request),
		done:      make(chan struct{}),
		subs:      make(map[uint64]*subscriber),
		latest:    make(map[string]Update),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("broadcast", b.ID)
	f := b.Frame()
	c.current.Store(&f)
	return c
}

// Broadcast returns the coordinated broadcast. Callers must not modify it
// while the coordinator runs.
func (c *Coordinator) Broadcast() *pipeline.Broadcast { return c.broadcast }

// Restore replays the updates persisted for the broadcast. It must be called
// before [Coordinator.Run]. Stored updates that no longer apply are skipped.
func (c *Coordinator) Restore(ctx context.Context) (int, error) {
	if c.store == nil {
		return 0, nil
	}
	updates, err := c.store.Load(ctx, c.broadcast.ID)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, u := range updates {
		f, err := c.broadcast.Apply(ctx, u)
		if err != nil {
			c.logger.Warn("skipping stored update", "entry", u.Entry, "err", err)
			continue
		}
		c.seq = max(c.seq, u.Seq)
		c.current.Store(&f)
		c.record(u)
		n++
	}
	c.logger.Info("restored results", "updates", n, "seq", c.seq)
	return n, nil
}

// Run applies submitted updates until ctx is done.
func (c *Coordinator) Run(ctx context.Context) error {
	defer c.stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case req := <-c.requests:
			req.reply <- c.apply(req)
		}
	}
}

func (c *Coordinator) stop() {
	c.stopOnce.Do(func() {
		close(c.done)
		c.mu.Lock()
		defer c.mu.Unlock()
		for id, s := range c.subs {
			s.close()
			delete(c.subs, id)
		}
	})
}

func (c *Coordinator) apply(req request) response {
	start := time.Now()
	ctx, u := req.ctx, req.update
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.At.IsZero() {
		u.At = c.now()
	}
	u.Seq = c.seq + 1

	f, err := c.broadcast.Apply(ctx, u)
	if err != nil {
		code := errors.GetCode(err)
		if code == "" {
			code = errors.ErrCodeInternal
		}
		c.logger.Warn("update rejected", "source", req.source, "entry", u.Entry, "err", err)
		observability.Feed().OnRejected(ctx, req.source, string(code))
		return response{update: u, frame: f, err: err}
	}
	c.seq = u.Seq
	c.current.Store(&f)
	c.record(u)

	if c.store != nil {
		if err := c.store.Save(ctx, c.broadcast.ID, u); err != nil {
			c.logger.Error("persist update", "entry", u.Entry, "err", err)
		}
	}
	if c.cache != nil {
		c.publishFrame(ctx, f)
	}
	c.notify(f)

	observability.Feed().OnUpdate(ctx, req.source, u.State().String(), f.Reporting, f.Seats, time.Since(start))
	c.logger.Info("applied result",
		"source", req.source,
		"seq", u.Seq,
		"entry", u.Entry,
		"party", u.Party,
		"state", u.State(),
		"reporting", f.Reporting)
	return response{update: u, frame: f}
}

// record stores u as the latest update of its entry.
func (c *Coordinator) record(u Update) {
	c.latestMu.Lock()
	c.latest[u.Entry] = u
	c.latestMu.Unlock()
}

func (c *Coordinator) publishFrame(ctx context.Context, f frame.Frame) {
	data, err := json.Marshal(f)
	if err != nil {
		c.logger.Error("marshal frame", "err", err)
		return
	}
	key := c.keyer.FrameKey(c.broadcast.ID)
	if err := c.cache.Set(ctx, key, data, cache.TTLFrame); err != nil {
		c.logger.Warn("publish frame", "key", key, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, "frame", len(data))
}

// Submit applies u and returns the update as recorded together with the new
// frame. source names the origin of the update for logs and metrics.
func (c *Coordinator) Submit(ctx context.Context, source string, u Update) (Update, frame.Frame, error) {
	req := request{ctx: ctx, source: source, update: u, reply: make(chan response, 1)}
	select {
	case c.requests <- req:
	case <-ctx.Done():
		return u, c.Frame(), ctx.Err()
	case <-c.done:
		return u, c.Frame(), ErrStopped
	}
	resp := <-req.reply
	return resp.update, resp.frame, resp.err
}

// Feed runs src, submitting its updates until it finishes or ctx is done.
func (c *Coordinator) Feed(ctx context.Context, source string, src Source) error {
	return src.Run(ctx, func(u Update) error {
		_, _, err := c.Submit(ctx, source, u)
		return err
	})
}

// Frame returns the latest frame.
func (c *Coordinator) Frame() frame.Frame { return *c.current.Load() }

// Latest returns the last applied update of an entry. The second value is
// false if the entry has never been updated.
func (c *Coordinator) Latest(entry string) (Update, bool) {
	c.latestMu.RLock()
	defer c.latestMu.RUnlock()
	u, ok := c.latest[entry]
	return u, ok
}

// LatestAll returns the last applied update of every updated entry, ordered
// by sequence number.
func (c *Coordinator) LatestAll() []Update {
	c.latestMu.RLock()
	out := make([]Update, 0, len(c.latest))
	for _, u := range c.latest {
		out = append(out, u)
	}
	c.latestMu.RUnlock()
	slices.SortFunc(out, func(a, b Update) int { return cmp.Compare(a.Seq, b.Seq) })
	return out
}

// Subscribe returns a channel receiving every new frame, starting with the
// current one. Slow subscribers miss frames rather than block updates. The
// channel is closed by the returned function or when the coordinator stops.
func (c *Coordinator) Subscribe() (<-chan frame.Frame, func()) {
	s := &subscriber{ch: make(chan frame.Frame, subscriberBuffer)}

	c.mu.Lock()
	c.nextID++
	id := c.nextID
	select {
	case <-c.done:
		s.close()
	default:
		c.subs[id] = s
		s.trySend(c.Frame())
	}
	c.mu.Unlock()

	return s.ch, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if s, ok := c.subs[id]; ok {
			s.close()
			delete(c.subs, id)
		}
	}
}

func (c *Coordinator) notify(f frame.Frame) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, s := range c.subs {
		s.trySend(f)
	}
}

type subscriber struct {
	ch     chan frame.Frame
	closed bool
}

// trySend sends f without blocking. Callers hold the coordinator lock.
func (s *subscriber) trySend(f frame.Frame) {
	if s.closed {
		return
	}
	select {
	case s.ch <- f:
	default:
	}
}

func (s *subscriber) close() {
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
}
