package stock

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
)

// Provider resolves the index value for a date and cell, cache first
// and network second. A single-slot semaphore serializes the whole
// cache-read -> fetch -> cache-write sequence, so at most one
// acquisition touches the store or the network at a time and the same
// date is never fetched twice.
type Provider struct {
	fetcher Fetcher
	store   Store
	logger  *slog.Logger

	// sem is the global critical section. Held for the full span of
	// one acquisition, released on every exit path.
	sem *semaphore.Weighted
}

// NewProvider creates a Provider. A nil logger falls back to
// slog.Default.
func NewProvider(f Fetcher, s Store, logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{
		fetcher: f,
		store:   s,
		logger:  logger,
		sem:     semaphore.NewWeighted(1),
	}
}

// Request is the handle for one acquisition. It is returned immediately
// by Acquire while the work runs on its own goroutine.
type Request struct {
	id   string
	date Date // as requested, unadjusted
	key  Date // effective date after the 30W rule

	status atomic.Int32

	// cancel aborts the network transport of this request only. It
	// does not release the provider's critical section early.
	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	handler   Handler
	delivered bool

	done chan struct{}
}

// ID is the unique id of this request, used in logs.
func (r *Request) ID() string { return r.id }

// Date is the originally requested date, before the 30W adjustment.
func (r *Request) Date() Date { return r.date }

// EffectiveDate is the date used for cache and fetch.
func (r *Request) EffectiveDate() Date { return r.key }

// Status returns the current status. Safe from any goroutine, including
// after the original caller is gone and a new one re-attached via
// ChangeHandler.
func (r *Request) Status() Status { return Status(r.status.Load()) }

// Done is closed once the result has been delivered.
func (r *Request) Done() <-chan struct{} { return r.done }

// Abort cancels the outstanding network call, if any. Idempotent;
// aborting a finished request or aborting twice has no effect.
func (r *Request) Abort() { r.cancel() }

// ChangeHandler swaps where the result will be delivered. Once the
// result has been delivered a swap has no further effect; check
// Status in that case.
func (r *Request) ChangeHandler(h Handler) {
	r.mu.Lock()
	r.handler = h
	r.mu.Unlock()
}

func (r *Request) setStatus(s Status) { r.status.Store(int32(s)) }

// deliver invokes the handler exactly once.
func (r *Request) deliver(res Result) {
	r.mu.Lock()
	if r.delivered {
		r.mu.Unlock()
		return
	}
	r.delivered = true
	h := r.handler
	r.mu.Unlock()
	if h != nil {
		h.HandleStockResult(r, res)
	}
}

// Acquire starts one acquisition for date and cell and returns its
// handle immediately. The handler is invoked exactly once with the
// outcome. On a network success the record is stored before the
// handler fires, so later requests for the same effective date are
// cache hits.
func (p *Provider) Acquire(date Date, cell Cell, h Handler) *Request {
	ctx, cancel := context.WithCancel(context.Background())
	req := &Request{
		id:      uuid.NewString(),
		date:    date,
		key:     EffectiveDate(date, cell),
		ctx:     ctx,
		cancel:  cancel,
		handler: h,
		done:    make(chan struct{}),
	}
	go p.run(req)
	return req
}

func (p *Provider) run(req *Request) {
	defer close(req.done)
	defer req.cancel()

	// Block until the critical section is free. Abort only affects the
	// network transport, so waiting here is not interruptible.
	if err := p.sem.Acquire(context.Background(), 1); err != nil {
		req.setStatus(StatusServerError)
		req.deliver(Result{Status: StatusServerError})
		return
	}
	defer p.sem.Release(1)

	logger := p.logger.With("request_id", req.id, "date", req.key.String())

	rec, err := p.store.Get(req.ctx, req.key)
	if err != nil {
		logger.Warn("cache read failed, falling through to fetch", "error", err)
	}
	if rec != nil {
		req.setStatus(StatusSuccess)
		req.deliver(Result{Status: StatusSuccess, Record: rec})
		return
	}

	req.setStatus(StatusBusy)
	value, err := p.fetcher.FetchValue(req.ctx, req.key)

	// Abort is checked before the fetch result is consumed; an aborted
	// transport yields nothing trustworthy.
	if req.ctx.Err() != nil {
		req.setStatus(StatusAborted)
		req.deliver(Result{Status: StatusAborted})
		return
	}

	switch {
	case errors.Is(err, ErrNotPosted):
		req.setStatus(StatusNotPosted)
		req.deliver(Result{Status: StatusNotPosted})
		return
	case err != nil:
		// Transport failures, non-404 error statuses and unparseable
		// bodies all land here.
		logger.Warn("stock fetch failed", "error", err)
		req.setStatus(StatusServerError)
		req.deliver(Result{Status: StatusServerError})
		return
	}

	stored := Record{Date: req.key, Value: value}
	if err := p.store.Put(req.ctx, stored); err != nil {
		// The value itself is good; a cache write failure only costs a
		// re-fetch next time.
		logger.Warn("cache write failed", "error", err)
	}
	req.setStatus(StatusSuccess)
	req.deliver(Result{Status: StatusSuccess, Record: &stored})
}

// HasStored reports whether the value for date and cell can be answered
// from the cache alone. Never touches the network.
func (p *Provider) HasStored(ctx context.Context, date Date, cell Cell) (bool, error) {
	rec, err := p.store.Get(ctx, EffectiveDate(date, cell))
	if err != nil {
		return false, err
	}
	return rec != nil, nil
}

// GetStored returns the cached record for date and cell, or (nil, nil)
// when it is not cached. Never touches the network.
func (p *Provider) GetStored(ctx context.Context, date Date, cell Cell) (*Record, error) {
	return p.store.Get(ctx, EffectiveDate(date, cell))
}

// Resolve is a synchronous convenience around Acquire: it waits for the
// result, aborting the request if ctx is canceled first. The returned
// Status is the request's terminal status.
func (p *Provider) Resolve(ctx context.Context, date Date, cell Cell) (*Record, Status, error) {
	ch := make(chan Result, 1)
	req := p.Acquire(date, cell, HandlerFunc(func(_ *Request, res Result) {
		ch <- res
	}))
	select {
	case res := <-ch:
		return res.Record, res.Status, nil
	case <-ctx.Done():
		req.Abort()
		// The worker still delivers a terminal result after the abort.
		res := <-ch
		return res.Record, res.Status, ctx.Err()
	}
}
