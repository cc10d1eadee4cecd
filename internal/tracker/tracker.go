// Package tracker watches a stream of position fixes and reports how
// far each one is from the day's hashpoint.
package tracker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"geohashd/internal/geo"
)

// Point is a position fix.
type Point struct {
	Latitude  float64
	Longitude float64
}

// LocationSource provides the current position. Current blocks until a
// fix is available; it returns io.EOF when the source is exhausted.
type LocationSource interface {
	Current(ctx context.Context) (Point, error)
}

// Update is one distance report.
type Update struct {
	Point          Point
	DistanceMeters float64
	// Arrived is set when the fix is inside the arrival radius.
	Arrived bool
}

// UpdateHandler receives distance updates as fixes arrive.
type UpdateHandler interface {
	HandleUpdate(u Update)
}

// UpdateHandlerFunc is a function adapter for UpdateHandler.
type UpdateHandlerFunc func(Update)

func (f UpdateHandlerFunc) HandleUpdate(u Update) { f(u) }

// Config holds tracker configuration.
type Config struct {
	Interval            time.Duration // pause between fixes; 0 polls continuously
	ArrivalRadiusMeters float64       // default: 30
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Interval:            30 * time.Second,
		ArrivalRadiusMeters: 30,
	}
}

// Tracker polls a LocationSource and hands each fix's distance to the
// target hashpoint to the handler.
type Tracker struct {
	cfg     Config
	target  geo.Info
	source  LocationSource
	handler UpdateHandler
	logger  *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a new Tracker.
func New(cfg Config, target geo.Info, source LocationSource, handler UpdateHandler, logger *slog.Logger) *Tracker {
	if cfg.ArrivalRadiusMeters <= 0 {
		cfg.ArrivalRadiusMeters = DefaultConfig().ArrivalRadiusMeters
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{
		cfg:     cfg,
		target:  target,
		source:  source,
		handler: handler,
		logger:  logger,
	}
}

// Start begins consuming fixes.
func (t *Tracker) Start(ctx context.Context) error {
	t.ctx, t.cancel = context.WithCancel(ctx)

	t.wg.Add(1)
	go t.run()

	t.logger.Info("tracker started",
		"date", t.target.Date.String(),
		"graticule", t.target.Graticule.String(),
		"target_lat", t.target.Latitude,
		"target_lon", t.target.Longitude,
	)
	return nil
}

// Wait blocks until the loop exits on its own, which happens when the
// source reports io.EOF.
func (t *Tracker) Wait() {
	t.wg.Wait()
}

// Stop shuts the tracker down and waits for the loop to drain, or for
// ctx to expire.
func (t *Tracker) Stop(ctx context.Context) error {
	if t.cancel != nil {
		t.cancel()
	}

	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *Tracker) run() {
	defer t.wg.Done()

	for {
		point, err := t.source.Current(t.ctx)
		if err != nil {
			if errors.Is(err, io.EOF) || t.ctx.Err() != nil {
				t.logger.Info("tracker stopping", "reason", err)
				return
			}
			t.logger.Warn("location fix failed", "error", err)
		} else {
			t.report(point)
		}

		if t.cfg.Interval > 0 {
			select {
			case <-t.ctx.Done():
				return
			case <-time.After(t.cfg.Interval):
			}
		} else if t.ctx.Err() != nil {
			return
		}
	}
}

func (t *Tracker) report(p Point) {
	dist := t.target.DistanceTo(p.Latitude, p.Longitude)
	u := Update{
		Point:          p,
		DistanceMeters: dist,
		Arrived:        dist <= t.cfg.ArrivalRadiusMeters,
	}
	t.logger.Debug("distance update",
		"lat", p.Latitude,
		"lon", p.Longitude,
		"distance_m", dist,
		"arrived", u.Arrived,
	)
	if t.handler != nil {
		t.handler.HandleUpdate(u)
	}
}
