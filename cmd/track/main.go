package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"time"

	"geohashd/internal/config"
	"geohashd/internal/geo"
	"geohashd/internal/httpx"
	"geohashd/internal/stock"
	"geohashd/internal/stock/peeron"
	"geohashd/internal/stock/sqlitestore"
	"geohashd/internal/tracker"
)

// stdinSource turns "lat lon" lines on a reader into position fixes.
type stdinSource struct {
	scanner *bufio.Scanner
}

func (s *stdinSource) Current(ctx context.Context) (tracker.Point, error) {
	for s.scanner.Scan() {
		if ctx.Err() != nil {
			return tracker.Point{}, ctx.Err()
		}
		var p tracker.Point
		if _, err := fmt.Sscanf(s.scanner.Text(), "%f %f", &p.Latitude, &p.Longitude); err != nil {
			return tracker.Point{}, fmt.Errorf("bad fix %q: %w", s.scanner.Text(), err)
		}
		return p, nil
	}
	if err := s.scanner.Err(); err != nil {
		return tracker.Point{}, err
	}
	return tracker.Point{}, io.EOF
}

func main() {
	var dateStr string
	var lat, lon float64

	flag.StringVar(&dateStr, "date", time.Now().Format("2006-01-02"), "adventure date (YYYY-MM-DD)")
	flag.Float64Var(&lat, "lat", 0, "latitude inside the graticule")
	flag.Float64Var(&lon, "lon", 0, "longitude inside the graticule")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	date, err := stock.ParseDate(dateStr)
	if err != nil {
		log.Fatalf("date: %v", err)
	}
	grat, err := geo.GraticuleAt(lat, lon)
	if err != nil {
		log.Fatalf("graticule: %v", err)
	}

	store, err := sqlitestore.Open(cfg.CachePath)
	if err != nil {
		log.Fatalf("cache: %v", err)
	}
	defer store.Close()

	client, err := peeron.NewClient(
		peeron.WithBaseURL(cfg.StockBaseURL),
		peeron.WithHTTPClient(httpx.New(cfg.RequestTimeout())),
	)
	if err != nil {
		log.Fatalf("stock client: %v", err)
	}
	provider := stock.NewProvider(client, store, nil)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout())
	rec, status, err := provider.Resolve(ctx, date, grat)
	cancel()
	if err != nil {
		log.Fatalf("resolve: %v", err)
	}
	if status != stock.StatusSuccess {
		log.Fatalf("no hashpoint for %s: %s", date, status)
	}

	target := geo.MakeInfo(grat, date, rec.Value)
	fmt.Printf("hashpoint %s %s: %.6f, %.6f (stock %s)\n",
		date, grat, target.Latitude, target.Longitude, target.Stock)

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	tr := tracker.New(
		tracker.Config{Interval: cfg.TrackInterval(), ArrivalRadiusMeters: cfg.ArrivalRadiusMeters},
		target,
		&stdinSource{scanner: bufio.NewScanner(os.Stdin)},
		tracker.UpdateHandlerFunc(func(u tracker.Update) {
			if u.Arrived {
				fmt.Printf("%.6f, %.6f -> %.1f m  ARRIVED\n", u.Point.Latitude, u.Point.Longitude, u.DistanceMeters)
				return
			}
			fmt.Printf("%.6f, %.6f -> %.1f m\n", u.Point.Latitude, u.Point.Longitude, u.DistanceMeters)
		}),
		logger,
	)

	runCtx, stop := context.WithCancel(context.Background())
	defer stop()
	if err := tr.Start(runCtx); err != nil {
		log.Fatalf("tracker: %v", err)
	}

	// The source drains stdin; EOF stops the loop on its own.
	tr.Wait()
}
