package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"geohashd/internal/config"
	"geohashd/internal/geo"
	"geohashd/internal/httpx"
	"geohashd/internal/ratelimit"
	"geohashd/internal/stock"
	"geohashd/internal/stock/peeron"
	"geohashd/internal/stock/sqlitestore"
)

type output struct {
	Date          string  `json:"date"`
	EffectiveDate string  `json:"effective_date"`
	Graticule     string  `json:"graticule"`
	Status        string  `json:"status"`
	Stock         string  `json:"stock,omitempty"`
	Latitude      float64 `json:"latitude,omitempty"`
	Longitude     float64 `json:"longitude,omitempty"`
}

func main() {
	var dateStr string
	var lat, lon float64
	var timeout int

	flag.StringVar(&dateStr, "date", getenv("DATE", time.Now().Format("2006-01-02")), "adventure date (YYYY-MM-DD)")
	flag.Float64Var(&lat, "lat", 0, "latitude inside the graticule")
	flag.Float64Var(&lon, "lon", 0, "longitude inside the graticule")
	flag.IntVar(&timeout, "timeout", 0, "request timeout seconds (overrides config)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if timeout > 0 {
		cfg.RequestTimeoutSec = timeout
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

	provider, err := buildProvider(cfg, store)
	if err != nil {
		log.Fatalf("provider: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout())
	defer cancel()

	rec, status, err := provider.Resolve(ctx, date, grat)
	if err != nil {
		log.Printf("resolve: %v", err)
	}

	out := output{
		Date:          date.String(),
		EffectiveDate: stock.EffectiveDate(date, grat).String(),
		Graticule:     grat.String(),
		Status:        status.String(),
	}
	if status == stock.StatusSuccess {
		info := geo.MakeInfo(grat, date, rec.Value)
		out.Stock = info.Stock
		out.Latitude = info.Latitude
		out.Longitude = info.Longitude
	}

	b, _ := json.MarshalIndent(out, "", "  ")
	fmt.Println(string(b))
	if status != stock.StatusSuccess {
		os.Exit(1)
	}
}

// buildProvider wires the mirror client, pacing and cache into a
// stock.Provider per the loaded config.
func buildProvider(cfg *config.Config, store stock.Store) (*stock.Provider, error) {
	httpClient := httpx.New(cfg.RequestTimeout())
	client, err := peeron.NewClient(
		peeron.WithBaseURL(cfg.StockBaseURL),
		peeron.WithHTTPClient(httpClient),
	)
	if err != nil {
		return nil, err
	}

	var fetcher stock.Fetcher = client
	// Prefer token bucket with burst if a per-minute cap is set,
	// otherwise use min-interval.
	if cfg.MaxFetchesPerMinute > 0 {
		rate := float64(cfg.MaxFetchesPerMinute) / 60.0
		burst := cfg.FetchBurst
		if burst <= 0 {
			burst = 1
		}
		fetcher = &ratelimit.TokenBucketFetcher{F: fetcher, TB: ratelimit.NewTokenBucket(rate, burst)}
	} else if cfg.MinFetchIntervalSec > 0 {
		interval := time.Duration(cfg.MinFetchIntervalSec) * time.Second
		fetcher = &ratelimit.MinInterval{F: fetcher, Interval: interval}
	}

	return stock.NewProvider(fetcher, store, nil), nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
