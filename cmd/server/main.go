package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"geohashd/internal/config"
	"geohashd/internal/geo"
	"geohashd/internal/httpx"
	"geohashd/internal/ratelimit"
	"geohashd/internal/stock"
	"geohashd/internal/stock/peeron"
	"geohashd/internal/stock/sqlitestore"
)

// resolver is the slice of stock.Provider the handlers need.
type resolver interface {
	Resolve(ctx context.Context, date stock.Date, cell stock.Cell) (*stock.Record, stock.Status, error)
}

type stockResponse struct {
	Date          string `json:"date"`
	EffectiveDate string `json:"effective_date"`
	Status        string `json:"status"`
	Value         string `json:"value,omitempty"`
}

type hashpointResponse struct {
	Date      string  `json:"date"`
	Graticule string  `json:"graticule"`
	Status    string  `json:"status"`
	Stock     string  `json:"stock,omitempty"`
	Latitude  float64 `json:"latitude,omitempty"`
	Longitude float64 `json:"longitude,omitempty"`
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	store, err := sqlitestore.Open(cfg.CachePath)
	if err != nil {
		log.Fatalf("cache: %v", err)
	}
	defer store.Close()

	httpClient := httpx.New(cfg.RequestTimeout())
	client, err := peeron.NewClient(
		peeron.WithBaseURL(cfg.StockBaseURL),
		peeron.WithHTTPClient(httpClient),
	)
	if err != nil {
		log.Fatalf("stock client: %v", err)
	}

	var fetcher stock.Fetcher = client
	if cfg.MaxFetchesPerMinute > 0 {
		rate := float64(cfg.MaxFetchesPerMinute) / 60.0
		burst := cfg.FetchBurst
		if burst <= 0 {
			burst = 1
		}
		fetcher = &ratelimit.TokenBucketFetcher{F: fetcher, TB: ratelimit.NewTokenBucket(rate, burst)}
	} else if cfg.MinFetchIntervalSec > 0 {
		fetcher = &ratelimit.MinInterval{F: fetcher, Interval: time.Duration(cfg.MinFetchIntervalSec) * time.Second}
	}

	provider := stock.NewProvider(fetcher, store, nil)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/api/stock", func(w http.ResponseWriter, r *http.Request) {
		handleStock(w, r, provider)
	})
	mux.HandleFunc("/api/hashpoint", func(w http.ResponseWriter, r *http.Request) {
		handleHashpoint(w, r, provider)
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           withJSONHeaders(recoverPanic(mux)),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("server listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server: %v", err)
		}
	}()

	// graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

// parseTarget pulls date/lat/lon out of the query string.
func parseTarget(r *http.Request) (stock.Date, geo.Graticule, error) {
	q := r.URL.Query()

	dateStr := q.Get("date")
	if dateStr == "" {
		dateStr = time.Now().Format("2006-01-02")
	}
	date, err := stock.ParseDate(dateStr)
	if err != nil {
		return stock.Date{}, geo.Graticule{}, err
	}

	lat, err := strconv.ParseFloat(q.Get("lat"), 64)
	if err != nil {
		return stock.Date{}, geo.Graticule{}, err
	}
	lon, err := strconv.ParseFloat(q.Get("lon"), 64)
	if err != nil {
		return stock.Date{}, geo.Graticule{}, err
	}
	grat, err := geo.GraticuleAt(lat, lon)
	if err != nil {
		return stock.Date{}, geo.Graticule{}, err
	}
	return date, grat, nil
}

func statusCode(s stock.Status) int {
	switch s {
	case stock.StatusSuccess:
		return http.StatusOK
	case stock.StatusNotPosted:
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}

func handleStock(w http.ResponseWriter, r *http.Request, p resolver) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	date, grat, err := parseTarget(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 20*time.Second)
	defer cancel()
	rec, status, _ := p.Resolve(ctx, date, grat)

	resp := stockResponse{
		Date:          date.String(),
		EffectiveDate: stock.EffectiveDate(date, grat).String(),
		Status:        status.String(),
	}
	if rec != nil {
		resp.Value = rec.Value
	}
	writeJSON(w, statusCode(status), resp)
}

func handleHashpoint(w http.ResponseWriter, r *http.Request, p resolver) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	date, grat, err := parseTarget(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 20*time.Second)
	defer cancel()
	rec, status, _ := p.Resolve(ctx, date, grat)

	resp := hashpointResponse{
		Date:      date.String(),
		Graticule: grat.String(),
		Status:    status.String(),
	}
	if status == stock.StatusSuccess && rec != nil {
		info := geo.MakeInfo(grat, date, rec.Value)
		resp.Stock = info.Stock
		resp.Latitude = info.Latitude
		resp.Longitude = info.Longitude
	}
	writeJSON(w, statusCode(status), resp)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.WriteHeader(code)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func withJSONHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// recoverPanic protects handlers from panics.
func recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
