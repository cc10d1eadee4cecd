package stock

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Date is a calendar date used as the cache and fetch key.
// It is resolved once (including the 30W adjustment) and immutable after that.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf truncates t to its calendar date.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses a date in YYYY-MM-DD form.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("parsing date: %w", err)
	}
	return DateOf(t), nil
}

// AddDays returns the date shifted by n calendar days.
func (d Date) AddDays(n int) Date {
	t := time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
	return DateOf(t.AddDate(0, 0, n))
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Record is the authoritative index value for one date.
// Value is kept as the exact decimal string the source published: the
// hashpoint is computed over the raw text, so float re-formatting would
// corrupt it.
type Record struct {
	Date  Date   `json:"date"`
	Value string `json:"value"`
}

// Cell is the geographic grid cell a value is requested for. Only its
// date-adjustment rule matters here; geo.Graticule is the usual
// implementation.
type Cell interface {
	// Uses30WRule reports whether lookups for this cell use the
	// previous day's value.
	Uses30WRule() bool
}

// EffectiveDate resolves the date actually used for cache lookup, fetch
// and store. Cells under the 30W rule shift back one day.
func EffectiveDate(date Date, cell Cell) Date {
	if cell != nil && cell.Uses30WRule() {
		return date.AddDays(-1)
	}
	return date
}

// Store is a durable date-keyed cache of records. Put is idempotent: a
// second put for a date already stored is a no-op and never overwrites.
type Store interface {
	// Get returns the record for date, or (nil, nil) when absent.
	Get(ctx context.Context, date Date) (*Record, error)
	Put(ctx context.Context, rec Record) error
}

// Fetcher retrieves the raw value for a date from the remote source.
type Fetcher interface {
	FetchValue(ctx context.Context, date Date) (string, error)
}

// Sentinel errors a Fetcher reports; anything else is a server error.
var (
	// ErrNotPosted means the source has no value for that date yet.
	ErrNotPosted = errors.New("stock value not posted yet")
	// ErrBadData means the source answered but the body was not a decimal.
	ErrBadData = errors.New("unparseable stock data")
)

// Status is the lifecycle state of one acquisition. It only moves
// forward: Idle -> Busy -> terminal, or Idle -> Success on a cache hit.
type Status int32

const (
	StatusIdle Status = iota
	StatusBusy
	StatusSuccess
	StatusNotPosted
	StatusServerError
	StatusAborted
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusBusy:
		return "busy"
	case StatusSuccess:
		return "success"
	case StatusNotPosted:
		return "not_posted"
	case StatusServerError:
		return "server_error"
	case StatusAborted:
		return "aborted"
	default:
		return fmt.Sprintf("status(%d)", int32(s))
	}
}

// Terminal reports whether no further transitions can happen.
func (s Status) Terminal() bool {
	return s != StatusIdle && s != StatusBusy
}

// Result is what a Handler receives, exactly once per request.
// Record is nil unless Status is StatusSuccess.
type Result struct {
	Status Status
	Record *Record
}

// Handler receives the outcome of an acquisition. It is invoked from
// the request's worker goroutine; hand off to a channel to consume the
// result elsewhere.
type Handler interface {
	HandleStockResult(req *Request, res Result)
}

// HandlerFunc is a function adapter for Handler.
type HandlerFunc func(req *Request, res Result)

func (f HandlerFunc) HandleStockResult(req *Request, res Result) { f(req, res) }
