package dataset

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/andresuchdata/procurement-dashboard/internal/domain"
	"github.com/andresuchdata/procurement-dashboard/internal/loader"
	"github.com/rs/zerolog/log"
)

var ErrNotLoaded = errors.New("dataset not loaded")

type Options struct {
	// Year pins the current reporting year. 0 uses the latest year in the data.
	Year int
}

// Info summarizes the loaded table.
type Info struct {
	Source   string        `json:"source"`
	Version  string        `json:"version"`
	Rows     int           `json:"rows"`
	Period   domain.Period `json:"period"`
	LoadedAt time.Time     `json:"loaded_at"`
}

type snapshot struct {
	table    *domain.Table
	period   domain.Period
	loadedAt time.Time
}

// Dataset owns the base order table. The table is read-only once published;
// Reload replaces it with a new snapshot and callers holding the old one
// keep a consistent view.
type Dataset struct {
	reader loader.SheetReader
	opts   Options

	current atomic.Pointer[snapshot]
	once    sync.Once
	loadErr error
	mu      sync.Mutex
}

func New(reader loader.SheetReader, opts Options) *Dataset {
	return &Dataset{reader: reader, opts: opts}
}

// Load reads the table the first time it is called. Later calls return the
// outcome of the first one.
func (d *Dataset) Load(ctx context.Context) error {
	d.once.Do(func() {
		d.loadErr = d.load(ctx)
	})
	return d.loadErr
}

// Reload reads the source again and publishes the new table. On failure the
// previous table stays in place.
func (d *Dataset) Reload(ctx context.Context) error {
	d.once.Do(func() {})
	return d.load(ctx)
}

func (d *Dataset) load(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	table, err := loader.Load(ctx, d.reader)
	if err != nil {
		return err
	}

	s := &snapshot{table: table, period: d.periodFor(table), loadedAt: time.Now().UTC()}
	previous := d.current.Swap(s)

	event := log.Info().
		Str("version", table.Version).
		Int("rows", table.Len()).
		Str("period", s.period.String())
	if previous != nil {
		event = event.Str("previous_version", previous.table.Version)
	}
	event.Msg("dataset: table published")
	return nil
}

func (d *Dataset) periodFor(t *domain.Table) domain.Period {
	if d.opts.Year > 0 {
		return domain.NewPeriod(d.opts.Year)
	}
	return domain.NewPeriod(t.MaxYear())
}

// Table returns the current table, or nil before the first load.
func (d *Dataset) Table() *domain.Table {
	if s := d.current.Load(); s != nil {
		return s.table
	}
	return nil
}

// Snapshot returns the table together with its period so both come from
// the same load.
func (d *Dataset) Snapshot() (*domain.Table, domain.Period, error) {
	s := d.current.Load()
	if s == nil {
		return nil, domain.Period{}, ErrNotLoaded
	}
	return s.table, s.period, nil
}

func (d *Dataset) Version() string {
	if t := d.Table(); t != nil {
		return t.Version
	}
	return ""
}

func (d *Dataset) Period() domain.Period {
	if s := d.current.Load(); s != nil {
		return s.period
	}
	return domain.Period{}
}

func (d *Dataset) Info() (Info, error) {
	s := d.current.Load()
	if s == nil {
		return Info{}, ErrNotLoaded
	}
	return Info{
		Source:   d.reader.Name(),
		Version:  s.table.Version,
		Rows:     s.table.Len(),
		Period:   s.period,
		LoadedAt: s.loadedAt,
	}, nil
}
