package gateway

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/htmlgateway/internal/infrastructure/logging"
	"github.com/GriffinCanCode/htmlgateway/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/htmlgateway/internal/markup"
	"github.com/GriffinCanCode/htmlgateway/internal/storage"
)

var (
	// ErrInvalidCount is returned when a page count is missing, non-numeric or not positive.
	ErrInvalidCount = errors.New("invalid number of files")
	// ErrInvalidPattern is returned when a keyword does not compile in pattern mode.
	ErrInvalidPattern = errors.New("invalid keyword pattern")
	// ErrInvalidMode is returned for an unknown replace mode.
	ErrInvalidMode = errors.New("invalid replace mode")
	// ErrClosed is returned by RenameAll once Close has been called.
	ErrClosed = errors.New("gateway is shutting down")
)

// Paths names every file and directory the gateway operates on, relative
// to the storage root.
type Paths struct {
	Index        string
	HTMLDir      string
	HTMLPattern  string // doublestar pattern selecting files to scan in HTMLDir
	Generated    string
	About        string
	AboutRenamed string
	Obsolete     string
}

// DefaultPaths returns the historical fixed file names.
func DefaultPaths() Paths {
	return Paths{
		Index:        "index.html",
		HTMLDir:      "html_files",
		HTMLPattern:  "*.html",
		Generated:    "new_page.html",
		About:        "about.html",
		AboutRenamed: "about1.html",
		Obsolete:     "obsolete_page.html",
	}
}

func (p Paths) withDefaults() Paths {
	d := DefaultPaths()
	fill := func(v *string, def string) {
		if *v == "" {
			*v = def
		}
	}
	fill(&p.Index, d.Index)
	fill(&p.HTMLDir, d.HTMLDir)
	fill(&p.HTMLPattern, d.HTMLPattern)
	fill(&p.Generated, d.Generated)
	fill(&p.About, d.About)
	fill(&p.AboutRenamed, d.AboutRenamed)
	fill(&p.Obsolete, d.Obsolete)
	return p
}

// Config holds gateway behavior settings.
type Config struct {
	Paths        Paths
	ReplaceMode  ReplaceMode
	CountWorkers int
}

// Gateway performs the file operations.
type Gateway struct {
	store    storage.Storage
	counter  markup.Counter
	paths    Paths
	mode     ReplaceMode
	workers  int
	replacer *replacer
	tasks    *taskRegistry

	logger  *logging.Logger
	metrics *monitoring.Metrics
	now     func() time.Time

	// closed is set by Close; RenameAll checks it under mu before
	// adding to running.
	mu      sync.Mutex
	closed  bool
	running sync.WaitGroup
}

// New creates a gateway over store. Zero config values take defaults.
func New(store storage.Storage, counter markup.Counter, cfg Config) (*Gateway, error) {
	if store == nil {
		return nil, errors.New("gateway: storage is required")
	}
	if counter == nil {
		counter = markup.CSSCounter{}
	}

	paths := cfg.Paths.withDefaults()
	if !doublestar.ValidatePattern(paths.HTMLPattern) {
		return nil, fmt.Errorf("gateway: invalid html pattern %q", paths.HTMLPattern)
	}

	mode := cfg.ReplaceMode
	if mode == "" {
		mode = ModePattern
	}
	if _, err := ParseReplaceMode(string(mode)); err != nil {
		return nil, err
	}

	workers := cfg.CountWorkers
	if workers <= 0 {
		workers = 8
	}

	return &Gateway{
		store:    store,
		counter:  counter,
		paths:    paths,
		mode:     mode,
		workers:  workers,
		replacer: newReplacer(),
		tasks:    newTaskRegistry(defaultTaskHistory),
		logger:   logging.NewNop(),
		now:      time.Now,
	}, nil
}

// WithLogger sets the logger
func (g *Gateway) WithLogger(logger *logging.Logger) *Gateway {
	if logger != nil {
		g.logger = logger.Named("gateway")
	}
	return g
}

// WithMetrics sets the metrics collector
func (g *Gateway) WithMetrics(metrics *monitoring.Metrics) *Gateway {
	g.metrics = metrics
	return g
}

// WithClock overrides the time source used for rename suffixes
func (g *Gateway) WithClock(now func() time.Time) *Gateway {
	if now != nil {
		g.now = now
	}
	return g
}

// Paths returns the configured paths
func (g *Gateway) Paths() Paths {
	return g.paths
}

// ReplaceMode returns the default replace mode
func (g *Gateway) ReplaceMode() ReplaceMode {
	return g.mode
}

// Close stops new rename tasks from starting, then waits for running ones
// to finish or ctx to expire.
func (g *Gateway) Close(ctx context.Context) error {
	g.mu.Lock()
	g.closed = true
	g.mu.Unlock()

	done := make(chan struct{})
	go func() {
		g.running.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for rename tasks: %w", ctx.Err())
	}
}

// track registers a background task unless the gateway is closed.
func (g *Gateway) track() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return false
	}
	g.running.Add(1)
	return true
}

func (g *Gateway) timer(op string) *monitoring.Timer {
	return monitoring.NewTimer(g.metrics, op)
}

func (g *Gateway) logFailure(msg, file string, err error) {
	g.logger.Error(msg, zap.String("file", file), zap.Error(err))
}
