package roadnet

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	// How many nodes to keep in memory before flushing to storage
	DEFAULT_FLUSH_THRESHOLD = 300_000
	// How many indices ahead to look for near nodes.
	// Nodes more distant on the way than this will not be collapsed even when close
	DEFAULT_COLLAPSE_WINDOW = 5
	// Edge buffer bound relative to node flush threshold (used when no explicit edge threshold is set)
	DEFAULT_EDGES_PER_NODE = 4

	progressInterval = time.Minute
)

// Extractor drives the single pass over a way stream: classification, accumulation,
// optional collapsing, final flush and canonicalization.
type Extractor struct {
	storage            Storage
	modes              []Mode
	collapseDistance   float64
	flushThreshold     int
	edgeFlushThreshold int
	collapseWindow     int
	logger             *zap.Logger
}

// Stats is a summary of a finished extraction
type Stats struct {
	WaysScanned        int
	WaysProcessed      int
	Flushes            int
	CollapseCandidates int
	Duration           time.Duration
}

func (ex *Extractor) String() string {
	modes := make([]string, len(ex.modes))
	for i, mode := range ex.modes {
		modes[i] = mode.String()
	}
	return fmt.Sprintf(`
Road network extractor parameters:
	modes: '%s'
	collapse_distance_m: %f
	flush_threshold: %d
	edge_flush_threshold: %d
	collapse_window: %d
	`,
		strings.Join(modes, ","),
		ex.collapseDistance,
		ex.flushThreshold,
		ex.edgeFlushThreshold,
		ex.collapseWindow,
	)
}

// NewExtractor returns extractor writing to the storage. Every mode is enabled and collapsing is disabled by default.
func NewExtractor(storage Storage, options ...func(*Extractor)) *Extractor {
	ex := &Extractor{
		storage:          storage,
		modes:            AllModes(),
		collapseDistance: 0,
		flushThreshold:   DEFAULT_FLUSH_THRESHOLD,
		collapseWindow:   DEFAULT_COLLAPSE_WINDOW,
		logger:           zap.NewNop(),
	}
	for _, option := range options {
		option(ex)
	}
	return ex
}

func WithModes(modes []Mode) func(*Extractor) {
	return func(ex *Extractor) {
		ex.modes = modes
	}
}

func WithCollapseDistance(meters float64) func(*Extractor) {
	return func(ex *Extractor) {
		ex.collapseDistance = meters
	}
}

func WithFlushThreshold(nodes int) func(*Extractor) {
	return func(ex *Extractor) {
		ex.flushThreshold = nodes
	}
}

func WithEdgeFlushThreshold(edges int) func(*Extractor) {
	return func(ex *Extractor) {
		ex.edgeFlushThreshold = edges
	}
}

func WithCollapseWindow(window int) func(*Extractor) {
	return func(ex *Extractor) {
		ex.collapseWindow = window
	}
}

func WithLogger(logger *zap.Logger) func(*Extractor) {
	return func(ex *Extractor) {
		if logger != nil {
			ex.logger = logger
		}
	}
}

func (ex *Extractor) collapsing() bool {
	return ex.collapseDistance > 0.0
}

func (ex *Extractor) validate() error {
	if len(ex.modes) == 0 {
		return ErrNoModes
	}
	for _, mode := range ex.modes {
		if !hasMode(modesAll, mode) {
			return errors.Wrapf(ErrUnknownMode, "%d", mode)
		}
	}
	if ex.collapseDistance < 0 {
		return errors.Wrapf(ErrInvalidConfig, "collapse distance must not be negative, got %f", ex.collapseDistance)
	}
	if ex.flushThreshold <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "flush threshold must be positive, got %d", ex.flushThreshold)
	}
	if ex.edgeFlushThreshold < 0 {
		return errors.Wrapf(ErrInvalidConfig, "edge flush threshold must not be negative, got %d", ex.edgeFlushThreshold)
	}
	if ex.collapsing() && ex.collapseWindow < 2 {
		return errors.Wrapf(ErrInvalidConfig, "collapse window must be at least 2, got %d", ex.collapseWindow)
	}
	return nil
}

// Run consumes the whole way stream and leaves canonical graph in storage.
//
// Any storage failure aborts the run: canonicalization needs a complete dataset.
// Re-running on the same storage is safe since all writes are insert-or-ignore.
func (ex *Extractor) Run(ctx context.Context, scanner WayScanner) (*Stats, error) {
	err := ex.validate()
	if err != nil {
		return nil, err
	}
	st := time.Now()
	err = ex.storage.Prepare(ctx, ex.modes)
	if err != nil {
		return nil, errors.Wrap(err, "Can't prepare storage")
	}

	var collapser *Collapser
	if ex.collapsing() {
		collapser = NewCollapser(ex.collapseDistance, ex.collapseWindow)
	}
	edgeThreshold := ex.edgeFlushThreshold
	if edgeThreshold == 0 {
		edgeThreshold = DEFAULT_EDGES_PER_NODE * ex.flushThreshold
	}
	acc := NewAccumulator(ex.storage, ex.modes, collapser, ex.flushThreshold, edgeThreshold, ex.logger)

	stats := &Stats{}
	latestMessage := time.Now()
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, "Extraction interrupted")
		}
		way := scanner.Way()
		stats.WaysScanned++
		cls := Classify(way.Tags, ex.modes)
		if cls.Excluded {
			continue
		}
		stats.WaysProcessed++
		err = acc.Ingest(ctx, way, cls)
		if err != nil {
			return nil, errors.Wrapf(err, "Can't ingest way %d", way.ID)
		}
		if time.Since(latestMessage) > progressInterval {
			ex.logger.Debug("processing ways", zap.Int("ways_processed", stats.WaysProcessed))
			latestMessage = time.Now()
		}
	}
	err = scanner.Err()
	if err != nil {
		return nil, errors.Wrap(err, "Can't read ways")
	}

	// the scanner does not tell when it reads the last way, the remainder is flushed here
	err = acc.Flush(ctx)
	if err != nil {
		return nil, err
	}
	stats.Flushes = acc.Flushes()
	stats.CollapseCandidates = acc.CollapseCandidates()
	ex.logger.Info("ways processed",
		zap.Int("ways_scanned", stats.WaysScanned),
		zap.Int("ways_processed", stats.WaysProcessed),
		zap.Int("flushes", stats.Flushes),
	)

	if ex.collapsing() {
		err = Canonicalize(ctx, ex.storage, ex.modes, ex.logger)
		if err != nil {
			return nil, err
		}
	}
	stats.Duration = time.Since(st)
	return stats, nil
}
