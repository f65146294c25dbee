package roadnet

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Accumulator buffers nodes, per-mode edges and collapse mappings in memory
// and hands them over to Storage once the buffers grow past the thresholds.
//
// Not safe for concurrent use: ingestion is blocked for the duration of a flush.
type Accumulator struct {
	storage            Storage
	modes              []Mode
	collapser          *Collapser
	flushThreshold     int
	edgeFlushThreshold int
	logger             *zap.Logger

	nodes         map[int64]Node
	edges         map[Mode]map[Edge]struct{}
	edgesNum      int
	collapseNodes map[int64]int64

	flushes    int
	candidates int
}

// NewAccumulator returns accumulator for the enabled modes. Collapser may be nil which disables collapsing.
func NewAccumulator(storage Storage, modes []Mode, collapser *Collapser, flushThreshold, edgeFlushThreshold int, logger *zap.Logger) *Accumulator {
	if logger == nil {
		logger = zap.NewNop()
	}
	acc := &Accumulator{
		storage:            storage,
		modes:              modes,
		collapser:          collapser,
		flushThreshold:     flushThreshold,
		edgeFlushThreshold: edgeFlushThreshold,
		logger:             logger,
	}
	acc.reset()
	return acc
}

func (acc *Accumulator) reset() {
	acc.nodes = make(map[int64]Node)
	acc.edges = make(map[Mode]map[Edge]struct{}, len(acc.modes))
	for _, mode := range acc.modes {
		acc.edges[mode] = make(map[Edge]struct{})
	}
	acc.edgesNum = 0
	acc.collapseNodes = make(map[int64]int64)
}

// Ingest adds edges of every consecutive node pair of the way for each mode allowed by classification,
// records coordinates of touched nodes and collapse candidates. Flushes automatically once
// resident nodes (or edges) exceed the thresholds.
func (acc *Accumulator) Ingest(ctx context.Context, way Way, cls Classification) error {
	if cls.Excluded {
		return nil
	}
	for i := 1; i < len(way.Nodes); i++ {
		from, to := way.Nodes[i-1], way.Nodes[i]
		edge := Edge{From: from.ID, To: to.ID}
		for _, mode := range acc.modes {
			dir := cls.Direction(mode)
			if dir.Forward {
				acc.addEdge(mode, edge)
			}
			if dir.Backward {
				acc.addEdge(mode, edge.Reversed())
			}
		}
		acc.addNode(from)
		acc.addNode(to)
	}
	if acc.collapser != nil {
		for _, mapping := range acc.collapser.Candidates(way.Nodes) {
			acc.candidates++
			acc.AddCollapse(mapping)
		}
	}
	if acc.overflown() {
		return acc.Flush(ctx)
	}
	return nil
}

func (acc *Accumulator) addNode(wn WayNode) {
	if _, ok := acc.nodes[wn.ID]; ok {
		return
	}
	acc.nodes[wn.ID] = wn.node()
}

func (acc *Accumulator) addEdge(mode Mode, edge Edge) {
	edges := acc.edges[mode]
	if _, ok := edges[edge]; ok {
		return
	}
	edges[edge] = struct{}{}
	acc.edgesNum++
}

// AddCollapse buffers collapse mapping. Mapping for an already buffered pruned ID is ignored.
func (acc *Accumulator) AddCollapse(mapping CollapseMapping) {
	if _, ok := acc.collapseNodes[mapping.IDToPrune]; ok {
		return
	}
	acc.collapseNodes[mapping.IDToPrune] = mapping.IDToUse
}

func (acc *Accumulator) overflown() bool {
	if len(acc.nodes) > acc.flushThreshold {
		return true
	}
	return acc.edgeFlushThreshold > 0 && acc.edgesNum > acc.edgeFlushThreshold
}

// Flush sends all buffered data to Storage as one batch and clears buffers.
// Buffers are kept untouched if Storage fails, so nothing ingested before the call is lost.
func (acc *Accumulator) Flush(ctx context.Context) error {
	batch := acc.batch()
	if batch.Empty() {
		return nil
	}
	st := time.Now()
	err := acc.storage.Flush(ctx, batch)
	if err != nil {
		return errors.Wrap(err, "Can't flush buffered graph")
	}
	acc.flushes++
	acc.logger.Debug("flushed to storage",
		zap.Int("nodes", len(batch.Nodes)),
		zap.Int("edges", acc.edgesNum),
		zap.Int("collapse_mappings", len(batch.Collapse)),
		zap.Duration("took", time.Since(st)),
	)
	acc.reset()
	return nil
}

func (acc *Accumulator) batch() *Batch {
	batch := &Batch{
		Nodes: make([]Node, 0, len(acc.nodes)),
		Edges: make(map[Mode][]Edge, len(acc.edges)),
	}
	for _, node := range acc.nodes {
		batch.Nodes = append(batch.Nodes, node)
	}
	for mode, edges := range acc.edges {
		modeEdges := make([]Edge, 0, len(edges))
		for edge := range edges {
			modeEdges = append(modeEdges, edge)
		}
		batch.Edges[mode] = modeEdges
	}
	if acc.collapser != nil {
		batch.Collapse = make([]CollapseMapping, 0, len(acc.collapseNodes))
		for prune, use := range acc.collapseNodes {
			batch.Collapse = append(batch.Collapse, CollapseMapping{IDToPrune: prune, IDToUse: use})
		}
	}
	return batch
}

// Flushes returns number of successful non-empty flushes
func (acc *Accumulator) Flushes() int {
	return acc.flushes
}

// CollapseCandidates returns number of collapse candidates met so far (including ignored duplicates)
func (acc *Accumulator) CollapseCandidates() int {
	return acc.candidates
}

// Resident returns number of buffered nodes and edges
func (acc *Accumulator) Resident() (nodes int, edges int) {
	return len(acc.nodes), acc.edgesNum
}
