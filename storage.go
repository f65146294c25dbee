package roadnet

import "context"

// Batch is a unit of buffered graph data handed to Storage in one flush
type Batch struct {
	Nodes    []Node
	Edges    map[Mode][]Edge
	Collapse []CollapseMapping
}

// Empty returns true if there is nothing to persist
func (b *Batch) Empty() bool {
	if len(b.Nodes) != 0 || len(b.Collapse) != 0 {
		return false
	}
	for _, edges := range b.Edges {
		if len(edges) != 0 {
			return false
		}
	}
	return true
}

// StorageStats is a summary of persisted data
type StorageStats struct {
	Nodes            int64
	Edges            map[Mode]int64
	CollapseMappings int64
}

// Storage is the durable side of the pipeline.
//
// Every write is insert-or-ignore: a key recorded once is never overwritten,
// so re-flushing identical data is a no-op.
type Storage interface {
	// Prepare creates the node table, one edge table per mode and the collapse table
	Prepare(ctx context.Context, modes []Mode) error
	// Flush persists the batch atomically
	Flush(ctx context.Context, batch *Batch) error
	// CollapseMappings returns every recorded collapse mapping
	CollapseMappings(ctx context.Context) ([]CollapseMapping, error)
	// ApplyCanonical replaces collapse mappings by targets, deletes pruned nodes and rewrites
	// edge tables of the modes through CanonicalEdge. Either everything is applied or nothing.
	ApplyCanonical(ctx context.Context, targets map[int64]int64, modes []Mode) error

	Nodes(ctx context.Context, fn func(Node) error) error
	Edges(ctx context.Context, mode Mode, fn func(Edge) error) error
	Stats(ctx context.Context, modes []Mode) (StorageStats, error)

	Close() error
}
