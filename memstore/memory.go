package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/pkg/errors"

	"github.com/LdDl/roadnet"
)

// memoryStore is an in-memory roadnet.Storage with the same insert-or-ignore semantics as the SQLite one
type memoryStore struct {
	mu       sync.RWMutex
	nodes    map[int64]roadnet.Node
	edges    map[roadnet.Mode]map[roadnet.Edge]struct{}
	collapse map[int64]int64

	// returned by every Flush when set
	failFlush error
}

// Store exposes memory storage together with helpers used by tests
type Store interface {
	roadnet.Storage
	FailFlushWith(err error)
}

// New returns empty memory storage
func New() Store {
	return &memoryStore{
		nodes:    make(map[int64]roadnet.Node),
		edges:    make(map[roadnet.Mode]map[roadnet.Edge]struct{}),
		collapse: make(map[int64]int64),
	}
}

// FailFlushWith makes subsequent flushes fail with err. Nil restores normal behaviour.
func (m *memoryStore) FailFlushWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failFlush = err
}

func (m *memoryStore) Close() error {
	return nil
}

func (m *memoryStore) Prepare(ctx context.Context, modes []roadnet.Mode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, mode := range modes {
		if _, ok := m.edges[mode]; !ok {
			m.edges[mode] = make(map[roadnet.Edge]struct{})
		}
	}
	return nil
}

func (m *memoryStore) edgeSet(mode roadnet.Mode) (map[roadnet.Edge]struct{}, error) {
	edges, ok := m.edges[mode]
	if !ok {
		return nil, errors.Errorf("no such table: %s", mode.EdgeTable())
	}
	return edges, nil
}

func (m *memoryStore) Flush(ctx context.Context, batch *roadnet.Batch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failFlush != nil {
		return m.failFlush
	}
	// validate first so the batch is applied all-or-nothing
	for mode := range batch.Edges {
		if _, err := m.edgeSet(mode); err != nil {
			return err
		}
	}
	for _, node := range batch.Nodes {
		if _, ok := m.nodes[node.ID]; !ok {
			m.nodes[node.ID] = node
		}
	}
	for mode, edges := range batch.Edges {
		set := m.edges[mode]
		for _, edge := range edges {
			set[edge] = struct{}{}
		}
	}
	for _, mapping := range batch.Collapse {
		if _, ok := m.collapse[mapping.IDToPrune]; !ok {
			m.collapse[mapping.IDToPrune] = mapping.IDToUse
		}
	}
	return nil
}

func (m *memoryStore) CollapseMappings(ctx context.Context) ([]roadnet.CollapseMapping, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	mappings := make([]roadnet.CollapseMapping, 0, len(m.collapse))
	for prune, use := range m.collapse {
		mappings = append(mappings, roadnet.CollapseMapping{IDToPrune: prune, IDToUse: use})
	}
	sort.Slice(mappings, func(i, j int) bool { return mappings[i].IDToPrune < mappings[j].IDToPrune })
	return mappings, nil
}

func (m *memoryStore) ApplyCanonical(ctx context.Context, targets map[int64]int64, modes []roadnet.Mode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rewritten := make(map[roadnet.Mode]map[roadnet.Edge]struct{}, len(modes))
	for _, mode := range modes {
		edges, err := m.edgeSet(mode)
		if err != nil {
			return err
		}
		set := make(map[roadnet.Edge]struct{}, len(edges))
		for edge := range edges {
			if canonical, ok := roadnet.CanonicalEdge(edge, targets); ok {
				set[canonical] = struct{}{}
			}
		}
		rewritten[mode] = set
	}

	// swap
	collapse := make(map[int64]int64, len(targets))
	for prune, use := range targets {
		collapse[prune] = use
		delete(m.nodes, prune)
	}
	m.collapse = collapse
	for mode, set := range rewritten {
		m.edges[mode] = set
	}
	return nil
}

func (m *memoryStore) Nodes(ctx context.Context, fn func(roadnet.Node) error) error {
	m.mu.RLock()
	nodes := make([]roadnet.Node, 0, len(m.nodes))
	for _, node := range m.nodes {
		nodes = append(nodes, node)
	}
	m.mu.RUnlock()
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })
	for _, node := range nodes {
		if err := fn(node); err != nil {
			return err
		}
	}
	return nil
}

func (m *memoryStore) Edges(ctx context.Context, mode roadnet.Mode, fn func(roadnet.Edge) error) error {
	m.mu.RLock()
	set, err := m.edgeSet(mode)
	if err != nil {
		m.mu.RUnlock()
		return err
	}
	edges := make([]roadnet.Edge, 0, len(set))
	for edge := range set {
		edges = append(edges, edge)
	}
	m.mu.RUnlock()
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		return edges[i].To < edges[j].To
	})
	for _, edge := range edges {
		if err := fn(edge); err != nil {
			return err
		}
	}
	return nil
}

func (m *memoryStore) Stats(ctx context.Context, modes []roadnet.Mode) (roadnet.StorageStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	stats := roadnet.StorageStats{
		Nodes:            int64(len(m.nodes)),
		Edges:            make(map[roadnet.Mode]int64, len(modes)),
		CollapseMappings: int64(len(m.collapse)),
	}
	for _, mode := range modes {
		set, err := m.edgeSet(mode)
		if err != nil {
			return stats, err
		}
		stats.Edges[mode] = int64(len(set))
	}
	return stats, nil
}
