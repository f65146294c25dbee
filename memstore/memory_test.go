package memstore

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LdDl/roadnet"
)

func TestFlushAndCanonical(t *testing.T) {
	ctx := context.Background()
	storage := New()
	modes := []roadnet.Mode{roadnet.MODE_WALK}
	require.NoError(t, storage.Prepare(ctx, modes))

	batch := &roadnet.Batch{
		Nodes: []roadnet.Node{{ID: 1, Lat: 1}, {ID: 2, Lat: 2}, {ID: 3, Lat: 3}},
		Edges: map[roadnet.Mode][]roadnet.Edge{
			roadnet.MODE_WALK: {{From: 1, To: 2}, {From: 2, To: 3}, {From: 3, To: 2}},
		},
		Collapse: []roadnet.CollapseMapping{{IDToPrune: 3, IDToUse: 2}},
	}
	require.NoError(t, storage.Flush(ctx, batch))
	require.NoError(t, storage.Flush(ctx, &roadnet.Batch{
		Nodes:    []roadnet.Node{{ID: 1, Lat: 100}},
		Collapse: []roadnet.CollapseMapping{{IDToPrune: 3, IDToUse: 1}},
	}))

	mappings, err := storage.CollapseMappings(ctx)
	require.NoError(t, err)
	assert.Equal(t, []roadnet.CollapseMapping{{IDToPrune: 3, IDToUse: 2}}, mappings)

	require.NoError(t, storage.ApplyCanonical(ctx, roadnet.FlattenCollapse(mappings), modes))

	edges := []roadnet.Edge{}
	require.NoError(t, storage.Edges(ctx, roadnet.MODE_WALK, func(edge roadnet.Edge) error {
		edges = append(edges, edge)
		return nil
	}))
	assert.Equal(t, []roadnet.Edge{{From: 1, To: 2}}, edges)

	nodes := []roadnet.Node{}
	require.NoError(t, storage.Nodes(ctx, func(node roadnet.Node) error {
		nodes = append(nodes, node)
		return nil
	}))
	assert.Equal(t, []roadnet.Node{{ID: 1, Lat: 1}, {ID: 2, Lat: 2}}, nodes)
}

func TestFlushUnpreparedMode(t *testing.T) {
	ctx := context.Background()
	storage := New()
	require.NoError(t, storage.Prepare(ctx, []roadnet.Mode{roadnet.MODE_WALK}))

	err := storage.Flush(ctx, &roadnet.Batch{
		Nodes: []roadnet.Node{{ID: 1}},
		Edges: map[roadnet.Mode][]roadnet.Edge{roadnet.MODE_CAR: {{From: 1, To: 2}}},
	})
	require.Error(t, err)

	stats, err := storage.Stats(ctx, []roadnet.Mode{roadnet.MODE_WALK})
	require.NoError(t, err)
	assert.Zero(t, stats.Nodes)
}

func TestFailFlushWith(t *testing.T) {
	ctx := context.Background()
	storage := New()
	require.NoError(t, storage.Prepare(ctx, roadnet.AllModes()))

	failure := errors.New("database is locked")
	storage.FailFlushWith(failure)
	assert.Equal(t, failure, storage.Flush(ctx, &roadnet.Batch{Nodes: []roadnet.Node{{ID: 1}}}))

	storage.FailFlushWith(nil)
	assert.NoError(t, storage.Flush(ctx, &roadnet.Batch{Nodes: []roadnet.Node{{ID: 1}}}))
}
