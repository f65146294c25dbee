package roadnet

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingStorage keeps every flushed batch
type recordingStorage struct {
	Storage
	batches []*Batch
	fail    error
}

func (s *recordingStorage) Flush(ctx context.Context, batch *Batch) error {
	if s.fail != nil {
		return s.fail
	}
	s.batches = append(s.batches, batch)
	return nil
}

func (s *recordingStorage) edges(mode Mode) []Edge {
	var edges []Edge
	for _, batch := range s.batches {
		edges = append(edges, batch.Edges[mode]...)
	}
	return edges
}

func straightWay(id int64, nodeIDs ...int64) Way {
	way := Way{ID: id, Tags: map[string]string{"highway": "residential"}}
	for i, nodeID := range nodeIDs {
		way.Nodes = append(way.Nodes, WayNode{ID: nodeID, Lat: 0, Lon: float64(i) * 0.001})
	}
	return way
}

func TestAccumulatorIngest(t *testing.T) {
	storage := &recordingStorage{}
	modes := []Mode{MODE_WALK, MODE_CAR}
	acc := NewAccumulator(storage, modes, nil, 100, 0, nil)

	way := straightWay(1, 10, 11, 12)
	way.Tags["oneway"] = "yes"
	err := acc.Ingest(context.Background(), way, Classify(way.Tags, modes))
	require.NoError(t, err)

	nodes, edges := acc.Resident()
	assert.Equal(t, 3, nodes)
	assert.Equal(t, 4, edges)

	require.NoError(t, acc.Flush(context.Background()))
	require.Len(t, storage.batches, 1)
	assert.ElementsMatch(t, []Edge{{From: 10, To: 11}, {From: 11, To: 12}}, storage.edges(MODE_WALK))
	assert.ElementsMatch(t, []Edge{{From: 10, To: 11}, {From: 11, To: 12}}, storage.edges(MODE_CAR))
	assert.Empty(t, storage.batches[0].Collapse)
	assert.Equal(t, 1, acc.Flushes())

	nodes, edges = acc.Resident()
	assert.Zero(t, nodes)
	assert.Zero(t, edges)
}

func TestAccumulatorBothDirections(t *testing.T) {
	storage := &recordingStorage{}
	modes := []Mode{MODE_BICYCLE}
	acc := NewAccumulator(storage, modes, nil, 100, 0, nil)

	way := straightWay(1, 1, 2)
	require.NoError(t, acc.Ingest(context.Background(), way, Classify(way.Tags, modes)))
	require.NoError(t, acc.Flush(context.Background()))
	assert.ElementsMatch(t, []Edge{{From: 1, To: 2}, {From: 2, To: 1}}, storage.edges(MODE_BICYCLE))
}

func TestAccumulatorFirstCoordinatesWin(t *testing.T) {
	storage := &recordingStorage{}
	acc := NewAccumulator(storage, AllModes(), nil, 100, 0, nil)

	first := Way{ID: 1, Tags: map[string]string{"highway": "residential"}, Nodes: []WayNode{
		{ID: 1, Lat: 10, Lon: 20},
		{ID: 2, Lat: 11, Lon: 21},
	}}
	second := Way{ID: 2, Tags: map[string]string{"highway": "residential"}, Nodes: []WayNode{
		{ID: 2, Lat: 50, Lon: 60},
		{ID: 3, Lat: 12, Lon: 22},
	}}
	for _, way := range []Way{first, second} {
		require.NoError(t, acc.Ingest(context.Background(), way, Classify(way.Tags, AllModes())))
	}
	require.NoError(t, acc.Flush(context.Background()))
	require.Len(t, storage.batches, 1)
	for _, node := range storage.batches[0].Nodes {
		if node.ID == 2 {
			assert.Equal(t, Node{ID: 2, Lat: 11, Lon: 21}, node)
		}
	}
	assert.Len(t, storage.batches[0].Nodes, 3)
}

func TestAccumulatorFlushThreshold(t *testing.T) {
	storage := &recordingStorage{}
	acc := NewAccumulator(storage, []Mode{MODE_CAR}, nil, 2, 0, nil)
	ctx := context.Background()

	way := straightWay(1, 1, 2)
	require.NoError(t, acc.Ingest(ctx, way, Classify(way.Tags, []Mode{MODE_CAR})))
	assert.Empty(t, storage.batches, "two nodes do not exceed threshold")

	way = straightWay(2, 2, 3)
	require.NoError(t, acc.Ingest(ctx, way, Classify(way.Tags, []Mode{MODE_CAR})))
	require.Len(t, storage.batches, 1)
	assert.Len(t, storage.batches[0].Nodes, 3)

	// nothing left to flush
	require.NoError(t, acc.Flush(ctx))
	assert.Len(t, storage.batches, 1)
	assert.Equal(t, 1, acc.Flushes())
}

func TestAccumulatorEdgeFlushThreshold(t *testing.T) {
	storage := &recordingStorage{}
	acc := NewAccumulator(storage, AllModes(), nil, 1000, 4, nil)

	way := straightWay(1, 1, 2)
	require.NoError(t, acc.Ingest(context.Background(), way, Classify(way.Tags, AllModes())))
	// 3 modes in both directions give 6 edges
	require.Len(t, storage.batches, 1)
}

func TestAccumulatorKeepsBuffersOnError(t *testing.T) {
	storage := &recordingStorage{fail: errors.New("disk is full")}
	acc := NewAccumulator(storage, []Mode{MODE_WALK}, NewCollapser(5, 5), 1, 0, nil)
	ctx := context.Background()

	way := straightWay(1, 1, 2)
	way.Nodes[1].Lon = 0.00001
	err := acc.Ingest(ctx, way, Classify(way.Tags, []Mode{MODE_WALK}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk is full")

	nodes, edges := acc.Resident()
	assert.Equal(t, 2, nodes)
	assert.Equal(t, 2, edges)
	assert.Zero(t, acc.Flushes())

	storage.fail = nil
	require.NoError(t, acc.Flush(ctx))
	require.Len(t, storage.batches, 1)
	assert.Equal(t, []CollapseMapping{{IDToPrune: 2, IDToUse: 1}}, storage.batches[0].Collapse)
}

func TestAccumulatorCollapseFirstWins(t *testing.T) {
	storage := &recordingStorage{}
	acc := NewAccumulator(storage, []Mode{MODE_WALK}, NewCollapser(5, 5), 100, 0, nil)

	acc.AddCollapse(CollapseMapping{IDToPrune: 9, IDToUse: 5})
	acc.AddCollapse(CollapseMapping{IDToPrune: 9, IDToUse: 3})
	require.NoError(t, acc.Flush(context.Background()))
	require.Len(t, storage.batches, 1)
	assert.Equal(t, []CollapseMapping{{IDToPrune: 9, IDToUse: 5}}, storage.batches[0].Collapse)
}

func TestAccumulatorSkipsExcluded(t *testing.T) {
	storage := &recordingStorage{}
	acc := NewAccumulator(storage, AllModes(), nil, 100, 0, nil)

	way := straightWay(1, 1, 2)
	way.Tags = map[string]string{"building": "yes"}
	require.NoError(t, acc.Ingest(context.Background(), way, Classify(way.Tags, AllModes())))
	nodes, edges := acc.Resident()
	assert.Zero(t, nodes)
	assert.Zero(t, edges)
}
