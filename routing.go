package roadnet

import (
	"context"
	"time"

	"github.com/LdDl/ch"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Router answers shortest path queries over edge set of a single mode
type Router struct {
	mode     Mode
	graph    ch.Graph
	vertices map[int64]struct{}
}

// NewRouter loads persisted edges of the mode, weights them by length in meters
// and prepares contraction hierarchies on top of them
func NewRouter(ctx context.Context, storage Storage, mode Mode, logger *zap.Logger) (*Router, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	nodes, err := loadNodes(ctx, storage)
	if err != nil {
		return nil, err
	}
	router := &Router{
		mode:     mode,
		graph:    ch.Graph{},
		vertices: make(map[int64]struct{}),
	}
	edgesNum := 0
	err = storage.Edges(ctx, mode, func(edge Edge) error {
		source, okSource := nodes[edge.From]
		target, okTarget := nodes[edge.To]
		if !okSource || !okTarget {
			return nil
		}
		err := router.graph.CreateVertex(edge.From)
		if err != nil {
			return errors.Wrap(err, "Can not create source vertex")
		}
		err = router.graph.CreateVertex(edge.To)
		if err != nil {
			return errors.Wrap(err, "Can not create target vertex")
		}
		err = router.graph.AddEdge(edge.From, edge.To, edgeLength(source, target))
		if err != nil {
			return errors.Wrap(err, "Can not wrap Source and Target vertices as Edge")
		}
		router.vertices[edge.From] = struct{}{}
		router.vertices[edge.To] = struct{}{}
		edgesNum++
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "Can't load %s edges", mode)
	}
	if edgesNum == 0 {
		return router, nil
	}
	st := time.Now()
	router.graph.PrepareContractionHierarchies()
	logger.Info("contraction hierarchies prepared",
		zap.String("mode", mode.String()),
		zap.Int("vertices", len(router.vertices)),
		zap.Int("edges", edgesNum),
		zap.Duration("took", time.Since(st)),
	)
	return router, nil
}

// Mode returns mode the router was built for
func (router *Router) Mode() Mode {
	return router.mode
}

// ShortestPath returns length (meters) and node IDs of the shortest path between two nodes
func (router *Router) ShortestPath(from, to int64) (float64, []int64, error) {
	if _, ok := router.vertices[from]; !ok {
		return -1, nil, errors.Wrapf(ErrNoPath, "node %d is not a part of %s network", from, router.mode)
	}
	if _, ok := router.vertices[to]; !ok {
		return -1, nil, errors.Wrapf(ErrNoPath, "node %d is not a part of %s network", to, router.mode)
	}
	cost, path := router.graph.ShortestPath(from, to)
	if cost < 0 || len(path) == 0 {
		return -1, nil, errors.Wrapf(ErrNoPath, "from %d to %d", from, to)
	}
	return cost, path, nil
}
