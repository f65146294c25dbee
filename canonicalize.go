package roadnet

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// FlattenCollapse removes one level of indirection: a mapping whose IDToUse is pruned by
// another mapping is dropped. Deeper chains are not resolved recursively, e.g. given
// 9->5 and 13->9 only 9->5 survives and 13 keeps its own identity.
func FlattenCollapse(mappings []CollapseMapping) map[int64]int64 {
	pruned := make(map[int64]struct{}, len(mappings))
	for _, m := range mappings {
		pruned[m.IDToPrune] = struct{}{}
	}
	targets := make(map[int64]int64, len(mappings))
	for _, m := range mappings {
		if _, ok := pruned[m.IDToUse]; ok {
			continue
		}
		if _, ok := targets[m.IDToPrune]; ok {
			continue
		}
		targets[m.IDToPrune] = m.IDToUse
	}
	return targets
}

// CanonicalEdge replaces each endpoint with its collapse target (if any).
// Returns false when rewriting turned the edge into a self-loop.
func CanonicalEdge(e Edge, targets map[int64]int64) (Edge, bool) {
	if use, ok := targets[e.From]; ok {
		e.From = use
	}
	if use, ok := targets[e.To]; ok {
		e.To = use
	}
	return e, !e.IsLoop()
}

// Canonicalize rewrites persisted graph to canonical node IDs. Must run exactly once, after the final flush.
//
// Collapse mappings are materialized and flattened first, then Storage prunes nodes
// and rewrites edge tables of the modes in a single transaction.
func Canonicalize(ctx context.Context, storage Storage, modes []Mode, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	st := time.Now()
	mappings, err := storage.CollapseMappings(ctx)
	if err != nil {
		return errors.Wrap(err, "Can't load collapse mappings")
	}
	logger.Info("removing indirect pruning", zap.Int("collapse_mappings", len(mappings)))
	targets := FlattenCollapse(mappings)

	logger.Info("deleting collapsed nodes and rewriting edges",
		zap.Int("targets", len(targets)),
		zap.Int("dropped_mappings", len(mappings)-len(targets)),
	)
	err = storage.ApplyCanonical(ctx, targets, modes)
	if err != nil {
		return errors.Wrap(err, "Can't apply canonical ids")
	}
	logger.Info("canonicalization done", zap.Duration("took", time.Since(st)))
	return nil
}
