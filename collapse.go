package roadnet

// CollapseMapping tells that IDToPrune has to be replaced by IDToUse.
// IDToUse is always the lower of the two IDs.
type CollapseMapping struct {
	IDToPrune int64
	IDToUse   int64
}

// Collapser finds near-duplicate nodes within a short topological window of a single way.
//
// Nodes of different ways are never compared: the result is a bounded-cost heuristic,
// not an exact geometric deduplication.
type Collapser struct {
	distance float64
	window   int
}

// NewCollapser returns collapser for the threshold (meters) and window size (number of indices spanned)
func NewCollapser(distance float64, window int) *Collapser {
	return &Collapser{
		distance: distance,
		window:   window,
	}
}

// Candidates returns collapse mappings for every pair (i, j) with i < j < i+window whose
// nodes are closer than the threshold. Pairs referencing the same node (loops) are skipped.
//
// Mappings are not collapsed on the fly: IDs may still be referenced by ways coming later,
// so they are only stored and applied after the whole stream has been ingested.
func (c *Collapser) Candidates(nodes []WayNode) []CollapseMapping {
	var mappings []CollapseMapping
	for i := range nodes {
		upper := i + c.window
		if upper > len(nodes) {
			upper = len(nodes)
		}
		for j := i + 1; j < upper; j++ {
			a, b := nodes[i], nodes[j]
			if a.ID == b.ID {
				continue
			}
			if wayNodesDistance(a, b) >= c.distance {
				continue
			}
			mappings = append(mappings, newCollapseMapping(a.ID, b.ID))
		}
	}
	return mappings
}

// newCollapseMapping collapses to the lower ID
func newCollapseMapping(a, b int64) CollapseMapping {
	if a < b {
		return CollapseMapping{IDToPrune: b, IDToUse: a}
	}
	return CollapseMapping{IDToPrune: a, IDToUse: b}
}
