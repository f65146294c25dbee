package roadnet

// Edge is a directed pair of node IDs inside the edge set of a single mode
type Edge struct {
	From int64
	To   int64
}

// Reversed returns edge going the opposite way
func (e Edge) Reversed() Edge {
	return Edge{From: e.To, To: e.From}
}

// IsLoop returns true if both endpoints are the same node
func (e Edge) IsLoop() bool {
	return e.From == e.To
}
