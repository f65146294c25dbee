package roadnet

// WayScanner is a forward-only stream of ways
type WayScanner interface {
	Scan() bool
	Way() Way
	Err() error
	Close() error
}

type sliceScanner struct {
	ways []Way
	idx  int
}

// NewSliceScanner returns scanner over in-memory ways
func NewSliceScanner(ways []Way) WayScanner {
	return &sliceScanner{ways: ways, idx: -1}
}

func (scanner *sliceScanner) Scan() bool {
	if scanner.idx+1 >= len(scanner.ways) {
		return false
	}
	scanner.idx++
	return true
}

func (scanner *sliceScanner) Way() Way {
	return scanner.ways[scanner.idx]
}

func (scanner *sliceScanner) Err() error {
	return nil
}

func (scanner *sliceScanner) Close() error {
	return nil
}
