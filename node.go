package roadnet

import "github.com/paulmach/orb"

// Node is a persisted graph vertex. Coordinates recorded first for an ID win.
type Node struct {
	ID  int64
	Lat float64
	Lon float64
}

// Point returns node as orb.Point (lon, lat)
func (n Node) Point() orb.Point {
	return orb.Point{n.Lon, n.Lat}
}

func (wn WayNode) node() Node {
	return Node{ID: wn.ID, Lat: wn.Lat, Lon: wn.Lon}
}
