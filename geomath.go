package roadnet

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// GeoPoint representation of point on Earth
type GeoPoint struct {
	Lat float64
	Lon float64
}

// String returns pretty printed value for for GeoPoint
func (gp GeoPoint) String() string {
	return fmt.Sprintf("Lon: %f | Lat: %f", gp.Lon, gp.Lat)
}

func (gp GeoPoint) point() orb.Point {
	return orb.Point{gp.Lon, gp.Lat}
}

// greatCircleDistance returns surface distance between two geo-points (meters)
func greatCircleDistance(p, q GeoPoint) float64 {
	return geo.DistanceHaversine(p.point(), q.point())
}

// wayNodesDistance returns surface distance between two way nodes (meters)
func wayNodesDistance(a, b WayNode) float64 {
	return greatCircleDistance(GeoPoint{Lat: a.Lat, Lon: a.Lon}, GeoPoint{Lat: b.Lat, Lon: b.Lon})
}

// edgeLength returns length of the segment between two nodes (meters)
func edgeLength(source, target Node) float64 {
	return geo.DistanceHaversine(source.Point(), target.Point())
}

// edgeGeom returns two-point geometry of an edge
func edgeGeom(source, target Node) []GeoPoint {
	return []GeoPoint{
		{Lat: source.Lat, Lon: source.Lon},
		{Lat: target.Lat, Lon: target.Lon},
	}
}
