package roadnet

import (
	"strconv"
	"strings"
)

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// PrepareWKTLinestring returns WKT representation of LineString keeping full coordinate precision
func PrepareWKTLinestring(pts []GeoPoint) string {
	var sb strings.Builder
	sb.WriteString("LINESTRING(")
	for i := range pts {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(formatCoord(pts[i].Lon))
		sb.WriteByte(' ')
		sb.WriteString(formatCoord(pts[i].Lat))
	}
	sb.WriteByte(')')
	return sb.String()
}

// PrepareWKTPoint returns WKT representation of Point keeping full coordinate precision
func PrepareWKTPoint(pt GeoPoint) string {
	return "POINT(" + formatCoord(pt.Lon) + " " + formatCoord(pt.Lat) + ")"
}
