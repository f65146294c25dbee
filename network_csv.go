package roadnet

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// GeomFormat is representation of geometry column in CSV export
type GeomFormat uint16

const (
	GEOM_WKT = GeomFormat(iota + 1)
	GEOM_GEOJSON
	GEOM_UNDEFINED = GeomFormat(0)
)

func (iotaIdx GeomFormat) String() string {
	return [...]string{"undefined", "wkt", "geojson"}[iotaIdx]
}

// ParseGeomFormat returns format for 'wkt' or 'geojson'
func ParseGeomFormat(name string) (GeomFormat, error) {
	switch strings.ToLower(name) {
	case "wkt":
		return GEOM_WKT, nil
	case "geojson":
		return GEOM_GEOJSON, nil
	default:
		return GEOM_UNDEFINED, errors.Wrapf(ErrUnknownFormat, "geometry format '%s'", name)
	}
}

func (iotaIdx GeomFormat) point(pt GeoPoint) string {
	if iotaIdx == GEOM_GEOJSON {
		return PrepareGeoJSONPoint(pt)
	}
	return PrepareWKTPoint(pt)
}

func (iotaIdx GeomFormat) line(pts []GeoPoint) string {
	if iotaIdx == GEOM_GEOJSON {
		return PrepareGeoJSONLinestring(pts)
	}
	return PrepareWKTLinestring(pts)
}

// ExportCSV writes '<fname>_nodes.csv' and '<fname>_<mode>_edges.csv' for every mode.
// Returns names of written files.
func ExportCSV(ctx context.Context, storage Storage, modes []Mode, fname string, format GeomFormat) ([]string, error) {
	fnamePart := strings.Split(fname, ".csv")[0] // to guarantee proper filename and its extension
	nodes, err := loadNodes(ctx, storage)
	if err != nil {
		return nil, err
	}

	fnameNodes := fnamePart + "_nodes.csv"
	err = exportNodesToCSV(fnameNodes, nodes, format)
	if err != nil {
		return nil, errors.Wrap(err, "Can't export nodes")
	}
	written := []string{fnameNodes}

	for _, mode := range modes {
		fnameEdges := fmt.Sprintf("%s_%s.csv", fnamePart, mode.EdgeTable())
		err = exportEdgesToCSV(ctx, fnameEdges, storage, mode, nodes, format)
		if err != nil {
			return nil, errors.Wrapf(err, "Can't export %s edges", mode)
		}
		written = append(written, fnameEdges)
	}
	return written, nil
}

func newCSVFile(fname string, header []string) (*os.File, *csv.Writer, error) {
	file, err := os.Create(fname)
	if err != nil {
		return nil, nil, errors.Wrap(err, "Can't create file")
	}
	writer := csv.NewWriter(file)
	writer.Comma = ';'
	err = writer.Write(header)
	if err != nil {
		file.Close()
		return nil, nil, errors.Wrap(err, "Can't write header")
	}
	return file, writer, nil
}

func exportNodesToCSV(fname string, nodes map[int64]Node, format GeomFormat) error {
	file, writer, err := newCSVFile(fname, []string{"id", "lat", "lon", "geom"})
	if err != nil {
		return err
	}
	defer file.Close()

	ids := make([]int64, 0, len(nodes))
	for id := range nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		node := nodes[id]
		err = writer.Write([]string{
			fmt.Sprintf("%d", node.ID),
			formatCoord(node.Lat),
			formatCoord(node.Lon),
			format.point(GeoPoint{Lat: node.Lat, Lon: node.Lon}),
		})
		if err != nil {
			return errors.Wrap(err, "Can't write node")
		}
	}
	writer.Flush()
	return writer.Error()
}

func exportEdgesToCSV(ctx context.Context, fname string, storage Storage, mode Mode, nodes map[int64]Node, format GeomFormat) error {
	file, writer, err := newCSVFile(fname, []string{"from_id", "to_id", "length_meters", "geom"})
	if err != nil {
		return err
	}
	defer file.Close()

	err = storage.Edges(ctx, mode, func(edge Edge) error {
		source, okSource := nodes[edge.From]
		target, okTarget := nodes[edge.To]
		if !okSource || !okTarget {
			return nil
		}
		return writer.Write([]string{
			fmt.Sprintf("%d", edge.From),
			fmt.Sprintf("%d", edge.To),
			fmt.Sprintf("%f", edgeLength(source, target)),
			format.line(edgeGeom(source, target)),
		})
	})
	if err != nil {
		return err
	}
	writer.Flush()
	return writer.Error()
}
