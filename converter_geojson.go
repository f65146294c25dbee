package roadnet

import (
	"context"
	"fmt"
	"io"
	"sort"

	geojson "github.com/paulmach/go.geojson"
	"github.com/pkg/errors"
)

// PrepareGeoJSONLinestring returns GeoJSON representation of LineString
func PrepareGeoJSONLinestring(pts []GeoPoint) string {
	b, err := geojson.NewLineStringGeometry(geoJSONLine(pts)).MarshalJSON()
	if err != nil {
		fmt.Printf("Warning. Can not convert geometry to geojson format: %s", err.Error())
		return ""
	}
	return string(b)
}

// PrepareGeoJSONPoint returns GeoJSON representation of Point
func PrepareGeoJSONPoint(pt GeoPoint) string {
	b, err := geojson.NewPointGeometry([]float64{pt.Lon, pt.Lat}).MarshalJSON()
	if err != nil {
		fmt.Printf("Warning. Can not convert geometry to geojson format: %s", err.Error())
		return ""
	}
	return string(b)
}

func geoJSONLine(pts []GeoPoint) [][]float64 {
	pts2d := make([][]float64, len(pts))
	for i := range pts {
		pts2d[i] = []float64{pts[i].Lon, pts[i].Lat}
	}
	return pts2d
}

// loadNodes materializes every persisted node keyed by its ID
func loadNodes(ctx context.Context, storage Storage) (map[int64]Node, error) {
	nodes := make(map[int64]Node)
	err := storage.Nodes(ctx, func(node Node) error {
		nodes[node.ID] = node
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "Can't read nodes")
	}
	return nodes, nil
}

// ExportGeoJSON writes two FeatureCollections: LineStrings for every edge of the modes into edgesW
// and Points for every node referenced by those edges into nodesW.
// Edges referencing unknown nodes are skipped.
func ExportGeoJSON(ctx context.Context, storage Storage, modes []Mode, edgesW, nodesW io.Writer) error {
	nodes, err := loadNodes(ctx, storage)
	if err != nil {
		return err
	}
	edgesCollection := geojson.NewFeatureCollection()
	referenced := make(map[int64]struct{})
	for _, mode := range modes {
		err = storage.Edges(ctx, mode, func(edge Edge) error {
			source, okSource := nodes[edge.From]
			target, okTarget := nodes[edge.To]
			if !okSource || !okTarget {
				return nil
			}
			edgesCollection.AddFeature(geojson.NewLineStringFeature(geoJSONLine(edgeGeom(source, target))))
			referenced[edge.From] = struct{}{}
			referenced[edge.To] = struct{}{}
			return nil
		})
		if err != nil {
			return errors.Wrapf(err, "Can't read %s edges", mode)
		}
	}

	ids := make([]int64, 0, len(referenced))
	for id := range referenced {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	nodesCollection := geojson.NewFeatureCollection()
	for _, id := range ids {
		node := nodes[id]
		nodesCollection.AddFeature(geojson.NewPointFeature([]float64{node.Lon, node.Lat}))
	}

	err = writeCollection(edgesW, edgesCollection)
	if err != nil {
		return errors.Wrap(err, "Can't write edges")
	}
	err = writeCollection(nodesW, nodesCollection)
	if err != nil {
		return errors.Wrap(err, "Can't write nodes")
	}
	return nil
}

func writeCollection(w io.Writer, fc *geojson.FeatureCollection) error {
	b, err := fc.MarshalJSON()
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}
