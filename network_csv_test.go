package roadnet_test

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LdDl/roadnet"
	"github.com/LdDl/roadnet/memstore"
)

func readCSV(t *testing.T, fname string) [][]string {
	file, err := os.Open(fname)
	require.NoError(t, err)
	defer file.Close()
	reader := csv.NewReader(file)
	reader.Comma = ';'
	records, err := reader.ReadAll()
	require.NoError(t, err)
	return records
}

func TestExportCSV(t *testing.T) {
	storage := memstore.New()
	ways := []roadnet.Way{
		{ID: 1, Tags: map[string]string{"highway": "cycleway"}, Nodes: []roadnet.WayNode{
			{ID: 2, Lat: 0, Lon: 0.001},
			{ID: 1, Lat: 0, Lon: 0},
		}},
	}
	_, err := roadnet.NewExtractor(storage).Run(context.Background(), roadnet.NewSliceScanner(ways))
	require.NoError(t, err)

	fname := filepath.Join(t.TempDir(), "network.csv")
	written, err := roadnet.ExportCSV(context.Background(), storage, []roadnet.Mode{roadnet.MODE_BICYCLE, roadnet.MODE_CAR}, fname, roadnet.GEOM_WKT)
	require.NoError(t, err)
	base := filepath.Join(filepath.Dir(fname), "network")
	assert.Equal(t, []string{
		base + "_nodes.csv",
		base + "_bicycle_edges.csv",
		base + "_car_edges.csv",
	}, written)

	nodes := readCSV(t, written[0])
	assert.Equal(t, [][]string{
		{"id", "lat", "lon", "geom"},
		{"1", "0", "0", "POINT(0 0)"},
		{"2", "0", "0.001", "POINT(0.001 0)"},
	}, nodes)

	bicycle := readCSV(t, written[1])
	assert.Equal(t, [][]string{
		{"from_id", "to_id", "length_meters", "geom"},
		{"1", "2", "111.319491", "LINESTRING(0 0,0.001 0)"},
		{"2", "1", "111.319491", "LINESTRING(0.001 0,0 0)"},
	}, bicycle)

	// cycleway is closed for cars
	car := readCSV(t, written[2])
	assert.Equal(t, [][]string{{"from_id", "to_id", "length_meters", "geom"}}, car)
}

func TestExportCSVGeoJSONGeometry(t *testing.T) {
	storage := memstore.New()
	require.NoError(t, storage.Prepare(context.Background(), roadnet.AllModes()))
	require.NoError(t, storage.Flush(context.Background(), &roadnet.Batch{
		Nodes: []roadnet.Node{{ID: 7, Lat: 1, Lon: 2}},
	}))

	fname := filepath.Join(t.TempDir(), "out")
	written, err := roadnet.ExportCSV(context.Background(), storage, []roadnet.Mode{roadnet.MODE_WALK}, fname, roadnet.GEOM_GEOJSON)
	require.NoError(t, err)
	nodes := readCSV(t, written[0])
	require.Len(t, nodes, 2)
	assert.JSONEq(t, `{"type":"Point","coordinates":[2,1]}`, nodes[1][3])
}

func TestParseGeomFormat(t *testing.T) {
	format, err := roadnet.ParseGeomFormat("WKT")
	require.NoError(t, err)
	assert.Equal(t, roadnet.GEOM_WKT, format)

	format, err = roadnet.ParseGeomFormat("geojson")
	require.NoError(t, err)
	assert.Equal(t, roadnet.GEOM_GEOJSON, format)

	_, err = roadnet.ParseGeomFormat("shp")
	assert.ErrorIs(t, err, roadnet.ErrUnknownFormat)
}
