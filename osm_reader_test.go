package roadnet

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testOSM = `<?xml version="1.0" encoding="UTF-8"?>
<osm version="0.6" generator="test">
	<node id="1" lat="55.7518494" lon="37.6417351"/>
	<node id="2" lat="55.7326198" lon="37.6685143"/>
	<node id="3" lat="55.7400000" lon="37.6500000"/>
	<node id="4" lat="55.7500000" lon="37.6600000"/>
	<way id="10">
		<nd ref="1"/>
		<nd ref="2"/>
		<nd ref="99"/>
		<tag k="highway" v="residential"/>
		<tag k="oneway" v="yes"/>
	</way>
	<way id="11">
		<nd ref="3"/>
		<nd ref="4"/>
		<tag k="building" v="yes"/>
	</way>
	<way id="12">
		<nd ref="2"/>
		<nd ref="3"/>
		<tag k="highway" v="footway"/>
	</way>
</osm>
`

func writeTestFile(t *testing.T, name, content string) string {
	fname := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(fname, []byte(content), 0o644))
	return fname
}

func TestOpenWayReader(t *testing.T) {
	fname := writeTestFile(t, "sample.osm", testOSM)
	scanner, err := OpenWayReader(context.Background(), fname)
	require.NoError(t, err)
	defer scanner.Close()

	ways := []Way{}
	for scanner.Scan() {
		ways = append(ways, scanner.Way())
	}
	require.NoError(t, scanner.Err())
	require.Len(t, ways, 2)

	assert.Equal(t, int64(10), ways[0].ID)
	assert.Equal(t, "yes", ways[0].Tags["oneway"])
	assert.Equal(t, []WayNode{
		{ID: 1, Lat: 55.7518494, Lon: 37.6417351},
		{ID: 2, Lat: 55.7326198, Lon: 37.6685143},
	}, ways[0].Nodes)

	assert.Equal(t, int64(12), ways[1].ID)
	assert.Equal(t, []WayNode{
		{ID: 2, Lat: 55.7326198, Lon: 37.6685143},
		{ID: 3, Lat: 55.74, Lon: 37.65},
	}, ways[1].Nodes)

	reader, ok := scanner.(*osmWayReader)
	require.True(t, ok)
	assert.Equal(t, 1, reader.MissingNodes())
	// node 4 is referenced by non-highway way only
	_, ok = reader.coords[4]
	assert.False(t, ok)
}

func TestOpenWayReaderUnknownFormat(t *testing.T) {
	fname := writeTestFile(t, "sample.txt", testOSM)
	_, err := OpenWayReader(context.Background(), fname)
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestOpenWayReaderMissingFile(t *testing.T) {
	_, err := OpenWayReader(context.Background(), filepath.Join(t.TempDir(), "absent.osm.pbf"))
	assert.Error(t, err)
}

func TestExtractFromOSM(t *testing.T) {
	fname := writeTestFile(t, "sample.osm", testOSM)
	scanner, err := OpenWayReader(context.Background(), fname)
	require.NoError(t, err)
	defer scanner.Close()

	storage := &recordingStorage{}
	storage.Storage = nopStorage{}
	stats, err := NewExtractor(storage, WithModes([]Mode{MODE_WALK})).Run(context.Background(), scanner)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.WaysScanned)
	assert.Equal(t, 2, stats.WaysProcessed)
	assert.ElementsMatch(t, []Edge{{From: 1, To: 2}, {From: 2, To: 3}, {From: 3, To: 2}}, storage.edges(MODE_WALK))
}

// nopStorage accepts preparation and nothing else
type nopStorage struct {
	Storage
}

func (nopStorage) Prepare(ctx context.Context, modes []Mode) error {
	return nil
}
