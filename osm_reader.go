package roadnet

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/paulmach/osm/osmxml"
	"github.com/pkg/errors"
)

// OSMScanner is common interface of paulmach/osm PBF and XML scanners
type OSMScanner interface {
	Scan() bool
	Close() error
	Err() error
	Object() osm.Object
}

const pbfProcs = 4

// osmWayReader streams highway ways of an OSM file with node coordinates resolved.
//
// Ways do not carry coordinates in OSM files, so the file is read three times:
// referenced node IDs are collected first, then their coordinates, then ways are streamed.
type osmWayReader struct {
	ctx      context.Context
	file     *os.File
	filename string
	coords   map[osm.NodeID]GeoPoint
	scanner  OSMScanner
	way      Way
	err      error
	missing  int
}

// OpenWayReader prepares stream of ways carrying `highway` tag from .osm.pbf, .osm or .xml file
func OpenWayReader(ctx context.Context, filename string) (WayScanner, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "File open")
	}
	reader := &osmWayReader{
		ctx:      ctx,
		file:     file,
		filename: filename,
	}
	err = reader.prepare()
	if err != nil {
		file.Close()
		return nil, err
	}
	return reader, nil
}

func newOSMScanner(ctx context.Context, file *os.File, filename string) (OSMScanner, error) {
	// Guess file extension and prepare correct scanner
	ext := filepath.Ext(filename)
	switch ext {
	case ".osm", ".xml":
		return osmxml.New(ctx, file), nil
	case ".pbf", ".osm.pbf":
		return osmpbf.New(ctx, file, pbfProcs), nil
	default:
		return nil, errors.Wrapf(ErrUnknownFormat, "extension '%s' for file '%s'", ext, filename)
	}
}

// rewind seeks file to start and opens a fresh scanner over it
func (reader *osmWayReader) rewind() (OSMScanner, error) {
	_, err := reader.file.Seek(0, io.SeekStart)
	if err != nil {
		return nil, errors.Wrap(err, "Can't repeat seeking")
	}
	return newOSMScanner(reader.ctx, reader.file, reader.filename)
}

func (reader *osmWayReader) prepare() error {
	nodesSeen, err := reader.collectNodeIDs()
	if err != nil {
		return errors.Wrap(err, "Scanner error on Ways")
	}
	err = reader.resolveCoordinates(nodesSeen)
	if err != nil {
		return errors.Wrap(err, "Scanner error on Nodes")
	}
	reader.scanner, err = reader.rewind()
	return err
}

func (reader *osmWayReader) collectNodeIDs() (map[osm.NodeID]struct{}, error) {
	scanner, err := reader.rewind()
	if err != nil {
		return nil, err
	}
	defer scanner.Close()
	nodesSeen := make(map[osm.NodeID]struct{})
	for scanner.Scan() {
		way, ok := scanner.Object().(*osm.Way)
		if !ok {
			continue
		}
		if !isHighway(way) {
			continue
		}
		for _, node := range way.Nodes {
			nodesSeen[node.ID] = struct{}{}
		}
	}
	return nodesSeen, scanner.Err()
}

func (reader *osmWayReader) resolveCoordinates(nodesSeen map[osm.NodeID]struct{}) error {
	scanner, err := reader.rewind()
	if err != nil {
		return err
	}
	defer scanner.Close()
	reader.coords = make(map[osm.NodeID]GeoPoint, len(nodesSeen))
	for scanner.Scan() {
		node, ok := scanner.Object().(*osm.Node)
		if !ok {
			continue
		}
		if _, ok := nodesSeen[node.ID]; ok {
			delete(nodesSeen, node.ID)
			reader.coords[node.ID] = GeoPoint{Lat: node.Lat, Lon: node.Lon}
		}
	}
	return scanner.Err()
}

func isHighway(way *osm.Way) bool {
	for _, tag := range way.Tags {
		if tag.Key == ACCESS_HIGHWAY.String() {
			return true
		}
	}
	return false
}

func (reader *osmWayReader) Scan() bool {
	if reader.err != nil {
		return false
	}
	for reader.scanner.Scan() {
		way, ok := reader.scanner.Object().(*osm.Way)
		if !ok || !isHighway(way) {
			continue
		}
		reader.way = Way{
			ID:    int64(way.ID),
			Tags:  way.Tags.Map(),
			Nodes: make([]WayNode, 0, len(way.Nodes)),
		}
		for _, wayNode := range way.Nodes {
			pt, ok := reader.coords[wayNode.ID]
			if !ok {
				// referenced node is absent from the extract
				reader.missing++
				continue
			}
			reader.way.Nodes = append(reader.way.Nodes, WayNode{ID: int64(wayNode.ID), Lat: pt.Lat, Lon: pt.Lon})
		}
		return true
	}
	reader.err = reader.scanner.Err()
	return false
}

func (reader *osmWayReader) Way() Way {
	return reader.way
}

func (reader *osmWayReader) Err() error {
	return reader.err
}

// MissingNodes returns number of way node references skipped since their coordinates were not found
func (reader *osmWayReader) MissingNodes() int {
	return reader.missing
}

func (reader *osmWayReader) Close() error {
	if reader.scanner != nil {
		reader.scanner.Close()
	}
	return reader.file.Close()
}
