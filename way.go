package roadnet

// WayNode is a node reference of a way together with its coordinates
type WayNode struct {
	ID  int64
	Lat float64
	Lon float64
}

// Way is an ordered path of referenced points carrying descriptive tags.
// It lives only while being ingested.
type Way struct {
	ID    int64
	Tags  map[string]string
	Nodes []WayNode
}
