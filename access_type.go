package roadnet

// AccessType is an OSM tag key consulted while classifying a way
type AccessType uint16

const (
	ACCESS_HIGHWAY = AccessType(iota + 1)
	ACCESS_OSM_ACCESS
	ACCESS_ONEWAY
	ACCESS_ONEWAY_BICYCLE
	ACCESS_FOOT
	ACCESS_BICYCLE
	ACCESS_UNDEFINED = AccessType(0)
)

func (iotaIdx AccessType) String() string {
	return [...]string{"undefined", "highway", "access", "oneway", "oneway:bicycle", "foot", "bicycle"}[iotaIdx]
}

// find returns tag value for the access key. Missing key gives empty string which matches no rule.
func (iotaIdx AccessType) find(tags map[string]string) string {
	return tags[iotaIdx.String()]
}
