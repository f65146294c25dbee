package roadnet

// Direction tells in which directions along the way a mode may travel
type Direction struct {
	Forward  bool
	Backward bool
}

// Any returns true if at least one direction is allowed
func (d Direction) Any() bool {
	return d.Forward || d.Backward
}

var (
	directionBoth = Direction{Forward: true, Backward: true}
	directionNone = Direction{}
)

// Classification is the per-mode outcome of Classify for a single way
type Classification struct {
	// Excluded is set when the way is not a road at all or no enabled mode can use it
	Excluded   bool
	directions [modesEnd]Direction
}

// Direction returns permissions for the mode. Modes which were not enabled are closed.
func (cls Classification) Direction(mode Mode) Direction {
	if cls.Excluded || int(mode) >= len(cls.directions) {
		return directionNone
	}
	return cls.directions[mode]
}

var excludedWay = Classification{Excluded: true}

// Classify evaluates way tags against the enabled modes.
//
// Rules are applied in order, later ones overriding earlier ones. Every mode starts allowed in both directions.
// Unknown or missing tags match no rule.
func Classify(tags map[string]string, modes []Mode) Classification {
	// this is only for streets, no buildings or other stuff
	highway, ok := tags[ACCESS_HIGHWAY.String()]
	if !ok {
		return excludedWay
	}
	if inValues(accessExcludedValues, ACCESS_OSM_ACCESS.find(tags)) {
		return excludedWay
	}

	var dirs [modesEnd]Direction
	for _, mode := range modesAll {
		dirs[mode] = directionBoth
	}

	switch ACCESS_ONEWAY.find(tags) {
	case onewayForward:
		for _, mode := range modesAll {
			dirs[mode].Backward = false
		}
	case onewayReverse:
		for _, mode := range modesAll {
			dirs[mode].Forward = false
		}
	}

	switch ACCESS_ONEWAY_BICYCLE.find(tags) {
	case onewayForward:
		dirs[MODE_BICYCLE].Backward = false
	case onewayReverse:
		dirs[MODE_BICYCLE].Forward = false
	}

	for _, mode := range highwayDeniedModes[highway] {
		dirs[mode] = directionNone
	}

	foot := ACCESS_FOOT.find(tags)
	if inValues(footAllowedValues, foot) {
		dirs[MODE_WALK] = directionBoth
	}
	if inValues(bicycleAllowedValues, ACCESS_BICYCLE.find(tags)) {
		dirs[MODE_BICYCLE] = directionBoth
	}
	if inValues(footDeniedValues, foot) {
		dirs[MODE_WALK] = directionNone
	}

	cls := Classification{}
	usable := false
	for _, mode := range modes {
		if mode == MODE_UNDEFINED || int(mode) >= len(dirs) {
			continue
		}
		cls.directions[mode] = dirs[mode]
		if dirs[mode].Any() {
			usable = true
		}
	}
	if !usable {
		// unused in any covered mode
		return excludedWay
	}
	return cls
}
