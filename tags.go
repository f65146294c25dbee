package roadnet

const (
	onewayForward = "yes"
	onewayReverse = "-1"
)

var (
	// See ref.: https://taginfo.openstreetmap.org/keys/access#values
	accessExcludedValues = map[string]struct{}{
		"private":      {},
		"no":           {},
		"agricultural": {},
		"delivery":     {},
		"military":     {},
		"emergency":    {},
	}

	footAllowedValues = map[string]struct{}{
		"yes":        {},
		"designated": {},
	}

	footDeniedValues = map[string]struct{}{
		"no":           {},
		"use_sidepath": {},
	}

	bicycleAllowedValues = map[string]struct{}{
		"yes":        {},
		"designated": {},
	}

	// Modes which are closed in both directions for the given `highway` value
	highwayDeniedModes = map[string][]Mode{
		"footway":  {MODE_BICYCLE, MODE_CAR},
		"motorway": {MODE_WALK, MODE_BICYCLE},
		"cycleway": {MODE_CAR},
	}
)

func inValues(values map[string]struct{}, value string) bool {
	_, ok := values[value]
	return ok
}
