package roadnet

import (
	"strings"

	"github.com/pkg/errors"
)

// Mode is a travel modality owning its own edge set
type Mode uint16

const (
	MODE_WALK = Mode(iota + 1)
	MODE_BICYCLE
	MODE_CAR
	MODE_UNDEFINED = Mode(0)
)

// modesEnd bounds arrays indexed by Mode
const modesEnd = MODE_CAR + 1

func (iotaIdx Mode) String() string {
	return [...]string{"undefined", "walk", "bicycle", "car"}[iotaIdx]
}

// EdgeTable returns name of the table keeping edges of the mode
func (iotaIdx Mode) EdgeTable() string {
	return iotaIdx.String() + "_edges"
}

var (
	modesAll = []Mode{MODE_WALK, MODE_BICYCLE, MODE_CAR}

	modesByName = map[string]Mode{
		"walk":    MODE_WALK,
		"foot":    MODE_WALK,
		"bicycle": MODE_BICYCLE,
		"bike":    MODE_BICYCLE,
		"car":     MODE_CAR,
		"auto":    MODE_CAR,
	}
)

// AllModes returns every supported mode in table creation order
func AllModes() []Mode {
	modes := make([]Mode, len(modesAll))
	copy(modes, modesAll)
	return modes
}

// ParseMode returns mode for its name. Aliases 'foot', 'bike' and 'auto' are accepted too.
func ParseMode(name string) (Mode, error) {
	mode, ok := modesByName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return MODE_UNDEFINED, errors.Wrapf(ErrUnknownMode, "'%s'", name)
	}
	return mode, nil
}

func hasMode(modes []Mode, mode Mode) bool {
	for _, m := range modes {
		if m == mode {
			return true
		}
	}
	return false
}
