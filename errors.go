package roadnet

import "github.com/pkg/errors"

var (
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrNoModes       = errors.New("no travel mode enabled")
	ErrUnknownMode   = errors.New("unknown travel mode")
	ErrUnknownFormat = errors.New("unknown file format")
	ErrNoPath        = errors.New("no path found")
)
