package sim

import "errors"

var (
	ErrInvalidConfig    = errors.New("sim: invalid config")
	ErrUnknownComponent = errors.New("sim: unknown component")
	ErrUnknownBody      = errors.New("sim: body not recorded")
)
