package transport

import "errors"

var (
	ErrZeroCrossSection     = errors.New("total cross section must be positive")
	ErrNegativeCrossSection = errors.New("cross section must not be negative")
	ErrZeroDirection        = errors.New("direction has zero magnitude")
	ErrAxisOutOfRange       = errors.New("axis index out of range")
	ErrInvalidSurface       = errors.New("invalid surface")
	ErrUnsupportedParticle  = errors.New("only neutrons are transported")
	ErrConfig               = errors.New("invalid configuration")
	ErrMeshMismatch         = errors.New("mesh dimensions differ")
)
