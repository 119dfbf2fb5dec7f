package dynamo

import "errors"

var (
	ErrInvalidState      = errors.New("dynamo: plant state diverged to NaN or Inf")
	ErrDimensionMismatch = errors.New("dynamo: state or control size does not match the plant")
	ErrUnknownIntegrator = errors.New("dynamo: unknown integrator")
)
