// Package integrators provides the fixed-step ODE solvers the swerve
// engine can run its motor plants with.
package integrators

import (
	"fmt"
	"maps"
	"slices"

	"github.com/san-kum/swervesim/internal/dynamo"
)

var factories = map[string]func() dynamo.Integrator{
	"euler": func() dynamo.Integrator { return NewEuler() },
	"heun":  func() dynamo.Integrator { return NewHeun() },
	"rk4":   func() dynamo.Integrator { return NewRK4() },
}

// New returns a fresh integrator by name. Integrators carry scratch
// buffers, so each engine needs its own.
func New(name string) (dynamo.Integrator, error) {
	fn, ok := factories[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (have %v)", dynamo.ErrUnknownIntegrator, name, Names())
	}
	return fn(), nil
}

func Names() []string {
	return slices.Sorted(maps.Keys(factories))
}
