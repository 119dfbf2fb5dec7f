package integrators

import "github.com/san-kum/swervesim/internal/dynamo"

// Euler is the explicit first-order step. Cheap, and accurate enough for
// the kinematic-scale substeps the engine uses.
type Euler struct {
	dx dynamo.State
}

func NewEuler() *Euler { return &Euler{} }

func (e *Euler) Step(sys dynamo.System, dst, x dynamo.State, u dynamo.Control, t, dt float64) {
	e.dx = grow(e.dx, len(x))
	sys.Derive(e.dx, x, u, t)
	for i := range x {
		dst[i] = x[i] + dt*e.dx[i]
	}
}

func grow(s dynamo.State, n int) dynamo.State {
	if len(s) != n {
		return make(dynamo.State, n)
	}
	return s
}
