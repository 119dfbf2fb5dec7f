package integrators

import "github.com/san-kum/swervesim/internal/dynamo"

// RK4 is the classic fourth-order Runge-Kutta step. Stage buffers are
// reused between calls, so an RK4 belongs to one engine.
type RK4 struct {
	k      [4]dynamo.State
	staged dynamo.State
}

func NewRK4() *RK4 { return &RK4{} }

// stage returns x + h*k in the staging buffer.
func (r *RK4) stage(x, k dynamo.State, h float64) dynamo.State {
	for i := range x {
		r.staged[i] = x[i] + h*k[i]
	}
	return r.staged
}

func (r *RK4) Step(sys dynamo.System, dst, x dynamo.State, u dynamo.Control, t, dt float64) {
	n := len(x)
	for i := range r.k {
		r.k[i] = grow(r.k[i], n)
	}
	r.staged = grow(r.staged, n)

	half := dt / 2
	sys.Derive(r.k[0], x, u, t)
	sys.Derive(r.k[1], r.stage(x, r.k[0], half), u, t+half)
	sys.Derive(r.k[2], r.stage(x, r.k[1], half), u, t+half)
	sys.Derive(r.k[3], r.stage(x, r.k[2], dt), u, t+dt)

	for i := range x {
		dst[i] = x[i] + dt/6*(r.k[0][i]+2*r.k[1][i]+2*r.k[2][i]+r.k[3][i])
	}
}
