package integrators

import "github.com/san-kum/swervesim/internal/dynamo"

// Heun is the explicit trapezoidal (RK2) step: an Euler predictor followed
// by averaging the slopes at both ends.
type Heun struct {
	k1, k2, pred dynamo.State
}

func NewHeun() *Heun { return &Heun{} }

func (h *Heun) Step(sys dynamo.System, dst, x dynamo.State, u dynamo.Control, t, dt float64) {
	n := len(x)
	h.k1, h.k2, h.pred = grow(h.k1, n), grow(h.k2, n), grow(h.pred, n)

	sys.Derive(h.k1, x, u, t)
	for i := range x {
		h.pred[i] = x[i] + dt*h.k1[i]
	}
	sys.Derive(h.k2, h.pred, u, t+dt)
	for i := range x {
		dst[i] = x[i] + dt*0.5*(h.k1[i]+h.k2[i])
	}
}
