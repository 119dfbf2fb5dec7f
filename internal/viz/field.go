package viz

import (
	"math"

	"github.com/golang/geo/r2"

	"github.com/san-kum/swervesim/internal/drive"
	"github.com/san-kum/swervesim/internal/kinematics"
)

// tickLength is the drawn length of a module direction tick, in metres.
const tickLength = 0.22

// DrawGrid marks every whole metre inside the viewport.
func DrawGrid(c *Canvas, v Viewport) {
	w, h := c.PixelSize()
	halfW, halfH := float64(w)/2/v.Scale, float64(h)/2/v.Scale
	for x := math.Ceil(v.Center.X - halfW); x <= v.Center.X+halfW; x++ {
		for y := math.Ceil(v.Center.Y - halfH); y <= v.Center.Y+halfH; y++ {
			v.Dot(c, r2.Point{X: x, Y: y})
		}
	}
}

// DrawTrail plots past robot positions.
func DrawTrail(c *Canvas, v Viewport, trail []r2.Point) {
	for _, p := range trail {
		v.Dot(c, p)
	}
}

// DrawRobot draws the chassis outline at pose, a heading line from the
// centre to the front edge, and one tick per module along its wheel
// direction.
func DrawRobot(c *Canvas, v Viewport, layout *kinematics.Layout, pose drive.Pose, snap drive.SensorSnapshot) {
	heading := pose.Heading.Radians()
	center := r2.Point{X: pose.X, Y: pose.Y}
	field := func(off r2.Point) r2.Point {
		return center.Add(kinematics.Rotate(off, heading))
	}

	// FL, FR, BR, BL walks the outline.
	outline := []int{0, 1, 3, 2, 0}
	for i := 0; i+1 < len(outline); i++ {
		v.Line(c, field(layout.Offsets[outline[i]]), field(layout.Offsets[outline[i+1]]))
	}

	front := layout.Offsets[0].Add(layout.Offsets[1]).Mul(0.5)
	v.Line(c, center, field(front))

	for m, off := range layout.Offsets {
		base := field(off)
		dir := kinematics.Polar(tickLength, heading+snap.SteerPositionRad[m])
		v.Line(c, base, base.Add(dir))
	}
}
