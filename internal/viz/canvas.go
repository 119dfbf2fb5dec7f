package viz

import (
	"math"
	"strings"

	"github.com/golang/geo/r2"
)

// dots holds the braille bit for each pixel of a 2x4 cell, indexed
// [row][col]. The glyph is 0x2800 plus the OR of its lit dots.
var dots = [4][2]rune{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

const emptyCell = '\u2800'

// Canvas is a grid of braille cells, cols x rows characters. Pixels are
// addressed in sub-cell coordinates, (cols*2) x (rows*4), origin top-left.
type Canvas struct {
	cols, rows int
	cells      []rune
}

func NewCanvas(cols, rows int) *Canvas {
	c := &Canvas{cols: cols, rows: rows, cells: make([]rune, cols*rows)}
	c.Clear()
	return c
}

// PixelSize is the canvas size in sub-cell pixels.
func (c *Canvas) PixelSize() (int, int) { return c.cols * 2, c.rows * 4 }

// cell returns the index of the cell holding pixel (x, y) and its dot bit.
func (c *Canvas) cell(x, y int) (int, rune, bool) {
	w, h := c.PixelSize()
	if x < 0 || y < 0 || x >= w || y >= h {
		return 0, 0, false
	}
	return (y/4)*c.cols + x/2, dots[y%4][x%2], true
}

// Set lights a pixel. Off-canvas pixels are ignored.
func (c *Canvas) Set(x, y int) {
	if i, bit, ok := c.cell(x, y); ok {
		c.cells[i] |= bit
	}
}

// IsSet reports whether a pixel is lit.
func (c *Canvas) IsSet(x, y int) bool {
	i, bit, ok := c.cell(x, y)
	return ok && c.cells[i]&bit != 0
}

func (c *Canvas) Clear() {
	for i := range c.cells {
		c.cells[i] = emptyCell
	}
}

// DrawLine lights every pixel on the Bresenham line between both ends,
// clipping whatever falls off the canvas.
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := sign(x1-x0), sign(y1-y0)
	e := dx + dy
	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	b.Grow(len(c.cells)*3 + c.rows)
	for r := 0; r < c.rows; r++ {
		b.WriteString(string(c.cells[r*c.cols : (r+1)*c.cols]))
		b.WriteByte('\n')
	}
	return b.String()
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

// Viewport maps field metres onto canvas pixels, +x right and +y up,
// with Center at the middle of the canvas.
type Viewport struct {
	Center r2.Point
	// Scale is pixels per metre.
	Scale float64
}

// FitWidth returns a viewport showing span metres across the canvas.
func FitWidth(c *Canvas, span float64) Viewport {
	w, _ := c.PixelSize()
	return Viewport{Scale: float64(w) / span}
}

func (v Viewport) Project(c *Canvas, p r2.Point) (int, int) {
	w, h := c.PixelSize()
	d := p.Sub(v.Center).Mul(v.Scale)
	return int(math.Round(float64(w)/2 + d.X)), int(math.Round(float64(h)/2 - d.Y))
}

// Line draws a field-frame segment.
func (v Viewport) Line(c *Canvas, a, b r2.Point) {
	x0, y0 := v.Project(c, a)
	x1, y1 := v.Project(c, b)
	c.DrawLine(x0, y0, x1, y1)
}

func (v Viewport) Dot(c *Canvas, p r2.Point) {
	x, y := v.Project(c, p)
	c.Set(x, y)
}
