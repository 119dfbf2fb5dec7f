// Package export renders stored runs as SVG paths and PNG charts.
package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/golang/geo/r2"

	"github.com/san-kum/swervesim/internal/sim"
)

// PathFromSamples extracts the odometry track of a run.
func PathFromSamples(samples []sim.Sample) []r2.Point {
	pts := make([]r2.Point, len(samples))
	for i, s := range samples {
		pts[i] = r2.Point{X: s.Snapshot.OdometryX, Y: s.Snapshot.OdometryY}
	}
	return pts
}

// PathToSVG draws a field-frame path scaled to fit width x height, with
// equal scale on both axes, a start dot and a heading tick at the end.
// Field +y is drawn upward.
func PathToSVG(points []r2.Point, finalHeading float64, width, height int, strokeColor string) string {
	if len(points) < 2 {
		return ""
	}

	bounds := r2.RectFromPoints(points...)
	size := bounds.Size()
	span := math.Max(size.X, size.Y)
	if span == 0 {
		span = 1
	}
	pad := span * 0.1
	span += 2 * pad
	center := bounds.Center()
	scale := math.Min(float64(width), float64(height)) / span

	toSVG := func(p r2.Point) r2.Point {
		d := p.Sub(center).Mul(scale)
		return r2.Point{X: float64(width)/2 + d.X, Y: float64(height)/2 - d.Y}
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, strokeColor))

	for i, p := range points {
		q := toSVG(p)
		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", q.X, q.Y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", q.X, q.Y))
		}
	}
	sb.WriteString("\"/>\n")

	start := toSVG(points[0])
	sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="4" fill="#00ff88"/>
`, start.X, start.Y))

	end := toSVG(points[len(points)-1])
	tip := end.Add(r2.Point{X: math.Cos(finalHeading), Y: -math.Sin(finalHeading)}.Mul(12))
	sb.WriteString(fmt.Sprintf(`<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#ff4444" stroke-width="2"/>
`, end.X, end.Y, tip.X, tip.Y))

	sb.WriteString("</svg>")
	return sb.String()
}
