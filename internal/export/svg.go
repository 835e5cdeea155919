// Package export renders snapshots and series as standalone SVG documents.
package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/sphsim/internal/dynamo"
	"github.com/san-kum/sphsim/internal/viz"
)

// Axes picks which position components become the horizontal and vertical
// SVG axes.
type Axes struct {
	H, V int
}

var (
	AxesXY = Axes{0, 1}
	AxesXZ = Axes{0, 2}
	AxesYZ = Axes{1, 2}
)

// ParseAxes accepts "xy", "xz" or "yz".
func ParseAxes(s string) (Axes, error) {
	switch strings.ToLower(s) {
	case "xy", "":
		return AxesXY, nil
	case "xz":
		return AxesXZ, nil
	case "yz":
		return AxesYZ, nil
	}
	return AxesXY, &dynamo.ConfigError{Field: "axes", Value: s, Wrapped: dynamo.ErrInvalidConfig}
}

func header(sb *strings.Builder, width, height int) {
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))
}

type bounds struct {
	minX, maxX, minY, maxY float64
}

// padded widens b by 10% on each side; degenerate ranges become 1.
func (b bounds) padded() bounds {
	rangeX := b.maxX - b.minX
	rangeY := b.maxY - b.minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	return bounds{
		minX: b.minX - rangeX*0.1,
		maxX: b.maxX + rangeX*0.1,
		minY: b.minY - rangeY*0.1,
		maxY: b.maxY + rangeY*0.1,
	}
}

func (b bounds) project(x, y float64, width, height int) (float64, float64) {
	px := (x - b.minX) / (b.maxX - b.minX) * float64(width)
	py := float64(height) - (y-b.minY)/(b.maxY-b.minY)*float64(height)
	return px, py
}

// SnapshotToSVG draws every finite record of snap as a dot, projected onto
// axes and filled with the record's colour clamped to [0, 1].
func SnapshotToSVG(snap dynamo.Snapshot, width, height int, axes Axes) string {
	var sb strings.Builder
	header(&sb, width, height)

	b, ok := recordBounds(snap.Records, axes)
	if ok {
		b = b.padded()
		radius := math.Max(1, float64(min(width, height))/200)
		sb.WriteString("<g>\n")
		for _, r := range snap.Records {
			if !r.Position.IsFinite() {
				continue
			}
			cx, cy := b.project(r.Position[axes.H], r.Position[axes.V], width, height)
			sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s"/>
`, cx, cy, radius, hexColor(r.Color)))
		}
		sb.WriteString("</g>\n")
	}

	sb.WriteString(fmt.Sprintf(`<text x="8" y="16" fill="#888899" font-family="monospace" font-size="12">tick %d  t=%.3f  n=%d</text>
`, snap.Tick, snap.Time, snap.Len()))
	sb.WriteString("</svg>")
	return sb.String()
}

func recordBounds(records []dynamo.Record, axes Axes) (bounds, bool) {
	var b bounds
	found := false
	for _, r := range records {
		if !r.Position.IsFinite() {
			continue
		}
		x, y := r.Position[axes.H], r.Position[axes.V]
		if !found {
			b = bounds{x, x, y, y}
			found = true
			continue
		}
		b.minX = math.Min(b.minX, x)
		b.maxX = math.Max(b.maxX, x)
		b.minY = math.Min(b.minY, y)
		b.maxY = math.Max(b.maxY, y)
	}
	return b, found
}

// SeriesToSVG draws values against their index as a polyline. Fewer than two
// values give an empty string.
func SeriesToSVG(values []float64, width, height int, strokeColor string) string {
	if len(values) < 2 {
		return ""
	}

	b := bounds{0, float64(len(values) - 1), values[0], values[0]}
	for _, v := range values {
		b.minY = math.Min(b.minY, v)
		b.maxY = math.Max(b.maxY, v)
	}
	b = b.padded()

	var sb strings.Builder
	header(&sb, width, height)
	sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="M`, strokeColor))

	for i, v := range values {
		x, y := b.project(float64(i), v, width, height)
		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}

// CanvasToSVG converts a Braille canvas to SVG format. Dots take
// palette[level] of their cell, or green when palette is empty.
func CanvasToSVG(canvas *viz.Canvas, scale float64, palette []string) string {
	if canvas == nil {
		return ""
	}

	width := int(float64(canvas.Width) * scale * 2)   // 2 sub-pixels per char
	height := int(float64(canvas.Height) * scale * 4) // 4 sub-pixels per char

	var sb strings.Builder
	header(&sb, width, height)

	// Braille dot-to-bit mapping
	pixelMap := [4][2]int{
		{0x01, 0x08},
		{0x02, 0x10},
		{0x04, 0x20},
		{0x40, 0x80},
	}

	dotRadius := scale * 0.4

	for row := 0; row < canvas.Height; row++ {
		for col := 0; col < canvas.Width; col++ {
			r := canvas.Grid[row][col]
			if r <= 0x2800 {
				continue
			}
			pattern := int(r - 0x2800)
			fill := "#00ff00"
			if len(palette) > 0 {
				fill = palette[min(canvas.Level[row][col], len(palette)-1)]
			}

			baseX := float64(col) * scale * 2
			baseY := float64(row) * scale * 4

			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if pattern&pixelMap[dy][dx] != 0 {
						cx := baseX + float64(dx)*scale + scale/2
						cy := baseY + float64(dy)*scale + scale/2
						sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s"/>
`, cx, cy, dotRadius, fill))
					}
				}
			}
		}
	}

	sb.WriteString("</svg>")
	return sb.String()
}

func hexColor(c dynamo.Vec3) string {
	var out [3]int
	for i, v := range c {
		if math.IsNaN(v) {
			v = 0
		}
		out[i] = int(math.Round(math.Min(1, math.Max(0, v)) * 255))
	}
	return fmt.Sprintf("#%02x%02x%02x", out[0], out[1], out[2])
}
