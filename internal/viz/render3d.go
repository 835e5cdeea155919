package viz

import (
	"math"

	"github.com/san-kum/sphsim/internal/dynamo"
)

// Camera turns particle positions into canvas sub-pixels. With no rotation
// it is the XY projection, +y up.
type Camera struct {
	RotX, RotY, RotZ float64
	Zoom             float64
}

func NewCamera() *Camera {
	return &Camera{Zoom: 1.0}
}

func (c *Camera) RotateX(a float64) { c.RotX += a }
func (c *Camera) RotateY(a float64) { c.RotY += a }
func (c *Camera) RotateZ(a float64) { c.RotZ += a }
func (c *Camera) ZoomIn()           { c.Zoom = math.Min(10, c.Zoom*1.2) }
func (c *Camera) ZoomOut()          { c.Zoom = math.Max(0.1, c.Zoom/1.2) }

// RotatePoint rotates a point around the camera's axes.
func (c *Camera) RotatePoint(p dynamo.Vec3) dynamo.Vec3 {
	x, y, z := p[0], p[1], p[2]
	cx, sx := math.Cos(c.RotX), math.Sin(c.RotX)
	y, z = y*cx-z*sx, y*sx+z*cx
	cy, sy := math.Cos(c.RotY), math.Sin(c.RotY)
	x, z = x*cy+z*sy, -x*sy+z*cy
	cz, sz := math.Cos(c.RotZ), math.Sin(c.RotZ)
	x, y = x*cz-y*sz, x*sz+y*cz
	return dynamo.Vec3{x, y, z}
}

// Project maps p into a sw x sh sub-pixel screen where extent world units
// span half the shorter side. ok is false for points off screen.
func (c *Camera) Project(p dynamo.Vec3, extent float64, sw, sh int) (int, int, bool) {
	if extent <= 0 {
		extent = 1
	}
	rot := c.RotatePoint(p).Scale(c.Zoom / extent)
	half := float64(min(sw, sh)) / 2
	sx := int(math.Round(rot[0]*half)) + sw/2
	sy := int(math.Round(-rot[1]*half)) + sh/2
	return sx, sy, sx >= 0 && sx < sw && sy >= 0 && sy < sh
}

// Extent is the largest absolute coordinate among finite records, or 1 when
// there are none.
func Extent(records []dynamo.Record) float64 {
	ext := 0.0
	for _, r := range records {
		if !r.Position.IsFinite() {
			continue
		}
		for _, v := range r.Position {
			ext = math.Max(ext, math.Abs(v))
		}
	}
	if ext == 0 {
		return 1
	}
	return ext
}

// DrawSnapshot plots every record of snap onto c. The level of a point is
// its density band: the red channel of its colour split into bands steps.
func DrawSnapshot(c *Canvas, cam *Camera, snap dynamo.Snapshot, extent float64, bands int) {
	sw, sh := c.Width*2, c.Height*4
	for _, r := range snap.Records {
		if !r.Position.IsFinite() {
			continue
		}
		x, y, ok := cam.Project(r.Position, extent, sw, sh)
		if !ok {
			continue
		}
		c.Plot(x, y, Band(r.Color[0], bands))
	}
}

// Band maps a colour channel in [0, 1] to one of n bands, clamping outside.
func Band(v float64, n int) int {
	if n <= 1 || math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= 1 {
		return n - 1
	}
	return min(int(v*float64(n)), n-1)
}
