package viz

import (
	"math"

	"github.com/san-kum/satsim/internal/dynamo"
)

// Camera is an orthographic view of the world, rotated about X then Y and
// fitted to a fixed world window.
type Camera struct {
	RotX, RotY float64
	Zoom       float64

	center dynamo.Vec3
	extent float64
	fitted bool
}

// NewCamera tilts the view the way the 3D scene did (-20° about X, -30° about Y).
func NewCamera() *Camera {
	return &Camera{RotX: -20 * math.Pi / 180, RotY: -30 * math.Pi / 180, Zoom: 1}
}

func (c *Camera) RotateX(a float64) { c.RotX += a }
func (c *Camera) RotateY(a float64) { c.RotY += a }
func (c *Camera) ZoomIn()           { c.Zoom = math.Min(20, c.Zoom*1.2) }
func (c *Camera) ZoomOut()          { c.Zoom = math.Max(0.05, c.Zoom/1.2) }

func (c *Camera) RotatePoint(p dynamo.Vec3) dynamo.Vec3 {
	cx, sx := math.Cos(c.RotX), math.Sin(c.RotX)
	p.Y, p.Z = p.Y*cx-p.Z*sx, p.Y*sx+p.Z*cx
	cy, sy := math.Cos(c.RotY), math.Sin(c.RotY)
	p.X, p.Z = p.X*cy+p.Z*sy, -p.X*sy+p.Z*cy
	return p
}

// Fit centres the window on the bodies once; later calls are no-ops so the
// motion stays visible.
func (c *Camera) Fit(bodies []dynamo.Body) {
	if c.fitted || len(bodies) == 0 {
		return
	}
	lo := dynamo.Vec3{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)}
	hi := dynamo.Vec3{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)}
	grow := func(p dynamo.Vec3, r float64) {
		lo = dynamo.Vec3{X: math.Min(lo.X, p.X-r), Y: math.Min(lo.Y, p.Y-r), Z: math.Min(lo.Z, p.Z-r)}
		hi = dynamo.Vec3{X: math.Max(hi.X, p.X+r), Y: math.Max(hi.Y, p.Y+r), Z: math.Max(hi.Z, p.Z+r)}
	}
	for _, b := range bodies {
		if b.Mode() == dynamo.Orbital {
			grow(dynamo.Vec3{}, b.OrbitRadius+b.Radius)
			continue
		}
		grow(b.Position(), b.Radius)
	}
	c.center = lo.Add(hi).Scale(0.5)
	c.extent = math.Max(hi.Sub(lo).Norm()*0.6, 1)
	c.fitted = true
}

// Project maps a world point to canvas sub-pixels and scales a world
// length to sub-pixels.
func (c *Camera) Project(p dynamo.Vec3, w, h int) (x, y int, scale float64) {
	q := c.RotatePoint(p.Sub(c.center))
	half := float64(min(w, h)) / 2
	scale = half / c.extent * c.Zoom
	x = int(math.Round(float64(w)/2 + q.X*scale))
	y = int(math.Round(float64(h)/2 - q.Y*scale))
	return x, y, scale
}
