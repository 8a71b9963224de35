// Package export renders forecasts to files.
package export

import (
	"fmt"
	"html"
	"io"
	"math"
	"strings"

	"github.com/san-kum/satsim/internal/dynamo"
)

var palette = []string{"#00ff88", "#00aaff", "#ffaa00", "#ff66cc", "#aa88ff", "#88ffff"}

// Track is the projected path of one body, one point per step.
type Track struct {
	ID     string
	Points []dynamo.Vec3
}

// Tracks projects every body over steps 0..horizon.
func Tracks(integ dynamo.Integrator, bodies []dynamo.Body, horizon int) []Track {
	if horizon < 0 {
		horizon = 0
	}
	tracks := make([]Track, len(bodies))
	for i, b := range bodies {
		pts := make([]dynamo.Vec3, horizon+1)
		for s := range pts {
			pts[s] = integ.Project(b, s).Position()
		}
		tracks[i] = Track{ID: b.ID, Points: pts}
	}
	return tracks
}

// plane keeps the two axes with the widest spread, so 2D scenarios and
// orbits in the x-z plane both come out flat.
func plane(tracks []Track) func(dynamo.Vec3) (float64, float64) {
	lo := [3]float64{math.Inf(1), math.Inf(1), math.Inf(1)}
	hi := [3]float64{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for _, t := range tracks {
		for _, p := range t.Points {
			for k, v := range [3]float64{p.X, p.Y, p.Z} {
				lo[k] = math.Min(lo[k], v)
				hi[k] = math.Max(hi[k], v)
			}
		}
	}
	drop := 2
	for k := 0; k < 2; k++ {
		if hi[k]-lo[k] < hi[drop]-lo[drop] {
			drop = k
		}
	}
	switch drop {
	case 0:
		return func(p dynamo.Vec3) (float64, float64) { return p.Y, p.Z }
	case 1:
		return func(p dynamo.Vec3) (float64, float64) { return p.X, p.Z }
	default:
		return func(p dynamo.Vec3) (float64, float64) { return p.X, p.Y }
	}
}

// TracksSVG draws one path per track and marks every event at the midpoint
// of the two bodies at that step.
func TracksSVG(w io.Writer, tracks []Track, events []dynamo.Event, width, height int) error {
	if len(tracks) == 0 {
		return fmt.Errorf("nothing to draw")
	}
	flat := plane(tracks)

	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, t := range tracks {
		for _, p := range t.Points {
			x, y := flat(p)
			minX, maxX = math.Min(minX, x), math.Max(maxX, x)
			minY, maxY = math.Min(minY, y), math.Max(maxY, y)
		}
	}

	// Add padding
	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	minY -= rangeY * 0.1
	rangeX *= 1.2
	rangeY *= 1.2

	screen := func(p dynamo.Vec3) (float64, float64) {
		x, y := flat(p)
		return (x - minX) / rangeX * float64(width), float64(height) - (y-minY)/rangeY*float64(height)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	index := make(map[string]int, len(tracks))
	for i, t := range tracks {
		index[t.ID] = i
		color := palette[i%len(palette)]
		sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="M`, color))
		for s, p := range t.Points {
			x, y := screen(p)
			if s == 0 {
				sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
			} else {
				sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
			}
		}
		sb.WriteString("\"/>\n")
		x, y := screen(t.Points[0])
		sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%.1f" fill="%s" font-size="10">%s</text>
`, x+4, y-4, color, html.EscapeString(t.ID)))
	}

	sb.WriteString(`<g fill="none" stroke="#ff4444">` + "\n")
	for _, ev := range events {
		a, okA := index[ev.A]
		b, okB := index[ev.B]
		if !okA || !okB || ev.Step >= len(tracks[a].Points) || ev.Step >= len(tracks[b].Points) {
			continue
		}
		mid := tracks[a].Points[ev.Step].Add(tracks[b].Points[ev.Step]).Scale(0.5)
		x, y := screen(mid)
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="4"/>
`, x, y))
	}
	sb.WriteString("</g>\n</svg>\n")

	_, err := io.WriteString(w, sb.String())
	return err
}
