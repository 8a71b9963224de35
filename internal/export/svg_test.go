package export

import (
	"strings"
	"testing"

	"github.com/onsi/gomega"

	"github.com/san-kum/satsim/internal/dynamo"
	"github.com/san-kum/satsim/internal/integrators"
)

func TestTracks(t *testing.T) {
	g := gomega.NewWithT(t)

	a, _ := dynamo.NewLinear("A", 1, dynamo.Vec3{}, dynamo.Vec3{X: 10})
	o, _ := dynamo.NewOrbital("O", 1, 100, 0.5, 0)
	tracks := Tracks(integrators.NewEuler(0.1), []dynamo.Body{a, o}, 4)

	g.Expect(tracks).To(gomega.HaveLen(2))
	g.Expect(tracks[0].ID).To(gomega.Equal("A"))
	g.Expect(tracks[0].Points).To(gomega.HaveLen(5))
	g.Expect(tracks[0].Points[4].X).To(gomega.BeNumerically("~", 4, 1e-9))
	g.Expect(tracks[1].Points[0]).To(gomega.Equal(dynamo.Vec3{X: 100}))
	g.Expect(a.Pos).To(gomega.Equal(dynamo.Vec3{}))
}

func TestTracksSVG(t *testing.T) {
	g := gomega.NewWithT(t)

	a, _ := dynamo.NewLinear("A", 10, dynamo.Vec3{}, dynamo.Vec3{X: 1})
	b, _ := dynamo.NewLinear("B", 10, dynamo.Vec3{X: 5}, dynamo.Vec3{X: -1})
	tracks := Tracks(integrators.NewEuler(0.1), []dynamo.Body{a, b}, 3)
	events := []dynamo.Event{
		{Kind: dynamo.KindCollision, A: "A", B: "B", Step: 2},
		{Kind: dynamo.KindCollision, A: "A", B: "missing", Step: 1},
	}

	var sb strings.Builder
	g.Expect(TracksSVG(&sb, tracks, events, 400, 300)).To(gomega.Succeed())

	out := sb.String()
	g.Expect(out).To(gomega.HavePrefix("<?xml"))
	g.Expect(strings.Count(out, "<path")).To(gomega.Equal(2))
	g.Expect(strings.Count(out, "<circle")).To(gomega.Equal(1))
	g.Expect(out).To(gomega.ContainSubstring(">A</text>"))
	g.Expect(out).To(gomega.HaveSuffix("</svg>\n"))
}

func TestTracksSVGEmpty(t *testing.T) {
	var sb strings.Builder
	if err := TracksSVG(&sb, nil, nil, 10, 10); err == nil {
		t.Error("expected error for no tracks")
	}
}

func TestTracksSVGEscapesIDs(t *testing.T) {
	g := gomega.NewWithT(t)

	a, _ := dynamo.NewLinear("<A&B>", 1, dynamo.Vec3{}, dynamo.Vec3{X: 1})
	tracks := Tracks(integrators.NewEuler(1), []dynamo.Body{a}, 2)

	var sb strings.Builder
	g.Expect(TracksSVG(&sb, tracks, nil, 100, 100)).To(gomega.Succeed())
	g.Expect(sb.String()).To(gomega.ContainSubstring(">&lt;A&amp;B&gt;</text>"))
	g.Expect(sb.String()).NotTo(gomega.ContainSubstring("<A&B>"))
}
