package preview

import (
	"github.com/Faultbox/projector-rig/pkg/math"
	"github.com/Faultbox/projector-rig/pkg/projection"
)

// OutlineVertexCount is the number of vertices in OutlineVertices.
const OutlineVertexCount = 14

// OutlineVertices returns the outline as a line list: 7 segments (4 edges,
// 3 crosshair lines) × 2 endpoints, format [x, y, z] per vertex.
func OutlineVertices(o projection.Outline) []float64 {
	verts := make([]float64, 0, OutlineVertexCount*3)
	add := func(a, b math.Vec3) {
		verts = append(verts, a.X, a.Y, a.Z, b.X, b.Y, b.Z)
	}
	for i := range o.Rect {
		add(o.Rect[i], o.Rect[(i+1)%len(o.Rect)])
	}
	for _, seg := range o.Crosshair {
		add(seg.From, seg.To)
	}
	return verts
}

func vec2(x, y float64) math.Vec2 {
	return math.Vec2{X: x, Y: y}
}
