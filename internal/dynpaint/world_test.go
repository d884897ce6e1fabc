package dynpaint

import (
	"github.com/Faultbox/dynpaint/internal/mesh"
	pmath "github.com/Faultbox/dynpaint/pkg/math"
)

const testCanvasID ObjectID = 1

// staticWorld is a scene with a fixed canvas, fixed brushes and a constant force.
type staticWorld struct {
	canvas  Pose
	brushes []BrushInstance
	force   pmath.Vec3
	gravity pmath.Vec3
}

func newStaticWorld(m mesh.Provider, brushes ...BrushInstance) *staticWorld {
	return &staticWorld{canvas: Pose{Mesh: m, Matrix: pmath.Identity()}, brushes: brushes}
}

func (w *staticWorld) Pose(id ObjectID, _ float32) (Pose, bool) {
	if id == testCanvasID {
		return w.canvas, true
	}
	for _, b := range w.brushes {
		if b.Object == id {
			return b.Pose, true
		}
	}
	return Pose{}, false
}

func (w *staticWorld) Brushes(float32, string) []BrushInstance { return w.brushes }

func (w *staticWorld) Force(float32, pmath.Vec3) pmath.Vec3 { return w.force }

func (w *staticWorld) Gravity() pmath.Vec3 { return w.gravity }

func meshBrushAt(id ObjectID, m mesh.Provider, at pmath.Mat4, settings BrushSettings) BrushInstance {
	return BrushInstance{
		Object:   id,
		Name:     "brush",
		Settings: &settings,
		Pose:     Pose{Mesh: m, Matrix: at},
	}
}

// newTestSurface returns a vertex paint surface on a fresh canvas.
func newTestSurface(edit func(*SurfaceSettings)) *Surface {
	st := DefaultSurfaceSettings()
	st.StartFrame, st.EndFrame = 1, 10
	if edit != nil {
		edit(&st)
	}
	c := NewCanvas(testCanvasID, "canvas", WithWorkers(4))
	return c.AddSurface("surface", st)
}
