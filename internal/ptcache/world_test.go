package ptcache

import (
	"github.com/Faultbox/dynpaint/internal/dynpaint"
	"github.com/Faultbox/dynpaint/internal/mesh"
	pmath "github.com/Faultbox/dynpaint/pkg/math"
)

type staticWorld struct{ m mesh.Provider }

func (w staticWorld) Pose(dynpaint.ObjectID, float32) (dynpaint.Pose, bool) {
	return dynpaint.Pose{Mesh: w.m, Matrix: pmath.Identity()}, true
}

func (staticWorld) Brushes(float32, string) []dynpaint.BrushInstance { return nil }

func (staticWorld) Force(float32, pmath.Vec3) pmath.Vec3 { return pmath.Vec3{} }

func (staticWorld) Gravity() pmath.Vec3 { return pmath.Vec3{} }
