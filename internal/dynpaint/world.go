package dynpaint

import (
	"github.com/Faultbox/dynpaint/internal/mesh"
	pmath "github.com/Faultbox/dynpaint/pkg/math"
)

// Pose is an object's geometry and world matrix at one point in time.
type Pose struct {
	Mesh   mesh.Provider
	Matrix pmath.Mat4
}

// ParticleState is the life state of a particle.
type ParticleState uint8

const (
	ParticleAlive ParticleState = iota
	ParticleUnborn
	ParticleDead
)

// Particle is one particle in world space.
type Particle struct {
	Co     pmath.Vec3
	Size   float32
	State  ParticleState
	Hidden bool
}

// ParticleSystem is the particle set carried by a particle brush.
type ParticleSystem struct {
	Particles     []Particle
	RandomSize    bool
	IncludeUnborn bool
	IncludeDead   bool
}

// usable reports whether p may paint.
func (ps *ParticleSystem) usable(p *Particle) bool {
	switch {
	case p.Hidden:
		return false
	case p.State == ParticleUnborn && !ps.IncludeUnborn:
		return false
	case p.State == ParticleDead && !ps.IncludeDead:
		return false
	}
	return true
}

// MaterialHit describes a brush surface point to be shaded.
type MaterialHit struct {
	Co      pmath.Vec3 // world position of the hit
	Face    int        // brush face index
	Corners [3]int     // face corners of the hit triangle
	Weights [3]float32 // barycentric weights within that triangle
}

// MaterialSampler returns the brush color at a hit. ok is false when the
// material contributes nothing.
type MaterialSampler interface {
	Sample(hit MaterialHit) (col RGB, alpha float32, ok bool)
}

// BrushInstance is a brush object posed at one evaluation time.
type BrushInstance struct {
	Object    ObjectID
	Name      string
	Settings  *BrushSettings
	Pose      Pose
	Particles *ParticleSystem
	Material  MaterialSampler
}

// Location returns the brush object origin in world space.
func (b *BrushInstance) Location() pmath.Vec3 { return b.Pose.Matrix.Translation() }

// World is the scene the simulation reads from. Times are in frames and may
// be fractional for sub-frame evaluation.
type World interface {
	// Pose returns the pose of object id at time t.
	Pose(id ObjectID, t float32) (Pose, bool)
	// Brushes returns the active brushes at time t, limited to group when set.
	Brushes(t float32, group string) []BrushInstance
	// Force returns the combined force field vector at p. It may be called
	// from several goroutines at once.
	Force(t float32, p pmath.Vec3) pmath.Vec3
	// Gravity returns the global gravity, or zero when disabled.
	Gravity() pmath.Vec3
}
