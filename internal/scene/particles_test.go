package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/dynpaint/internal/dynpaint"
	pmath "github.com/Faultbox/dynpaint/pkg/math"
)

func fixedOrigin(float32) pmath.Vec3 { return pmath.Vec3{} }

func TestEmitterLifeCycle(t *testing.T) {
	e := Emitter{Count: 3, Start: 1, End: 3, Lifetime: 10, Velocity: pmath.V3(0, 0, 24), Size: 1}

	ps := e.Particles(2, fixedOrigin, pmath.Vec3{}, 24)
	require.Len(t, ps.Particles, 3)
	assert.False(t, ps.RandomSize)

	want := []struct {
		state dynpaint.ParticleState
		z     float32
	}{
		{dynpaint.ParticleAlive, 1},
		{dynpaint.ParticleAlive, 0},
		{dynpaint.ParticleUnborn, 0},
	}
	for i, w := range want {
		p := ps.Particles[i]
		assert.Equal(t, w.state, p.State, "particle %d", i)
		assert.InDelta(t, w.z, p.Co.Z, 1e-5, "particle %d", i)
		assert.Equal(t, float32(1), p.Size, "particle %d", i)
	}

	late := e.Particles(20, fixedOrigin, pmath.Vec3{}, 24)
	for i, p := range late.Particles {
		assert.Equal(t, dynpaint.ParticleDead, p.State, "particle %d", i)
		assert.InDelta(t, 10, p.Co.Z, 1e-4, "particle %d", i)
	}
}

func TestEmitterGravity(t *testing.T) {
	e := Emitter{Count: 1, Start: 1, UseGravity: true}
	ps := e.Particles(25, fixedOrigin, pmath.V3(0, 0, -9.81), 24)
	assert.InDelta(t, -4.905, ps.Particles[0].Co.Z, 1e-4)
}

func TestEmitterFollowsOriginAtBirth(t *testing.T) {
	e := Emitter{Count: 2, Start: 1, End: 5}
	origin := func(f float32) pmath.Vec3 { return pmath.V3(f, 0, 0) }
	ps := e.Particles(10, origin, pmath.Vec3{}, 24)
	assert.InDelta(t, 1, ps.Particles[0].Co.X, 1e-6)
	assert.InDelta(t, 5, ps.Particles[1].Co.X, 1e-6)
}

func TestEmitterDeterministic(t *testing.T) {
	e := Emitter{Count: 50, Start: 1, End: 1, Velocity: pmath.V3(24, 0, 0), Spread: 1, Size: 1, RandomSize: 0.5, Seed: 7}
	a := e.Particles(2, fixedOrigin, pmath.Vec3{}, 24)
	b := e.Particles(2, fixedOrigin, pmath.Vec3{}, 24)
	assert.Equal(t, a, b)
	assert.True(t, a.RandomSize)

	for i, p := range a.Particles {
		assert.InDelta(t, 1, p.Co.Length(), 1e-4, "particle %d keeps its speed", i)
		assert.GreaterOrEqual(t, p.Size, float32(0.5), "particle %d", i)
		assert.LessOrEqual(t, p.Size, float32(1), "particle %d", i)
	}

	e.Seed = 8
	c := e.Particles(2, fixedOrigin, pmath.Vec3{}, 24)
	assert.NotEqual(t, a.Particles, c.Particles)
}
