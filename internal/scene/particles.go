package scene

import (
	"math/rand/v2"

	"github.com/chewxy/math32"

	"github.com/Faultbox/dynpaint/internal/dynpaint"
	pmath "github.com/Faultbox/dynpaint/pkg/math"
)

// Emitter is a deterministic particle system attached to a brush object.
// Particles are born evenly between Start and End and fly ballistically
// from the emitter origin.
type Emitter struct {
	Count    int
	Start    float32 // frame
	End      float32 // frame
	Lifetime float32 // frames
	// Velocity is the initial velocity in units per second.
	Velocity pmath.Vec3
	// Spread randomises the direction, 0 keeps Velocity, 1 is fully random.
	Spread     float32
	Size       float32
	RandomSize float32
	Seed       uint64
	UseGravity bool

	IncludeUnborn bool
	IncludeDead   bool
}

// particleRand is the per particle random draw.
type particleRand struct {
	dir  pmath.Vec3
	size float32
}

func (e *Emitter) draw(i int) particleRand {
	r := rand.New(rand.NewPCG(e.Seed, uint64(i)))
	z := 2*r.Float32() - 1
	phi := 2 * math32.Pi * r.Float32()
	rho := math32.Sqrt(1 - z*z)
	return particleRand{
		dir:  pmath.V3(rho*math32.Cos(phi), rho*math32.Sin(phi), z),
		size: r.Float32(),
	}
}

// birth returns the birth frame of particle i.
func (e *Emitter) birth(i int) float32 {
	if e.Count <= 1 {
		return e.Start
	}
	return e.Start + (e.End-e.Start)*float32(i)/float32(e.Count-1)
}

// Particles evaluates the system at frame t. origin returns the emitter
// location at a frame; fps converts frames to seconds.
func (e *Emitter) Particles(t float32, origin func(float32) pmath.Vec3, gravity pmath.Vec3, fps float32) *dynpaint.ParticleSystem {
	ps := &dynpaint.ParticleSystem{
		Particles:     make([]dynpaint.Particle, e.Count),
		RandomSize:    e.RandomSize > 0,
		IncludeUnborn: e.IncludeUnborn,
		IncludeDead:   e.IncludeDead,
	}
	if fps <= 0 {
		fps = DefaultFPS
	}
	speed := e.Velocity.Length()
	for i := range ps.Particles {
		rnd := e.draw(i)
		born := e.birth(i)
		age := t - born
		state := dynpaint.ParticleAlive
		switch {
		case age < 0:
			state, age = dynpaint.ParticleUnborn, 0
		case e.Lifetime > 0 && age > e.Lifetime:
			state, age = dynpaint.ParticleDead, e.Lifetime
		}
		vel := e.Velocity
		if e.Spread > 0 {
			vel = pmath.LerpVec3(e.Velocity, rnd.dir.Scale(speed), e.Spread)
		}
		sec := age / fps
		co := origin(born).Add(vel.Scale(sec))
		if e.UseGravity {
			co = co.Add(gravity.Scale(0.5 * sec * sec))
		}
		ps.Particles[i] = dynpaint.Particle{
			Co:    co,
			Size:  e.Size * (1 - e.RandomSize*rnd.size),
			State: state,
		}
	}
	return ps
}
