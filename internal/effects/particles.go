// SPDX-License-Identifier: MIT
package effects

import (
	"image/color"

	"beatviz/internal/effect"
	"beatviz/internal/render"
	"beatviz/pkg/pool"
	"beatviz/pkg/vmath"
)

func init() {
	effect.Register("particle-burst", NewParticleBurst, effect.Meta{
		Description: "Radial particle explosions fired on every beat, sized by bass energy.",
		Tags:        []string{"particles", "beat", "high-energy"},
		Variant:     "burst",
	})
}

type particle struct {
	body  vmath.Body
	life  float64
	ttl   float64
	size  float64
	hue   float64
	alive bool
}

// ParticleBurst spawns a ring of particles from the canvas center on
// each detected beat. Burst size scales with bass energy and beat
// intensity; between beats a faint simmer keeps the canvas alive.
type ParticleBurst struct {
	params *effect.Values
	pool   *pool.Pool[particle]
	rng    *vmath.Rand
	hue    float64

	// dead is the per-frame expiry scratch, truncated each step so the
	// render loop stays allocation-free once it has grown.
	dead []*particle
}

func NewParticleBurst() effect.Effect {
	p := &ParticleBurst{
		params: effect.NewValues([]effect.Parameter{
			effect.Slider("maxParticles", "Max Particles", 512, 64, 2048, 1, ""),
			effect.Slider("burstScale", "Burst Scale", 1.0, 0.1, 3.0, 0.05, "x"),
			effect.Slider("gravity", "Gravity", 60, 0, 400, 5, "px/s²"),
			effect.Boolean("trails", "Trails", true),
			effect.Color("tint", "Tint", "#ff8040"),
		}),
	}
	p.Reset()
	return p
}

func (p *ParticleBurst) ID() string                 { return "particle-burst" }
func (p *ParticleBurst) Name() string               { return "Particle Burst" }
func (p *ParticleBurst) Parameters() *effect.Values { return p.params }

func (p *ParticleBurst) Reset() {
	max := int(p.params.Float("maxParticles"))
	p.pool = pool.New(pool.Config[particle]{
		InitialSize:  max / 4,
		MaxSize:      max,
		GrowthFactor: 1.5,
		New:          func() *particle { return &particle{} },
		Reset: func(pt *particle) {
			*pt = particle{}
		},
	})
	p.rng = vmath.NewRand(0x9e3779b9)
	p.hue = 0
}

func (p *ParticleBurst) Render(ctx *effect.Context) {
	if p.params.Bool("trails") {
		render.FadeClear(ctx.Surface, 0.12)
	} else {
		ctx.Surface.Fill(color.RGBA{A: 255})
	}

	p.hue += ctx.Delta * (20 + 80*ctx.Audio.Normalized("treble"))

	if ctx.Beat != nil && ctx.Beat.IsBeat {
		p.burst(ctx)
	} else if ctx.Audio.Normalized("average") > 0.05 {
		p.simmer(ctx)
	}

	p.step(ctx)
}

// burst fires the main ring. Particle count and launch speed scale
// with bass so a kick drum reads bigger than a hi-hat.
func (p *ParticleBurst) burst(ctx *effect.Context) {
	bass := ctx.Audio.Normalized("bass")
	scale := p.params.Float("burstScale")
	count := int(vmath.Lerp(12, 96, bass*scale))
	cx := float64(ctx.Width) / 2
	cy := float64(ctx.Height) / 2
	speed := vmath.Lerp(80, 420, vmath.Clamp01(bass*scale)) * (1 + ctx.Beat.BeatIntensity)

	for i := 0; i < count; i++ {
		pt, ok := p.pool.Acquire()
		if !ok {
			break
		}
		dir := vmath.FromAngle(p.rng.Angle())
		pt.body.Pos = vmath.Vec2{X: cx, Y: cy}
		pt.body.Vel = dir.Scale(speed * p.rng.Range(0.4, 1.0))
		pt.body.Damping = 0.6
		pt.ttl = p.rng.Range(0.6, 1.6)
		pt.life = pt.ttl
		pt.size = p.rng.Range(1.5, 4.5) * (0.5 + bass)
		pt.hue = p.hue + p.rng.Range(-25, 25)
		pt.alive = true
	}
}

// simmer drips a few slow particles so quiet passages are not black.
func (p *ParticleBurst) simmer(ctx *effect.Context) {
	if p.rng.Float() > ctx.Audio.Normalized("average") {
		return
	}
	pt, ok := p.pool.Acquire()
	if !ok {
		return
	}
	pt.body.Pos = vmath.Vec2{
		X: p.rng.Range(0, float64(ctx.Width)),
		Y: float64(ctx.Height) + 4,
	}
	pt.body.Vel = vmath.Vec2{X: p.rng.Range(-10, 10), Y: -p.rng.Range(30, 90)}
	pt.ttl = p.rng.Range(1.0, 2.5)
	pt.life = pt.ttl
	pt.size = p.rng.Range(1, 2.5)
	pt.hue = p.hue
	pt.alive = true
}

func (p *ParticleBurst) step(ctx *effect.Context) {
	gravity := p.params.Float("gravity")
	p.dead = p.dead[:0]

	p.pool.Each(func(pt *particle) {
		pt.body.ApplyForce(vmath.Vec2{Y: gravity})
		pt.body.Step(ctx.Delta)
		pt.life -= ctx.Delta
		if pt.life <= 0 || pt.body.Pos.Y > float64(ctx.Height)+16 {
			pt.alive = false
			p.dead = append(p.dead, pt)
			return
		}
		t := pt.life / pt.ttl
		c := render.HSL(pt.hue, 0.9, vmath.Lerp(0.35, 0.65, t))
		ctx.Surface.FillCircle(pt.body.Pos.X, pt.body.Pos.Y, pt.size*t, c, vmath.EaseOutQuad(t))
	})

	for _, pt := range p.dead {
		p.pool.Release(pt)
	}
}

// ActiveParticles reports how many particles are live, for tests and
// the catalog status line.
func (p *ParticleBurst) ActiveParticles() int {
	return p.pool.Stats().Active
}
