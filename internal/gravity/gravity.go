// Package gravity turns device tilt into a smoothed gravity vector.
//
// Orientation samples only move the target. Once per display frame Smooth
// moves the current vector a fixed fraction of the way toward the target
// and writes it into the world, so after k frames with a constant target
//
//	current_k = target - (target - current_0) * (1 - factor)^k
package gravity

import (
	"math"

	"github.com/san-kum/seaglass/internal/config"
	"github.com/san-kum/seaglass/internal/dynamo"
)

// Sink receives the smoothed gravity vector. physics.World satisfies it.
type Sink interface {
	SetGravity(g dynamo.Vec)
}

type Controller struct {
	sink        Sink
	factor      float64
	sensitivity float64
	neutral     float64
	enabled     bool
	target      dynamo.Vec
	current     dynamo.Vec
}

func New(sink Sink, cfg config.GravityConfig) *Controller {
	c := &Controller{sink: sink}
	c.Tune(cfg)
	return c
}

func (c *Controller) Tune(cfg config.GravityConfig) {
	c.factor = cfg.Smoothing
	c.sensitivity = cfg.Sensitivity
	c.neutral = cfg.NeutralBeta
}

func (c *Controller) Target() dynamo.Vec  { return c.target }
func (c *Controller) Current() dynamo.Vec { return c.current }
func (c *Controller) Enabled() bool       { return c.enabled }

// Orient records a device orientation sample in degrees. beta is the
// front-back tilt and gamma the left-right tilt. Samples are ignored while
// motion is disabled.
func (c *Controller) Orient(beta, gamma float64) {
	if !c.enabled || math.IsNaN(beta) || math.IsNaN(gamma) {
		return
	}
	c.target = dynamo.V(
		clamp(gamma*c.sensitivity),
		clamp((beta-c.neutral)*c.sensitivity),
	)
}

// SetEnabled toggles motion input. Disabling zeroes the target at once; the
// current vector still eases back to zero through Smooth.
func (c *Controller) SetEnabled(on bool) {
	c.enabled = on
	if !on {
		c.target = dynamo.Vec{}
	}
}

// Smooth advances current toward target by one frame and publishes it.
func (c *Controller) Smooth() {
	c.current = c.current.Add(c.target.Sub(c.current).Scale(c.factor))
	if c.sink != nil {
		c.sink.SetGravity(c.current)
	}
}

func clamp(v float64) float64 {
	return math.Max(-1, math.Min(1, v))
}
