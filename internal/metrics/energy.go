package metrics

import "github.com/san-kum/seaglass/internal/dynamo"

// Kinetic is the mean total kinetic energy per frame.
type Kinetic struct {
	samples int
	total   float64
}

func NewKinetic() *Kinetic { return &Kinetic{} }

func (k *Kinetic) Name() string { return "kinetic" }

func (k *Kinetic) Observe(states []dynamo.BodyState) {
	k.total += Measure(states).Kinetic
	k.samples++
}

func (k *Kinetic) Value() float64 {
	if k.samples == 0 {
		return 0
	}
	return k.total / float64(k.samples)
}

func (k *Kinetic) Reset() {
	k.total = 0
	k.samples = 0
}

// MeanSpeed averages speed over every body in every frame.
type MeanSpeed struct {
	bodies int
	sum    float64
}

func NewMeanSpeed() *MeanSpeed { return &MeanSpeed{} }

func (m *MeanSpeed) Name() string { return "mean_speed" }

func (m *MeanSpeed) Observe(states []dynamo.BodyState) {
	for _, s := range states {
		if !s.Static {
			m.sum += s.Speed()
			m.bodies++
		}
	}
}

func (m *MeanSpeed) Value() float64 {
	if m.bodies == 0 {
		return 0
	}
	return m.sum / float64(m.bodies)
}

func (m *MeanSpeed) Reset() {
	m.sum = 0
	m.bodies = 0
}
