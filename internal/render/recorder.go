package render

import "github.com/san-kum/seaglass/internal/dynamo"

type Transform struct {
	Pos   dynamo.Vec
	Angle float64
}

// Recorder keeps the last transform projected for each id.
type Recorder struct {
	Last  map[string]Transform
	Calls int
}

func NewRecorder() *Recorder {
	return &Recorder{Last: make(map[string]Transform)}
}

func (r *Recorder) Project(id string, pos dynamo.Vec, angle float64) {
	r.Last[id] = Transform{Pos: pos, Angle: angle}
	r.Calls++
}

func (r *Recorder) Reset() {
	clear(r.Last)
	r.Calls = 0
}
