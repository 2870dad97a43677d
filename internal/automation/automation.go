// Package automation replays scripted input against a headless scene and
// sweeps tuning parameters.
package automation

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/san-kum/seaglass/internal/config"
	"github.com/san-kum/seaglass/internal/dynamo"
	"github.com/san-kum/seaglass/internal/interact"
	"github.com/san-kum/seaglass/internal/metrics"
	"github.com/san-kum/seaglass/internal/notes"
	"github.com/san-kum/seaglass/internal/scene"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

var ErrBadStep = errors.New("automation: step must set exactly one action")

// Scenario is a scripted input sequence.
type Scenario struct {
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	Profile     string  `yaml:"profile"`
	Seed        int64   `yaml:"seed"`
	Width       float64 `yaml:"width"`
	Height      float64 `yaml:"height"`
	Steps       []Step  `yaml:"steps"`
}

type Point struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

type Tilt struct {
	Beta  float64 `yaml:"beta"`
	Gamma float64 `yaml:"gamma"`
}

type Size struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

type NoteSpec struct {
	Text     string `yaml:"text"`
	Category string `yaml:"category"`
}

type NoteEdit struct {
	Index int    `yaml:"index"`
	Text  string `yaml:"text"`
}

// Step is one action. Exactly one of the action fields is set. Origin
// qualifies Tap and defaults to the open scene. Update and Delete index the
// scene's notes oldest first.
type Step struct {
	Wait   int       `yaml:"wait"`
	Tap    *Point    `yaml:"tap"`
	Origin string    `yaml:"origin"`
	Tilt   *Tilt     `yaml:"tilt"`
	Motion *bool     `yaml:"motion"`
	Resize *Size     `yaml:"resize"`
	Add    *NoteSpec `yaml:"add"`
	Update *NoteEdit `yaml:"update"`
	Delete *int      `yaml:"delete"`
}

func (s Step) Kind() string {
	var kinds []string
	if s.Wait > 0 {
		kinds = append(kinds, "wait")
	}
	if s.Tap != nil {
		kinds = append(kinds, "tap")
	}
	if s.Tilt != nil {
		kinds = append(kinds, "tilt")
	}
	if s.Motion != nil {
		kinds = append(kinds, "motion")
	}
	if s.Resize != nil {
		kinds = append(kinds, "resize")
	}
	if s.Add != nil {
		kinds = append(kinds, "add")
	}
	if s.Update != nil {
		kinds = append(kinds, "update")
	}
	if s.Delete != nil {
		kinds = append(kinds, "delete")
	}
	if len(kinds) != 1 {
		return ""
	}
	return kinds[0]
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

// FindScenarios returns every scenario file below dir, sorted.
func FindScenarios(dir string) ([]string, error) {
	matches, err := doublestar.Glob(os.DirFS(dir), "**/*.{yaml,yml}")
	if err != nil {
		return nil, fmt.Errorf("find scenarios in %s: %w", dir, err)
	}
	sort.Strings(matches)
	for i, m := range matches {
		matches[i] = filepath.Join(dir, m)
	}
	return matches, nil
}

func ParseScenario(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	for i, st := range sc.Steps {
		if st.Kind() == "" {
			return nil, fmt.Errorf("step %d: %w", i+1, ErrBadStep)
		}
		if st.Tap != nil {
			if _, err := parseOrigin(st.Origin); err != nil {
				return nil, fmt.Errorf("step %d: %w", i+1, err)
			}
		}
	}
	return &sc, nil
}

// Config resolves the scenario's profile, falling back to base.
func (s *Scenario) Config(base *config.Config) (*config.Config, error) {
	cfg := base
	if s.Profile != "" {
		p, err := config.GetPreset(s.Profile)
		if err != nil {
			return nil, err
		}
		cfg = p
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	cfg = cfg.Clone()
	if s.Seed != 0 {
		cfg.Seed = s.Seed
	}
	return cfg, nil
}

func parseOrigin(name string) (interact.Origin, error) {
	if name == "" {
		return interact.OriginScene, nil
	}
	for _, o := range []interact.Origin{interact.OriginScene, interact.OriginButton, interact.OriginInput, interact.OriginTextArea} {
		if o.String() == name {
			return o, nil
		}
	}
	return 0, fmt.Errorf("unknown tap origin %q: %w", name, dynamo.ErrParameterBounds)
}

// Observer is called after every frame a scenario advances.
type Observer func(frame int, sc *scene.Scene)

type Report struct {
	Frames  int
	Taps    int
	Pushes  int
	Added   []string
	Updated int
}

// Run plays every step of s against sc, one frame per waited tick.
func Run(ctx context.Context, sc *scene.Scene, s *Scenario, obs Observer, log *zap.Logger) (Report, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("automation")
	var rep Report

	for i, st := range s.Steps {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		var err error
		switch st.Kind() {
		case "wait":
			for range st.Wait {
				if err = ctx.Err(); err != nil {
					break
				}
				sc.Advance(1)
				rep.Frames++
				if obs != nil {
					obs(rep.Frames, sc)
				}
			}
		case "tap":
			origin, _ := parseOrigin(st.Origin)
			var pushes []interact.Push
			pushes, err = sc.Tap(dynamo.V(st.Tap.X, st.Tap.Y), origin)
			rep.Taps++
			rep.Pushes += len(pushes)
		case "tilt":
			err = sc.Orient(st.Tilt.Beta, st.Tilt.Gamma)
		case "motion":
			err = sc.SetMotion(*st.Motion)
		case "resize":
			_, err = sc.Resize(st.Resize.Width, st.Resize.Height)
		case "add":
			var note notes.Note
			note, err = sc.AddNote(st.Add.Text, st.Add.Category)
			if err == nil {
				rep.Added = append(rep.Added, note.ID)
			}
		case "update":
			list := sc.Notes()
			if st.Update.Index < 0 || st.Update.Index >= len(list) {
				log.Warn("update index out of range", zap.Int("step", i+1), zap.Int("index", st.Update.Index), zap.Int("notes", len(list)))
				continue
			}
			err = sc.UpdateNote(list[st.Update.Index].ID, st.Update.Text)
			if err == nil {
				rep.Updated++
			}
		case "delete":
			list := sc.Notes()
			if *st.Delete < 0 || *st.Delete >= len(list) {
				log.Warn("delete index out of range", zap.Int("step", i+1), zap.Int("index", *st.Delete), zap.Int("notes", len(list)))
				continue
			}
			err = sc.DeleteNote(list[*st.Delete].ID)
		default:
			err = ErrBadStep
		}
		if err != nil {
			return rep, fmt.Errorf("step %d (%s): %w", i+1, st.Kind(), err)
		}
		log.Debug("step done", zap.Int("step", i+1), zap.String("kind", st.Kind()))
	}
	return rep, nil
}

// Sweep varies one tuning parameter across [Min, Max] and runs a fresh
// demo scene for Frames frames at each value. Points run on up to Workers
// goroutines; zero means one per CPU.
type Sweep struct {
	Param   string
	Min     float64
	Max     float64
	Count   int
	Frames  int
	Workers int
}

type SweepResult struct {
	Value     float64
	Kinetic   float64
	MeanSpeed float64
	InBand    float64
}

var sweepParams = map[string]func(*config.Config, float64){
	"field.current":             func(c *config.Config, v float64) { c.Field.Current = v },
	"field.floor_boost":         func(c *config.Config, v float64) { c.Field.FloorBoost = v },
	"field.ceiling_speed":       func(c *config.Config, v float64) { c.Field.CeilingSpeed = v },
	"bodies.friction_air":       func(c *config.Config, v float64) { c.Bodies.FrictionAir = v },
	"bodies.spawn_speed":        func(c *config.Config, v float64) { c.Bodies.SpawnSpeed = v },
	"gravity.smoothing":         func(c *config.Config, v float64) { c.Gravity.Smoothing = v },
	"interaction.push_strength": func(c *config.Config, v float64) { c.Interaction.PushStrength = v },
}

func SweepParams() []string {
	names := make([]string, 0, len(sweepParams))
	for k := range sweepParams {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func RunSweep(ctx context.Context, base *config.Config, sw Sweep, log *zap.Logger) ([]SweepResult, error) {
	set, ok := sweepParams[sw.Param]
	if !ok {
		return nil, fmt.Errorf("sweep parameter %q: %w", sw.Param, dynamo.ErrParameterBounds)
	}
	if sw.Count < 1 || sw.Frames < 1 {
		return nil, fmt.Errorf("sweep needs at least one value and one frame: %w", dynamo.ErrParameterBounds)
	}
	if base == nil {
		base = config.DefaultConfig()
	}
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("sweep")

	step := 0.0
	if sw.Count > 1 {
		step = (sw.Max - sw.Min) / float64(sw.Count-1)
	}
	results := make([]SweepResult, sw.Count)
	err := dynamo.ParallelFor(ctx, sw.Count, sw.Workers, func(ctx context.Context, i int) error {
		v := sw.Min + float64(i)*step
		cfg := base.Clone()
		set(cfg, v)

		res, err := sweepOne(ctx, cfg, sw.Frames)
		if err != nil {
			return fmt.Errorf("%s=%g: %w", sw.Param, v, err)
		}
		res.Value = v
		results[i] = res
		log.Info("sweep point", zap.String("param", sw.Param), zap.Float64("value", v), zap.Float64("mean_speed", res.MeanSpeed))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

func sweepOne(ctx context.Context, cfg *config.Config, frames int) (SweepResult, error) {
	sc, err := scene.New(scene.Options{Config: cfg})
	if err != nil {
		return SweepResult{}, err
	}
	defer sc.Close()
	if err := sc.Load(ctx); err != nil {
		return SweepResult{}, err
	}

	ms := metrics.Standard(cfg.Field)
	for range frames {
		sc.Advance(1)
		states := sc.States()
		for _, m := range ms {
			m.Observe(states)
		}
	}
	var res SweepResult
	for _, m := range ms {
		switch m.Name() {
		case "kinetic":
			res.Kinetic = m.Value()
		case "mean_speed":
			res.MeanSpeed = m.Value()
		case "in_band":
			res.InBand = m.Value()
		}
	}
	return res, nil
}
