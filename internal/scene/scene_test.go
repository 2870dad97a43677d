package scene_test

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"go.uber.org/zap/zapcore"

	"github.com/san-kum/seaglass/internal/config"
	"github.com/san-kum/seaglass/internal/dynamo"
	"github.com/san-kum/seaglass/internal/frame"
	"github.com/san-kum/seaglass/internal/interact"
	"github.com/san-kum/seaglass/internal/notes"
	"github.com/san-kum/seaglass/internal/physics"
	"github.com/san-kum/seaglass/internal/render"
	"github.com/san-kum/seaglass/internal/scene"
)

var t0 = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

type brokenStore struct{ *notes.Memory }

func (brokenStore) List(context.Context, string) ([]notes.Note, error) {
	return nil, errors.New("backend unreachable")
}

func newScene(opts scene.Options) *scene.Scene {
	GinkgoHelper()
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(7))
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return t0 }
	}
	sc, err := scene.New(opts)
	Expect(err).NotTo(HaveOccurred())
	DeferCleanup(sc.Close)
	return sc
}

func place(sc *scene.Scene, id string, pos, vel dynamo.Vec) {
	GinkgoHelper()
	Expect(sc.WithBody(id, func(b *physics.Body) {
		b.SetPosition(pos)
		b.SetVelocity(vel)
	})).To(BeTrue())
}

var _ = Describe("Scene", func() {
	Describe("spawn and drift", func() {
		driftFromRest := func(cfg *config.Config, seed int64) (float64, bool) {
			sc := newScene(scene.Options{Config: cfg, Rand: rand.New(rand.NewSource(seed))})
			n, err := sc.AddNote("drifting", "thoughts")
			Expect(err).NotTo(HaveOccurred())
			place(sc, n.ID, sc.Area().Center(), dynamo.Vec{})

			sc.Advance(60)

			states := sc.States()
			Expect(states).To(HaveLen(1))
			return states[0].Speed(), sc.Area().Contains(states[0].Pos)
		}

		It("lifts a body spawned at rest to the floor speed", func() {
			cfg := config.DefaultConfig()
			Expect(cfg.Field.Governor).To(Equal(config.GovernorFloor))
			// The floor acts before integration, so the sampled speed may sit
			// one step of air friction and current below it.
			floor := math.Sqrt(cfg.Field.FloorSpeedSq)*(1-cfg.Bodies.FrictionAir) -
				cfg.Field.Current*cfg.Timing.ForceGain/math.Sqrt2
			for seed := int64(1); seed <= 40; seed++ {
				speed, inside := driftFromRest(cfg, seed)
				Expect(speed).To(BeNumerically(">=", floor), "seed %d", seed)
				Expect(inside).To(BeTrue(), "seed %d", seed)
			}
		})

		It("keeps a body spawned at rest under the ceiling", func() {
			cfg, err := config.GetPreset("brisk")
			Expect(err).NotTo(HaveOccurred())
			for seed := int64(1); seed <= 40; seed++ {
				speed, inside := driftFromRest(cfg, seed)
				Expect(speed).To(BeNumerically(">", 0), "seed %d", seed)
				Expect(speed).To(BeNumerically("<=", cfg.Field.CeilingSpeed), "seed %d", seed)
				Expect(inside).To(BeTrue(), "seed %d", seed)
			}
		})

		It("spawns bodies inside the play area with radius in range", func() {
			sc := newScene(scene.Options{})
			for range 12 {
				_, err := sc.AddNote("x", "todo")
				Expect(err).NotTo(HaveOccurred())
			}
			area := sc.Area()
			for _, st := range sc.States() {
				Expect(st.Radius).To(BeNumerically(">=", config.DefaultRadiusMin))
				Expect(st.Radius).To(BeNumerically("<=", config.DefaultRadiusMax))
				Expect(st.Pos.X).To(BeNumerically(">=", area.Left+st.Radius))
				Expect(st.Pos.X).To(BeNumerically("<=", area.Right-st.Radius))
				Expect(st.Pos.Y).To(BeNumerically(">=", area.Top+st.Radius))
				Expect(st.Pos.Y).To(BeNumerically("<=", area.Bottom-st.Radius))
				Expect(st.Vel.X).To(BeNumerically("~", 0, config.DefaultSpawnSpeed/2))
				Expect(st.Vel.Y).To(BeNumerically("~", 0, config.DefaultSpawnSpeed/2))
			}
		})
	})

	Describe("tap push", func() {
		It("pushes a body 50 units away with 0.096 of its mass along +x", func() {
			cfg, err := config.GetPreset("fullbleed")
			Expect(err).NotTo(HaveOccurred())
			sc := newScene(scene.Options{Config: cfg})
			n, err := sc.AddNote("pushed", "mood")
			Expect(err).NotTo(HaveOccurred())
			place(sc, n.ID, dynamo.V(150, 100), dynamo.Vec{})

			pushes, err := sc.Tap(dynamo.V(100, 100), interact.OriginScene)
			Expect(err).NotTo(HaveOccurred())
			Expect(pushes).To(HaveLen(1))

			var mass float64
			var force dynamo.Vec
			sc.WithBody(n.ID, func(b *physics.Body) {
				mass = b.Mass()
				force = b.Force()
			})
			Expect(force.X).To(BeNumerically("~", 0.096*mass, 1e-9))
			Expect(force.Y).To(BeNumerically("~", 0, 1e-12))
			Expect(sc.Ripples()).To(HaveLen(1))
		})

		It("ignores taps on controls", func() {
			sc := newScene(scene.Options{})
			Expect(sc.Load(context.Background())).To(Succeed())
			pushes, err := sc.Tap(sc.Area().Center(), interact.OriginButton)
			Expect(err).NotTo(HaveOccurred())
			Expect(pushes).To(BeEmpty())
			Expect(sc.Ripples()).To(BeEmpty())
		})
	})

	Describe("resize", func() {
		It("replaces the walls with ones for the new viewport", func() {
			sc := newScene(scene.Options{Width: 800, Height: 600})
			Expect(sc.Walls()).To(HaveLen(4))

			area, err := sc.Resize(400, 300)
			Expect(err).NotTo(HaveOccurred())
			Expect(area.Left).To(BeNumerically("~", 48, 1e-9))
			Expect(area.Top).To(BeNumerically("~", 54, 1e-9))
			Expect(area.Right).To(BeNumerically("~", 352, 1e-9))
			Expect(area.Bottom).To(BeNumerically("~", 246, 1e-9))
			Expect(sc.Walls()).To(HaveLen(4))
		})

		It("keeps the old walls for a degenerate viewport", func() {
			sc := newScene(scene.Options{})
			before := sc.Area()
			_, err := sc.Resize(0, 300)
			Expect(err).To(MatchError(dynamo.ErrInvalidState))
			Expect(sc.Area()).To(Equal(before))
			Expect(sc.Walls()).To(HaveLen(4))
		})
	})

	Describe("note lifecycle", func() {
		var store *notes.Memory

		BeforeEach(func() {
			store = notes.NewMemory()
		})

		It("mirrors add, update and delete to the store", func() {
			sc := newScene(scene.Options{Store: store, Owner: "ana"})
			n, err := sc.AddNote("first", "memories")
			Expect(err).NotTo(HaveOccurred())
			Expect(n.Color).To(Equal(notes.CategoryByName("memories").Color))
			Expect(sc.Notes()).To(HaveLen(1))

			Expect(sc.UpdateNote(n.ID, "first, edited")).To(Succeed())
			Expect(sc.Notes()[0].Text).To(Equal("first, edited"))
			Eventually(func() string {
				list, _ := store.List(context.Background(), "ana")
				if len(list) == 0 {
					return ""
				}
				return list[0].Text
			}).Should(Equal("first, edited"))

			Expect(sc.DeleteNote(n.ID)).To(Succeed())
			Expect(sc.Notes()).To(BeEmpty())
			Expect(sc.States()).To(BeEmpty())
			Expect(sc.Close()).To(Succeed())
			Expect(store.Len()).To(BeZero())
		})

		It("keeps writes local while signed out", func() {
			sc := newScene(scene.Options{Store: store})
			_, err := sc.AddNote("local only", "todo")
			Expect(err).NotTo(HaveOccurred())
			Expect(sc.Close()).To(Succeed())
			Expect(store.Len()).To(BeZero())
		})

		It("treats unknown ids as no-ops", func() {
			sc := newScene(scene.Options{Store: store, Owner: "ana"})
			Expect(sc.UpdateNote("missing", "x")).To(Succeed())
			Expect(sc.DeleteNote("missing")).To(Succeed())
		})

		It("loads the owner's notes oldest first", func() {
			for i, text := range []string{"b", "a", "c"} {
				n := notes.New("ana", text, "todo", t0.Add(time.Duration(3-i)*time.Minute))
				Expect(store.Create(context.Background(), n)).To(Succeed())
			}
			Expect(store.Create(context.Background(), notes.New("bo", "other", "", t0))).To(Succeed())

			sc := newScene(scene.Options{Store: store, Owner: "ana"})
			Expect(sc.Load(context.Background())).To(Succeed())

			var texts []string
			for _, n := range sc.Notes() {
				texts = append(texts, n.Text)
			}
			Expect(texts).To(Equal([]string{"c", "a", "b"}))
			Expect(sc.States()).To(HaveLen(3))
		})

		It("reload replaces the bodies", func() {
			sc := newScene(scene.Options{Store: store})
			_, err := sc.AddNote("only local", "mood")
			Expect(err).NotTo(HaveOccurred())
			Expect(sc.Load(context.Background())).To(Succeed())
			Expect(sc.Notes()).To(BeEmpty())
			Expect(sc.States()).To(BeEmpty())
		})

		It("logs a failed load and leaves the scene empty", func() {
			core, logs := observer.New(zapcore.WarnLevel)
			sc := newScene(scene.Options{Store: brokenStore{store}, Owner: "ana", Logger: zap.New(core)})
			Expect(sc.Load(context.Background())).To(Succeed())
			Expect(sc.States()).To(BeEmpty())
			Expect(logs.FilterMessage("load notes failed").Len()).To(Equal(1))
		})

		It("seeds demo notes without a store", func() {
			sc := newScene(scene.Options{})
			Expect(sc.Load(context.Background())).To(Succeed())
			Expect(sc.Notes()).To(HaveLen(5))
			for _, n := range sc.Notes() {
				Expect(n.Color).To(BeElementOf(notes.Pastels))
			}
		})
	})

	Describe("scheduling and teardown", func() {
		It("runs the three tasks and cancels them on close", func() {
			rec := render.NewRecorder()
			sc, err := scene.New(scene.Options{Projector: rec, Rand: rand.New(rand.NewSource(3))})
			Expect(err).NotTo(HaveOccurred())
			sched := frame.New(nil)
			Expect(sc.Load(context.Background())).To(Succeed())
			Expect(sc.Start(sched)).To(Succeed())
			Expect(sched.Tasks()).To(Equal(3))

			sched.Tick(t0)
			sched.Tick(t0.Add(20 * time.Millisecond))
			Expect(sc.Steps()).To(BeNumerically("==", 2))
			Expect(rec.Last).To(HaveLen(5))

			Expect(sc.Close()).To(Succeed())
			Expect(sched.Tasks()).To(BeZero())
			Expect(sc.Walls()).To(BeEmpty())

			_, err = sc.AddNote("late", "todo")
			Expect(err).To(MatchError(dynamo.ErrDisposed))
			_, err = sc.Tap(dynamo.Vec{}, interact.OriginScene)
			Expect(err).To(MatchError(dynamo.ErrDisposed))
			Expect(sc.Orient(45, 0)).To(MatchError(dynamo.ErrDisposed))
			Expect(sc.Start(sched)).To(MatchError(dynamo.ErrDisposed))
			Expect(sc.Close()).To(Succeed())
		})

		It("tilts gravity only while motion is on", func() {
			sc := newScene(scene.Options{})
			Expect(sc.Orient(45, 45)).To(Succeed())
			target, _ := sc.Gravity()
			Expect(target).To(Equal(dynamo.Vec{}))

			Expect(sc.SetMotion(true)).To(Succeed())
			Expect(sc.Orient(45, 45)).To(Succeed())
			target, _ = sc.Gravity()
			Expect(target.X).To(BeNumerically("~", 1, 1e-9))

			sc.Advance(1)
			_, current := sc.Gravity()
			Expect(current.X).To(BeNumerically("~", config.DefaultSmoothing, 1e-9))
		})

		It("applies a new profile live", func() {
			sc := newScene(scene.Options{})
			cfg, err := config.GetPreset("brisk")
			Expect(err).NotTo(HaveOccurred())
			Expect(sc.Tune(cfg)).To(Succeed())
			Expect(sc.Config().Field.Governor).To(Equal(config.GovernorCeiling))

			bad := cfg.Clone()
			bad.Field.Governor = "sideways"
			bad.Boundary.MarginX = 0.3
			area := sc.Area()
			Expect(sc.Tune(bad)).To(MatchError(dynamo.ErrParameterBounds))
			Expect(sc.Config().Field.Governor).To(Equal(config.GovernorCeiling))
			Expect(sc.Config().Boundary.MarginX).To(Equal(cfg.Boundary.MarginX))
			Expect(sc.Area()).To(Equal(area))
		})

		It("rejects a missing profile", func() {
			sc := newScene(scene.Options{})
			Expect(sc.Tune(nil)).To(MatchError(dynamo.ErrParameterBounds))
			Expect(sc.Config().Profile).To(Equal(config.DefaultConfig().Profile))
		})
	})
})
