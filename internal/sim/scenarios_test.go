package sim_test

import (
	"context"
	"io"
	"log/slog"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/trampball/internal/dynamo"
	"github.com/san-kum/trampball/internal/physics"
	"github.com/san-kum/trampball/internal/sim"
)

func ball(pos, vel dynamo.Vec2, radius, mass float64) *physics.Ball {
	b := physics.NewBall()
	b.SetPosition(pos)
	b.SetVelocity(vel)
	b.SetRadius(radius)
	b.SetMass(mass)
	return b
}

var _ = Describe("World", func() {
	var w *sim.World

	BeforeEach(func() {
		w = sim.NewWorld()
		Expect(w.SetStage(physics.Stage{Top: 1000, Left: -200, Bottom: -500, Right: 700})).To(Succeed())
	})

	Describe("a ball dropped onto a trampoline", func() {
		var (
			tr *physics.Trampoline
			b  *physics.Ball
		)

		BeforeEach(func() {
			var err error
			tr, err = physics.NewTrampoline(49)
			Expect(err).NotTo(HaveOccurred())
			tr.SetPlacement(0, 0, 480, 0)
			tr.SetSpringConstant(120000)
			tr.SetDensity(0.1)
			Expect(w.AddTrampoline(tr)).To(Succeed())

			b = ball(dynamo.V(240, 200), dynamo.Vec2{}, 25, 100)
			_, err = w.AddBall(b)
			Expect(err).NotTo(HaveOccurred())
		})

		It("bounces back lower than it was dropped from", func() {
			const start = 200.0
			signChanges := 0
			prevSign := 0
			apex := 0.0

			for tick := 0; tick < 3000 && signChanges < 2; tick++ {
				w.Step(10)

				vy := b.Velocity().Y
				sign := 0
				switch {
				case vy > 0:
					sign = 1
				case vy < 0:
					sign = -1
				}
				if sign != 0 && prevSign != 0 && sign != prevSign {
					signChanges++
					if signChanges == 2 {
						apex = b.Position().Y
					}
				}
				if sign != 0 {
					prevSign = sign
				}
			}

			Expect(signChanges).To(Equal(2), "vertical velocity never changed sign twice")
			Expect(apex).To(BeNumerically("<", start))
			Expect(apex).To(BeNumerically(">", 0), "the ball should leave the mesh on the rebound")
		})

		It("keeps both ends of the mesh pinned", func() {
			for tick := 0; tick < 500; tick++ {
				w.Step(10)
				anchors := tr.Anchors()
				Expect(anchors[0]).To(Equal(physics.Anchor{}))
				Expect(anchors[len(anchors)-1]).To(Equal(physics.Anchor{}))
			}
			Expect(w.Valid()).To(BeTrue())
		})

		It("stays finite with a hundredfold stiffer mesh", func() {
			tr.SetSpringConstant(120000 * 100)
			for tick := 0; tick < 1000; tick++ {
				stats := w.Step(10)
				Expect(stats.SubSteps).To(BeNumerically("<=", 100))
			}
			Expect(w.Valid()).To(BeTrue())
		})

		It("releases the ball when it is removed", func() {
			for tick := 0; tick < 200 && !b.Driven(); tick++ {
				w.Step(10)
			}
			Expect(b.Driven()).To(BeTrue())
			Expect(w.RemoveBall(b.ID)).To(Succeed())
			Expect(tr.Attachments()).To(BeEmpty())
		})
	})

	Describe("two balls meeting head-on", func() {
		It("swaps their velocities and separates them to touching distance", func() {
			Expect(w.SetGravity(dynamo.Vec2{})).To(Succeed())
			b1 := ball(dynamo.V(100, 100), dynamo.V(100, 0), 25, 100)
			b2 := ball(dynamo.V(140, 100), dynamo.V(-100, 0), 25, 100)
			w.AddBall(b1)
			w.AddBall(b2)

			w.Step(0)

			Expect(b1.Velocity().X).To(BeNumerically("~", -100, 1e-9))
			Expect(b2.Velocity().X).To(BeNumerically("~", 100, 1e-9))
			Expect(b2.Position().Sub(b1.Position()).Len()).To(BeNumerically("~", 50, 1e-9))
		})
	})

	Describe("a ball resting against a wall", func() {
		It("does not drift", func() {
			Expect(w.SetGravity(dynamo.Vec2{})).To(Succeed())
			Expect(w.AddWall(physics.NewWall(dynamo.V(0, 0), dynamo.V(100, 0), dynamo.V(0, -20)))).To(Succeed())
			b := ball(dynamo.V(50, 25), dynamo.Vec2{}, 25, 100)
			b.SetBounce(0)
			w.AddBall(b)

			for tick := 0; tick < 100; tick++ {
				w.Step(10)
			}

			Expect(b.Position()).To(Equal(dynamo.V(50, 25)))
			Expect(b.Velocity()).To(Equal(dynamo.Vec2{}))
		})
	})

	Describe("timer-driven execution", func() {
		It("ticks in the background while gravity changes", func() {
			b := ball(dynamo.V(250, 250), dynamo.Vec2{}, 10, 100)
			w.AddBall(b)

			r := sim.NewRunner(w, slog.New(slog.NewTextHandler(io.Discard, nil)))
			Expect(r.Start(context.Background(), time.Millisecond)).To(Succeed())
			DeferCleanup(r.Stop)

			Expect(w.SetGravity(dynamo.V(700, 0))).To(Succeed())
			Eventually(func() float64 { return b.Position().X }).
				WithTimeout(5 * time.Second).
				Should(BeNumerically(">", 260))

			Eventually(r.Ticks).Should(BeNumerically(">", 0))
		})
	})
})
