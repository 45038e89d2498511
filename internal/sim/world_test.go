package sim_test

import (
	"context"
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/san-kum/rigidsim/internal/compute"
	"github.com/san-kum/rigidsim/internal/rigid"
	"github.com/san-kum/rigidsim/internal/sim"
)

type failingBackend struct {
	compute.Backend
	failOn compute.KernelID
	calls  int
}

func (f *failingBackend) Dispatch(k compute.KernelID, in []compute.Buffer, out []compute.Shape) ([]compute.Buffer, error) {
	f.calls++
	if k == f.failOn {
		return nil, &compute.DispatchError{Kernel: k, Backend: f.Name(), Err: compute.ErrKernelPanic}
	}
	return f.Backend.Dispatch(k, in, out)
}

type stepCounter struct{ n int }

func (c *stepCounter) Name() string       { return "steps" }
func (c *stepCounter) Observe(*sim.World) { c.n++ }
func (c *stepCounter) Value() float64     { return float64(c.n) }
func (c *stepCounter) Reset()             { c.n = 0 }

func newWorld(opts ...sim.Option) *sim.World {
	w, err := sim.New(rigid.DefaultParams(), opts...)
	Expect(err).NotTo(HaveOccurred())
	return w
}

func ball(pos mgl64.Vec3, restitution float64) rigid.SphereSpec {
	return rigid.SphereSpec{
		BodySpec: rigid.BodySpec{Position: pos, Mass: 1, Friction: 0.4, Restitution: restitution},
		Radius:   0.5,
	}
}

// populate builds a ground plane, a few falling spheres and a pendulum.
func populate(w *sim.World) {
	_, err := w.AddPlane(rigid.PlaneSpec{Normal: mgl64.Vec3{0, 1, 0}, Friction: 0.4})
	Expect(err).NotTo(HaveOccurred())
	for i := 0; i < 3; i++ {
		_, err := w.AddSphere(ball(mgl64.Vec3{float64(i) * 1.5, 1 + float64(i)*0.5, 0}, 0.3))
		Expect(err).NotTo(HaveOccurred())
	}
	pivot, err := w.AddSphere(rigid.SphereSpec{BodySpec: rigid.BodySpec{Position: mgl64.Vec3{10, 5, 0}}, Radius: 0.1})
	Expect(err).NotTo(HaveOccurred())
	bob, err := w.AddSphere(ball(mgl64.Vec3{11, 5, 0}, 0))
	Expect(err).NotTo(HaveOccurred())
	_, err = w.AddDistanceJoint(pivot, bob, rigid.DistanceSpec{RestLength: 1})
	Expect(err).NotTo(HaveOccurred())
}

func expectClose(a, b []rigid.Body, tol float64) {
	Expect(a).To(HaveLen(len(b)))
	for i := range a {
		for k := 0; k < 3; k++ {
			scale := math.Max(1, math.Abs(b[i].Position[k]))
			Expect(math.Abs(a[i].Position[k]-b[i].Position[k])).To(BeNumerically("<=", tol*scale),
				"body %d axis %d", i, k)
		}
	}
}

var _ = Describe("World", func() {
	Describe("construction", func() {
		It("rejects invalid params", func() {
			p := rigid.DefaultParams()
			p.Dt = 0
			_, err := sim.New(p)
			var cfg *rigid.ConfigurationError
			Expect(errors.As(err, &cfg)).To(BeTrue())
			Expect(err).To(MatchError(rigid.ErrNonPositiveDt))
		})

		It("returns stable indices and leaves the store unchanged on error", func() {
			w := newWorld()
			i, err := w.AddSphere(ball(mgl64.Vec3{}, 0))
			Expect(err).NotTo(HaveOccurred())
			Expect(i).To(Equal(0))

			_, err = w.AddSphere(rigid.SphereSpec{BodySpec: rigid.BodySpec{Mass: -1}, Radius: 1})
			Expect(err).To(MatchError(rigid.ErrNegativeMass))
			_, err = w.AddBox(rigid.BoxSpec{BodySpec: rigid.BodySpec{Mass: 1}})
			Expect(err).To(MatchError(rigid.ErrInvalidShape))
			Expect(w.NumBodies()).To(Equal(1))

			j, err := w.AddBox(rigid.BoxSpec{BodySpec: rigid.BodySpec{Mass: 1}, HalfExtents: mgl64.Vec3{1, 1, 1}})
			Expect(err).NotTo(HaveOccurred())
			Expect(j).To(Equal(1))
		})

		It("rejects a zero joint axis", func() {
			w := newWorld()
			_, err := w.AddRevoluteJoint(0, 1, rigid.AxisSpec{})
			Expect(err).To(MatchError(rigid.ErrZeroAxis))
			Expect(w.NumJoints()).To(Equal(0))
		})

		It("validates mutations", func() {
			w := newWorld()
			populate(w)
			Expect(w.SetForce(42, mgl64.Vec3{})).To(MatchError(rigid.ErrIndexOutOfRange))
			Expect(w.SetVelocity(-1, mgl64.Vec3{})).To(MatchError(rigid.ErrIndexOutOfRange))
			Expect(w.SetMotor(0, rigid.Motor{Enabled: true})).To(MatchError(rigid.ErrInvalidParameter))

			bad := rigid.DefaultParams()
			bad.Iterations = 0
			Expect(w.SetParams(bad)).To(MatchError(rigid.ErrInvalidParameter))
			Expect(w.Params().Iterations).To(Equal(rigid.DefaultIterations))
		})
	})

	Describe("stepping", func() {
		It("matches free fall", func() {
			w := newWorld(sim.WithMode(sim.ModeReference))
			_, err := w.AddSphere(ball(mgl64.Vec3{0, 10, 0}, 0))
			Expect(err).NotTo(HaveOccurred())
			for i := 0; i < 100; i++ {
				Expect(w.Step()).To(Succeed())
			}
			b, _ := w.Body(0)
			Expect(w.Time()).To(BeNumerically("~", 1, 1e-9))
			Expect(b.Position.Y()).To(BeNumerically("~", 10-0.5*9.81, 0.1))
			Expect(b.Velocity.Y()).To(BeNumerically("~", -9.81, 1e-9))
		})

		It("rests a sphere on the ground", func() {
			w := newWorld(sim.WithMode(sim.ModeReference))
			_, err := w.AddPlane(rigid.PlaneSpec{Normal: mgl64.Vec3{0, 1, 0}})
			Expect(err).NotTo(HaveOccurred())
			_, err = w.AddSphere(ball(mgl64.Vec3{0, 2, 0}, 0))
			Expect(err).NotTo(HaveOccurred())
			for i := 0; i < 300; i++ {
				w.StepReference()
			}
			b, _ := w.Body(1)
			Expect(b.Position.Y()).To(BeNumerically("~", 0.5, 0.02))
			Expect(math.Abs(b.Velocity.Y())).To(BeNumerically("<", 0.2))
		})

		It("keeps the reference and device paths in parity", func() {
			ref := newWorld(sim.WithMode(sim.ModeReference))
			dev := newWorld(sim.WithBackend(compute.NewDeviceWorkers(4)))
			populate(ref)
			populate(dev)
			for i := 0; i < 50; i++ {
				ref.StepReference()
				Expect(dev.StepDevice()).To(Succeed())
			}
			expectClose(dev.Bodies(), ref.Bodies(), 1e-3)
			Expect(dev.Steps()).To(Equal(ref.Steps()))
		})

		It("skips a joint that references a missing body", func() {
			with := newWorld(sim.WithMode(sim.ModeReference))
			without := newWorld(sim.WithMode(sim.ModeReference))
			populate(with)
			populate(without)
			_, err := with.AddBallJoint(1, 99, rigid.JointSpec{})
			Expect(err).NotTo(HaveOccurred())
			for i := 0; i < 20; i++ {
				with.StepReference()
				without.StepReference()
			}
			Expect(with.Digest()).To(Equal(without.Digest()))
		})
	})

	Describe("device failures", func() {
		It("leaves the store untouched when a kernel fails", func() {
			fb := &failingBackend{Backend: compute.NewReference(), failOn: compute.KernelMatMul}
			w := newWorld(sim.WithBackend(fb))
			populate(w)
			Expect(w.StepDevice()).To(Succeed())
			before, steps, t := w.Bodies(), w.Steps(), w.Time()

			fb.failOn = compute.KernelSolveContacts
			err := w.StepDevice()
			var se *sim.StepError
			Expect(errors.As(err, &se)).To(BeTrue())
			Expect(se.Step).To(Equal(steps))
			var de *compute.DispatchError
			Expect(errors.As(err, &de)).To(BeTrue())
			Expect(de.Kernel).To(Equal(compute.KernelSolveContacts))

			Expect(w.Bodies()).To(Equal(before))
			Expect(w.Steps()).To(Equal(steps))
			Expect(w.Time()).To(Equal(t))

			w.StepReference()
			Expect(w.Steps()).To(Equal(steps + 1))
		})

		It("reports an unavailable backend", func() {
			be := compute.NewReference()
			be.Cleanup()
			w := newWorld(sim.WithBackend(be))
			populate(w)
			Expect(w.Step()).To(MatchError(compute.ErrBackendUnavailable))
		})
	})

	Describe("digest", func() {
		It("is deterministic and sensitive to state", func() {
			a, b := newWorld(), newWorld()
			populate(a)
			populate(b)
			for i := 0; i < 20; i++ {
				Expect(a.Step()).To(Succeed())
				Expect(b.Step()).To(Succeed())
			}
			Expect(a.Digest()).To(Equal(b.Digest()))

			Expect(b.SetForce(1, mgl64.Vec3{50, 0, 0})).To(Succeed())
			Expect(a.Step()).To(Succeed())
			Expect(b.Step()).To(Succeed())
			Expect(a.Digest()).NotTo(Equal(b.Digest()))
		})
	})

	Describe("Run", func() {
		It("drives metrics and observers", func() {
			w := newWorld()
			populate(w)
			m := &stepCounter{}
			seen := 0
			w.AddMetric(m)
			w.AddObserver(sim.ObserverFunc(func(*sim.World) { seen++ }))

			res, err := w.Run(context.Background(), 25)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.StepsTaken).To(Equal(25))
			Expect(res.Metrics).To(HaveKeyWithValue("steps", 25.0))
			Expect(seen).To(Equal(25))
			Expect(res.Digest).To(Equal(w.Digest()))
		})

		It("stops on cancellation", func() {
			w := newWorld()
			populate(w)
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			res, err := w.Run(ctx, 10)
			Expect(err).To(MatchError(context.Canceled))
			Expect(res.StepsTaken).To(Equal(0))
		})

		It("rejects a non-positive step count", func() {
			_, err := newWorld().Run(context.Background(), 0)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Snapshot", func() {
		It("copies transforms and shape parameters", func() {
			w := newWorld()
			populate(w)
			s := w.Snapshot()
			Expect(s.Bodies).To(HaveLen(w.NumBodies()))
			Expect(s.Bodies[0].Static).To(BeTrue())
			Expect(s.Bodies[1].Radius).To(Equal(0.5))
			s.Bodies[1].Position = mgl64.Vec3{100, 100, 100}
			b, _ := w.Body(1)
			Expect(b.Position).NotTo(Equal(mgl64.Vec3{100, 100, 100}))
		})
	})
})
