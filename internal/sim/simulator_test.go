package sim_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/swervesim/internal/control"
	"github.com/san-kum/swervesim/internal/drive"
	"github.com/san-kum/swervesim/internal/drive/drivetest"
	"github.com/san-kum/swervesim/internal/safety"
	"github.com/san-kum/swervesim/internal/sim"
	"github.com/san-kum/swervesim/internal/swerve"
)

type envFunc func(t float64) sim.Conditions

func (f envFunc) Conditions(t float64) sim.Conditions { return f(t) }

func constant(cmd drive.Command) control.Controller {
	return control.ControllerFunc(func(drive.SensorSnapshot, float64) drive.Command { return cmd })
}

type countingMetric struct{ n int }

func (c *countingMetric) Name() string       { return "count" }
func (c *countingMetric) Observe(sim.Sample) { c.n++ }
func (c *countingMetric) Value() float64     { return float64(c.n) }
func (c *countingMetric) Reset()             { c.n = 0 }

var _ = Describe("Simulator", func() {
	var (
		rec       *drivetest.Recorder
		interlock *safety.Interlock
		forward   = drive.Command{Vx: 2, Vy: -1, Omega: 0.5, Frame: drive.FieldCentric}
	)

	BeforeEach(func() {
		rec = drivetest.New()
		var err error
		interlock, err = safety.New(safety.DefaultConfig(), nil)
		Expect(err).NotTo(HaveOccurred())
	})

	It("passes the command through on a healthy battery", func() {
		s := sim.New(rec, interlock, constant(forward), sim.Steady{Voltage: 12.5}, nil)
		sample := s.Tick(0.02)

		last, ok := rec.Last()
		Expect(ok).To(BeTrue())
		Expect(last).To(Equal(forward))
		Expect(sample.Applied).To(Equal(forward))
		Expect(sample.Time).To(BeNumerically("~", 0.02, 1e-12))
	})

	It("halves the command during brownout and restores it after recovery", func() {
		voltage := 10.0
		env := envFunc(func(float64) sim.Conditions { return sim.Conditions{BatteryVoltage: voltage} })
		s := sim.New(rec, interlock, constant(forward), env, nil)

		s.Tick(0.02)
		last, _ := rec.Last()
		Expect(last).To(Equal(forward.Scale(0.5)))

		voltage = 10.8
		s.Tick(0.02)
		last, _ = rec.Last()
		Expect(last).To(Equal(forward.Scale(0.5)))

		voltage = 11.0
		sample := s.Tick(0.02)
		last, _ = rec.Last()
		Expect(last).To(Equal(forward))
		Expect(sample.Safety.Brownout).To(BeFalse())
	})

	It("stops the drivetrain on every tick after an emergency stop", func() {
		env := envFunc(func(t float64) sim.Conditions {
			return sim.Conditions{BatteryVoltage: 12.5, TriggerEStop: t >= 0.05}
		})
		s := sim.New(rec, interlock, constant(forward), env, nil)

		for i := 0; i < 10; i++ {
			s.Tick(0.02)
		}

		Expect(rec.Commands).To(HaveLen(3))
		Expect(rec.StopCount).To(Equal(7))
		Expect(interlock.EmergencyStopActive()).To(BeTrue())
	})

	It("keeps the stop latched when reset while enabled", func() {
		interlock.Trigger()
		env := envFunc(func(float64) sim.Conditions {
			return sim.Conditions{BatteryVoltage: 12.5, ResetEStop: true}
		})
		s := sim.New(rec, interlock, constant(forward), env, nil)

		sample := s.Tick(0.02)
		Expect(sample.Safety.EmergencyStop).To(BeTrue())
		Expect(rec.Commands).To(BeEmpty())
		Expect(sample.Applied.IsZero()).To(BeTrue())
	})

	It("clears the stop when reset while disabled", func() {
		interlock.Trigger()
		disabled := true
		env := envFunc(func(float64) sim.Conditions {
			return sim.Conditions{BatteryVoltage: 12.5, Disabled: disabled, ResetEStop: disabled}
		})
		s := sim.New(rec, interlock, constant(forward), env, nil)

		s.Tick(0.02)
		Expect(interlock.EmergencyStopActive()).To(BeFalse())
		Expect(rec.Commands).To(BeEmpty())

		disabled = false
		s.Tick(0.02)
		Expect(rec.Commands).To(HaveLen(1))
	})

	It("idles the drivetrain while disabled", func() {
		s := sim.New(rec, interlock, constant(forward), sim.Steady{Voltage: 12.5, Disabled: true}, nil)
		s.Tick(0.02)
		s.Tick(0.02)

		Expect(rec.Commands).To(BeEmpty())
		Expect(rec.StopCount).To(Equal(2))
	})

	It("applies a pose reset before the controller reads inputs", func() {
		pose := drive.Pose{X: 3, Y: 4, Heading: drive.RotationFromDegrees(30)}
		var seen drive.Pose
		ctrl := control.ControllerFunc(func(snap drive.SensorSnapshot, _ float64) drive.Command {
			seen = snap.Pose()
			return drive.Command{}
		})
		env := envFunc(func(float64) sim.Conditions {
			return sim.Conditions{BatteryVoltage: 12.5, ResetPose: &pose}
		})
		sim.New(rec, interlock, ctrl, env, nil).Tick(0.02)

		Expect(rec.Resets).To(ConsistOf(pose))
		Expect(seen.X).To(Equal(3.0))
		Expect(seen.Heading.Degrees()).To(BeNumerically("~", 30, 1e-9))
	})

	Describe("Run", func() {
		It("drives the physics engine and records every tick", func() {
			engine, err := swerve.New(swerve.DefaultConfig(), nil)
			Expect(err).NotTo(HaveOccurred())

			s := sim.New(engine, interlock, constant(drive.Command{Vx: 1}), nil, nil)
			metric := &countingMetric{}
			s.AddMetric(metric)
			observed := 0
			s.AddObserver(sim.ObserverFunc(func(sim.Sample) { observed++ }))

			res, err := s.Run(context.Background(), sim.Config{Period: 0.02, Duration: 1})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Samples).To(HaveLen(50))
			Expect(res.StepsTaken).To(Equal(50))
			Expect(res.Metrics).To(HaveKeyWithValue("count", 50.0))
			Expect(observed).To(Equal(50))
			Expect(res.Final().Snapshot.OdometryX).To(BeNumerically(">", 0.5))
			Expect(engine.Time()).To(BeNumerically("~", 1, 1e-9))
		})

		It("returns the partial result when cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			s := sim.New(rec, interlock, constant(forward), nil, nil)

			res, err := s.Run(ctx, sim.DefaultConfig())
			Expect(errors.Is(err, context.Canceled)).To(BeTrue())
			Expect(res.Samples).To(BeEmpty())
		})

		DescribeTable("rejects invalid loop settings",
			func(cfg sim.Config) {
				s := sim.New(rec, interlock, nil, nil, nil)
				_, err := s.Run(context.Background(), cfg)
				Expect(errors.Is(err, sim.ErrInvalidLoop)).To(BeTrue())
			},
			Entry("zero period", sim.Config{Period: 0, Duration: 1}),
			Entry("negative period", sim.Config{Period: -0.02, Duration: 1}),
			Entry("zero duration", sim.Config{Period: 0.02, Duration: 0}),
			Entry("duration shorter than a period", sim.Config{Period: 0.02, Duration: 0.01}),
		)
	})

	It("builds a default interlock when none is given", func() {
		s := sim.New(drivetest.New(), nil, nil, envFunc(func(float64) sim.Conditions {
			return sim.Conditions{BatteryVoltage: 10}
		}), nil)
		Expect(s.Interlock()).NotTo(BeNil())

		sample := s.Tick(0.02)
		Expect(sample.Safety.Brownout).To(BeTrue())
		Expect(sample.Safety.SpeedMultiplier).To(BeNumerically("~", 0.5, 1e-9))
	})

	Describe("RunBatch", func() {
		It("returns results in job order", func() {
			jobs := make([]sim.Job, 0, 3)
			for _, d := range []float64{0.2, 0.4, 0.6} {
				jobs = append(jobs, sim.Job{
					Name: "job",
					Build: func() (*sim.Simulator, sim.Config, error) {
						engine, err := swerve.New(swerve.DefaultConfig(), nil)
						if err != nil {
							return nil, sim.Config{}, err
						}
						return sim.New(engine, nil, constant(drive.Command{Vx: 1}), nil, nil),
							sim.Config{Period: 0.02, Duration: d}, nil
					},
				})
			}

			results, err := sim.RunBatch(context.Background(), jobs)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(3))
			Expect(results[0].Samples).To(HaveLen(10))
			Expect(results[1].Samples).To(HaveLen(20))
			Expect(results[2].Samples).To(HaveLen(30))
		})

		It("fails when any job fails", func() {
			boom := errors.New("boom")
			jobs := []sim.Job{{Name: "bad", Build: func() (*sim.Simulator, sim.Config, error) {
				return nil, sim.Config{}, boom
			}}}
			_, err := sim.RunBatch(context.Background(), jobs)
			Expect(errors.Is(err, boom)).To(BeTrue())
		})
	})
})
