package swerve_test

import (
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/swervesim/internal/drive"
	"github.com/san-kum/swervesim/internal/swerve"
)

func stepFor(e *swerve.Engine, seconds, dt float64) {
	n := int(math.Round(seconds / dt))
	for i := 0; i < n; i++ {
		e.Step(dt)
	}
}

var _ = Describe("Engine", func() {
	for _, strategy := range swerve.Strategies() {
		strategy := strategy

		Context("with the "+string(strategy)+" strategy", func() {
			var e *swerve.Engine

			BeforeEach(func() {
				cfg := swerve.DefaultConfig()
				cfg.Strategy = strategy
				var err error
				e, err = swerve.New(cfg, nil)
				Expect(err).NotTo(HaveOccurred())
			})

			It("reports a reset pose before any step", func() {
				p := drive.Pose{X: 1.5, Y: -2.25, Heading: drive.RotationFromDegrees(45)}
				e.ResetOdometry(p)

				s := e.UpdateInputs()
				Expect(s.OdometryX).To(BeNumerically("~", p.X, 1e-3))
				Expect(s.OdometryY).To(BeNumerically("~", p.Y, 1e-3))
				Expect(s.OdometryRotationRad).To(BeNumerically("~", p.Heading.Radians(), 1e-3))
				Expect(s.Gyro.YawDeg).To(BeNumerically("~", 45, 1e-9))
			})

			It("drives straight along the field x axis", func() {
				e.DriveFieldCentric(1, 0, 0)
				stepFor(e, 0.5, 0.02)

				s := e.UpdateInputs()
				Expect(s.OdometryX).To(BeNumerically(">", 0))
				Expect(s.OdometryY).To(BeNumerically("~", 0, 1e-2))
			})

			It("integrates yaw from the commanded rate", func() {
				e.DriveFieldCentric(0, 0, math.Pi/2)
				stepFor(e, 1.0, 0.02)

				s := e.UpdateInputs()
				Expect(s.Gyro.YawDeg).To(BeNumerically("~", 90, 5))
				Expect(s.Gyro.YawRateDegPerSec).To(BeNumerically("~", 90, 1e-9))
			})

			It("keeps yaw inside [-180, 180)", func() {
				e.DriveRobotCentric(0, 0, 2*math.Pi)
				for i := 0; i < 137; i++ {
					e.Step(0.013)
					yaw := e.UpdateInputs().Gyro.YawDeg
					Expect(yaw).To(BeNumerically(">=", -180))
					Expect(yaw).To(BeNumerically("<", 180))
				}
			})

			It("reports gyro connected with level pitch and roll", func() {
				g := e.UpdateInputs().Gyro
				Expect(g.Connected).To(BeTrue())
				Expect(g.PitchDeg).To(BeZero())
				Expect(g.RollDeg).To(BeZero())
			})

			It("spins up drive motors on the first step", func() {
				e.DriveFieldCentric(1, 0, 0)
				e.Step(0.02)

				s := e.UpdateInputs()
				for i := 0; i < drive.ModuleCount; i++ {
					Expect(s.DriveVelocityRadPerSec[i]).To(BeNumerically(">", 0))
					Expect(s.DriveAppliedVolts[i]).To(BeNumerically(">", 0))
					Expect(s.DriveCurrentAmps[i]).To(BeNumerically(">=", 0))
					Expect(s.SteerCurrentAmps[i]).To(BeNumerically(">=", 0))
				}
				Expect(e.TotalCurrentAmps()).To(BeNumerically(">", 0))
			})

			It("holds the steer target when commanded to rest", func() {
				e.DriveRobotCentric(0, 1, 0)
				stepFor(e, 0.5, 0.02)
				targets := e.SteerTargets()
				Expect(targets[0]).To(BeNumerically("~", math.Pi/2, 1e-9))

				e.Stop()
				stepFor(e, 0.2, 0.02)

				Expect(e.SteerTargets()).To(Equal(targets))
				s := e.UpdateInputs()
				for i := 0; i < drive.ModuleCount; i++ {
					Expect(math.IsNaN(s.SteerPositionRad[i])).To(BeFalse())
					Expect(math.IsNaN(s.SteerAppliedVolts[i])).To(BeFalse())
				}
			})

			It("strafes sideways under a robot-centric command", func() {
				e.DriveRobotCentric(0, 1, 0)
				stepFor(e, 1.0, 0.02)

				p := e.Pose()
				Expect(p.Y).To(BeNumerically(">", 0.3))
				Expect(math.Abs(p.X)).To(BeNumerically("<", 0.1))
			})

			It("rotates field-centric commands by the heading", func() {
				e.ResetOdometry(drive.Pose{Heading: drive.RotationFromDegrees(90)})
				e.DriveFieldCentric(1, 0, 0)
				stepFor(e, 1.0, 0.02)

				p := e.Pose()
				Expect(p.X).To(BeNumerically(">", 0.3))
				Expect(math.Abs(p.Y)).To(BeNumerically("<", 0.1))

				targets := e.SteerTargets()
				Expect(targets[0]).To(BeNumerically("~", -math.Pi/2, 1e-9))
			})

			It("is independent of the caller's step size", func() {
				other, err := swerve.New(e.Config(), nil)
				Expect(err).NotTo(HaveOccurred())

				e.DriveFieldCentric(1, 0.5, 0.3)
				other.DriveFieldCentric(1, 0.5, 0.3)
				stepFor(e, 1.0, 0.02)
				stepFor(other, 1.0, 0.005)

				Expect(e.Pose().X).To(BeNumerically("~", other.Pose().X, 1e-6))
				Expect(e.Pose().Y).To(BeNumerically("~", other.Pose().Y, 1e-6))
			})

			It("treats stop as zero velocity and keeps it idempotent", func() {
				e.DriveFieldCentric(1, 1, 1)
				e.Stop()
				e.Stop()
				Expect(e.Command().IsZero()).To(BeTrue())
			})

			It("records the operator perspective without acting on it", func() {
				e.SetOperatorPerspective(drive.RotationFromDegrees(180))
				e.DriveFieldCentric(1, 0, 0)
				stepFor(e, 0.2, 0.02)

				Expect(e.OperatorPerspective().Degrees()).To(BeNumerically("~", 180, 1e-9))
				Expect(e.Pose().X).To(BeNumerically(">", 0))
			})

			It("ignores degenerate step sizes", func() {
				e.DriveFieldCentric(1, 0, 0)
				e.Step(0)
				e.Step(-0.02)
				e.Step(math.NaN())
				e.Step(1e300)
				e.Step(swerve.MaxSubsteps * e.Config().MaxSubstep * 2)
				Expect(e.Time()).To(BeZero())
				Expect(e.Pose().X).To(BeZero())
			})
		})
	}

	Describe("motor dynamics", func() {
		It("approaches the commanded wheel speed", func() {
			e, err := swerve.New(swerve.DefaultConfig(), nil)
			Expect(err).NotTo(HaveOccurred())

			e.DriveRobotCentric(2, 0, 0)
			stepFor(e, 1.0, 0.02)

			s := e.UpdateInputs()
			wheelSpeed := s.DriveVelocityRadPerSec[drive.FrontLeft] * e.Config().Geometry.WheelRadius
			Expect(wheelSpeed).To(BeNumerically("~", 2, 0.05))
		})

		It("clamps voltages to the supply", func() {
			e, _ := swerve.New(swerve.DefaultConfig(), nil)
			e.DriveRobotCentric(20, 0, 0)
			e.Step(0.02)

			s := e.UpdateInputs()
			for i := 0; i < drive.ModuleCount; i++ {
				Expect(s.DriveAppliedVolts[i]).To(BeNumerically("<=", 12))
				Expect(math.Abs(s.SteerAppliedVolts[i])).To(BeNumerically("<=", 12))
			}
		})

		It("works with the euler integrator", func() {
			cfg := swerve.DefaultConfig()
			cfg.Integrator = "euler"
			e, err := swerve.New(cfg, nil)
			Expect(err).NotTo(HaveOccurred())

			e.DriveFieldCentric(1, 0, 0)
			stepFor(e, 0.5, 0.02)
			Expect(e.Pose().X).To(BeNumerically(">", 0))
		})
	})

	Describe("configuration", func() {
		DescribeTable("rejects invalid settings",
			func(mutate func(*swerve.Config)) {
				cfg := swerve.DefaultConfig()
				mutate(&cfg)
				_, err := swerve.New(cfg, nil)
				Expect(err).To(HaveOccurred())
			},
			Entry("unknown strategy", func(c *swerve.Config) { c.Strategy = "teleport" }),
			Entry("unknown integrator", func(c *swerve.Config) { c.Integrator = "verlet" }),
			Entry("unknown motor", func(c *swerve.Config) { c.DriveMotor = "cim" }),
			Entry("zero wheel radius", func(c *swerve.Config) { c.Geometry.WheelRadius = 0 }),
			Entry("zero substep", func(c *swerve.Config) { c.MaxSubstep = 0 }),
			Entry("negative inertia", func(c *swerve.Config) { c.SteerInertia = -1 }),
		)

		It("wraps configuration errors", func() {
			cfg := swerve.DefaultConfig()
			cfg.Strategy = "teleport"
			_, err := swerve.New(cfg, nil)
			Expect(errors.Is(err, swerve.ErrInvalidConfig)).To(BeTrue())
		})
	})
})
