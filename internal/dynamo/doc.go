// Package dynamo holds the ODE primitives the drivetrain plants are built
// on. A geared DC motor implements [System]; the swerve engine owns one
// plant per drive and steer axis and advances each with the [Integrator]
// the configuration names, through [Advance] so a diverged step never
// reaches odometry.
package dynamo
