package control

import "github.com/san-kum/swervesim/internal/drive"

const (
	// DefaultAutoSpeed backs the robot toward its driver station.
	DefaultAutoSpeed    = -0.8
	DefaultAutoDuration = 2.2
)

// DriveForward commands a constant robot-centric forward speed for a fixed
// duration measured from its first Compute call, then stops.
type DriveForward struct {
	Speed    float64
	Duration float64

	started bool
	start   float64
	done    bool
}

func NewDriveForward(speed, duration float64) *DriveForward {
	return &DriveForward{Speed: speed, Duration: duration}
}

func (d *DriveForward) Compute(_ drive.SensorSnapshot, t float64) drive.Command {
	if !d.started {
		d.started = true
		d.start = t
	}
	if d.done || t-d.start >= d.Duration {
		d.done = true
		return drive.Command{Frame: drive.RobotCentric}
	}
	return drive.Command{Vx: d.Speed, Frame: drive.RobotCentric}
}

// Done reports whether the timed drive has finished.
func (d *DriveForward) Done() bool { return d.done }

func (d *DriveForward) Reset() {
	d.started, d.done = false, false
	d.start = 0
}
