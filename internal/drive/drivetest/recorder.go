// Package drivetest provides a recording drive.IO for tests.
package drivetest

import (
	"sync"

	"github.com/san-kum/swervesim/internal/drive"
)

// Recorder records every call and returns a snapshot the test controls.
type Recorder struct {
	mu sync.Mutex

	Snapshot    drive.SensorSnapshot
	Commands    []drive.Command
	Resets      []drive.Pose
	StopCount   int
	ReadCount   int
	perspective drive.Rotation
}

var _ drive.IO = (*Recorder)(nil)

func New() *Recorder {
	r := &Recorder{}
	r.Snapshot.Gyro.Connected = true
	return r
}

func (r *Recorder) UpdateInputs() drive.SensorSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ReadCount++
	return r.Snapshot
}

func (r *Recorder) DriveFieldCentric(vx, vy, omega float64) {
	r.record(drive.Command{Vx: vx, Vy: vy, Omega: omega, Frame: drive.FieldCentric})
}

func (r *Recorder) DriveRobotCentric(vx, vy, omega float64) {
	r.record(drive.Command{Vx: vx, Vy: vy, Omega: omega, Frame: drive.RobotCentric})
}

func (r *Recorder) record(c drive.Command) {
	r.mu.Lock()
	r.Commands = append(r.Commands, c)
	r.mu.Unlock()
}

func (r *Recorder) ResetOdometry(p drive.Pose) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Resets = append(r.Resets, p)
	r.Snapshot.OdometryX = p.X
	r.Snapshot.OdometryY = p.Y
	r.Snapshot.OdometryRotationRad = p.Heading.Radians()
	r.Snapshot.Gyro.YawDeg = drive.WrapDegrees(p.Heading.Degrees())
}

func (r *Recorder) Stop() {
	r.mu.Lock()
	r.StopCount++
	r.mu.Unlock()
}

func (r *Recorder) SetOperatorPerspective(rot drive.Rotation) {
	r.mu.Lock()
	r.perspective = rot
	r.mu.Unlock()
}

func (r *Recorder) OperatorPerspective() drive.Rotation {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.perspective
}

// Last returns the most recent drive command, if any.
func (r *Recorder) Last() (drive.Command, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Commands) == 0 {
		return drive.Command{}, false
	}
	return r.Commands[len(r.Commands)-1], true
}
