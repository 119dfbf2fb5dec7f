package drive

import (
	"fmt"
	"math"
)

// ModuleCount is fixed: front-left, front-right, back-left, back-right.
const ModuleCount = 4

const (
	FrontLeft = iota
	FrontRight
	BackLeft
	BackRight
)

var ModuleNames = [ModuleCount]string{"FL", "FR", "BL", "BR"}

// Pose is a field-frame position and heading.
type Pose struct {
	X       float64  `json:"x" yaml:"x"`
	Y       float64  `json:"y" yaml:"y"`
	Heading Rotation `json:"heading" yaml:"heading"`
}

type GyroState struct {
	YawDeg           float64 `json:"yaw_deg"`
	YawRateDegPerSec float64 `json:"yaw_rate_deg_per_sec"`
	PitchDeg         float64 `json:"pitch_deg"`
	RollDeg          float64 `json:"roll_deg"`
	Connected        bool    `json:"connected"`
}

// ModuleState is one swerve corner, measured on the mechanism side of the
// gearing. Currents are magnitudes.
type ModuleState struct {
	DrivePositionRad       float64
	DriveVelocityRadPerSec float64
	DriveAppliedVolts      float64
	DriveCurrentAmps       float64
	SteerPositionRad       float64
	SteerVelocityRadPerSec float64
	SteerAppliedVolts      float64
	SteerCurrentAmps       float64
}

// SensorSnapshot is everything a drivetrain reports in one read. Per-module
// arrays are ordered FL, FR, BL, BR.
type SensorSnapshot struct {
	Gyro GyroState `json:"gyro"`

	DrivePositionRad       [ModuleCount]float64 `json:"drive_position_rad"`
	DriveVelocityRadPerSec [ModuleCount]float64 `json:"drive_velocity_rad_per_sec"`
	DriveAppliedVolts      [ModuleCount]float64 `json:"drive_applied_volts"`
	DriveCurrentAmps       [ModuleCount]float64 `json:"drive_current_amps"`

	SteerPositionRad       [ModuleCount]float64 `json:"steer_position_rad"`
	SteerVelocityRadPerSec [ModuleCount]float64 `json:"steer_velocity_rad_per_sec"`
	SteerAppliedVolts      [ModuleCount]float64 `json:"steer_applied_volts"`
	SteerCurrentAmps       [ModuleCount]float64 `json:"steer_current_amps"`

	OdometryX           float64 `json:"odometry_x"`
	OdometryY           float64 `json:"odometry_y"`
	OdometryRotationRad float64 `json:"odometry_rotation_rad"`
}

func (s SensorSnapshot) Module(i int) ModuleState {
	return ModuleState{
		DrivePositionRad:       s.DrivePositionRad[i],
		DriveVelocityRadPerSec: s.DriveVelocityRadPerSec[i],
		DriveAppliedVolts:      s.DriveAppliedVolts[i],
		DriveCurrentAmps:       s.DriveCurrentAmps[i],
		SteerPositionRad:       s.SteerPositionRad[i],
		SteerVelocityRadPerSec: s.SteerVelocityRadPerSec[i],
		SteerAppliedVolts:      s.SteerAppliedVolts[i],
		SteerCurrentAmps:       s.SteerCurrentAmps[i],
	}
}

func (s *SensorSnapshot) SetModule(i int, m ModuleState) {
	s.DrivePositionRad[i] = m.DrivePositionRad
	s.DriveVelocityRadPerSec[i] = m.DriveVelocityRadPerSec
	s.DriveAppliedVolts[i] = m.DriveAppliedVolts
	s.DriveCurrentAmps[i] = m.DriveCurrentAmps
	s.SteerPositionRad[i] = m.SteerPositionRad
	s.SteerVelocityRadPerSec[i] = m.SteerVelocityRadPerSec
	s.SteerAppliedVolts[i] = m.SteerAppliedVolts
	s.SteerCurrentAmps[i] = m.SteerCurrentAmps
}

func (s SensorSnapshot) Pose() Pose {
	return Pose{X: s.OdometryX, Y: s.OdometryY, Heading: Rotation(s.OdometryRotationRad)}
}

// TotalCurrentAmps sums drive and steer current over all modules.
func (s SensorSnapshot) TotalCurrentAmps() float64 {
	total := 0.0
	for i := 0; i < ModuleCount; i++ {
		total += math.Abs(s.DriveCurrentAmps[i]) + math.Abs(s.SteerCurrentAmps[i])
	}
	return total
}

func (s *SensorSnapshot) moduleArrays() [8]*[ModuleCount]float64 {
	return [8]*[ModuleCount]float64{
		&s.DrivePositionRad, &s.DriveVelocityRadPerSec, &s.DriveAppliedVolts, &s.DriveCurrentAmps,
		&s.SteerPositionRad, &s.SteerVelocityRadPerSec, &s.SteerAppliedVolts, &s.SteerCurrentAmps,
	}
}

var moduleFields = [8]string{
	"drive_position_rad", "drive_velocity_rad_per_sec", "drive_applied_volts", "drive_current_amps",
	"steer_position_rad", "steer_velocity_rad_per_sec", "steer_applied_volts", "steer_current_amps",
}

// SnapshotWidth is the number of values in the flattened layout.
const SnapshotWidth = 5 + len(moduleFields)*ModuleCount + 3

// Columns names the flattened snapshot layout: gyro yaw, yaw rate, pitch,
// roll, connected; then each module quantity for FL, FR, BL, BR; then
// odometry x, y, rotation.
func Columns() []string {
	cols := make([]string, 0, SnapshotWidth)
	cols = append(cols, "gyro_yaw_deg", "gyro_yaw_rate_deg_per_sec", "gyro_pitch_deg", "gyro_roll_deg", "gyro_connected")
	for _, f := range moduleFields {
		for _, m := range ModuleNames {
			cols = append(cols, f+"_"+m)
		}
	}
	return append(cols, "odometry_x", "odometry_y", "odometry_rotation_rad")
}

// Values flattens the snapshot in Columns order.
func (s SensorSnapshot) Values() []float64 {
	vals := make([]float64, 0, SnapshotWidth)
	connected := 0.0
	if s.Gyro.Connected {
		connected = 1
	}
	vals = append(vals, s.Gyro.YawDeg, s.Gyro.YawRateDegPerSec, s.Gyro.PitchDeg, s.Gyro.RollDeg, connected)
	for _, arr := range s.moduleArrays() {
		vals = append(vals, arr[:]...)
	}
	return append(vals, s.OdometryX, s.OdometryY, s.OdometryRotationRad)
}

// SnapshotFromValues is the inverse of Values.
func SnapshotFromValues(vals []float64) (SensorSnapshot, error) {
	var s SensorSnapshot
	if len(vals) < SnapshotWidth {
		return s, fmt.Errorf("drive: snapshot needs %d values, got %d", SnapshotWidth, len(vals))
	}
	s.Gyro = GyroState{
		YawDeg:           vals[0],
		YawRateDegPerSec: vals[1],
		PitchDeg:         vals[2],
		RollDeg:          vals[3],
		Connected:        vals[4] != 0,
	}
	off := 5
	for _, arr := range s.moduleArrays() {
		copy(arr[:], vals[off:off+ModuleCount])
		off += ModuleCount
	}
	s.OdometryX = vals[off]
	s.OdometryY = vals[off+1]
	s.OdometryRotationRad = vals[off+2]
	return s, nil
}
