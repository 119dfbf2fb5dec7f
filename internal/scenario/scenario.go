// Package scenario scripts a drive session as a sequence of timed
// segments. A compiled Script is both the controller and the environment
// for a sim.Simulator.
package scenario

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/swervesim/internal/control"
	"github.com/san-kum/swervesim/internal/drive"
)

var (
	ErrInvalidScenario = errors.New("scenario: invalid scenario")
	ErrUnknownScenario = errors.New("scenario: unknown scenario")
)

// NominalVoltage is used for segments that leave battery_voltage unset.
const NominalVoltage = 12.5

// AutoDriveForward is the only autonomous routine a segment can name.
const AutoDriveForward = "drive_forward"

type Scenario struct {
	Name        string    `yaml:"name"`
	Description string    `yaml:"description"`
	Segments    []Segment `yaml:"segments"`
}

// Segment holds one input for Duration seconds. At most one of Axes,
// Velocity and Auto is set; none means zero velocity.
type Segment struct {
	Name     string        `yaml:"name,omitempty"`
	Duration float64       `yaml:"duration"`
	Axes     *control.Axes `yaml:"axes,omitempty"`
	Velocity *Velocity     `yaml:"velocity,omitempty"`
	Auto     string        `yaml:"auto,omitempty"`

	BatteryVoltage float64 `yaml:"battery_voltage,omitempty"`
	Disabled       bool    `yaml:"disabled,omitempty"`
	// EStop, ResetEStop and ResetPose fire once, on the first tick of the
	// segment.
	EStop      bool      `yaml:"estop,omitempty"`
	ResetEStop bool      `yaml:"reset_estop,omitempty"`
	ResetPose  *PoseSpec `yaml:"reset_pose,omitempty"`
}

type Velocity struct {
	Vx    float64 `yaml:"vx"`
	Vy    float64 `yaml:"vy"`
	Omega float64 `yaml:"omega"`
	Frame string  `yaml:"frame,omitempty"`
}

func (v Velocity) Command() (drive.Command, error) {
	frame, err := drive.ParseFrame(v.Frame)
	if err != nil {
		return drive.Command{}, err
	}
	return drive.Command{Vx: v.Vx, Vy: v.Vy, Omega: v.Omega, Frame: frame}, nil
}

// PoseSpec is a pose with the heading in degrees.
type PoseSpec struct {
	X          float64 `yaml:"x"`
	Y          float64 `yaml:"y"`
	HeadingDeg float64 `yaml:"heading_deg"`
}

func (p PoseSpec) Pose() drive.Pose {
	return drive.Pose{X: p.X, Y: p.Y, Heading: drive.RotationFromDegrees(p.HeadingDeg)}
}

func (s *Scenario) Validate() error {
	if len(s.Segments) == 0 {
		return fmt.Errorf("%w: %q has no segments", ErrInvalidScenario, s.Name)
	}
	for i, seg := range s.Segments {
		if !(seg.Duration > 0) || math.IsInf(seg.Duration, 0) {
			return fmt.Errorf("%w: segment %d duration must be positive, got %v", ErrInvalidScenario, i+1, seg.Duration)
		}
		inputs := 0
		if seg.Axes != nil {
			inputs++
		}
		if seg.Velocity != nil {
			inputs++
			if _, err := seg.Velocity.Command(); err != nil {
				return fmt.Errorf("%w: segment %d: %v", ErrInvalidScenario, i+1, err)
			}
		}
		if seg.Auto != "" {
			inputs++
			if seg.Auto != AutoDriveForward {
				return fmt.Errorf("%w: segment %d: unknown auto %q", ErrInvalidScenario, i+1, seg.Auto)
			}
		}
		if inputs > 1 {
			return fmt.Errorf("%w: segment %d sets more than one of axes, velocity, auto", ErrInvalidScenario, i+1)
		}
		if seg.BatteryVoltage < 0 {
			return fmt.Errorf("%w: segment %d battery voltage %v is negative", ErrInvalidScenario, i+1, seg.BatteryVoltage)
		}
	}
	return nil
}

// Duration is the total length of all segments.
func (s *Scenario) Duration() float64 {
	total := 0.0
	for _, seg := range s.Segments {
		total += seg.Duration
	}
	return total
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

func Save(path string, sc *Scenario) error {
	data, err := yaml.Marshal(sc)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
