package scenario

import (
	"fmt"

	"github.com/san-kum/swervesim/internal/control"
	"github.com/san-kum/swervesim/internal/drive"
	"github.com/san-kum/swervesim/internal/sim"
)

// boundaryEps absorbs float drift in accumulated tick times so a tick that
// lands on a segment boundary belongs to the later segment.
const boundaryEps = 1e-9

// Script plays a scenario. It is not safe for concurrent use.
type Script struct {
	sc     *Scenario
	teleop *control.Teleop
	starts []float64
	cmds   []drive.Command
	autos  map[int]*control.DriveForward

	entered int
}

var (
	_ control.Controller = (*Script)(nil)
	_ control.Resetter   = (*Script)(nil)
	_ sim.Environment    = (*Script)(nil)
)

// Compile prepares sc for playback. Axes segments are shaped by teleop,
// which may be nil when the scenario has none.
func Compile(sc *Scenario, teleop *control.Teleop) (*Script, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	s := &Script{
		sc:      sc,
		teleop:  teleop,
		starts:  make([]float64, len(sc.Segments)),
		cmds:    make([]drive.Command, len(sc.Segments)),
		autos:   make(map[int]*control.DriveForward),
		entered: -1,
	}
	t := 0.0
	for i, seg := range sc.Segments {
		s.starts[i] = t
		t += seg.Duration

		switch {
		case seg.Axes != nil && teleop == nil:
			return nil, fmt.Errorf("%w: segment %d uses axes but no teleop mapping was given", ErrInvalidScenario, i+1)
		case seg.Velocity != nil:
			s.cmds[i], _ = seg.Velocity.Command()
		case seg.Auto == AutoDriveForward:
			s.autos[i] = control.NewDriveForward(control.DefaultAutoSpeed, control.DefaultAutoDuration)
		}
	}
	return s, nil
}

func (s *Script) Scenario() *Scenario { return s.sc }

func (s *Script) Duration() float64 { return s.sc.Duration() }

// segmentAt returns the index of the segment active at t, or -1 past the
// end.
func (s *Script) segmentAt(t float64) int {
	if t+boundaryEps >= s.sc.Duration() {
		return -1
	}
	idx := 0
	for i, start := range s.starts {
		if t+boundaryEps >= start {
			idx = i
		}
	}
	return idx
}

func (s *Script) Conditions(t float64) sim.Conditions {
	i := s.segmentAt(t)
	if i < 0 {
		last := s.sc.Segments[len(s.sc.Segments)-1]
		return sim.Conditions{BatteryVoltage: voltage(last), Disabled: last.Disabled}
	}
	seg := s.sc.Segments[i]
	cond := sim.Conditions{BatteryVoltage: voltage(seg), Disabled: seg.Disabled}
	if i != s.entered {
		s.entered = i
		cond.TriggerEStop = seg.EStop
		cond.ResetEStop = seg.ResetEStop
		if seg.ResetPose != nil {
			p := seg.ResetPose.Pose()
			cond.ResetPose = &p
		}
	}
	return cond
}

func voltage(seg Segment) float64 {
	if seg.BatteryVoltage > 0 {
		return seg.BatteryVoltage
	}
	return NominalVoltage
}

func (s *Script) Compute(snap drive.SensorSnapshot, t float64) drive.Command {
	i := s.segmentAt(t)
	if i < 0 {
		return drive.Command{}
	}
	seg := s.sc.Segments[i]
	switch {
	case seg.Axes != nil:
		return s.teleop.Command(*seg.Axes)
	case seg.Velocity != nil:
		return s.cmds[i]
	case s.autos[i] != nil:
		return s.autos[i].Compute(snap, t)
	}
	return drive.Command{}
}

// Reset rewinds one-shot events and autonomous timers.
func (s *Script) Reset() {
	s.entered = -1
	for _, a := range s.autos {
		a.Reset()
	}
}
