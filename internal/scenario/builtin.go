package scenario

import (
	"fmt"
	"sort"

	"github.com/san-kum/swervesim/internal/control"
)

var builtins = map[string]func() *Scenario{
	"square":   square,
	"spin":     spin,
	"brownout": brownout,
	"estop":    estop,
	"auto":     auto,
}

// Names lists the built-in scenarios.
func Names() []string {
	names := make([]string, 0, len(builtins))
	for n := range builtins {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Builtin returns a fresh copy of a built-in scenario.
func Builtin(name string) (*Scenario, error) {
	build, ok := builtins[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (have %v)", ErrUnknownScenario, name, Names())
	}
	return build(), nil
}

func velocity(name string, d, vx, vy, omega float64) Segment {
	return Segment{Name: name, Duration: d, Velocity: &Velocity{Vx: vx, Vy: vy, Omega: omega, Frame: "field"}}
}

func sticks(name string, d float64, a control.Axes) Segment {
	return Segment{Name: name, Duration: d, Axes: &a}
}

func square() *Scenario {
	return &Scenario{
		Name:        "square",
		Description: "1 m/s field-centric box, two seconds per side",
		Segments: []Segment{
			velocity("east", 2, 1, 0, 0),
			velocity("north", 2, 0, 1, 0),
			velocity("west", 2, -1, 0, 0),
			velocity("south", 2, 0, -1, 0),
		},
	}
}

func spin() *Scenario {
	return &Scenario{
		Name:        "spin",
		Description: "full-stick rotation in place, then a translating spin",
		Segments: []Segment{
			sticks("spin", 3, control.Axes{RightX: -1}),
			sticks("translate and spin", 3, control.Axes{LeftY: -0.6, RightX: -0.5}),
			{Name: "settle", Duration: 1},
		},
	}
}

func brownout() *Scenario {
	full := control.Axes{LeftY: -1}
	seg := func(name string, v float64) Segment {
		s := sticks(name, 2, full)
		s.BatteryVoltage = v
		return s
	}
	return &Scenario{
		Name:        "brownout",
		Description: "full-stick drive while the battery sags and recovers",
		Segments: []Segment{
			seg("healthy", 12.5),
			seg("sag", 10.2),
			seg("recovering", 10.8),
			seg("recovered", 11.5),
		},
	}
}

func estop() *Scenario {
	full := control.Axes{LeftY: -1}
	stopped := sticks("emergency stop", 1.5, full)
	stopped.EStop = true
	enabledReset := sticks("reset while enabled", 0.5, full)
	enabledReset.ResetEStop = true
	return &Scenario{
		Name:        "estop",
		Description: "emergency stop mid-drive, refused reset, disabled reset, resume",
		Segments: []Segment{
			sticks("drive", 1.5, full),
			stopped,
			enabledReset,
			{Name: "disable and reset", Duration: 1, Disabled: true, ResetEStop: true},
			sticks("resume", 1.5, full),
		},
	}
}

func auto() *Scenario {
	return &Scenario{
		Name:        "auto",
		Description: "timed robot-centric drive toward the driver station",
		Segments: []Segment{
			{Name: "drive forward", Duration: 3, Auto: AutoDriveForward, ResetPose: &PoseSpec{}},
		},
	}
}
