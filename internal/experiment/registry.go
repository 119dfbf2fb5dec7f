package experiment

import (
	"errors"
	"fmt"
	"sort"

	"github.com/san-kum/swervesim/internal/config"
	"github.com/san-kum/swervesim/internal/control"
	"github.com/san-kum/swervesim/internal/integrators"
	"github.com/san-kum/swervesim/internal/motor"
	"github.com/san-kum/swervesim/internal/scenario"
	"github.com/san-kum/swervesim/internal/swerve"
)

var ErrUnknownController = errors.New("experiment: unknown controller")

const (
	ControllerTeleop       = "teleop"
	ControllerDriveForward = "drive_forward"
	ControllerNone         = "none"
)

// ControllerFactory builds a controller. teleop is the operator mapping
// built from the same configuration.
type ControllerFactory func(cfg *config.Config, teleop *control.Teleop) control.Controller

// Registry names the interchangeable parts of a run.
type Registry struct {
	controllers map[string]ControllerFactory
}

func NewRegistry() *Registry {
	r := &Registry{
		controllers: make(map[string]ControllerFactory),
	}

	r.controllers[ControllerTeleop] = func(_ *config.Config, teleop *control.Teleop) control.Controller {
		return teleop
	}
	r.controllers[ControllerDriveForward] = func(*config.Config, *control.Teleop) control.Controller {
		return control.NewDriveForward(control.DefaultAutoSpeed, control.DefaultAutoDuration)
	}
	r.controllers[ControllerNone] = func(*config.Config, *control.Teleop) control.Controller {
		return control.NewNone()
	}

	return r
}

// Register adds or replaces a controller factory.
func (r *Registry) Register(name string, fn ControllerFactory) {
	r.controllers[name] = fn
}

func (r *Registry) GetController(name string, cfg *config.Config, teleop *control.Teleop) (control.Controller, error) {
	fn, ok := r.controllers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownController, name)
	}
	return fn(cfg, teleop), nil
}

func (r *Registry) ListControllers() []string {
	names := make([]string, 0, len(r.controllers))
	for name := range r.controllers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) ListStrategies() []string {
	strategies := swerve.Strategies()
	names := make([]string, len(strategies))
	for i, s := range strategies {
		names[i] = string(s)
	}
	return names
}

func (r *Registry) ListIntegrators() []string { return integrators.Names() }
func (r *Registry) ListScenarios() []string   { return scenario.Names() }
func (r *Registry) ListPresets() []string     { return config.ListPresets() }
func (r *Registry) ListMotors() []string      { return motor.Names() }
