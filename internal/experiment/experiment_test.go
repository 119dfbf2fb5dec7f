package experiment

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/swervesim/internal/config"
	"github.com/san-kum/swervesim/internal/control"
	"github.com/san-kum/swervesim/internal/scenario"
	"github.com/san-kum/swervesim/internal/sim"
)

func shortConfig(seconds float64) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Sim.Duration = seconds
	return cfg
}

func TestRegistryLists(t *testing.T) {
	reg := NewRegistry()
	assert.Equal(t, []string{ControllerDriveForward, ControllerNone, ControllerTeleop}, reg.ListControllers())
	assert.ElementsMatch(t, []string{"kinematic", "motor"}, reg.ListStrategies())
	assert.Contains(t, reg.ListIntegrators(), "rk4")
	assert.Contains(t, reg.ListScenarios(), "square")
	assert.Contains(t, reg.ListPresets(), "competition")
	assert.NotEmpty(t, reg.ListMotors())

	_, err := reg.GetController("pid", nil, nil)
	assert.ErrorIs(t, err, ErrUnknownController)
}

func TestRegisterController(t *testing.T) {
	reg := NewRegistry()
	reg.Register("hold", func(*config.Config, *control.Teleop) control.Controller { return control.NewNone() })
	c, err := reg.GetController("hold", nil, nil)
	require.NoError(t, err)
	assert.NotNil(t, c)
}

func TestIdleRun(t *testing.T) {
	e, err := New(Spec{Config: shortConfig(1)}, nil, nil)
	require.NoError(t, err)

	res, err := e.Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, res.Samples, 50)
	assert.InDelta(t, 0, res.Final().Snapshot.OdometryX, 1e-9)
	assert.Contains(t, res.Metrics, "path_length")
	assert.Nil(t, e.Script())
}

func TestDriveForwardRun(t *testing.T) {
	e, err := New(Spec{Config: shortConfig(1), Controller: ControllerDriveForward}, nil, nil)
	require.NoError(t, err)

	res, err := e.Run(context.Background())
	require.NoError(t, err)
	assert.Less(t, res.Final().Snapshot.OdometryX, -0.3)
}

func TestTeleopRun(t *testing.T) {
	axes := control.NewManualAxes()
	axes.Set(control.Axes{LeftY: -1})
	e, err := New(Spec{Config: shortConfig(1), Controller: ControllerTeleop, Axes: axes}, nil, nil)
	require.NoError(t, err)

	res, err := e.Run(context.Background())
	require.NoError(t, err)
	assert.Greater(t, res.Final().Snapshot.OdometryX, 0.5)
}

func TestScenarioFixesDuration(t *testing.T) {
	sc, err := scenario.Builtin("square")
	require.NoError(t, err)

	e, err := New(Spec{Config: shortConfig(1), Scenario: sc}, nil, nil)
	require.NoError(t, err)
	require.NotNil(t, e.Script())
	assert.InDelta(t, sc.Duration(), e.Loop().Duration, 1e-12)
}

func TestInvalidSpec(t *testing.T) {
	cfg := shortConfig(1)
	cfg.Robot.MaxSpeed = 0
	_, err := New(Spec{Config: cfg}, nil, nil)
	assert.Error(t, err)

	_, err = New(Spec{Config: shortConfig(1), Controller: "pid"}, nil, nil)
	assert.ErrorIs(t, err, ErrUnknownController)
}

func TestJobsInBatch(t *testing.T) {
	reg := NewRegistry()
	jobs := []sim.Job{
		Job(Spec{Name: "idle", Config: shortConfig(0.5)}, reg, nil),
		Job(Spec{Name: "auto", Config: shortConfig(0.5), Controller: ControllerDriveForward}, reg, nil),
	}
	results, err := sim.RunBatch(context.Background(), jobs)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.InDelta(t, 0, results[0].Final().Snapshot.OdometryX, 1e-9)
	assert.Less(t, results[1].Final().Snapshot.OdometryX, 0.0)

	bad := []sim.Job{Job(Spec{Name: "bad", Controller: "pid"}, reg, nil)}
	_, err = sim.RunBatch(context.Background(), bad)
	assert.ErrorIs(t, err, ErrUnknownController)
}
