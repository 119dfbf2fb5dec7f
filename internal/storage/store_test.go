package storage

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/swervesim/internal/drive"
	"github.com/san-kum/swervesim/internal/safety"
	"github.com/san-kum/swervesim/internal/sim"
)

func sampleResult() *sim.Result {
	var s1, s2 sim.Sample
	s1.Time = 0.02
	s1.Requested = drive.Command{Vx: 1, Vy: -0.25, Omega: 0.1, Frame: drive.FieldCentric}
	s1.Applied = s1.Requested.Scale(0.5)
	s1.Voltage = 10.2
	s1.Safety = safety.State{Brownout: true, SpeedMultiplier: 0.5}
	s1.Snapshot.Gyro = drive.GyroState{YawDeg: 12.5, YawRateDegPerSec: 3, Connected: true}
	s1.Snapshot.DriveVelocityRadPerSec[drive.FrontRight] = 42.125
	s1.Snapshot.SteerCurrentAmps[drive.BackRight] = 1.5
	s1.Snapshot.OdometryX = 0.01

	s2.Time = 0.04
	s2.Requested = drive.Command{Vx: -0.8, Frame: drive.RobotCentric}
	s2.Disabled = true
	s2.Safety = safety.State{EmergencyStop: true, SpeedMultiplier: 1}

	return &sim.Result{
		Samples: []sim.Sample{s1, s2},
		Metrics: map[string]float64{"path_length": 0.01},
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	require.NoError(t, st.Init())

	info := RunInfo{Scenario: "square", Preset: "competition", Strategy: "motor", Integrator: "rk4", Period: 0.02, Duration: 0.04}
	runID, err := st.Save(info, sampleResult())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(runID, "square_"))

	meta, err := st.Load(runID)
	require.NoError(t, err)
	assert.Equal(t, runID, meta.ID)
	assert.Equal(t, info, meta.RunInfo)
	assert.Equal(t, 2, meta.Steps)
	assert.Equal(t, 0.01, meta.Metrics["path_length"])

	assert.FileExists(t, filepath.Join(st.Path(runID), "metadata.json"))
	assert.FileExists(t, filepath.Join(st.Path(runID), "telemetry.csv"))
}

func TestSamplesSurviveCSV(t *testing.T) {
	st := New(t.TempDir())
	require.NoError(t, st.Init())

	want := sampleResult().Samples
	runID, err := st.Save(RunInfo{Scenario: "csv"}, &sim.Result{Samples: want})
	require.NoError(t, err)

	got, err := st.LoadSamples(runID)
	require.NoError(t, err)
	require.Len(t, got, len(want))
	assert.Equal(t, want[0], got[0])

	// The applied command carries the requested frame.
	want[1].Applied.Frame = drive.RobotCentric
	assert.Equal(t, want[1], got[1])
}

func TestHeaderMatchesRows(t *testing.T) {
	row := formatRow(sampleResult().Samples[0])
	assert.Len(t, row, len(Columns()))
	assert.Equal(t, "time", Columns()[0])
	assert.Contains(t, Columns(), "drive_velocity_rad_per_sec_FR")
	assert.Contains(t, Columns(), "speed_multiplier")
}

func TestUniqueRunIDs(t *testing.T) {
	st := New(t.TempDir())
	require.NoError(t, st.Init())

	seen := map[string]bool{}
	for i := 0; i < 5; i++ {
		id, err := st.Save(RunInfo{Scenario: "dup"}, &sim.Result{})
		require.NoError(t, err)
		assert.False(t, seen[id], "duplicate run id %s", id)
		seen[id] = true
	}

	runs, err := st.List()
	require.NoError(t, err)
	assert.Len(t, runs, 5)
	for i := 1; i < len(runs); i++ {
		assert.False(t, runs[i].Timestamp.Before(runs[i-1].Timestamp))
	}
}

func TestListSkipsStrayEntries(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)
	require.NoError(t, st.Init())
	require.NoError(t, os.Mkdir(filepath.Join(dir, "not-a-run"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))

	_, err := st.Save(RunInfo{Scenario: "real"}, sampleResult())
	require.NoError(t, err)

	runs, err := st.List()
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestListMissingDir(t *testing.T) {
	runs, err := New(filepath.Join(t.TempDir(), "absent")).List()
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestRunNotFound(t *testing.T) {
	st := New(t.TempDir())
	_, err := st.Load("ghost")
	assert.ErrorIs(t, err, ErrRunNotFound)
	_, err = st.LoadSamples("ghost")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestCorruptTelemetry(t *testing.T) {
	st := New(t.TempDir())
	require.NoError(t, st.Init())
	runID, err := st.Save(RunInfo{Scenario: "bad"}, sampleResult())
	require.NoError(t, err)

	path := filepath.Join(st.Path(runID), "telemetry.csv")
	header := strings.Join(Columns(), ",")
	require.NoError(t, os.WriteFile(path, []byte(header+"\n"+strings.Repeat("x,", len(Columns())-1)+"x\n"), 0644))

	_, err = st.LoadSamples(runID)
	assert.Error(t, err)
}

func TestExportRun(t *testing.T) {
	st := New(t.TempDir())
	require.NoError(t, st.Init())
	runID, err := st.Save(RunInfo{Scenario: "export", Strategy: "kinematic"}, sampleResult())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, st.ExportRun(&buf, runID))

	var data ExportData
	require.NoError(t, json.Unmarshal(buf.Bytes(), &data))
	assert.Equal(t, runID, data.Run.ID)
	assert.Equal(t, "kinematic", data.Run.Strategy)
	require.Len(t, data.Samples, 2)
	assert.Equal(t, "field", data.Samples[0].Requested.Frame)
	assert.Equal(t, 0.5, data.Samples[0].Applied.Vx)
	assert.True(t, data.Samples[0].Brownout)
	assert.True(t, data.Samples[1].EmergencyStop)
	assert.Equal(t, 42.125, data.Samples[0].Snapshot.DriveVelocityRadPerSec[drive.FrontRight])

	assert.ErrorIs(t, st.ExportRun(&buf, "ghost"), ErrRunNotFound)
}

func TestExportCSV(t *testing.T) {
	st := New(t.TempDir())
	require.NoError(t, st.Init())
	runID, err := st.Save(RunInfo{Scenario: "csv"}, sampleResult())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, st.ExportCSV(&buf, runID))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, strings.Join(Columns(), ","), lines[0])

	assert.ErrorIs(t, st.ExportCSV(&buf, "ghost"), ErrRunNotFound)
}
