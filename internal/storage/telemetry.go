package storage

import (
	"fmt"
	"strconv"

	"github.com/san-kum/swervesim/internal/drive"
	"github.com/san-kum/swervesim/internal/sim"
)

var commandColumns = []string{
	"requested_vx", "requested_vy", "requested_omega", "frame",
	"applied_vx", "applied_vy", "applied_omega",
	"battery_voltage", "disabled", "emergency_stop", "brownout", "speed_multiplier",
}

// Columns is the telemetry.csv header: time, the flattened sensor
// snapshot, then command and safety state.
func Columns() []string {
	cols := make([]string, 0, 1+drive.SnapshotWidth+len(commandColumns))
	cols = append(cols, "time")
	cols = append(cols, drive.Columns()...)
	return append(cols, commandColumns...)
}

func ftoa(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

func btoa(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func formatRow(s sim.Sample) []string {
	row := make([]string, 0, 1+drive.SnapshotWidth+len(commandColumns))
	row = append(row, ftoa(s.Time))
	for _, v := range s.Snapshot.Values() {
		row = append(row, ftoa(v))
	}
	return append(row,
		ftoa(s.Requested.Vx), ftoa(s.Requested.Vy), ftoa(s.Requested.Omega), s.Requested.Frame.String(),
		ftoa(s.Applied.Vx), ftoa(s.Applied.Vy), ftoa(s.Applied.Omega),
		ftoa(s.Voltage), btoa(s.Disabled), btoa(s.Safety.EmergencyStop), btoa(s.Safety.Brownout),
		ftoa(s.Safety.SpeedMultiplier),
	)
}

func parseRow(rec []string) (sim.Sample, error) {
	var s sim.Sample
	want := 1 + drive.SnapshotWidth + len(commandColumns)
	if len(rec) != want {
		return s, fmt.Errorf("expected %d fields, got %d", want, len(rec))
	}

	vals := make([]float64, len(rec))
	frameCol := 1 + drive.SnapshotWidth + 3
	for i, field := range rec {
		if i == frameCol {
			continue
		}
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return s, fmt.Errorf("column %d: %w", i, err)
		}
		vals[i] = v
	}

	frame, err := drive.ParseFrame(rec[frameCol])
	if err != nil {
		return s, err
	}
	snap, err := drive.SnapshotFromValues(vals[1 : 1+drive.SnapshotWidth])
	if err != nil {
		return s, err
	}

	c := vals[1+drive.SnapshotWidth:]
	s.Time = vals[0]
	s.Snapshot = snap
	s.Requested = drive.Command{Vx: c[0], Vy: c[1], Omega: c[2], Frame: frame}
	s.Applied = drive.Command{Vx: c[4], Vy: c[5], Omega: c[6], Frame: frame}
	s.Voltage = c[7]
	s.Disabled = c[8] != 0
	s.Safety.EmergencyStop = c[9] != 0
	s.Safety.Brownout = c[10] != 0
	s.Safety.SpeedMultiplier = c[11]
	return s, nil
}
