package storage

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/san-kum/swervesim/internal/drive"
	"github.com/san-kum/swervesim/internal/sim"
)

type ExportData struct {
	Run     RunMetadata    `json:"run"`
	Samples []ExportSample `json:"samples"`
}

type ExportCommand struct {
	Vx    float64 `json:"vx"`
	Vy    float64 `json:"vy"`
	Omega float64 `json:"omega"`
	Frame string  `json:"frame"`
}

type ExportSample struct {
	Time            float64              `json:"time"`
	Snapshot        drive.SensorSnapshot `json:"snapshot"`
	Requested       ExportCommand        `json:"requested"`
	Applied         ExportCommand        `json:"applied"`
	BatteryVoltage  float64              `json:"battery_voltage"`
	Disabled        bool                 `json:"disabled"`
	EmergencyStop   bool                 `json:"emergency_stop"`
	Brownout        bool                 `json:"brownout"`
	SpeedMultiplier float64              `json:"speed_multiplier"`
}

func exportCommand(c drive.Command) ExportCommand {
	return ExportCommand{Vx: c.Vx, Vy: c.Vy, Omega: c.Omega, Frame: c.Frame.String()}
}

// ExportJSON writes a run's metadata and samples as indented JSON.
func ExportJSON(w io.Writer, meta RunMetadata, samples []sim.Sample) error {
	data := ExportData{
		Run:     meta,
		Samples: make([]ExportSample, len(samples)),
	}
	for i, s := range samples {
		data.Samples[i] = ExportSample{
			Time:            s.Time,
			Snapshot:        s.Snapshot,
			Requested:       exportCommand(s.Requested),
			Applied:         exportCommand(s.Applied),
			BatteryVoltage:  s.Voltage,
			Disabled:        s.Disabled,
			EmergencyStop:   s.Safety.EmergencyStop,
			Brownout:        s.Safety.Brownout,
			SpeedMultiplier: s.Safety.SpeedMultiplier,
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// ExportRun loads a stored run and writes it with ExportJSON.
func (s *Store) ExportRun(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	samples, err := s.LoadSamples(runID)
	if err != nil {
		return err
	}
	return ExportJSON(w, *meta, samples)
}

// ExportCSV copies a run's telemetry table to w unchanged.
func (s *Store) ExportCSV(w io.Writer, runID string) error {
	f, err := os.Open(filepath.Join(s.baseDir, runID, telemetryFile))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return err
	}
	defer f.Close()
	_, err = io.Copy(w, f)
	return err
}
