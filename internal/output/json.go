package output

import (
	"encoding/json"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/mkarlsen/portsweep/internal/errors"
	"github.com/mkarlsen/portsweep/internal/scan"
)

// jsonReport is the structured tree form of a scan summary: the same
// per-entry fields as the tabular file, wrapped in a run envelope.
type jsonReport struct {
	RunID           uuid.UUID     `json:"run_id"`
	Target          string        `json:"target"`
	Address         string        `json:"address"`
	StartPort       int           `json:"start_port"`
	EndPort         int           `json:"end_port"`
	StartedAt       time.Time     `json:"started_at"`
	FinishedAt      time.Time     `json:"finished_at"`
	DurationSeconds float64       `json:"duration_seconds"`
	OpenCount       int           `json:"open_count"`
	Interrupted     bool          `json:"interrupted"`
	Results         []scan.Result `json:"results"`
}

// WriteJSON writes the summary as an indented JSON document.
func WriteJSON(path string, summary *scan.Summary) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	report := jsonReport{
		RunID:           summary.RunID,
		Target:          summary.Target,
		Address:         summary.Address,
		StartPort:       summary.StartPort,
		EndPort:         summary.EndPort,
		StartedAt:       summary.StartTime,
		FinishedAt:      summary.EndTime,
		DurationSeconds: summary.Duration.Seconds(),
		OpenCount:       summary.OpenCount,
		Interrupted:     summary.Interrupted,
		Results:         summary.Results,
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return errors.ErrOutputWrite(path, err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.ErrOutputWrite(path, err)
	}
	return nil
}
