package output

import (
	"encoding/csv"
	"os"
	"strconv"

	"github.com/mkarlsen/portsweep/internal/errors"
	"github.com/mkarlsen/portsweep/internal/scan"
)

// csvHeader fixes the tabular column order.
var csvHeader = []string{"port", "status", "service", "banner", "error"}

// WriteCSV writes the summary's per-port results as a CSV file with a header
// row and one row per port, in the summary's sorted order.
func WriteCSV(path string, summary *scan.Summary) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.ErrOutputWrite(path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return errors.ErrOutputWrite(path, err)
	}
	for i := range summary.Results {
		r := &summary.Results[i]
		row := []string{
			strconv.Itoa(r.Port),
			string(r.Status),
			r.Service,
			r.Banner,
			r.Error,
		}
		if err := w.Write(row); err != nil {
			return errors.ErrOutputWrite(path, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return errors.ErrOutputWrite(path, err)
	}
	return nil
}
