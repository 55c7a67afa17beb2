package output

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/mkarlsen/portsweep/internal/scan"
)

const (
	// Banner text wider than this is truncated for console display only;
	// the file sinks keep the full capture.
	displayBannerWidth = 60

	summaryDurationPrecision = time.Millisecond
)

// RenderTable writes a human-readable result table followed by a one-line
// summary. When showAll is false only open ports are listed, which keeps the
// output readable on wide scans.
func RenderTable(w io.Writer, summary *scan.Summary, showAll bool) {
	table := tablewriter.NewWriter(w)
	table.Header("Port", "Status", "Service", "Banner", "Error")

	rows := 0
	for i := range summary.Results {
		r := &summary.Results[i]
		if !showAll && r.Status != scan.StatusOpen {
			continue
		}

		banner := r.Banner
		if len(banner) > displayBannerWidth {
			banner = banner[:displayBannerWidth] + "..."
		}

		_ = table.Append([]string{
			strconv.Itoa(r.Port),
			string(r.Status),
			r.Service,
			banner,
			r.Error,
		})
		rows++
	}

	if rows > 0 {
		_ = table.Render()
	} else if !showAll {
		fmt.Fprintln(w, "No open ports found.")
	}

	fmt.Fprintf(w, "\nScanned %s (%s) ports %d-%d: %d open of %d probed in %s\n",
		summary.Target, summary.Address,
		summary.StartPort, summary.EndPort,
		summary.OpenCount, len(summary.Results),
		summary.Duration.Round(summaryDurationPrecision))

	if summary.Interrupted {
		fmt.Fprintln(w, "Scan was interrupted; results are partial.")
	}
}
