// Package scan implements the concurrent TCP connect-scan engine for portsweep.
// It contains target resolution, port enumeration, the per-port prober with
// its open/closed/filtered outcome taxonomy, and the bounded worker-pool
// dispatcher that aggregates probe results into an ordered summary.
package scan

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/mkarlsen/portsweep/internal/errors"
)

const (
	minPort = 1
	maxPort = 65535

	// Maximum bytes read from an open port during banner capture.
	bannerByteCap = 1024
)

// PortStatus classifies the outcome of a single port probe.
type PortStatus string

const (
	// StatusOpen means a full TCP connection was established.
	StatusOpen PortStatus = "open"
	// StatusClosed means the peer actively refused the connection.
	StatusClosed PortStatus = "closed"
	// StatusFiltered means no response was observed before timeout, or the
	// connect failed in a way that cannot be distinguished from a firewall
	// silently dropping the probe.
	StatusFiltered PortStatus = "filtered"
)

// Config holds the parameters for a single scan run.
// It is immutable once the run begins.
type Config struct {
	// Target is the hostname or IP address to scan.
	Target string `validate:"required"`
	// StartPort and EndPort bound the inclusive port range. Values outside
	// [1,65535] are clamped before validation.
	StartPort int
	EndPort   int
	// ConnectTimeout bounds each TCP connection attempt.
	ConnectTimeout time.Duration `validate:"gt=0"`
	// BannerTimeout bounds the optional post-connect banner read.
	BannerTimeout time.Duration
	// Workers is the maximum number of concurrent probes.
	Workers int `validate:"min=1,max=4096"`
	// CaptureBanner enables the best-effort banner read on open ports.
	CaptureBanner bool
}

var validate = validator.New()

// Validate checks the configuration. The port range is clamped first, so the
// only range failure mode is an inverted range after clamping.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.WrapConfigError(errors.CodeValidation, "invalid scan configuration", err)
	}
	if c.CaptureBanner && c.BannerTimeout <= 0 {
		return errors.ErrConfigInvalid("banner_timeout", c.BannerTimeout)
	}
	start, end := ClampRange(c.StartPort, c.EndPort)
	if start > end {
		return errors.ErrInvalidPortRange(start, end)
	}
	return nil
}

// Result is the classified outcome of probing one port.
// Instances are immutable once produced.
type Result struct {
	// Port is the probed port number.
	Port int `json:"port"`
	// Status is exactly one of open, closed, or filtered.
	Status PortStatus `json:"status"`
	// Service is the conventional well-known service name, best effort.
	Service string `json:"service,omitempty"`
	// Banner holds captured banner text. Present only when the port is open,
	// capture was requested, and a read succeeded.
	Banner string `json:"banner,omitempty"`
	// Error records the message of an unexpected failure that was downgraded
	// to a filtered classification.
	Error string `json:"error,omitempty"`
}

// Summary is the finalized outcome of a scan run. It is produced exactly once
// per run and is valid whether the run completed naturally or was cancelled.
type Summary struct {
	// RunID uniquely identifies this scan run.
	RunID uuid.UUID `json:"run_id"`
	// Target is the host as given; Address is what it resolved to.
	Target  string `json:"target"`
	Address string `json:"address"`
	// StartPort and EndPort are the clamped bounds that were scanned.
	StartPort int `json:"start_port"`
	EndPort   int `json:"end_port"`
	// Results is sorted ascending by port with no duplicates.
	Results []Result `json:"results"`
	// OpenCount is the number of results with status open.
	OpenCount int `json:"open_count"`
	// Interrupted is true when the run was cancelled before covering the
	// full range.
	Interrupted bool `json:"interrupted,omitempty"`

	StartTime time.Time     `json:"started_at"`
	EndTime   time.Time     `json:"finished_at"`
	Duration  time.Duration `json:"duration"`
}

// Stats counts probe outcomes during a run. The dispatcher updates it from a
// single collection goroutine; Snapshot copies are safe to hand out.
type Stats struct {
	Probed   int `json:"probed"`
	Open     int `json:"open"`
	Closed   int `json:"closed"`
	Filtered int `json:"filtered"`
	Banners  int `json:"banners"`
}

func (s *Stats) record(r Result) {
	s.Probed++
	switch r.Status {
	case StatusOpen:
		s.Open++
	case StatusClosed:
		s.Closed++
	case StatusFiltered:
		s.Filtered++
	}
	if r.Banner != "" {
		s.Banners++
	}
}
