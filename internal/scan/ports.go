package scan

import (
	"github.com/mkarlsen/portsweep/internal/errors"
)

// ClampRange forces both bounds into [1,65535] without reordering them.
func ClampRange(start, end int) (int, int) {
	if start < minPort {
		start = minPort
	}
	if start > maxPort {
		start = maxPort
	}
	if end > maxPort {
		end = maxPort
	}
	if end < minPort {
		end = minPort
	}
	return start, end
}

// EnumeratePorts materializes the ascending inclusive port sequence to scan
// after clamping. A range whose clamped start exceeds its clamped end is
// fatal and aborts before any connection attempt.
func EnumeratePorts(start, end int) ([]int, error) {
	start, end = ClampRange(start, end)
	if start > end {
		return nil, errors.ErrInvalidPortRange(start, end)
	}

	ports := make([]int, 0, end-start+1)
	for p := start; p <= end; p++ {
		ports = append(ports, p)
	}
	return ports, nil
}
