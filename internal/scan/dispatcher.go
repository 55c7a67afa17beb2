package scan

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/mkarlsen/portsweep/internal/logging"
)

// DispatcherState tracks the lifecycle of a scan run.
type DispatcherState int32

const (
	// StateRunning means ports are being claimed and probed.
	StateRunning DispatcherState = iota
	// StateDraining means no new ports are claimed; in-flight probes are
	// allowed to finish within their own timeouts.
	StateDraining
	// StateDone is terminal. It is always reached in finite time because
	// every probe's lifetime is bounded by its timeouts.
	StateDone
)

func (s DispatcherState) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateDraining:
		return "draining"
	case StateDone:
		return "done"
	}
	return "unknown"
}

// Dispatcher drives up to Config.Workers concurrent probe executions over the
// enumerated port sequence and delivers every completed result to the
// aggregator. Results arrive in completion order; final ordering belongs to
// the aggregator, so a slow probe never holds up delivery of faster ones.
type Dispatcher struct {
	cfg   Config
	log   *logging.Logger
	state atomic.Int32
	stats Stats
}

// NewDispatcher creates a dispatcher for the given configuration.
func NewDispatcher(cfg Config) *Dispatcher {
	return &Dispatcher{
		cfg: cfg,
		log: logging.Default().WithComponent("dispatcher"),
	}
}

// State reports the current lifecycle state.
func (d *Dispatcher) State() DispatcherState {
	return DispatcherState(d.state.Load())
}

// Stats returns a copy of the outcome counters recorded so far.
func (d *Dispatcher) Stats() Stats {
	return d.stats
}

// Run resolves the target, enumerates the clamped port range, and scans it
// with a bounded worker pool. Cancelling ctx moves the run from running to
// draining: no new ports are claimed, in-flight probes settle within their
// timeouts, and the partial result set is finalized normally. Cancellation is
// never re-raised as a failure; only resolution and range errors are.
func (d *Dispatcher) Run(ctx context.Context) (*Summary, error) {
	if err := d.cfg.Validate(); err != nil {
		return nil, err
	}

	address, err := Resolve(ctx, d.cfg.Target)
	if err != nil {
		return nil, err
	}

	ports, err := EnumeratePorts(d.cfg.StartPort, d.cfg.EndPort)
	if err != nil {
		return nil, err
	}

	d.log.InfoScan("starting scan", d.cfg.Target,
		"address", address,
		"ports", len(ports),
		"workers", d.cfg.Workers,
		"banner", d.cfg.CaptureBanner)

	agg := NewAggregator(len(ports))
	summary := d.scan(ctx, address, ports, agg)

	d.log.InfoScan("scan finished", d.cfg.Target,
		"open", summary.OpenCount,
		"results", len(summary.Results),
		"interrupted", summary.Interrupted,
		"duration", summary.Duration)

	return summary, nil
}

// scan owns worker lifetimes. Workers claim ports from a shared channel in
// whatever order scheduling provides and publish completed results as they
// finish. The feeder observes ctx between claims, so cancellation is
// cooperative and never interrupts in-flight I/O.
func (d *Dispatcher) scan(ctx context.Context, address string, ports []int, agg *Aggregator) *Summary {
	d.state.Store(int32(StateRunning))

	workers := d.cfg.Workers
	if workers > len(ports) {
		workers = len(ports)
	}

	portCh := make(chan int)
	resultCh := make(chan Result, workers)

	opts := ProbeOptions{
		ConnectTimeout: d.cfg.ConnectTimeout,
		BannerTimeout:  d.cfg.BannerTimeout,
		CaptureBanner:  d.cfg.CaptureBanner,
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for port := range portCh {
				resultCh <- ProbePort(address, port, opts)
			}
		}()
	}

	// Feed ports until the sequence is exhausted or ctx fires. Claimed work
	// always runs to its own bounded completion.
	interrupted := false
	go func() {
		defer close(portCh)
		for _, port := range ports {
			select {
			case portCh <- port:
			case <-ctx.Done():
				interrupted = true
				d.state.Store(int32(StateDraining))
				d.log.Info("interrupt received, draining in-flight probes")
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	for res := range resultCh {
		d.stats.record(res)
		agg.Add(res)
		if res.Status == StatusOpen {
			d.log.Debug("open port found",
				"port", res.Port,
				"service", res.Service)
		}
	}

	summary := agg.Finalize(&d.cfg, address, interrupted)
	d.state.Store(int32(StateDone))
	return summary
}
