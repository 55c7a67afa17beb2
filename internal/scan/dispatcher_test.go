package scan

import (
	"context"
	"net"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkarlsen/portsweep/internal/errors"
)

func TestDispatcherRunCoversFullRange(t *testing.T) {
	ln, host, port := startListener(t)
	go acceptLoop(ln)

	cfg := Config{
		Target:         host,
		StartPort:      port - 1,
		EndPort:        port + 1,
		ConnectTimeout: 2 * time.Second,
		BannerTimeout:  100 * time.Millisecond,
		Workers:        10,
	}

	d := NewDispatcher(cfg)
	summary, err := d.Run(context.Background())
	require.NoError(t, err)
	require.NotNil(t, summary)

	// Exactly one result per port in the range, sorted ascending.
	require.Len(t, summary.Results, 3)
	seen := map[int]bool{}
	for _, r := range summary.Results {
		assert.GreaterOrEqual(t, r.Port, port-1)
		assert.LessOrEqual(t, r.Port, port+1)
		assert.False(t, seen[r.Port], "duplicate result for port %d", r.Port)
		seen[r.Port] = true
		assert.Contains(t, []PortStatus{StatusOpen, StatusClosed, StatusFiltered}, r.Status)
	}
	assert.True(t, sort.SliceIsSorted(summary.Results, func(i, j int) bool {
		return summary.Results[i].Port < summary.Results[j].Port
	}))

	// The listener port must have been classified open and counted.
	var listenerResult *Result
	for i := range summary.Results {
		if summary.Results[i].Port == port {
			listenerResult = &summary.Results[i]
		}
	}
	require.NotNil(t, listenerResult)
	assert.Equal(t, StatusOpen, listenerResult.Status)
	assert.GreaterOrEqual(t, summary.OpenCount, 1)

	assert.Equal(t, StateDone, d.State())
	assert.Equal(t, 3, d.Stats().Probed)
	assert.False(t, summary.Interrupted)
}

func TestDispatcherRefusedPortsAreClosed(t *testing.T) {
	port := freePort(t)

	cfg := Config{
		Target:         "127.0.0.1",
		StartPort:      port,
		EndPort:        port,
		ConnectTimeout: 2 * time.Second,
		Workers:        1,
	}

	summary, err := NewDispatcher(cfg).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, summary.Results, 1)
	assert.Equal(t, StatusClosed, summary.Results[0].Status)
	assert.Equal(t, 0, summary.OpenCount)
}

func TestDispatcherAllProbesTimingOut(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping test that needs an unrouted address in short mode")
	}

	// 192.0.2.0/24 is reserved for documentation and never routed, so every
	// connect attempt dies by timeout or an unreachable error.
	cfg := Config{
		Target:         "192.0.2.1",
		StartPort:      1,
		EndPort:        5,
		ConnectTimeout: 200 * time.Millisecond,
		Workers:        5,
	}

	summary, err := NewDispatcher(cfg).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, summary.Results, 5)
	for _, r := range summary.Results {
		assert.Equal(t, StatusFiltered, r.Status)
	}
	assert.Equal(t, 0, summary.OpenCount)
}

func TestDispatcherCancellationDrains(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := Config{
		Target:         "127.0.0.1",
		StartPort:      1,
		EndPort:        50,
		ConnectTimeout: 200 * time.Millisecond,
		Workers:        4,
	}

	start := time.Now()
	d := NewDispatcher(cfg)
	summary, err := d.Run(ctx)

	// Cancellation is not an error: the partial summary is still produced,
	// sorted, and never blocks past the probes' own timeouts.
	require.NoError(t, err)
	require.NotNil(t, summary)
	assert.True(t, summary.Interrupted)
	assert.LessOrEqual(t, len(summary.Results), 50)
	assert.True(t, sort.SliceIsSorted(summary.Results, func(i, j int) bool {
		return summary.Results[i].Port < summary.Results[j].Port
	}))
	assert.Less(t, time.Since(start), 10*time.Second)
	assert.Equal(t, StateDone, d.State())
}

func TestDispatcherFatalErrors(t *testing.T) {
	t.Run("unresolvable target aborts before scanning", func(t *testing.T) {
		cfg := testScanConfig()
		cfg.Target = "host.invalid"
		summary, err := NewDispatcher(cfg).Run(context.Background())
		require.Error(t, err)
		assert.Nil(t, summary)
		assert.True(t, errors.IsCode(err, errors.CodeResolution))
		assert.True(t, errors.IsFatal(err))
	})

	t.Run("inverted range aborts before scanning", func(t *testing.T) {
		cfg := testScanConfig()
		cfg.StartPort = 2000
		cfg.EndPort = 10
		summary, err := NewDispatcher(cfg).Run(context.Background())
		require.Error(t, err)
		assert.Nil(t, summary)
		assert.True(t, errors.IsCode(err, errors.CodeInvalidRange))
		assert.True(t, errors.IsFatal(err))
	})
}

// acceptLoop accepts and immediately closes connections until the listener closes.
func acceptLoop(ln net.Listener) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		_ = conn.Close()
	}
}
