package scan

import (
	stderrors "errors"
	"fmt"
	"net"
	"strconv"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testProbeTimeout = 2 * time.Second

// startListener opens a loopback listener and returns its address and port.
func startListener(t *testing.T) (net.Listener, string, int) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	host, portStr, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)
	return ln, host, port
}

// freePort returns a loopback port that nothing is listening on.
func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	_, portStr, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	require.NoError(t, ln.Close())
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)
	return port
}

func TestProbePortOpen(t *testing.T) {
	ln, host, port := startListener(t)
	go func() {
		conn, err := ln.Accept()
		if err == nil {
			_ = conn.Close()
		}
	}()

	res := ProbePort(host, port, ProbeOptions{ConnectTimeout: testProbeTimeout})

	assert.Equal(t, port, res.Port)
	assert.Equal(t, StatusOpen, res.Status)
	assert.Empty(t, res.Banner)
	assert.Empty(t, res.Error)
}

func TestProbePortClosed(t *testing.T) {
	port := freePort(t)

	res := ProbePort("127.0.0.1", port, ProbeOptions{ConnectTimeout: testProbeTimeout})

	assert.Equal(t, StatusClosed, res.Status)
	assert.Empty(t, res.Banner)
	assert.Empty(t, res.Error)
}

func TestProbePortServiceName(t *testing.T) {
	// Service labels come from the static table only; a port outside it
	// stays unnamed even when open.
	assert.Equal(t, "ssh", ServiceName(22))
	assert.Equal(t, "https", ServiceName(443))
	assert.Equal(t, "", ServiceName(49999))
}

func TestProbePortBannerCapture(t *testing.T) {
	ln, host, port := startListener(t)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		_, _ = conn.Write([]byte("SSH-2.0-OpenSSH_9.6\r\n"))
		_ = conn.Close()
	}()

	res := ProbePort(host, port, ProbeOptions{
		ConnectTimeout: testProbeTimeout,
		BannerTimeout:  testProbeTimeout,
		CaptureBanner:  true,
	})

	require.Equal(t, StatusOpen, res.Status)
	assert.Equal(t, "SSH-2.0-OpenSSH_9.6", res.Banner)
	assert.Empty(t, res.Error)
}

func TestProbePortSilentPeerKeepsOpenStatus(t *testing.T) {
	ln, host, port := startListener(t)
	go func() {
		// Accept and hold the connection without sending anything.
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		time.Sleep(500 * time.Millisecond)
		_ = conn.Close()
	}()

	res := ProbePort(host, port, ProbeOptions{
		ConnectTimeout: testProbeTimeout,
		BannerTimeout:  100 * time.Millisecond,
		CaptureBanner:  true,
	})

	assert.Equal(t, StatusOpen, res.Status)
	assert.Empty(t, res.Banner)
	assert.Empty(t, res.Error)
}

// timeoutError fakes a net.Error that reports a timeout.
type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

func TestClassifyDialError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus PortStatus
		wantErrMsg bool
	}{
		{
			name:       "timeout is filtered without error note",
			err:        &net.OpError{Op: "dial", Err: timeoutError{}},
			wantStatus: StatusFiltered,
		},
		{
			name:       "connection refused is closed",
			err:        &net.OpError{Op: "dial", Err: syscall.ECONNREFUSED},
			wantStatus: StatusClosed,
		},
		{
			name:       "refusal text fallback is closed",
			err:        fmt.Errorf("dial tcp: connect: connection refused"),
			wantStatus: StatusClosed,
		},
		{
			name:       "anything else is filtered with the message recorded",
			err:        stderrors.New("no route to host"),
			wantStatus: StatusFiltered,
			wantErrMsg: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, msg := classifyDialError(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			if tt.wantErrMsg {
				assert.NotEmpty(t, msg)
			} else {
				assert.Empty(t, msg)
			}
		})
	}
}

func TestDecodeBanner(t *testing.T) {
	t.Run("text banner is trimmed", func(t *testing.T) {
		assert.Equal(t, "220 smtp ready", decodeBanner([]byte("220 smtp ready\r\n")))
	})

	t.Run("binary banner falls back to quoted form", func(t *testing.T) {
		got := decodeBanner([]byte{0xff, 0xfe, 0x00, 0x01})
		assert.NotEmpty(t, got)
		assert.LessOrEqual(t, len(got), rawBannerCap)
		assert.Contains(t, got, "\\x")
	})
}
