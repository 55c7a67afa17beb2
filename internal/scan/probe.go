package scan

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"syscall"
	"time"
	"unicode/utf8"
)

// Cap on the quoted fallback used when a banner is not valid text.
const rawBannerCap = 200

// ProbeOptions bound a single probe's two possible blocking operations.
type ProbeOptions struct {
	ConnectTimeout time.Duration
	BannerTimeout  time.Duration
	CaptureBanner  bool
}

// ProbePort performs one TCP connection attempt against addr:port and
// classifies the outcome. It is guaranteed to return within
// ConnectTimeout+BannerTimeout and never lets a failure escape: anything not
// anticipated by the classification rules is downgraded to a filtered result
// with the message recorded.
func ProbePort(addr string, port int, opts ProbeOptions) (res Result) {
	res = Result{Port: port, Status: StatusFiltered}

	defer func() {
		if r := recover(); r != nil {
			res.Status = StatusFiltered
			res.Error = fmt.Sprintf("probe panic: %v", r)
		}
	}()

	hostPort := net.JoinHostPort(addr, strconv.Itoa(port))
	conn, err := net.DialTimeout("tcp", hostPort, opts.ConnectTimeout)
	if err != nil {
		res.Status, res.Error = classifyDialError(err)
		return res
	}
	defer conn.Close()

	res.Status = StatusOpen
	res.Service = ServiceName(port)

	if opts.CaptureBanner {
		// Banner failures never change the port's status and never record
		// an error: a silent peer is a normal outcome.
		res.Banner = grabBanner(conn, opts.BannerTimeout)
	}

	return res
}

// classifyDialError maps a failed connect to the three-way taxonomy. An
// explicit refusal is the only signal strong enough for closed; a timeout or
// anything unrecognized collapses to filtered, since a dropped probe is
// indistinguishable from one silently discarded by a firewall. Unrecognized
// failures additionally carry their message.
func classifyDialError(err error) (PortStatus, string) {
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return StatusFiltered, ""
	}

	if errors.Is(err, syscall.ECONNREFUSED) {
		return StatusClosed, ""
	}
	// Portable fallback for platforms where the syscall error is not
	// surfaced through the wrap chain.
	if strings.Contains(err.Error(), "refused") {
		return StatusClosed, ""
	}

	return StatusFiltered, err.Error()
}

// grabBanner performs a single bounded read of unsolicited data the service
// may send right after connect. The read is capped at bannerByteCap bytes and
// bounded by the banner timeout.
func grabBanner(conn net.Conn, timeout time.Duration) string {
	if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return ""
	}

	buf := make([]byte, bannerByteCap)
	n, _ := conn.Read(buf)
	if n == 0 {
		return ""
	}

	return decodeBanner(buf[:n])
}

// decodeBanner renders captured bytes as text, falling back to a truncated
// quoted representation when the payload is not valid UTF-8.
func decodeBanner(raw []byte) string {
	if utf8.Valid(raw) {
		return strings.TrimSpace(string(raw))
	}

	quoted := strconv.Quote(string(raw))
	if len(quoted) > rawBannerCap {
		quoted = quoted[:rawBannerCap]
	}
	return quoted
}
