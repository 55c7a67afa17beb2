package scan

import (
	"context"
	"net"

	"github.com/mkarlsen/portsweep/internal/errors"
)

// Resolve turns a hostname or IP literal into a concrete IP address string.
// It is a single leaf call with no retries; failure is fatal to the whole run.
// IPv4 addresses are preferred when the name resolves to both families.
func Resolve(ctx context.Context, target string) (string, error) {
	if ip := net.ParseIP(target); ip != nil {
		return ip.String(), nil
	}

	addrs, err := net.DefaultResolver.LookupIPAddr(ctx, target)
	if err != nil {
		return "", errors.ErrResolutionFailed(target, err)
	}
	if len(addrs) == 0 {
		return "", errors.NewScanErrorWithTarget(errors.CodeResolution, "no addresses found", target)
	}

	for _, addr := range addrs {
		if v4 := addr.IP.To4(); v4 != nil {
			return v4.String(), nil
		}
	}
	return addrs[0].IP.String(), nil
}
