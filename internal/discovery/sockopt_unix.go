//go:build unix

package discovery

import (
	"errors"
	"fmt"
	"syscall"

	"golang.org/x/sys/unix"
)

// socketControl sets SO_REUSEADDR and, for IPv6 sockets, IPV6_V6ONLY
// before the socket is bound
func socketControl(ipv6, v6only bool) func(network, address string, c syscall.RawConn) error {
	return func(_, _ string, c syscall.RawConn) error {
		var opErr error
		err := c.Control(func(fd uintptr) {
			if err := unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
				opErr = fmt.Errorf("set SO_REUSEADDR: %w", err)
				return
			}
			if !ipv6 {
				return
			}
			only := 0
			if v6only {
				only = 1
			}
			if err := unix.SetsockoptInt(int(fd), unix.IPPROTO_IPV6, unix.IPV6_V6ONLY, only); err != nil {
				opErr = fmt.Errorf("set IPV6_V6ONLY: %w", err)
			}
		})
		if err != nil {
			return err
		}
		return opErr
	}
}

func isAddrInUse(err error) bool {
	return errors.Is(err, unix.EADDRINUSE)
}
