//go:build windows

package discovery

import (
	"errors"
	"fmt"
	"syscall"

	"golang.org/x/sys/windows"
)

// socketControl sets IPV6_V6ONLY on IPv6 sockets. SO_REUSEADDR is left
// alone: on Windows it lets a second socket steal an active port.
func socketControl(ipv6, v6only bool) func(network, address string, c syscall.RawConn) error {
	return func(_, _ string, c syscall.RawConn) error {
		if !ipv6 {
			return nil
		}
		var opErr error
		err := c.Control(func(fd uintptr) {
			only := 0
			if v6only {
				only = 1
			}
			if err := windows.SetsockoptInt(windows.Handle(fd), windows.IPPROTO_IPV6, windows.IPV6_V6ONLY, only); err != nil {
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
	return errors.Is(err, windows.WSAEADDRINUSE)
}
