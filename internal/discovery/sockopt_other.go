//go:build !unix && !windows

package discovery

import "syscall"

func socketControl(ipv6, v6only bool) func(network, address string, c syscall.RawConn) error {
	return nil
}

// isAddrInUse has no portable errno to match on these platforms
func isAddrInUse(err error) bool {
	return false
}
