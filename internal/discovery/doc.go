// Package discovery finds LAN sync peers by passively listening for their
// UDP announcements.
//
// The scanner never transmits. It binds the discovery port, decodes every
// datagram that arrives for a fixed window, and returns the distinct set of
// peers it heard from.
//
// # Discovery Process
//
// A scan works as follows:
//  1. Acquires one or two UDP sockets on the discovery port (see below)
//  2. Starts one source per socket plus a countdown timer source
//  3. Merges all sources into a single event stream in arrival order
//  4. Folds HostFound events into a result set, first observation wins
//  5. Stops sharply at the Countdown event carrying zero seconds remaining
//
// # Usage Example
//
//	scanner := discovery.NewScanner()
//	scanner.Timeout = 30 * time.Second
//	scanner.Reporter = discovery.ReporterFunc(func(p discovery.Progress) {
//	    fmt.Printf("\r%d seconds remaining, %d peers", p.Remaining, p.Peers)
//	})
//
//	result, err := scanner.Scan(ctx)
//	if discovery.IsAddressInUse(err) {
//	    // the sync client itself is probably running on this machine
//	}
//
// # Dual-Stack Sockets
//
// Wildcard IPv6 sockets behave differently across platforms: some also
// receive IPv4 traffic, some don't. The scanner therefore probes at startup:
// it binds IPv4 first and adds a V6ONLY IPv6 socket when possible. If IPv4
// cannot be bound at all, a single IPv6 socket without V6ONLY is tried so
// that platforms with IPv4-mapped support keep full coverage. The decision is
// made once; sockets are never re-bound during a scan.
//
// # Concurrency
//
// Every source runs in its own goroutine and writes into one unbuffered
// channel. Only the fold goroutine touches the result set, so it is never
// locked. Peers announcing after the deadline are never seen.
package discovery
