// Package resolve performs best-effort reverse DNS lookups for peer
// addresses.
//
// A lookup never fails from the caller's point of view: any error, timeout
// or empty answer yields the Unknown placeholder. Results (including
// failures) are cached per address, so repeated announcements from the same
// peer cost a single query.
//
// Two lookup backends are available. NewSystem uses the operating system
// resolver through net.Resolver. NewDNS sends PTR queries straight to a
// chosen DNS server, which helps on networks where the router knows local
// host names but the system resolver is pointed elsewhere.
package resolve
