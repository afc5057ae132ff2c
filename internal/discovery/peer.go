package discovery

import (
	"fmt"
	"net/netip"
	"time"

	"github.com/muurk/lanscan/internal/beacon"
)

// PeerInfo describes a peer as first observed during a scan
type PeerInfo struct {
	// ID is the peer's installation identifier (host_int)
	ID beacon.ID

	// Addr is the source address the announcement arrived from
	Addr netip.AddrPort

	// Host is the reverse-resolved host name, or "(Unknown)"
	Host string

	// Namespaces is the number of shared folders advertised
	Namespaces int

	// DisplayName is the peer-chosen display name (often empty)
	DisplayName string

	// AdvertisedPort is the sync port the peer announces, which may
	// differ from Addr's port
	AdvertisedPort uint16

	// Version is the protocol version in dotted form (e.g. "2.0")
	Version string

	// FirstSeen is when the first announcement was received
	FirstSeen time.Time
}

// NewPeerInfo derives a PeerInfo from a decoded announcement
func NewPeerInfo(pkt *beacon.Packet, addr netip.AddrPort, host string, seen time.Time) PeerInfo {
	return PeerInfo{
		ID:             pkt.HostInt,
		Addr:           addr,
		Host:           host,
		Namespaces:     pkt.NamespaceCount(),
		DisplayName:    pkt.DisplayName,
		AdvertisedPort: pkt.Port,
		Version:        pkt.VersionString(),
		FirstSeen:      seen,
	}
}

// String returns a human-readable string representation of the peer
func (p PeerInfo) String() string {
	return fmt.Sprintf("Peer %s (%s) at %s with %d namespaces", p.ID, p.Host, p.Addr, p.Namespaces)
}

// IP returns the peer's source IP address
func (p PeerInfo) IP() netip.Addr {
	return p.Addr.Addr()
}

// Event is an element of the merged scan stream: Countdown or HostFound
type Event interface {
	isEvent()
}

// Countdown reports whole seconds remaining until the scan deadline
type Countdown struct {
	Remaining uint64
}

// HostFound carries a peer decoded from one announcement
type HostFound struct {
	Peer PeerInfo
}

func (Countdown) isEvent() {}
func (HostFound) isEvent() {}
