package beacon

import (
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"lukechampine.com/uint128"
)

// DefaultPort is the well-known UDP port announcements are broadcast on
const DefaultPort = 17500

// ID is a 128-bit peer or namespace identifier
type ID = uint128.Uint128

var (
	errNotInteger = errors.New("not an unsigned integer")
	errOverflow   = errors.New("value exceeds 128 bits")
)

// ParseID parses a decimal string into an ID.
// Signs, fractions, exponents and values above 2^128-1 are rejected.
func ParseID(s string) (ID, error) {
	if s == "" {
		return ID{}, errNotInteger
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return ID{}, fmt.Errorf("%q: %w", s, errNotInteger)
		}
	}

	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return ID{}, fmt.Errorf("%q: %w", s, errNotInteger)
	}
	if n.BitLen() > 128 {
		return ID{}, fmt.Errorf("%q: %w", s, errOverflow)
	}
	return uint128.FromBig(n), nil
}

// Packet is a decoded announcement. It is never modified after decoding.
type Packet struct {
	// HostInt identifies the announcing installation
	HostInt ID

	// Version is the protocol version, e.g. [2, 0]
	Version []uint

	// DisplayName is the peer-chosen display name (usually empty)
	DisplayName string

	// Port is the advertised sync port, not the port the datagram came from
	Port uint16

	// Namespaces lists the shared folders the peer advertises
	Namespaces []ID
}

// NamespaceCount returns the number of advertised namespaces
func (p *Packet) NamespaceCount() int {
	return len(p.Namespaces)
}

// VersionString renders the protocol version as dotted components ("2.0")
func (p *Packet) VersionString() string {
	parts := make([]string, len(p.Version))
	for i, v := range p.Version {
		parts[i] = strconv.FormatUint(uint64(v), 10)
	}
	return strings.Join(parts, ".")
}
