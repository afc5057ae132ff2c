package discovery

import (
	"context"
	"net"
	"net/netip"
	"strconv"

	"github.com/benbjohnson/clock"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/muurk/lanscan/internal/beacon"
	"github.com/muurk/lanscan/internal/logging"
)

const (
	// maxDatagramSize fits any UDP payload
	maxDatagramSize = 65535

	wildcardIPv4 = "0.0.0.0"
	wildcardIPv6 = "::"
)

// listenFunc binds a UDP socket. v6only only matters for IPv6 addresses.
type listenFunc func(ctx context.Context, network, address string, v6only bool) (net.PacketConn, error)

// listenUDP binds with address reuse and explicit V6ONLY handling
func listenUDP(ctx context.Context, network, address string, v6only bool) (net.PacketConn, error) {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return nil, err
	}
	ip, err := netip.ParseAddr(host)
	if err != nil {
		return nil, err
	}

	lc := net.ListenConfig{Control: socketControl(ip.Is6(), v6only)}
	return lc.ListenPacket(ctx, network, address)
}

// socket is an acquired UDP socket with the parameters it was bound with
type socket struct {
	conn    net.PacketConn
	network string
	addr    string
}

// acquireSockets applies the dual-stack policy:
//
//	IPv4 ok, IPv6-only ok     -> both sockets
//	IPv4 ok, IPv6-only fails  -> IPv4 alone
//	IPv4 fails, IPv6 ok       -> one IPv6 socket without V6ONLY
//	IPv4 fails, IPv6 fails    -> the IPv4 error
func acquireSockets(ctx context.Context, listen listenFunc, port int, log *zap.Logger) ([]socket, error) {
	p := strconv.Itoa(port)
	addr4 := net.JoinHostPort(wildcardIPv4, p)
	addr6 := net.JoinHostPort(wildcardIPv6, p)

	v4, err4 := listen(ctx, "udp4", addr4, false)
	if err4 != nil {
		log.Debug("IPv4 bind failed, trying unrestricted IPv6",
			zap.String("addr", addr4),
			zap.Error(err4),
		)
		// "udp" on a wildcard IPv6 address keeps IPv4-mapped delivery where supported
		both, err6 := listen(ctx, "udp", addr6, false)
		if err6 != nil {
			log.Debug("IPv6 fallback bind failed", zap.String("addr", addr6), zap.Error(err6))
			return nil, bindError(err4, "udp4", addr4)
		}
		logging.LogSocket("udp6", addr6, "bound_dual_stack")
		return []socket{{conn: both, network: "udp6", addr: addr6}}, nil
	}
	logging.LogSocket("udp4", addr4, "bound")

	v6, err6 := listen(ctx, "udp6", addr6, true)
	if err6 != nil {
		log.Info("IPv6-only bind failed, continuing with IPv4 only",
			zap.String("addr", addr6),
			zap.Error(err6),
		)
		return []socket{{conn: v4, network: "udp4", addr: addr4}}, nil
	}
	logging.LogSocket("udp6", addr6, "bound_v6only")

	return []socket{
		{conn: v4, network: "udp4", addr: addr4},
		{conn: v6, network: "udp6", addr: addr6},
	}, nil
}

// closeSockets closes every socket and combines the errors
func closeSockets(sockets []socket) error {
	var err error
	for _, s := range sockets {
		err = multierr.Append(err, s.conn.Close())
	}
	return err
}

// HostResolver maps a peer address to a host name. Implementations swallow
// their own failures and return a placeholder such as "(Unknown)".
type HostResolver interface {
	LookupHost(ctx context.Context, ip netip.Addr) string
}

// socketSource turns datagrams from one socket into HostFound events.
// Run returns once its socket is closed after ctx is done.
type socketSource struct {
	sock     socket
	resolver HostResolver
	clock    clock.Clock
	log      *zap.Logger
}

// Run implements Source
func (s *socketSource) Run(ctx context.Context, events chan<- Event) error {
	buf := make([]byte, maxDatagramSize)
	for {
		n, from, err := s.sock.conn.ReadFrom(buf)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return readError(err, s.sock.network, s.sock.addr)
		}

		addr := sourceAddr(from)
		logging.LogDatagram(addr.String(), buf[:n])

		pkt, ok := beacon.Decode(buf[:n])
		if !ok {
			continue
		}
		if pkt == nil {
			s.log.Debug("Ignoring foreign datagram",
				zap.String("from", addr.String()),
				zap.Int("length", n),
			)
			continue
		}

		host := s.resolver.LookupHost(ctx, addr.Addr())
		peer := NewPeerInfo(pkt, addr, host, s.clock.Now())

		select {
		case events <- HostFound{Peer: peer}:
		case <-ctx.Done():
			return nil
		}
	}
}

// sourceAddr converts a sender address, unmapping IPv4-in-IPv6 so peers
// heard on a dual-stack socket display as plain IPv4
func sourceAddr(addr net.Addr) netip.AddrPort {
	var ap netip.AddrPort
	switch a := addr.(type) {
	case *net.UDPAddr:
		ap = a.AddrPort()
	default:
		parsed, err := netip.ParseAddrPort(addr.String())
		if err != nil {
			return netip.AddrPort{}
		}
		ap = parsed
	}
	return netip.AddrPortFrom(ap.Addr().Unmap(), ap.Port())
}
