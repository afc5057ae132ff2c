// Package capture replays recorded packet captures through the beacon
// decoder and the discovery aggregator, so a scan can be repeated offline
// from a pcap or pcapng file taken with tcpdump or Wireshark.
//
// Only unfragmented UDP datagrams addressed to the discovery port are
// considered. Link types understood by gopacket (Ethernet, Linux SLL, raw IP,
// loopback) all work.
package capture

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/netip"
	"os"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
	"go.uber.org/zap"

	"github.com/muurk/lanscan/internal/beacon"
	"github.com/muurk/lanscan/internal/discovery"
	"github.com/muurk/lanscan/internal/logging"
	"github.com/muurk/lanscan/internal/resolve"
)

// pcapngMagic opens every pcapng section header block
var pcapngMagic = []byte{0x0a, 0x0d, 0x0d, 0x0a}

// Stats counts what a replay saw
type Stats struct {
	Packets   int // Every packet in the file
	Datagrams int // UDP datagrams to the discovery port
	Beacons   int // Datagrams that decoded as announcements
	Late      int // Announcements after the window closed
}

// Replayer reads a capture and aggregates the announcements in it
type Replayer struct {
	// Port is the discovery port to filter on
	Port int

	// Window limits the replay to announcements seen within this long of the
	// first packet. Zero replays the whole file.
	Window time.Duration

	// Resolver enriches peers; nil leaves every host unknown
	Resolver discovery.HostResolver

	// Logger defaults to the global logger
	Logger *zap.Logger
}

// NewReplayer creates a replayer for the default discovery port
func NewReplayer() *Replayer {
	return &Replayer{Port: discovery.DefaultPort}
}

// ReplayFile replays the capture at path
func (r *Replayer) ReplayFile(ctx context.Context, path string) (*discovery.ResultSet, Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("failed to open capture: %w", err)
	}
	defer f.Close()
	return r.Replay(ctx, f)
}

// Replay reads a pcap or pcapng stream until EOF
func (r *Replayer) Replay(ctx context.Context, in io.Reader) (*discovery.ResultSet, Stats, error) {
	var stats Stats

	src, linkType, err := openCapture(in)
	if err != nil {
		return nil, stats, err
	}

	log := r.logger()
	packets := gopacket.NewPacketSource(src, linkType)
	packets.DecodeOptions = gopacket.DecodeOptions{Lazy: true, NoCopy: true}

	agg := discovery.NewAggregator()
	var start time.Time

	for {
		if err := ctx.Err(); err != nil {
			return nil, stats, err
		}

		packet, err := packets.NextPacket()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, stats, fmt.Errorf("failed to read packet %d: %w", stats.Packets+1, err)
		}
		stats.Packets++

		seen := packet.Metadata().Timestamp
		if start.IsZero() {
			start = seen
		}

		from, payload, ok := r.datagram(packet)
		if !ok {
			continue
		}
		stats.Datagrams++
		logging.LogDatagram(from.String(), payload)

		pkt, ok := beacon.Decode(payload)
		if !ok || pkt == nil {
			continue
		}
		stats.Beacons++

		if r.Window > 0 && seen.Sub(start) >= r.Window {
			stats.Late++
			continue
		}

		host := r.resolve(ctx, from.Addr())
		peer := discovery.NewPeerInfo(pkt, from, host, seen)
		if agg.Add(peer) {
			logging.LogPeer(peer.ID.String(), peer.Addr.String(), peer.Host, peer.Namespaces)
		}
	}

	log.Info("Replay complete",
		zap.Int("packets", stats.Packets),
		zap.Int("datagrams", stats.Datagrams),
		zap.Int("beacons", stats.Beacons),
		zap.Int("peers", agg.Len()),
	)
	return agg.Snapshot(), stats, nil
}

// datagram extracts the sender and payload of a UDP datagram sent to the
// discovery port
func (r *Replayer) datagram(packet gopacket.Packet) (netip.AddrPort, []byte, bool) {
	udp, ok := packet.Layer(layers.LayerTypeUDP).(*layers.UDP)
	if !ok || int(udp.DstPort) != r.Port {
		return netip.AddrPort{}, nil, false
	}

	var src []byte
	switch ip := packet.NetworkLayer().(type) {
	case *layers.IPv4:
		if ip.Flags&layers.IPv4MoreFragments != 0 || ip.FragOffset != 0 {
			return netip.AddrPort{}, nil, false
		}
		src = ip.SrcIP
	case *layers.IPv6:
		src = ip.SrcIP
	default:
		return netip.AddrPort{}, nil, false
	}

	addr, ok := netip.AddrFromSlice(src)
	if !ok {
		return netip.AddrPort{}, nil, false
	}
	return netip.AddrPortFrom(addr.Unmap(), uint16(udp.SrcPort)), udp.Payload, true
}

func (r *Replayer) resolve(ctx context.Context, ip netip.Addr) string {
	if r.Resolver == nil {
		return resolve.Unknown
	}
	return r.Resolver.LookupHost(ctx, ip)
}

func (r *Replayer) logger() *zap.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return logging.GetLogger()
}

// openCapture sniffs the file magic and returns a packet source for either
// classic pcap or pcapng
func openCapture(in io.Reader) (gopacket.PacketDataSource, layers.LinkType, error) {
	br := bufio.NewReader(in)
	magic, err := br.Peek(len(pcapngMagic))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read capture header: %w", err)
	}

	if bytes.Equal(magic, pcapngMagic) {
		ng, err := pcapgo.NewNgReader(br, pcapgo.DefaultNgReaderOptions)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to open pcapng capture: %w", err)
		}
		return ng, ng.LinkType(), nil
	}

	classic, err := pcapgo.NewReader(br)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open pcap capture: %w", err)
	}
	return classic, classic.LinkType(), nil
}
