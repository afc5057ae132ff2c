package resolve

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/miekg/dns"
)

// DNSLookuper sends PTR queries directly to one DNS server
type DNSLookuper struct {
	// Server is the "host:port" of the DNS server
	Server string

	client *dns.Client
}

// NewDNSLookuper creates a lookuper for server. A missing port defaults to 53.
func NewDNSLookuper(server string, timeout time.Duration) *DNSLookuper {
	if _, _, err := net.SplitHostPort(server); err != nil {
		server = net.JoinHostPort(server, "53")
	}
	return &DNSLookuper{
		Server: server,
		client: &dns.Client{Net: "udp", Timeout: timeout},
	}
}

// NewDNS creates a caching resolver that queries server directly
func NewDNS(server string, timeout time.Duration) *Resolver {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return New(NewDNSLookuper(server, timeout), timeout)
}

// LookupAddr implements AddrLookuper
func (d *DNSLookuper) LookupAddr(ctx context.Context, addr string) ([]string, error) {
	arpa, err := dns.ReverseAddr(addr)
	if err != nil {
		return nil, fmt.Errorf("invalid address %q: %w", addr, err)
	}

	msg := new(dns.Msg)
	msg.SetQuestion(arpa, dns.TypePTR)
	msg.RecursionDesired = true

	in, _, err := d.client.ExchangeContext(ctx, msg, d.Server)
	if err != nil {
		return nil, fmt.Errorf("PTR query to %s failed: %w", d.Server, err)
	}
	if in.Rcode != dns.RcodeSuccess {
		return nil, fmt.Errorf("PTR query for %s: %s", arpa, dns.RcodeToString[in.Rcode])
	}

	var names []string
	for _, rr := range in.Answer {
		if ptr, ok := rr.(*dns.PTR); ok {
			names = append(names, ptr.Ptr)
		}
	}
	return names, nil
}
