package resolve

import (
	"context"
	"net"
	"net/netip"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/muurk/lanscan/internal/logging"
)

const (
	// Unknown is returned when an address cannot be resolved
	Unknown = "(Unknown)"

	// DefaultTimeout bounds a single reverse lookup
	DefaultTimeout = 2 * time.Second

	// DefaultCacheSize is the number of addresses remembered
	DefaultCacheSize = 256
)

// AddrLookuper performs reverse lookups. *net.Resolver implements it.
type AddrLookuper interface {
	LookupAddr(ctx context.Context, addr string) ([]string, error)
}

// Resolver maps peer addresses to host names, caching every answer
type Resolver struct {
	lookup  AddrLookuper
	timeout time.Duration
	cache   *lru.Cache[netip.Addr, string]
}

// New creates a caching resolver on top of lookup
func New(lookup AddrLookuper, timeout time.Duration) *Resolver {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	// lru.New only fails for a non-positive size
	cache, _ := lru.New[netip.Addr, string](DefaultCacheSize)
	return &Resolver{
		lookup:  lookup,
		timeout: timeout,
		cache:   cache,
	}
}

// NewSystem creates a resolver backed by the operating system resolver
func NewSystem() *Resolver {
	return New(net.DefaultResolver, DefaultTimeout)
}

// LookupHost returns the first name the address resolves to, without the
// trailing dot, or Unknown
func (r *Resolver) LookupHost(ctx context.Context, ip netip.Addr) string {
	if !ip.IsValid() {
		return Unknown
	}
	if host, ok := r.cache.Get(ip); ok {
		return host
	}

	lookupCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	host := Unknown
	names, err := r.lookup.LookupAddr(lookupCtx, ip.String())
	switch {
	case err != nil:
		logging.Debug("Reverse lookup failed",
			zap.String("ip", ip.String()),
			zap.Error(err),
		)
	case len(names) == 0:
		logging.Debug("Reverse lookup returned no names", zap.String("ip", ip.String()))
	default:
		if name := strings.TrimSuffix(names[0], "."); name != "" {
			host = name
		}
	}

	// A lookup cut short by the scan ending says nothing about the address
	if ctx.Err() == nil {
		r.cache.Add(ip, host)
	}
	return host
}

// Static is a resolver that never queries and always answers Unknown,
// used when name resolution is disabled
type Static struct{}

// LookupHost implements discovery.HostResolver
func (Static) LookupHost(context.Context, netip.Addr) string {
	return Unknown
}
