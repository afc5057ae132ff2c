package discovery

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/muurk/lanscan/internal/beacon"
	"github.com/muurk/lanscan/internal/logging"
	"github.com/muurk/lanscan/internal/resolve"
)

const (
	// DefaultScanTimeout is the default listening window
	DefaultScanTimeout = 60 * time.Second

	// DefaultPort is the discovery port announcements arrive on
	DefaultPort = beacon.DefaultPort
)

// Source produces scan events until it is exhausted or ctx is done.
// Sources share the events channel and know nothing about each other.
type Source interface {
	Run(ctx context.Context, events chan<- Event) error
}

// Progress is a snapshot handed to the Reporter
type Progress struct {
	// Remaining is the most recent countdown value in seconds
	Remaining uint64

	// Peers is the number of unique peers found so far
	Peers int

	// Found is set when the report was triggered by an announcement
	Found *PeerInfo

	// New is true when Found carried a previously unseen peer
	New bool
}

// Reporter receives progress updates from the fold loop. It is called on
// every Countdown and every HostFound and should return quickly.
type Reporter interface {
	Progress(p Progress)
}

// ReporterFunc adapts a function to the Reporter interface
type ReporterFunc func(p Progress)

// Progress implements Reporter
func (f ReporterFunc) Progress(p Progress) { f(p) }

type nopReporter struct{}

func (nopReporter) Progress(Progress) {}

// Scanner listens for LAN sync announcements
type Scanner struct {
	// Timeout is the length of the listening window
	Timeout time.Duration

	// Port is the UDP port to bind (DefaultPort unless testing)
	Port int

	// Resolver enriches peers with host names; nil uses the system resolver
	Resolver HostResolver

	// Reporter receives progress updates; nil disables reporting
	Reporter Reporter

	// Logger defaults to the global logger
	Logger *zap.Logger

	// Clock drives the countdown; nil uses the wall clock
	Clock clock.Clock

	listen listenFunc
}

// NewScanner creates a new scanner with default settings
func NewScanner() *Scanner {
	return &Scanner{
		Timeout: DefaultScanTimeout,
		Port:    DefaultPort,
	}
}

// Scan binds the discovery port, listens for the configured window and
// returns the unique peers heard. Binding failures are returned as *Error
// before any event is produced.
func (s *Scanner) Scan(ctx context.Context) (*ResultSet, error) {
	log := s.logger()
	listen := s.listen
	if listen == nil {
		listen = listenUDP
	}

	sockets, err := acquireSockets(ctx, listen, s.Port, log)
	if err != nil {
		return nil, err
	}

	resolver := s.Resolver
	if resolver == nil {
		resolver = resolve.NewSystem()
	}

	sources := make([]Source, 0, len(sockets)+1)
	for _, sock := range sockets {
		sources = append(sources, &socketSource{
			sock:     sock,
			resolver: resolver,
			clock:    s.clock(),
			log:      log,
		})
	}
	sources = append(sources, &timerSource{clock: s.clock(), duration: s.Timeout})

	log.Info("Scan started",
		zap.Int("port", s.Port),
		zap.Int("sockets", len(sockets)),
		zap.Duration("timeout", s.Timeout),
	)

	// Closing the sockets is what unblocks their readers once the fold is done
	result, err := s.run(ctx, sources, func() {
		if err := closeSockets(sockets); err != nil {
			log.Warn("Failed to close sockets", zap.Error(err))
		}
	})
	if err != nil {
		return nil, err
	}

	log.Info("Scan complete", zap.Int("peers", result.Len()))
	return result, nil
}

// run merges sources and folds the stream until Countdown{0}. stop is
// called after the fold ends and must unblock sources that ignore ctx.
func (s *Scanner) run(ctx context.Context, sources []Source, stop func()) (*ResultSet, error) {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(runCtx)
	events := make(chan Event)
	for _, src := range sources {
		g.Go(func() error {
			return src.Run(gctx, events)
		})
	}

	agg := NewAggregator()
	completed := s.fold(gctx, events, agg)

	cancel()
	stop()
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if !completed {
		// No source failed, so the caller's context ended the scan
		return nil, ctx.Err()
	}
	return agg.Snapshot(), nil
}

// fold consumes events until the deadline. It reports whether the
// deadline was reached; false means ctx ended first.
func (s *Scanner) fold(ctx context.Context, events <-chan Event, agg *Aggregator) bool {
	reporter := s.reporter()
	log := s.logger()
	remaining := remainingSeconds(s.Timeout, 0)

	for {
		var ev Event
		select {
		case <-ctx.Done():
			return false
		case ev = <-events:
		}

		switch ev := ev.(type) {
		case Countdown:
			remaining = ev.Remaining
			reporter.Progress(Progress{Remaining: remaining, Peers: agg.Len()})
			if remaining == 0 {
				return true
			}

		case HostFound:
			isNew := agg.Add(ev.Peer)
			if isNew {
				logging.LogPeer(ev.Peer.ID.String(), ev.Peer.Addr.String(), ev.Peer.Host, ev.Peer.Namespaces)
			} else {
				log.Debug("Duplicate announcement ignored",
					zap.String("id", ev.Peer.ID.String()),
					zap.String("addr", ev.Peer.Addr.String()),
				)
			}
			peer := ev.Peer
			reporter.Progress(Progress{
				Remaining: remaining,
				Peers:     agg.Len(),
				Found:     &peer,
				New:       isNew,
			})
		}
	}
}

func (s *Scanner) logger() *zap.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return logging.GetLogger()
}

func (s *Scanner) clock() clock.Clock {
	if s.Clock != nil {
		return s.Clock
	}
	return clock.New()
}

func (s *Scanner) reporter() Reporter {
	if s.Reporter != nil {
		return s.Reporter
	}
	return nopReporter{}
}

// Scan is a convenience function to scan with a custom timeout
func Scan(ctx context.Context, timeout time.Duration) (*ResultSet, error) {
	scanner := NewScanner()
	scanner.Timeout = timeout
	return scanner.Scan(ctx)
}
