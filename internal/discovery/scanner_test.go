package discovery

import (
	"context"
	"errors"
	"net"
	"net/netip"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"lukechampine.com/uint128"

	"github.com/muurk/lanscan/internal/beacon"
)

const waitTimeout = 5 * time.Second

// stubResolver answers every lookup with a fixed name
type stubResolver string

func (s stubResolver) LookupHost(context.Context, netip.Addr) string { return string(s) }

// scriptedSource replays fixed events, then idles until cancelled
type scriptedSource struct {
	events []Event
}

func (s scriptedSource) Run(ctx context.Context, out chan<- Event) error {
	for _, ev := range s.events {
		select {
		case out <- ev:
		case <-ctx.Done():
			return nil
		}
	}
	<-ctx.Done()
	return nil
}

// failingSource fails immediately
type failingSource struct{ err error }

func (s failingSource) Run(context.Context, chan<- Event) error { return s.err }

func found(id uint64, namespaces int) HostFound {
	return HostFound{Peer: peerFixture(id, "192.168.1.10:17500", namespaces)}
}

func newTestScanner(t *testing.T) *Scanner {
	s := NewScanner()
	s.Logger = zaptest.NewLogger(t)
	s.Resolver = stubResolver("peer.test")
	return s
}

func TestNewScanner(t *testing.T) {
	scanner := NewScanner()

	require.NotNil(t, scanner)
	assert.Equal(t, DefaultScanTimeout, scanner.Timeout)
	assert.Equal(t, 17500, scanner.Port)
}

func TestRun_StopsAtZeroCountdown(t *testing.T) {
	s := newTestScanner(t)
	s.Timeout = 2 * time.Second

	src := scriptedSource{events: []Event{
		Countdown{Remaining: 2},
		found(1, 1),
		Countdown{Remaining: 1},
		found(2, 1),
		Countdown{Remaining: 0},
		found(3, 1),
	}}

	result, err := s.run(context.Background(), []Source{src}, func() {})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Len())
	_, late := result.Get(uint128.From64(3))
	assert.False(t, late, "peer announced after the deadline must not be included")
}

func TestRun_ReportsEveryEvent(t *testing.T) {
	s := newTestScanner(t)
	s.Timeout = 2 * time.Second

	var reports []Progress
	s.Reporter = ReporterFunc(func(p Progress) { reports = append(reports, p) })

	src := scriptedSource{events: []Event{
		Countdown{Remaining: 2},
		found(1, 1),
		found(1, 4),
		Countdown{Remaining: 1},
		Countdown{Remaining: 0},
	}}

	_, err := s.run(context.Background(), []Source{src}, func() {})
	require.NoError(t, err)
	require.Len(t, reports, 5)

	assert.Nil(t, reports[0].Found)
	assert.EqualValues(t, 2, reports[0].Remaining)

	require.NotNil(t, reports[1].Found)
	assert.True(t, reports[1].New)
	assert.Equal(t, 1, reports[1].Peers)
	assert.EqualValues(t, 2, reports[1].Remaining, "HostFound reports carry the last countdown")

	require.NotNil(t, reports[2].Found)
	assert.False(t, reports[2].New)
	assert.Equal(t, 1, reports[2].Peers)

	for i := 1; i < len(reports); i++ {
		assert.LessOrEqual(t, reports[i].Remaining, reports[i-1].Remaining, "countdown must not increase")
	}
	assert.EqualValues(t, 0, reports[4].Remaining)
}

func TestRun_SourceFailureEndsScan(t *testing.T) {
	s := newTestScanner(t)
	boom := errors.New("socket exploded")

	stopped := false
	result, err := s.run(context.Background(), []Source{
		scriptedSource{events: []Event{Countdown{Remaining: 5}}},
		failingSource{err: boom},
	}, func() { stopped = true })

	assert.Nil(t, result)
	assert.ErrorIs(t, err, boom)
	assert.True(t, stopped, "stop must run so blocked sources are released")
}

func TestRun_CallerCancellation(t *testing.T) {
	s := newTestScanner(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := s.run(ctx, []Source{scriptedSource{}}, func() {})
	assert.Nil(t, result)
	assert.ErrorIs(t, err, context.Canceled)
}

// scanHarness drives a Scan with a mock clock and observes its reports
type scanHarness struct {
	t       *testing.T
	mock    *clock.Mock
	reports chan Progress
	done    chan struct{}
	result  *ResultSet
	err     error
	found   int
}

func startScan(t *testing.T, s *Scanner) *scanHarness {
	t.Helper()
	h := &scanHarness{
		t:       t,
		mock:    clock.NewMock(),
		reports: make(chan Progress, 256),
		done:    make(chan struct{}),
	}
	s.Clock = h.mock
	s.Reporter = ReporterFunc(func(p Progress) { h.reports <- p })

	go func() {
		defer close(h.done)
		h.result, h.err = s.Scan(context.Background())
	}()
	return h
}

// take records p and reports whether it is the countdown want
func (h *scanHarness) take(p Progress, want uint64) bool {
	if p.Found != nil {
		h.found++
		return false
	}
	return p.Remaining == want
}

// awaitCountdown consumes reports until the countdown shows want. Reports
// still buffered when the scan returns are consumed before giving up.
func (h *scanHarness) awaitCountdown(want uint64) {
	h.t.Helper()
	for {
		select {
		case p := <-h.reports:
			if h.take(p, want) {
				return
			}
		case <-h.done:
			for {
				select {
				case p := <-h.reports:
					if h.take(p, want) {
						return
					}
				default:
					h.t.Fatalf("scan ended while waiting for countdown %d (err: %v)", want, h.err)
				}
			}
		case <-time.After(waitTimeout):
			h.t.Fatalf("timed out waiting for countdown %d", want)
		}
	}
}

// awaitFound consumes reports until n HostFound reports have been seen
func (h *scanHarness) awaitFound(n int) {
	h.t.Helper()
	for h.found < n {
		select {
		case p := <-h.reports:
			if p.Found != nil {
				h.found++
			}
		case <-time.After(waitTimeout):
			h.t.Fatalf("timed out waiting for %d announcements, saw %d", n, h.found)
		}
	}
}

// finish advances the clock one tick at a time from remaining to zero
func (h *scanHarness) finish(remaining uint64) (*ResultSet, error) {
	h.t.Helper()
	for r := remaining; r > 0; r-- {
		h.mock.Add(time.Second)
		h.awaitCountdown(r - 1)
	}
	select {
	case <-h.done:
	case <-time.After(waitTimeout):
		h.t.Fatal("scan did not finish after the deadline")
	}
	return h.result, h.err
}

func sendBeacon(t *testing.T, to net.Addr, id uint64, namespaces int) {
	t.Helper()

	ns := make([]beacon.ID, namespaces)
	for i := range ns {
		ns[i] = uint128.From64(uint64(1000 + i))
	}
	payload, err := beacon.Encode(&beacon.Packet{
		HostInt:    uint128.From64(id),
		Version:    []uint{2, 0},
		Port:       17500,
		Namespaces: ns,
	})
	require.NoError(t, err)

	sendRaw(t, to, payload)
}

func sendRaw(t *testing.T, to net.Addr, payload []byte) {
	t.Helper()
	conn, err := net.Dial("udp", to.String())
	require.NoError(t, err)
	defer conn.Close()
	_, err = conn.Write(payload)
	require.NoError(t, err)
}

func TestScanHarness_DrainsReportsAfterScanEnds(t *testing.T) {
	// The final countdown is usually still buffered when the scan returns
	for i := 0; i < 50; i++ {
		h := &scanHarness{
			t:       t,
			reports: make(chan Progress, 4),
			done:    make(chan struct{}),
		}
		h.reports <- Progress{Remaining: 2}
		h.reports <- Progress{Remaining: 2, Found: &PeerInfo{}}
		h.reports <- Progress{Remaining: 1}
		h.reports <- Progress{Remaining: 0}
		close(h.done)

		h.awaitCountdown(2)
		h.awaitCountdown(1)
		h.awaitCountdown(0)
		require.Equal(t, 1, h.found)
	}
}

func TestScan_EndToEnd(t *testing.T) {
	fl := newFakeListener(t)
	s := newTestScanner(t)
	s.Timeout = 3 * time.Second
	s.listen = fl.listen

	h := startScan(t, s)
	h.awaitCountdown(3)

	target := fl.conns[0].LocalAddr()
	sendBeacon(t, target, 1, 2)
	sendBeacon(t, target, 2, 1)
	sendRaw(t, target, []byte("not a beacon"))
	sendBeacon(t, target, 1, 5)
	h.awaitFound(3)

	result, err := h.finish(3)
	require.NoError(t, err)
	require.Equal(t, 2, result.Len())

	first, ok := result.Get(uint128.From64(1))
	require.True(t, ok)
	assert.Equal(t, 2, first.Namespaces, "first announcement wins")
	assert.Equal(t, "peer.test", first.Host)
	assert.True(t, first.Addr.Addr().IsLoopback())

	_, ok = result.Get(uint128.From64(2))
	assert.True(t, ok)
}

func TestScan_NothingFound(t *testing.T) {
	fl := newFakeListener(t)
	s := newTestScanner(t)
	s.Timeout = 2 * time.Second
	s.listen = fl.listen

	h := startScan(t, s)
	h.awaitCountdown(2)

	result, err := h.finish(2)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Len())
	assert.Empty(t, result.Peers())
}

func TestScan_ClosesSockets(t *testing.T) {
	fl := newFakeListener(t)
	s := newTestScanner(t)
	s.Timeout = time.Second
	s.listen = fl.listen

	h := startScan(t, s)
	h.awaitCountdown(1)
	_, err := h.finish(1)
	require.NoError(t, err)

	for _, c := range fl.conns {
		_, _, err := c.ReadFrom(make([]byte, 1))
		assert.ErrorIs(t, err, net.ErrClosed)
	}
}
