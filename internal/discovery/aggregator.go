package discovery

import (
	"maps"
	"slices"

	"github.com/muurk/lanscan/internal/beacon"
)

// Aggregator folds HostFound events into a set of unique peers.
// It is owned by a single goroutine and is not safe for concurrent use.
type Aggregator struct {
	peers map[beacon.ID]PeerInfo
}

// NewAggregator creates an empty aggregator
func NewAggregator() *Aggregator {
	return &Aggregator{peers: make(map[beacon.ID]PeerInfo)}
}

// Add records a peer unless its ID has been seen before.
// Later announcements for a known ID are discarded, not merged.
// Returns true if the peer was new.
func (a *Aggregator) Add(p PeerInfo) bool {
	if _, exists := a.peers[p.ID]; exists {
		return false
	}
	a.peers[p.ID] = p
	return true
}

// Len returns the number of unique peers recorded so far
func (a *Aggregator) Len() int {
	return len(a.peers)
}

// Snapshot returns an immutable copy of the peers recorded so far
func (a *Aggregator) Snapshot() *ResultSet {
	return &ResultSet{peers: maps.Clone(a.peers)}
}

// ResultSet is the outcome of a scan: at most one PeerInfo per peer ID
type ResultSet struct {
	peers map[beacon.ID]PeerInfo
}

// Len returns the number of distinct peers
func (r *ResultSet) Len() int {
	if r == nil {
		return 0
	}
	return len(r.peers)
}

// Get looks up a peer by ID
func (r *ResultSet) Get(id beacon.ID) (PeerInfo, bool) {
	if r == nil {
		return PeerInfo{}, false
	}
	p, ok := r.peers[id]
	return p, ok
}

// Peers returns the peers ordered by address, then ID
func (r *ResultSet) Peers() []PeerInfo {
	if r == nil {
		return nil
	}
	peers := slices.Collect(maps.Values(r.peers))
	slices.SortFunc(peers, func(a, b PeerInfo) int {
		if c := a.Addr.Compare(b.Addr); c != 0 {
			return c
		}
		return a.ID.Cmp(b.ID)
	})
	return peers
}
