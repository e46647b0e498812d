// Package peer maintains the set of participants a node has learned about
// from their identity announcements.
package peer

import (
	"sort"
	"sync"

	"github.com/ardanlabs/forkchain/foundation/blockchain/database"
)

// Peer represents information about a node in the simulation.
type Peer struct {
	ID   database.AccountID `json:"id"`
	Name string             `json:"name"`
}

// New contructs a new peer value.
func New(id database.AccountID, name string) Peer {
	return Peer{
		ID:   id,
		Name: name,
	}
}

// Match validates if the specified account matches this peer.
func (p Peer) Match(id database.AccountID) bool {
	return p.ID == id
}

// String implements the fmt.Stringer interface for logging.
func (p Peer) String() string {
	if p.Name != "" {
		return p.Name
	}
	return p.ID.Short()
}

// =============================================================================

// PeerSet represents the data representation to maintain a set of known peers.
type PeerSet struct {
	mu  sync.RWMutex
	set map[database.AccountID]Peer
}

// NewPeerSet constructs a new info set to manage node peer information.
func NewPeerSet() *PeerSet {
	return &PeerSet{
		set: make(map[database.AccountID]Peer),
	}
}

// Add adds a new peer to the set. False is returned when the peer is
// already known.
func (ps *PeerSet) Add(peer Peer) bool {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if _, exists := ps.set[peer.ID]; exists {
		return false
	}

	ps.set[peer.ID] = peer
	return true
}

// Remove removes a peer from the set.
func (ps *PeerSet) Remove(id database.AccountID) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	delete(ps.set, id)
}

// Len returns the number of known peers.
func (ps *PeerSet) Len() int {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	return len(ps.set)
}

// Copy returns the known peers other than self, ordered by id.
func (ps *PeerSet) Copy(self database.AccountID) []Peer {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	var peers []Peer
	for _, peer := range ps.set {
		if !peer.Match(self) {
			peers = append(peers, peer)
		}
	}

	sort.Slice(peers, func(i, j int) bool {
		return peers[i].ID < peers[j].ID
	})

	return peers
}
