package state

import (
	"github.com/ardanlabs/forkchain/foundation/blockchain/database"
)

// Balances replays the longest chain from genesis and returns the resulting
// balances. The result is computed on every call.
func (s *State) Balances() database.Balances {
	return database.NewBalances(s.Chain())
}

// Chain returns the blocks of the longest chain from genesis to the head.
func (s *State) Chain() []database.Block {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.tree.LongestChain()
}

// Head returns the last block of the longest chain.
func (s *State) Head() database.Block {
	s.mu.RLock()
	defer s.mu.RUnlock()

	head, _ := s.tree.LongestBranch()
	return head.Value
}

// Contains reports if the block with the specified id has been admitted.
func (s *State) Contains(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.tree.Contains(id)
}

// ContainsTx reports if the transaction with the specified envelope is
// carried by a block on the longest chain.
func (s *State) ContainsTx(envelope string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, block := range s.tree.LongestChain() {
		for _, tx := range block.Transactions {
			if tx.Envelope == envelope {
				return true
			}
		}
	}

	return false
}

// QueryBlock returns the block with the specified id from any branch.
func (s *State) QueryBlock(id string) (database.Block, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	node, exists := s.tree.Find(id)
	return node.Value, exists
}

// KnownBlocks returns the number of blocks in the tree, stale branches and
// genesis included.
func (s *State) KnownBlocks() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.tree.Len()
}
