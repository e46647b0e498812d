// Package mempool maintains the pending transactions of a node.
package mempool

import (
	"sync"

	"github.com/ardanlabs/forkchain/foundation/blockchain/database"
	"github.com/ardanlabs/forkchain/foundation/blockchain/mempool/selector"
)

// Mempool represents a cache of signed transactions keyed by their envelope.
// The envelope is the identity of a transaction, two transactions with the
// same content but different envelopes are different entries.
type Mempool struct {
	mu       sync.RWMutex
	pool     map[string]selector.Entry
	seq      uint64
	selectFn selector.Func
}

// New constructs a new mempool using the default select strategy.
func New() *Mempool {
	mp, _ := NewWithStrategy(selector.StrategyTip)
	return mp
}

// NewWithStrategy constructs a new mempool with specified select strategy.
func NewWithStrategy(strategy string) (*Mempool, error) {
	selectFn, err := selector.Retrieve(strategy)
	if err != nil {
		return nil, err
	}

	mp := Mempool{
		pool:     make(map[string]selector.Entry),
		selectFn: selectFn,
	}

	return &mp, nil
}

// Count returns the current number of transaction in the pool.
func (mp *Mempool) Count() int {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return len(mp.pool)
}

// Upsert adds a transaction to the mempool. A transaction that is already
// present keeps its place in the arrival order. The size of the pool is
// returned.
func (mp *Mempool) Upsert(tx database.SignedTx) int {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if _, exists := mp.pool[tx.Envelope]; exists {
		return len(mp.pool)
	}

	mp.seq++
	mp.pool[tx.Envelope] = selector.Entry{Seq: mp.seq, Tx: tx}

	return len(mp.pool)
}

// Delete removes the transaction with the specified envelope.
func (mp *Mempool) Delete(envelope string) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	delete(mp.pool, envelope)
}

// DeleteIncluded removes every transaction carried by the block and returns
// how many were removed.
func (mp *Mempool) DeleteIncluded(block database.Block) int {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	var removed int
	for _, tx := range block.Transactions {
		if _, exists := mp.pool[tx.Envelope]; exists {
			delete(mp.pool, tx.Envelope)
			removed++
		}
	}

	return removed
}

// Truncate clears all the transactions from the pool.
func (mp *Mempool) Truncate() {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool = make(map[string]selector.Entry)
}

// PickBest uses the configured select strategy to return the next set of
// transactions for the next block. Pass -1 for all the transactions.
func (mp *Mempool) PickBest(howMany int) []database.SignedTx {
	return mp.selectFn(mp.entries(), howMany)
}

// Copy returns a copy of the pending transactions in arrival order.
func (mp *Mempool) Copy() []database.SignedTx {
	fifo, _ := selector.Retrieve(selector.StrategyFIFO)
	return fifo(mp.entries(), -1)
}

// =============================================================================

func (mp *Mempool) entries() []selector.Entry {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	entries := make([]selector.Entry, 0, len(mp.pool))
	for _, e := range mp.pool {
		entries = append(entries, e)
	}

	return entries
}
