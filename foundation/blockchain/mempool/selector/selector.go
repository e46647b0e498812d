// Package selector provides different transaction selecting algorithms.
package selector

import (
	"fmt"

	"github.com/ardanlabs/forkchain/foundation/blockchain/database"
)

// List of different select strategies.
const (
	StrategyTip     = "tip"
	StrategyFIFO    = "fifo"
	StrategyAccount = "account"
)

// Map of different select strategies with functions.
var strategies = map[string]Func{
	StrategyTip:     tipSelect,
	StrategyFIFO:    fifoSelect,
	StrategyAccount: accountSelect,
}

// Entry is a pending transaction with its position in the arrival order.
type Entry struct {
	Seq uint64
	Tx  database.SignedTx
}

// Func defines a function that takes the pending transactions in arrival
// order and selects howMany of them in an order based on the functions
// strategy. Receiving -1 for howMany must return all the transactions in the
// strategies ordering. The entries slice may be reordered.
type Func func(entries []Entry, howMany int) []database.SignedTx

// Retrieve returns the specified select strategy function.
func Retrieve(strategy string) (Func, error) {
	fn, exists := strategies[strategy]
	if !exists {
		return nil, fmt.Errorf("strategy %q does not exist", strategy)
	}
	return fn, nil
}

// Strategies returns the names of the supported strategies.
func Strategies() []string {
	return []string{StrategyTip, StrategyFIFO, StrategyAccount}
}

// =============================================================================

// take returns the transactions of the first howMany entries.
func take(entries []Entry, howMany int) []database.SignedTx {
	if howMany < 0 || howMany > len(entries) {
		howMany = len(entries)
	}

	txs := make([]database.SignedTx, howMany)
	for i := 0; i < howMany; i++ {
		txs[i] = entries[i].Tx
	}
	return txs
}

// =============================================================================

// bySeq provides sorting support by arrival order.
type bySeq []Entry

// Len returns the number of transactions in the list.
func (bs bySeq) Len() int {
	return len(bs)
}

// Less helps to sort the list by arrival in ascending order.
func (bs bySeq) Less(i, j int) bool {
	return bs[i].Seq < bs[j].Seq
}

// Swap moves transactions in the order of arrival.
func (bs bySeq) Swap(i, j int) {
	bs[i], bs[j] = bs[j], bs[i]
}

// =============================================================================

// byFee provides sorting support by the transaction fee value.
type byFee []Entry

// Len returns the number of transactions in the list.
func (bf byFee) Len() int {
	return len(bf)
}

// Less helps to sort the list by fee in decending order to pick the
// transactions that provide the best reward. Equal fees keep arrival order.
func (bf byFee) Less(i, j int) bool {
	if bf[i].Tx.Tx.Fee == bf[j].Tx.Tx.Fee {
		return bf[i].Seq < bf[j].Seq
	}
	return bf[i].Tx.Tx.Fee > bf[j].Tx.Tx.Fee
}

// Swap moves transactions in the order of the fee value.
func (bf byFee) Swap(i, j int) {
	bf[i], bf[j] = bf[j], bf[i]
}
