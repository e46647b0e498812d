package selector

import (
	"sort"

	"github.com/ardanlabs/forkchain/foundation/blockchain/database"
)

// tipSelect returns the transactions paying the highest fee first. Equal fees
// are taken in the order they arrived.
var tipSelect = func(entries []Entry, howMany int) []database.SignedTx {
	sort.Sort(byFee(entries))
	return take(entries, howMany)
}

// fifoSelect returns the transactions in the order they arrived.
var fifoSelect = func(entries []Entry, howMany int) []database.SignedTx {
	sort.Sort(bySeq(entries))
	return take(entries, howMany)
}
