package database

// Balances maps accounts to their balance. Balances are never stored, they
// are derived by replaying a chain of blocks from genesis.
type Balances map[AccountID]int64

// NewBalances replays the blocks in order and returns the resulting balances.
func NewBalances(blocks []Block) Balances {
	bal := make(Balances)
	for _, block := range blocks {
		bal.ApplyBlock(block)
	}
	return bal
}

// ApplyBlock credits the miner with the reward and the fees, then moves the
// amount of every transaction from the sender to the receiver. Solvency is
// not enforced so balances can go negative.
func (bal Balances) ApplyBlock(block Block) {
	bal[block.MinerID] += block.Reward

	for _, stx := range block.Transactions {
		tx := stx.Tx

		bal[block.MinerID] += tx.Fee
		bal[tx.Receiver] += tx.Amount
		bal[tx.Sender] -= tx.Amount + tx.Fee
	}
}

// Total returns the sum of all balances.
func (bal Balances) Total() int64 {
	var total int64
	for _, v := range bal {
		total += v
	}
	return total
}

// Copy returns a copy of the balances.
func (bal Balances) Copy() Balances {
	cpy := make(Balances, len(bal))
	for account, v := range bal {
		cpy[account] = v
	}
	return cpy
}
