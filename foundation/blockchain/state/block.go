package state

import (
	"fmt"

	"github.com/ardanlabs/forkchain/foundation/blockchain/database"
	"github.com/google/uuid"
)

// CreateCandidate assembles a block on top of the current head carrying the
// specified transactions. The packed block is returned when its fingerprint
// satisfies the new difficulty, otherwise ErrNotSolved is returned. No search
// is performed here, the caller tries again with a fresh candidate later.
func (s *State) CreateCandidate(minerID database.AccountID, txs []database.SignedTx) (string, error) {
	s.mu.RLock()
	head, _ := s.tree.LongestBranch()
	parent, hasParent := s.tree.Parent(head.Key)
	included := includedTxs(s.tree.ChainFrom(head.Key))
	s.mu.RUnlock()

	var prev *database.Block
	if hasParent {
		prev = &parent.Value
	}

	// A mempool can still hold a transaction the head already carries when
	// the block and the transaction crossed on the bus.
	picked := make([]database.SignedTx, 0, len(txs))
	for _, tx := range txs {
		if _, exists := included[tx.Envelope]; exists {
			continue
		}
		included[tx.Envelope] = struct{}{}
		picked = append(picked, tx)
	}
	txs = picked

	block := database.Block{
		ID:           uuid.NewString(),
		ParentID:     head.Value.ID,
		MinerID:      minerID,
		Index:        head.Value.Index + 1,
		CreatedAt:    s.now().UnixMilli(),
		Transactions: txs,
		Difficulty:   database.NextDifficulty(head.Value, prev, s.genesis.BlockTime()),
		Reward:       database.NextReward(head.Value, s.genesis.RewardHalvingSchedule),
	}

	envelope, digest, err := block.Pack()
	if err != nil {
		return "", fmt.Errorf("packing block: %w", err)
	}

	solved, err := block.IsSolved(digest)
	if err != nil {
		return "", err
	}

	if !solved {
		return "", ErrNotSolved
	}

	s.evHandler("state: CreateCandidate: solved: blk[%s]: difficulty[%d]: txs[%d]", block, block.Difficulty, len(txs))

	return envelope, nil
}

// Admit unpacks a block received from the network, validates it and adds it
// to the fork tree. A nil error means the block was inserted. A rejected
// block leaves the engine unchanged.
func (s *State) Admit(envelope string) (database.Block, error) {
	block, digest, err := database.UnpackBlock(envelope)
	if err != nil {
		return database.Block{}, err
	}

	if len(block.Transactions) > s.genesis.TransPerBlock {
		return database.Block{}, fmt.Errorf("%w: blk[%s]: txs[%d]", ErrBlockTooLarge, block, len(block.Transactions))
	}

	if err := block.ValidateTransactions(); err != nil {
		return database.Block{}, fmt.Errorf("blk[%s]: %w", block, err)
	}

	// The declared difficulty is checked again so a peer can't lie about it.
	solved, err := block.IsSolved(digest)
	if err != nil {
		return database.Block{}, err
	}
	if !solved {
		return database.Block{}, fmt.Errorf("%w: blk[%s]: difficulty[%d]", database.ErrInvalidDifficulty, block, block.Difficulty)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tree.Contains(block.ID) {
		return database.Block{}, fmt.Errorf("%w: blk[%s]", ErrDuplicateBlock, block)
	}

	parent, exists := s.tree.Find(block.ParentID)
	if !exists {
		return database.Block{}, fmt.Errorf("%w: blk[%s]: parent[%s]", database.ErrUnknownParent, block, block.ParentID)
	}

	if block.Index != parent.Value.Index+1 {
		return database.Block{}, fmt.Errorf("%w: blk[%s]: parent index[%d]", ErrInvalidIndex, block, parent.Value.Index)
	}

	// The difficulty and reward must follow from the parent the same way
	// CreateCandidate derives them.
	var grand *database.Block
	if gp, exists := s.tree.Parent(parent.Key); exists {
		grand = &gp.Value
	}

	if exp := database.NextDifficulty(parent.Value, grand, s.genesis.BlockTime()); block.Difficulty != exp {
		return database.Block{}, fmt.Errorf("%w: blk[%s]: difficulty[%d]: exp[%d]", database.ErrInvalidDifficulty, block, block.Difficulty, exp)
	}

	if exp := database.NextReward(parent.Value, s.genesis.RewardHalvingSchedule); block.Reward != exp {
		return database.Block{}, fmt.Errorf("%w: blk[%s]: reward[%d]: exp[%d]", ErrInvalidReward, block, block.Reward, exp)
	}

	included := includedTxs(s.tree.ChainFrom(parent.Key))
	for _, tx := range block.Transactions {
		if _, exists := included[tx.Envelope]; exists {
			return database.Block{}, fmt.Errorf("%w: blk[%s]: tx[%s]", ErrDuplicateTransaction, block, tx)
		}
		included[tx.Envelope] = struct{}{}
	}

	s.tree.Insert(block.ParentID, block.ID, block)

	s.evHandler("state: Admit: inserted: blk[%s]: miner[%s]: txs[%d]", block, block.MinerID.Short(), len(block.Transactions))

	return block, nil
}

// includedTxs returns the set of transaction envelopes carried by the blocks.
func includedTxs(blocks []database.Block) map[string]struct{} {
	included := make(map[string]struct{})
	for _, block := range blocks {
		for _, tx := range block.Transactions {
			included[tx.Envelope] = struct{}{}
		}
	}
	return included
}
