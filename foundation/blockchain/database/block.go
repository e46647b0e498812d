package database

import (
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ardanlabs/forkchain/foundation/blockchain/genesis"
	"github.com/ardanlabs/forkchain/foundation/blockchain/signature"
)

// Set of block admission errors.
var (
	ErrUnknownParent     = errors.New("block references an unknown parent")
	ErrInvalidDifficulty = errors.New("block fingerprint does not satisfy its declared difficulty")
)

// =============================================================================

// Block represents a group of transactions batched together.
type Block struct {
	ID           string     `json:"id"`           // Unique id for the block.
	ParentID     string     `json:"parent_id"`    // Id of the parent block. The genesis block is its own parent.
	MinerID      AccountID  `json:"miner_id"`     // The account who is receiving the reward and fees.
	Index        uint64     `json:"index"`        // Depth of the block from genesis.
	CreatedAt    int64      `json:"created_at"`   // Time the block was created in unix milliseconds.
	Transactions []SignedTx `json:"transactions"` // Transactions included in this block.
	Difficulty   int64      `json:"difficulty"`   // Divisor the block fingerprint must satisfy.
	Reward       int64      `json:"reward"`       // Reward paid to the miner.
}

// GenesisBlock constructs the root block described by the genesis values.
func GenesisBlock(gen genesis.Genesis) Block {
	return Block{
		ID:           gen.ID,
		ParentID:     gen.ID,
		MinerID:      AccountID(gen.Miner),
		Index:        0,
		CreatedAt:    gen.Date.UnixMilli(),
		Transactions: []SignedTx{},
		Difficulty:   gen.Difficulty,
		Reward:       gen.InitialReward,
	}
}

// IsGenesis reports if the block is a self referencing root.
func (b Block) IsGenesis() bool {
	return b.ID == b.ParentID
}

// Time returns the creation time of the block.
func (b Block) Time() time.Time {
	return time.UnixMilli(b.CreatedAt).UTC()
}

// Fees returns the sum of the fees paid by the block's transactions.
func (b Block) Fees() int64 {
	var fees int64
	for _, tx := range b.Transactions {
		fees += tx.Tx.Fee
	}
	return fees
}

// Pack fingerprints the block and returns the envelope and the digest.
func (b Block) Pack() (envelope string, digest string, err error) {
	return signature.FingerprintAndPack(b)
}

// Fingerprint returns the block's deterministic digest.
func (b Block) Fingerprint() (string, error) {
	return signature.Fingerprint(b)
}

// ValidateTransactions re-verifies the signature of every transaction.
func (b Block) ValidateTransactions() error {
	for i, tx := range b.Transactions {
		if err := tx.Validate(); err != nil {
			return fmt.Errorf("transaction[%d]: %w", i, err)
		}
	}
	return nil
}

// String implements the fmt.Stringer interface for logging.
func (b Block) String() string {
	id := b.ID
	if len(id) > 8 {
		id = id[:8]
	}
	return fmt.Sprintf("%d:%s", b.Index, id)
}

// UnpackBlock decodes a block envelope and verifies its fingerprint. The
// block and its digest are returned.
func UnpackBlock(envelope string) (Block, string, error) {
	var b Block
	digest, err := signature.VerifyFingerprintAndUnpack(envelope, &b)
	if err != nil {
		return Block{}, "", err
	}

	return b, digest, nil
}

// =============================================================================

// NextDifficulty calculates the difficulty for a block mined on top of head.
// The parent is the block below head and is nil when head is the genesis
// block. Blocks arriving slower than the block time lower the difficulty by
// one, otherwise it rises by one. There is no bound in either direction.
func NextDifficulty(head Block, parent *Block, blockTime time.Duration) int64 {
	if parent == nil {
		return head.Difficulty
	}

	elapsed := time.Duration(head.CreatedAt-parent.CreatedAt) * time.Millisecond
	if elapsed > blockTime {
		return head.Difficulty - 1
	}

	return head.Difficulty + 1
}

// NextReward calculates the reward for a block mined on top of head. The
// reward halves on every block whose index is a multiple of the schedule.
func NextReward(head Block, schedule uint64) int64 {
	if schedule > 0 && (head.Index+1)%schedule == 0 {
		return head.Reward / 2
	}

	return head.Reward
}

// PassesDifficulty checks the fingerprint, read as an integer, is divisible
// by the difficulty. A difficulty of zero always passes and a negative
// difficulty is checked by its magnitude.
func PassesDifficulty(fingerprint *big.Int, difficulty int64) bool {
	if difficulty == 0 {
		return true
	}

	d := big.NewInt(difficulty)
	d.Abs(d)

	return new(big.Int).Mod(fingerprint, d).Sign() == 0
}

// IsSolved checks the digest satisfies the block's declared difficulty.
func (b Block) IsSolved(digest string) (bool, error) {
	n, err := signature.FingerprintInt(digest)
	if err != nil {
		return false, err
	}

	return PassesDifficulty(n, b.Difficulty), nil
}
