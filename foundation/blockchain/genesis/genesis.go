// Package genesis maintains access to the genesis parameters shared by every
// node in a simulation.
package genesis

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/ardanlabs/forkchain/foundation/validate"
)

// Default values for the chain parameters.
const (
	DefaultID                    = "GENESIS"
	DefaultMiner                 = "SATOSHI"
	DefaultBlockTimeMS           = 1000
	DefaultInitialReward         = 1024
	DefaultRewardHalvingSchedule = 20
	DefaultTransPerBlock         = 10
	DefaultDifficulty            = 1
)

// Genesis represents the genesis file.
type Genesis struct {
	Date                  time.Time `json:"date"`
	ID                    string    `json:"id" validate:"required"`                  // Id of the genesis block, also its parent id.
	Miner                 string    `json:"miner" validate:"required"`               // Account credited with the genesis reward.
	BlockTimeMS           int64     `json:"block_time_ms" validate:"gt=0"`           // Target time between blocks.
	InitialReward         int64     `json:"initial_reward" validate:"gte=0"`         // Reward for mining a block before any halving.
	RewardHalvingSchedule uint64    `json:"reward_halving_schedule" validate:"gt=0"` // Number of blocks between reward halvings.
	TransPerBlock         int       `json:"trans_per_block" validate:"gt=0"`         // The maximum number of transactions that can be in a block.
	Difficulty            int64     `json:"difficulty"`                              // Starting divisor a fingerprint must satisfy.
}

// =============================================================================

// Default returns the genesis parameters with the default values, dated now.
func Default() Genesis {
	return Genesis{
		Date:                  time.Now().UTC().Truncate(time.Millisecond),
		ID:                    DefaultID,
		Miner:                 DefaultMiner,
		BlockTimeMS:           DefaultBlockTimeMS,
		InitialReward:         DefaultInitialReward,
		RewardHalvingSchedule: DefaultRewardHalvingSchedule,
		TransPerBlock:         DefaultTransPerBlock,
		Difficulty:            DefaultDifficulty,
	}
}

// Load opens and consumes the genesis file. Fields missing from the file keep
// their default value and a zero date is replaced with the current time.
func Load(path string) (Genesis, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Genesis{}, err
	}

	genesis := Default()
	date := genesis.Date
	genesis.Date = time.Time{}

	if err := json.Unmarshal(content, &genesis); err != nil {
		return Genesis{}, fmt.Errorf("decoding genesis: %w", err)
	}

	if genesis.Date.IsZero() {
		genesis.Date = date
	}

	if err := genesis.Validate(); err != nil {
		return Genesis{}, err
	}

	return genesis, nil
}

// Validate checks the parameters are usable.
func (g Genesis) Validate() error {
	if err := validate.Check(g); err != nil {
		return fmt.Errorf("validating genesis: %w", err)
	}
	return nil
}

// BlockTime returns the target time between blocks.
func (g Genesis) BlockTime() time.Duration {
	return time.Duration(g.BlockTimeMS) * time.Millisecond
}
