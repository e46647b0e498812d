// Package state is the ledger engine for a single node. It owns the fork tree
// of every block the node has seen, creates block candidates on top of the
// longest chain, admits blocks received from the network and replays the
// longest chain into account balances.
package state

import (
	"errors"
	"sync"
	"time"

	"github.com/ardanlabs/forkchain/foundation/blockchain/database"
	"github.com/ardanlabs/forkchain/foundation/blockchain/forktree"
	"github.com/ardanlabs/forkchain/foundation/blockchain/genesis"
)

// Set of errors returned by the engine.
var (
	ErrNotSolved      = errors.New("candidate fingerprint does not satisfy the difficulty")
	ErrDuplicateBlock = errors.New("block already exists")
	ErrInvalidIndex   = errors.New("block index does not follow its parent")
	ErrBlockTooLarge  = errors.New("block carries too many transactions")
	ErrInvalidReward  = errors.New("block reward does not follow the halving schedule")

	ErrDuplicateTransaction = errors.New("transaction already included")
)

// =============================================================================

// EventHandler defines a function that is called when events
// occur in the processing of blocks.
type EventHandler func(v string, args ...any)

// Config represents the configuration required to start the engine.
type Config struct {
	Genesis   genesis.Genesis
	EvHandler EventHandler
	Now       func() time.Time
}

// State manages the fork tree of blocks for one node. Every mutation is
// serialized so candidate creation and admission are atomic with respect
// to the tree.
type State struct {
	genesis   genesis.Genesis
	evHandler EventHandler
	now       func() time.Time

	mu   sync.RWMutex
	tree *forktree.Tree[database.Block]
}

// New constructs a new engine rooted at the genesis block.
func New(cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	if err := cfg.Genesis.Validate(); err != nil {
		return nil, err
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	root := database.GenesisBlock(cfg.Genesis)

	state := State{
		genesis:   cfg.Genesis,
		evHandler: ev,
		now:       now,
		tree:      forktree.New(root.ID, root),
	}

	return &state, nil
}

// Genesis returns a copy of the genesis information.
func (s *State) Genesis() genesis.Genesis {
	return s.genesis
}
