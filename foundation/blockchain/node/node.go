// Package node implements a single participant of the simulation. A node
// owns a key pair, a mempool and a ledger engine. It mines on a timer and
// talks to the other nodes only through the message bus.
package node

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ardanlabs/forkchain/foundation/blockchain/database"
	"github.com/ardanlabs/forkchain/foundation/blockchain/genesis"
	"github.com/ardanlabs/forkchain/foundation/blockchain/mempool"
	"github.com/ardanlabs/forkchain/foundation/blockchain/mempool/selector"
	"github.com/ardanlabs/forkchain/foundation/blockchain/peer"
	"github.com/ardanlabs/forkchain/foundation/blockchain/signature"
	"github.com/ardanlabs/forkchain/foundation/blockchain/state"
	"github.com/ardanlabs/forkchain/foundation/bus"
)

// DefaultMineInterval is the time between two mining attempts.
const DefaultMineInterval = 100 * time.Millisecond

// Set of errors returned by the node.
var (
	ErrRunning    = errors.New("node is already running")
	ErrNotRunning = errors.New("node is not running")
)

// EventHandler defines a function that is called when events
// occur in the processing of the node.
type EventHandler func(v string, args ...any)

// Config represents the configuration required to start a node.
type Config struct {
	Name           string
	Bus            *bus.Bus
	Genesis        genesis.Genesis
	PrivateKey     *ecdsa.PrivateKey
	SelectStrategy string
	MineInterval   time.Duration
	EvHandler      EventHandler
	Now            func() time.Time
}

// Node is one participant: its identity, mempool, ledger engine and the
// worker that mines blocks.
type Node struct {
	name          string
	id            database.AccountID
	privateKey    *ecdsa.PrivateKey
	bus           *bus.Bus
	state         *state.State
	mempool       *mempool.Mempool
	knownPeers    *peer.PeerSet
	evHandler     EventHandler
	mineInterval  time.Duration
	transPerBlock int

	mu     sync.Mutex
	worker *worker
	unsubs []func()
}

// New constructs a node. A key pair is generated when none is provided.
func New(cfg Config) (*Node, error) {
	if cfg.Bus == nil {
		return nil, errors.New("node requires a bus")
	}

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	privateKey := cfg.PrivateKey
	if privateKey == nil {
		var err error
		if _, privateKey, err = signature.GenerateIdentity(); err != nil {
			return nil, err
		}
	}

	strategy := cfg.SelectStrategy
	if strategy == "" {
		strategy = selector.StrategyTip
	}

	mp, err := mempool.NewWithStrategy(strategy)
	if err != nil {
		return nil, err
	}

	st, err := state.New(state.Config{
		Genesis:   cfg.Genesis,
		EvHandler: state.EventHandler(ev),
		Now:       cfg.Now,
	})
	if err != nil {
		return nil, err
	}

	mineInterval := cfg.MineInterval
	if mineInterval <= 0 {
		mineInterval = DefaultMineInterval
	}

	id := database.PublicKeyToAccountID(privateKey.PublicKey)

	name := cfg.Name
	if name == "" {
		name = id.Short()
	}

	nd := Node{
		name:          name,
		id:            id,
		privateKey:    privateKey,
		bus:           cfg.Bus,
		state:         st,
		mempool:       mp,
		knownPeers:    peer.NewPeerSet(),
		evHandler:     ev,
		mineInterval:  mineInterval,
		transPerBlock: cfg.Genesis.TransPerBlock,
	}

	return &nd, nil
}

// Run subscribes the node to the bus, announces its identity and starts the
// mining worker. The worker stops when the context is cancelled or Shutdown
// is called.
func (n *Node) Run(ctx context.Context) error {
	if err := n.start(ctx); err != nil {
		return err
	}

	return n.announce()
}

func (n *Node) start(ctx context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.worker != nil {
		return ErrRunning
	}

	n.unsubs = []func(){
		n.bus.Subscribe(bus.TopicIdentify, n.onIdentify),
		n.bus.Subscribe(bus.TopicAddTransaction, n.onTransaction),
		n.bus.Subscribe(bus.TopicAddBlock, n.onBlock),
	}

	n.worker = runWorker(ctx, n, n.mineInterval, n.evHandler)

	return nil
}

// Shutdown stops the mining worker and removes the node from the bus.
func (n *Node) Shutdown() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.worker == nil {
		return ErrNotRunning
	}

	n.evHandler("node: %s: shutdown: started", n.name)
	defer n.evHandler("node: %s: shutdown: completed", n.name)

	n.worker.shutdown()
	n.worker = nil

	for _, unsub := range n.unsubs {
		unsub()
	}
	n.unsubs = nil

	return nil
}

// =============================================================================

// MineOnce makes a single mining attempt with the best transactions from
// the mempool. It reports whether a block was solved and published.
func (n *Node) MineOnce() (bool, error) {
	txs := n.mempool.PickBest(n.transPerBlock)

	envelope, err := n.state.CreateCandidate(n.id, txs)
	if err != nil {
		if errors.Is(err, state.ErrNotSolved) {
			return false, nil
		}
		return false, err
	}

	n.evHandler("node: %s: MineOnce: solved: txs[%d]", n.name, len(txs))

	if err := n.bus.Publish(bus.TopicAddBlock, bus.BlockMsg{Envelope: envelope}); err != nil {
		return false, fmt.Errorf("publishing block: %w", err)
	}

	return true, nil
}

// Send builds and signs a transaction from this node to the receiver and
// publishes it to every node.
func (n *Node) Send(receiver database.AccountID, amount int64, fee int64) (database.SignedTx, error) {
	tx, err := database.NewTx(n.id, receiver, amount, fee)
	if err != nil {
		return database.SignedTx{}, err
	}

	stx, err := tx.Sign(n.privateKey)
	if err != nil {
		return database.SignedTx{}, err
	}

	// Signing is deterministic, an identical transfer already on the chain
	// packs to the same envelope.
	if n.state.ContainsTx(stx.Envelope) {
		return database.SignedTx{}, fmt.Errorf("%w: tx[%s]", state.ErrDuplicateTransaction, stx)
	}

	n.evHandler("node: %s: Send: tx[%s]", n.name, stx)

	if err := n.bus.Publish(bus.TopicAddTransaction, bus.TransactionMsg{Envelope: stx.Envelope}); err != nil {
		return database.SignedTx{}, fmt.Errorf("publishing transaction: %w", err)
	}

	return stx, nil
}

// Submit verifies a transaction signed elsewhere and publishes it to every
// node. A transaction already carried by the longest chain is refused.
func (n *Node) Submit(envelope string) (database.SignedTx, error) {
	stx, err := database.VerifyTransaction(envelope)
	if err != nil {
		return database.SignedTx{}, err
	}

	if n.state.ContainsTx(envelope) {
		return database.SignedTx{}, fmt.Errorf("%w: tx[%s]", state.ErrDuplicateTransaction, stx)
	}

	n.evHandler("node: %s: Submit: tx[%s]", n.name, stx)

	if err := n.bus.Publish(bus.TopicAddTransaction, bus.TransactionMsg{Envelope: envelope}); err != nil {
		return database.SignedTx{}, fmt.Errorf("publishing transaction: %w", err)
	}

	return stx, nil
}

// =============================================================================

// Name returns the display name of the node.
func (n *Node) Name() string {
	return n.name
}

// Identity returns the account of the node.
func (n *Node) Identity() database.AccountID {
	return n.id
}

// Genesis returns the genesis information the node was started with.
func (n *Node) Genesis() genesis.Genesis {
	return n.state.Genesis()
}

// PublicBalances returns the balances computed from the node's longest chain.
func (n *Node) PublicBalances() database.Balances {
	return n.state.Balances()
}

// BlockchainView returns the node's longest chain from genesis to head.
func (n *Node) BlockchainView() []database.Block {
	return n.state.Chain()
}

// QueryBlock returns a block the node knows about on any branch.
func (n *Node) QueryBlock(id string) (database.Block, bool) {
	return n.state.QueryBlock(id)
}

// Mempool returns the pending transactions in arrival order.
func (n *Node) Mempool() []database.Tx {
	pending := n.mempool.Copy()

	txs := make([]database.Tx, len(pending))
	for i, stx := range pending {
		txs[i] = stx.Tx
	}
	return txs
}

// MempoolLength returns the number of pending transactions.
func (n *Node) MempoolLength() int {
	return n.mempool.Count()
}

// Stats returns the statistics of the node's longest chain.
func (n *Node) Stats() state.Stats {
	return n.state.Stats()
}

// TreeText renders the node's fork tree.
func (n *Node) TreeText() string {
	return n.state.TreeText()
}

// KnownPeers returns the other nodes this node has heard from.
func (n *Node) KnownPeers() []peer.Peer {
	return n.knownPeers.Copy(n.id)
}
