// Package simulation wires a set of nodes onto one message bus and exposes
// the read surface used by the node service.
package simulation

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ardanlabs/forkchain/foundation/blockchain/database"
	"github.com/ardanlabs/forkchain/foundation/blockchain/genesis"
	"github.com/ardanlabs/forkchain/foundation/blockchain/node"
	"github.com/ardanlabs/forkchain/foundation/blockchain/state"
	"github.com/ardanlabs/forkchain/foundation/bus"
	"github.com/ardanlabs/forkchain/foundation/nameservice"
)

// ErrUnknownNode is returned when a node name is not part of the simulation.
var ErrUnknownNode = errors.New("unknown node")

// EventHandler defines a function that is called when events occur on one
// of the nodes of the simulation.
type EventHandler func(node string, v string, args ...any)

// Config represents the configuration required to build a simulation.
type Config struct {
	Nodes          int
	Genesis        genesis.Genesis
	MineInterval   time.Duration
	SelectStrategy string
	Keys           []*ecdsa.PrivateKey
	NS             *nameservice.NameService
	EvHandler      EventHandler
	Now            func() time.Time
}

// NodeInfo describes one node of the simulation.
type NodeInfo struct {
	Name     string             `json:"name"`
	Identity database.AccountID `json:"identity"`
}

// Simulation owns the bus and the nodes attached to it.
type Simulation struct {
	bus   *bus.Bus
	ns    *nameservice.NameService
	nodes []*node.Node
	byID  map[string]*node.Node
	ev    EventHandler

	mu      sync.Mutex
	running bool
	height  uint64
	sent    map[database.AccountID]bool
}

// New constructs a simulation of the configured number of nodes, named
// node0 through nodeN-1. Keys are taken in order from the config and
// generated for the remaining nodes.
func New(cfg Config) (*Simulation, error) {
	if cfg.Nodes < 1 {
		return nil, fmt.Errorf("simulation requires at least one node, got %d", cfg.Nodes)
	}

	ev := func(name string, v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(name, v, args...)
		}
	}

	ns := cfg.NS
	if ns == nil {
		ns = nameservice.New()
	}

	b := bus.New(func(v string, args ...any) { ev("bus", v, args...) })

	sim := Simulation{
		bus:  b,
		ns:   ns,
		byID: make(map[string]*node.Node),
		ev:   ev,
		sent: make(map[database.AccountID]bool),
	}

	for i := 0; i < cfg.Nodes; i++ {
		name := fmt.Sprintf("node%d", i)

		var pk *ecdsa.PrivateKey
		if i < len(cfg.Keys) {
			pk = cfg.Keys[i]
		}

		nd, err := node.New(node.Config{
			Name:           name,
			Bus:            b,
			Genesis:        cfg.Genesis,
			PrivateKey:     pk,
			SelectStrategy: cfg.SelectStrategy,
			MineInterval:   cfg.MineInterval,
			EvHandler:      func(v string, args ...any) { ev(name, v, args...) },
			Now:            cfg.Now,
		})
		if err != nil {
			return nil, fmt.Errorf("constructing %s: %w", name, err)
		}

		ns.Register(nd.Identity(), name)
		sim.nodes = append(sim.nodes, nd)
		sim.byID[name] = nd
	}

	return &sim, nil
}

// Start runs every node. Nodes announce themselves as they start so by the
// time Start returns every node knows every other node.
func (s *Simulation) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return node.ErrRunning
	}

	for i, nd := range s.nodes {
		if err := nd.Run(ctx); err != nil {
			for _, started := range s.nodes[:i] {
				started.Shutdown()
			}
			return fmt.Errorf("starting %s: %w", nd.Name(), err)
		}
	}

	s.running = true
	s.ev("simulation", "simulation: Start: nodes[%d]", len(s.nodes))

	return nil
}

// Shutdown stops every node and closes the bus.
func (s *Simulation) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	for _, nd := range s.nodes {
		if err := nd.Shutdown(); err != nil {
			s.ev(nd.Name(), "simulation: Shutdown: ERROR: %s", err)
		}
	}
	s.bus.Shutdown()

	s.running = false
	s.ev("simulation", "simulation: Shutdown: completed")
}

// Running reports whether the nodes of the simulation are running.
func (s *Simulation) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.running
}

// =============================================================================

// ListNodes returns the nodes of the simulation in name order.
func (s *Simulation) ListNodes() []NodeInfo {
	infos := make([]NodeInfo, len(s.nodes))
	for i, nd := range s.nodes {
		infos[i] = NodeInfo{Name: nd.Name(), Identity: nd.Identity()}
	}
	return infos
}

// Node returns the node with the specified name.
func (s *Simulation) Node(name string) (*node.Node, error) {
	nd, exists := s.byID[name]
	if !exists {
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownNode)
	}
	return nd, nil
}

// NameService returns the name service the nodes are registered in.
func (s *Simulation) NameService() *nameservice.NameService {
	return s.ns
}

// CurrentChain returns the longest chain as seen by the named node.
func (s *Simulation) CurrentChain(name string) ([]database.Block, error) {
	nd, err := s.Node(name)
	if err != nil {
		return nil, err
	}
	return nd.BlockchainView(), nil
}

// CurrentBalances returns the balances as seen by the named node.
func (s *Simulation) CurrentBalances(name string) (database.Balances, error) {
	nd, err := s.Node(name)
	if err != nil {
		return nil, err
	}
	return nd.PublicBalances(), nil
}

// CurrentMempool returns the pending transactions of the named node.
func (s *Simulation) CurrentMempool(name string) ([]database.Tx, error) {
	nd, err := s.Node(name)
	if err != nil {
		return nil, err
	}
	return nd.Mempool(), nil
}

// Stats returns the chain statistics of the named node.
func (s *Simulation) Stats(name string) (state.Stats, error) {
	nd, err := s.Node(name)
	if err != nil {
		return state.Stats{}, err
	}
	return nd.Stats(), nil
}

// TreeText renders the fork tree of the named node.
func (s *Simulation) TreeText(name string) (string, error) {
	nd, err := s.Node(name)
	if err != nil {
		return "", err
	}
	return nd.TreeText(), nil
}

// =============================================================================

// AccountBalance is one row of the balances sorted for display.
type AccountBalance struct {
	Account database.AccountID `json:"account"`
	Name    string             `json:"name"`
	Balance int64              `json:"balance"`
}

// NamedBalances returns the balances seen by the named node, largest first,
// with the names of the accounts resolved.
func (s *Simulation) NamedBalances(name string) ([]AccountBalance, error) {
	bal, err := s.CurrentBalances(name)
	if err != nil {
		return nil, err
	}

	list := make([]AccountBalance, 0, len(bal))
	for account, balance := range bal {
		list = append(list, AccountBalance{Account: account, Name: s.ns.Lookup(account), Balance: balance})
	}

	sort.Slice(list, func(i, j int) bool {
		if list[i].Balance != list[j].Balance {
			return list[i].Balance > list[j].Balance
		}
		return list[i].Account < list[j].Account
	})

	return list, nil
}
