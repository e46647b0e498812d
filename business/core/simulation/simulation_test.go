package simulation_test

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/ardanlabs/forkchain/business/core/simulation"
	"github.com/ardanlabs/forkchain/foundation/blockchain/genesis"
	"github.com/ardanlabs/forkchain/foundation/blockchain/node"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

// steppingClock moves two seconds forward on every other call so mining
// alternates slow and fast gaps and every candidate is solved.
func steppingClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	var n int64

	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()

		n++
		return start.Add(time.Duration((n+1)/2) * 2 * time.Second)
	}
}

func newSimulation(t *testing.T, nodes int) *simulation.Simulation {
	t.Helper()

	gen := genesis.Default()

	sim, err := simulation.New(simulation.Config{
		Nodes:        nodes,
		Genesis:      gen,
		MineInterval: time.Hour,
		Now:          steppingClock(gen.Date),
	})
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct the simulation: %s", failed, err)
	}

	if err := sim.Start(context.Background()); err != nil {
		t.Fatalf("\t%s\tShould be able to start the simulation: %s", failed, err)
	}
	t.Cleanup(sim.Shutdown)

	return sim
}

// =============================================================================

func TestReadSurface(t *testing.T) {
	sim := newSimulation(t, 3)

	t.Log("Given the need to read the state of the simulation.")
	{
		nodes := sim.ListNodes()
		if len(nodes) != 3 || nodes[0].Name != "node0" || nodes[2].Name != "node2" {
			t.Fatalf("\t%s\tShould list the nodes in order: %+v", failed, nodes)
		}
		t.Logf("\t%s\tShould list the nodes in order.", success)

		for _, info := range nodes {
			nd, err := sim.Node(info.Name)
			if err != nil {
				t.Fatalf("\t%s\tShould be able to find %s: %s", failed, info.Name, err)
			}
			if len(nd.KnownPeers()) != 2 {
				t.Fatalf("\t%s\tShould have %s know the other two nodes: %d", failed, info.Name, len(nd.KnownPeers()))
			}
			if got := sim.NameService().Lookup(info.Identity); got != info.Name {
				t.Fatalf("\t%s\tShould register %s in the name service: got %q", failed, info.Name, got)
			}
		}
		t.Logf("\t%s\tShould have every node know every other node.", success)

		if _, err := sim.CurrentChain("node9"); !errors.Is(err, simulation.ErrUnknownNode) {
			t.Fatalf("\t%s\tShould reject an unknown node: %v", failed, err)
		}
		t.Logf("\t%s\tShould reject an unknown node.", success)

		chain, err := sim.CurrentChain("node1")
		if err != nil || len(chain) != 1 || !chain[0].IsGenesis() {
			t.Fatalf("\t%s\tShould start with the genesis block only: %v", failed, err)
		}
		t.Logf("\t%s\tShould start with the genesis block only.", success)

		if err := sim.Start(context.Background()); !errors.Is(err, node.ErrRunning) {
			t.Fatalf("\t%s\tShould not be able to start twice: %v", failed, err)
		}
		t.Logf("\t%s\tShould not be able to start twice.", success)
	}
}

func TestSendRandom(t *testing.T) {
	sim := newSimulation(t, 3)
	rng := rand.New(rand.NewSource(7))

	t.Log("Given the need to generate random traffic.")
	{
		for i := 0; i < 20; i++ {
			if _, sent, err := sim.SendRandom(rng); err != nil || sent {
				t.Fatalf("\t%s\tShould not send without a balance: %v %v", failed, sent, err)
			}
		}
		t.Logf("\t%s\tShould not send without a balance.", success)

		miner, err := sim.Node("node0")
		if err != nil {
			t.Fatalf("\t%s\tShould be able to find node0: %s", failed, err)
		}

		mined, err := miner.MineOnce()
		if err != nil || !mined {
			t.Fatalf("\t%s\tShould be able to mine the first block: %v", failed, err)
		}

		var sentCount int
		for i := 0; i < 100; i++ {
			stx, sent, err := sim.SendRandom(rng)
			if err != nil {
				t.Fatalf("\t%s\tShould be able to send: %s", failed, err)
			}
			if !sent {
				continue
			}
			sentCount++

			if stx.Tx.Sender != miner.Identity() {
				t.Fatalf("\t%s\tShould only send from the node with a balance.", failed)
			}
			if stx.Tx.Receiver == stx.Tx.Sender {
				t.Fatalf("\t%s\tShould send to another node.", failed)
			}
			if stx.Tx.Amount < 1 || stx.Tx.Amount > 512 || stx.Tx.Fee < 1 {
				t.Fatalf("\t%s\tShould send up to half the balance with a fee: %+v", failed, stx.Tx)
			}
		}

		if sentCount != 1 {
			t.Fatalf("\t%s\tShould send once per chain height: got %d", failed, sentCount)
		}
		t.Logf("\t%s\tShould send once per chain height.", success)

		for _, info := range sim.ListNodes() {
			mp, err := sim.CurrentMempool(info.Name)
			if err != nil || len(mp) != 1 {
				t.Fatalf("\t%s\tShould have the transaction in the mempool of %s.", failed, info.Name)
			}
		}
		t.Logf("\t%s\tShould broadcast the transaction to every node.", success)

		if mined, err := miner.MineOnce(); err != nil || !mined {
			t.Fatalf("\t%s\tShould be able to mine the second block: %v", failed, err)
		}

		for _, info := range sim.ListNodes() {
			chain, err := sim.CurrentChain(info.Name)
			if err != nil || len(chain) != 3 {
				t.Fatalf("\t%s\tShould have %s hold three blocks.", failed, info.Name)
			}

			bal, err := sim.CurrentBalances(info.Name)
			if err != nil {
				t.Fatalf("\t%s\tShould be able to read the balances: %s", failed, err)
			}

			var exp int64
			for _, block := range chain {
				exp += block.Reward
			}
			if bal.Total() != exp {
				t.Logf("\t%s\tgot: %d", failed, bal.Total())
				t.Logf("\t%s\texp: %d", failed, exp)
				t.Fatalf("\t%s\tShould conserve the supply on %s.", failed, info.Name)
			}

			named, err := sim.NamedBalances(info.Name)
			if err != nil || len(named) == 0 || named[0].Name != "node0" {
				t.Fatalf("\t%s\tShould list node0 as the richest account on %s: %+v", failed, info.Name, named)
			}
		}
		t.Logf("\t%s\tShould agree on the chain and conserve the supply.", success)
	}
}
