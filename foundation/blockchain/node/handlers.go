package node

import (
	"errors"

	"github.com/ardanlabs/forkchain/foundation/blockchain/database"
	"github.com/ardanlabs/forkchain/foundation/blockchain/peer"
	"github.com/ardanlabs/forkchain/foundation/bus"
)

// announce publishes the identity of this node.
func (n *Node) announce() error {
	msg := bus.IdentifyMsg{
		Identity: string(n.id),
		Name:     n.name,
	}

	return n.bus.Publish(bus.TopicIdentify, msg)
}

// onIdentify records a node that announced itself. A node heard for the
// first time gets an answer so late joiners learn about everyone.
func (n *Node) onIdentify(msg bus.Message) {
	m := msg.(bus.IdentifyMsg)

	id := database.AccountID(m.Identity)
	if id == n.id {
		return
	}

	if !n.knownPeers.Add(peer.New(id, m.Name)) {
		return
	}

	n.evHandler("node: %s: onIdentify: new peer[%s]", n.name, m.Name)

	if err := n.announce(); err != nil {
		n.evHandler("node: %s: onIdentify: announce: ERROR: %s", n.name, err)
	}
}

// onTransaction verifies a published transaction and adds it to the
// mempool. Invalid transactions and transactions already on the longest
// chain are dropped.
func (n *Node) onTransaction(msg bus.Message) {
	m := msg.(bus.TransactionMsg)

	stx, err := database.VerifyTransaction(m.Envelope)
	if err != nil {
		n.evHandler("node: %s: onTransaction: DROP: %s", n.name, err)
		return
	}

	if n.state.ContainsTx(m.Envelope) {
		n.evHandler("node: %s: onTransaction: DROP: already included: tx[%s]", n.name, stx)
		return
	}

	count := n.mempool.Upsert(stx)

	n.evHandler("node: %s: onTransaction: tx[%s]: mempool[%d]", n.name, stx, count)
}

// onBlock admits a published block into the ledger and removes the
// transactions it carries from the mempool. Rejected blocks are dropped.
func (n *Node) onBlock(msg bus.Message) {
	m := msg.(bus.BlockMsg)

	block, err := n.state.Admit(m.Envelope)
	if err != nil {
		switch {
		case errors.Is(err, database.ErrUnknownParent):
			n.evHandler("node: %s: onBlock: DROP: unknown parent: %s", n.name, err)
		default:
			n.evHandler("node: %s: onBlock: REJECT: %s", n.name, err)
		}
		return
	}

	removed := n.mempool.DeleteIncluded(block)

	n.evHandler("node: %s: onBlock: blk[%s]: miner[%s]: removed txs[%d]", n.name, block, block.MinerID.Short(), removed)
}
