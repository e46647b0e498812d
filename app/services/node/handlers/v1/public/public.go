// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ardanlabs/forkchain/business/core/simulation"
	"github.com/ardanlabs/forkchain/business/web/errs"
	"github.com/ardanlabs/forkchain/foundation/blockchain/database"
	"github.com/ardanlabs/forkchain/foundation/blockchain/node"
	"github.com/ardanlabs/forkchain/foundation/events"
	"github.com/ardanlabs/forkchain/foundation/nameservice"
	"github.com/ardanlabs/forkchain/foundation/validate"
	"github.com/ardanlabs/forkchain/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handlers manages the set of simulation endpoints.
type Handlers struct {
	Log  *zap.SugaredLogger
	Sim  *simulation.Simulation
	NS   *nameservice.NameService
	WS   websocket.Upgrader
	Evts *events.Events
}

// Events handles a web socket to provide events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case evt, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteJSON(evt); err != nil {
				return nil
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// Genesis returns the chain parameters shared by every node.
func (h Handlers) Genesis(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	nodes := h.Sim.ListNodes()
	nd, err := h.node(nodes[0].Name)
	if err != nil {
		return err
	}

	return web.Respond(ctx, w, nd.Genesis(), http.StatusOK)
}

// Nodes returns the nodes of the simulation.
func (h Handlers) Nodes(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.Sim.ListNodes(), http.StatusOK)
}

// Chain returns the longest chain as seen by a node.
func (h Handlers) Chain(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	chain, err := h.Sim.CurrentChain(web.Param(r, "node"))
	if err != nil {
		return notFound(err)
	}

	blocks := make([]block, len(chain))
	for i, b := range chain {
		blocks[i] = toBlock(h.NS, b)
	}

	return web.Respond(ctx, w, blocks, http.StatusOK)
}

// QueryBlock returns a block on any branch known to a node.
func (h Handlers) QueryBlock(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	nd, err := h.node(web.Param(r, "node"))
	if err != nil {
		return err
	}

	id := web.Param(r, "id")
	b, exists := nd.QueryBlock(id)
	if !exists {
		return errs.NewTrusted(fmt.Errorf("block %q not found", id), http.StatusNotFound)
	}

	return web.Respond(ctx, w, toBlock(h.NS, b), http.StatusOK)
}

// Balances returns the balances as seen by a node, richest first.
func (h Handlers) Balances(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	bal, err := h.Sim.NamedBalances(web.Param(r, "node"))
	if err != nil {
		return notFound(err)
	}

	return web.Respond(ctx, w, bal, http.StatusOK)
}

// Mempool returns the pending transactions of a node in arrival order.
func (h Handlers) Mempool(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	pending, err := h.Sim.CurrentMempool(web.Param(r, "node"))
	if err != nil {
		return notFound(err)
	}

	txs := make([]tx, len(pending))
	for i, t := range pending {
		txs[i] = toTx(h.NS, t)
	}

	return web.Respond(ctx, w, txs, http.StatusOK)
}

// Stats returns the chain statistics of a node.
func (h Handlers) Stats(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	stats, err := h.Sim.Stats(web.Param(r, "node"))
	if err != nil {
		return notFound(err)
	}

	resp := struct {
		TotalBlocks  int    `json:"total_blocks"`
		KnownBlocks  int    `json:"known_blocks"`
		Reward       int64  `json:"reward"`
		Difficulty   int64  `json:"difficulty"`
		AvgBlockTime string `json:"avg_block_time"`
	}{
		TotalBlocks:  stats.TotalBlocks,
		KnownBlocks:  stats.KnownBlocks,
		Reward:       stats.Reward,
		Difficulty:   stats.Difficulty,
		AvgBlockTime: stats.AvgBlockTime.String(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Tree returns the fork tree of a node rendered as text.
func (h Handlers) Tree(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	text, err := h.Sim.TreeText(web.Param(r, "node"))
	if err != nil {
		return notFound(err)
	}

	resp := struct {
		Tree string `json:"tree"`
	}{
		Tree: text,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Peers returns the nodes a node has heard from.
func (h Handlers) Peers(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	nd, err := h.node(web.Param(r, "node"))
	if err != nil {
		return err
	}

	return web.Respond(ctx, w, nd.KnownPeers(), http.StatusOK)
}

// Send has a node sign and broadcast a transaction.
func (h Handlers) Send(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var req sendRequest
	if err := web.Decode(r, &req); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	if err := validate.Check(req); err != nil {
		return err
	}

	nd, err := h.node(req.From)
	if err != nil {
		return err
	}

	to, err := h.account(req.To)
	if err != nil {
		return err
	}

	h.Log.Infow("send tran", "traceid", v.TraceID, "from", req.From, "to", req.To, "amount", req.Amount, "fee", req.Fee)

	stx, err := nd.Send(to, req.Amount, req.Fee)
	if err != nil {
		return err
	}

	resp := txResponse{
		Status:   "transaction broadcast",
		Envelope: stx.Envelope,
		Tx:       toTx(h.NS, stx.Tx),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Submit broadcasts a transaction signed outside of the simulation through
// the specified node.
func (h Handlers) Submit(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var req submitRequest
	if err := web.Decode(r, &req); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	if err := validate.Check(req); err != nil {
		return err
	}

	nd, err := h.node(req.Node)
	if err != nil {
		return err
	}

	stx, err := nd.Submit(req.Envelope)
	if err != nil {
		return err
	}

	h.Log.Infow("submit tran", "traceid", v.TraceID, "node", req.Node, "tx", stx)

	resp := txResponse{
		Status:   "transaction broadcast",
		Envelope: stx.Envelope,
		Tx:       toTx(h.NS, stx.Tx),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// =============================================================================

// node looks up a node by name.
func (h Handlers) node(name string) (*node.Node, error) {
	nd, err := h.Sim.Node(name)
	if err != nil {
		return nil, notFound(err)
	}
	return nd, nil
}

// account resolves a node name or an account id.
func (h Handlers) account(nameOrID string) (database.AccountID, error) {
	if nd, err := h.Sim.Node(nameOrID); err == nil {
		return nd.Identity(), nil
	}

	id, err := database.ToAccountID(nameOrID)
	if err != nil {
		return "", errs.NewTrusted(fmt.Errorf("%q is not a node or an account: %w", nameOrID, err), http.StatusBadRequest)
	}
	return id, nil
}

// notFound marks unknown node errors as trusted 404s.
func notFound(err error) error {
	if errors.Is(err, simulation.ErrUnknownNode) {
		return errs.NewTrusted(err, http.StatusNotFound)
	}
	return err
}
