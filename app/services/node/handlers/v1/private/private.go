// Package private maintains the group of handlers for operator access to
// the nodes of the simulation.
package private

import (
	"context"
	"errors"
	"net/http"

	"github.com/ardanlabs/forkchain/business/core/simulation"
	"github.com/ardanlabs/forkchain/business/web/errs"
	"github.com/ardanlabs/forkchain/foundation/web"
	"go.uber.org/zap"
)

// Handlers manages the set of operator endpoints.
type Handlers struct {
	Log *zap.SugaredLogger
	Sim *simulation.Simulation
}

// Status returns the head and the mempool size of every node.
func (h Handlers) Status(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	type status struct {
		Name        string `json:"name"`
		Identity    string `json:"identity"`
		HeadID      string `json:"head_id"`
		HeadIndex   uint64 `json:"head_index"`
		Mempool     int    `json:"mempool"`
		KnownPeers  int    `json:"known_peers"`
		KnownBlocks int    `json:"known_blocks"`
	}

	var resp []status
	for _, info := range h.Sim.ListNodes() {
		nd, err := h.Sim.Node(info.Name)
		if err != nil {
			return err
		}

		chain := nd.BlockchainView()
		head := chain[len(chain)-1]

		resp = append(resp, status{
			Name:        info.Name,
			Identity:    string(info.Identity),
			HeadID:      head.ID,
			HeadIndex:   head.Index,
			Mempool:     nd.MempoolLength(),
			KnownPeers:  len(nd.KnownPeers()),
			KnownBlocks: nd.Stats().KnownBlocks,
		})
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// MineOnce makes the named node attempt to mine a single block.
func (h Handlers) MineOnce(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	name := web.Param(r, "node")
	nd, err := h.Sim.Node(name)
	if err != nil {
		if errors.Is(err, simulation.ErrUnknownNode) {
			return errs.NewTrusted(err, http.StatusNotFound)
		}
		return err
	}

	mined, err := nd.MineOnce()
	if err != nil {
		return err
	}

	h.Log.Infow("mine once", "traceid", v.TraceID, "node", name, "mined", mined)

	resp := struct {
		Mined bool `json:"mined"`
	}{
		Mined: mined,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}
