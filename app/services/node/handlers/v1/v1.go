// Package v1 contains the full set of handler functions and routes
// supported by the v1 web api.
package v1

import (
	"net/http"

	"github.com/ardanlabs/forkchain/app/services/node/handlers/v1/private"
	"github.com/ardanlabs/forkchain/app/services/node/handlers/v1/public"
	"github.com/ardanlabs/forkchain/business/core/simulation"
	"github.com/ardanlabs/forkchain/foundation/events"
	"github.com/ardanlabs/forkchain/foundation/nameservice"
	"github.com/ardanlabs/forkchain/foundation/web"
	"go.uber.org/zap"
)

const version = "v1"

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log  *zap.SugaredLogger
	Sim  *simulation.Simulation
	NS   *nameservice.NameService
	Evts *events.Events
}

// PublicRoutes binds all the version 1 public routes.
func PublicRoutes(app *web.App, cfg Config) {
	pbl := public.Handlers{
		Log:  cfg.Log,
		Sim:  cfg.Sim,
		NS:   cfg.NS,
		Evts: cfg.Evts,
	}

	app.Handle(http.MethodGet, version, "/events", pbl.Events)
	app.Handle(http.MethodGet, version, "/genesis", pbl.Genesis)
	app.Handle(http.MethodGet, version, "/nodes", pbl.Nodes)
	app.Handle(http.MethodGet, version, "/chain/:node", pbl.Chain)
	app.Handle(http.MethodGet, version, "/blocks/:node/:id", pbl.QueryBlock)
	app.Handle(http.MethodGet, version, "/balances/:node", pbl.Balances)
	app.Handle(http.MethodGet, version, "/mempool/:node", pbl.Mempool)
	app.Handle(http.MethodGet, version, "/stats/:node", pbl.Stats)
	app.Handle(http.MethodGet, version, "/tree/:node", pbl.Tree)
	app.Handle(http.MethodGet, version, "/peers/:node", pbl.Peers)
	app.Handle(http.MethodPost, version, "/tx/send", pbl.Send)
	app.Handle(http.MethodPost, version, "/tx/submit", pbl.Submit)
}

// PrivateRoutes binds all the version 1 private routes.
func PrivateRoutes(app *web.App, cfg Config) {
	prv := private.Handlers{
		Log: cfg.Log,
		Sim: cfg.Sim,
	}

	app.Handle(http.MethodGet, version, "/node/status", prv.Status)
	app.Handle(http.MethodPost, version, "/node/mine/:node", prv.MineOnce)
}
