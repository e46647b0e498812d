// This program performs administrative tasks against a headless run of the
// forkchain simulation.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ardanlabs/forkchain/app/tooling/admin/commands"
	"github.com/ardanlabs/forkchain/business/core/simulation"
	"github.com/ardanlabs/forkchain/foundation/blockchain/genesis"
	"github.com/ardanlabs/forkchain/foundation/logger"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

const (
	defaultNodes    = 4
	defaultDuration = 5 * time.Second
)

func main() {

	// Construct the application logger.
	log, err := logger.New("ADMIN")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// Perform the startup and shutdown sequence.
	if err := run(log); err != nil {
		log.Errorw("startup", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {
	if len(os.Args) < 2 {
		return errors.New("usage: admin <bals|tree|stats> [duration]")
	}

	duration := defaultDuration
	if len(os.Args) > 2 {
		d, err := time.ParseDuration(os.Args[2])
		if err != nil {
			return fmt.Errorf("parsing duration: %w", err)
		}
		duration = d
	}

	log.Infow("startup", "version", build, "command", os.Args[1], "duration", duration)

	ev := func(node string, v string, args ...any) {
		log.Debugw(fmt.Sprintf(v, args...), "node", node)
	}

	sim, err := simulation.New(simulation.Config{
		Nodes:     defaultNodes,
		Genesis:   genesis.Default(),
		EvHandler: ev,
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), duration)
	defer cancel()

	if err := sim.Start(ctx); err != nil {
		return err
	}

	sim.Traffic(ctx, 50*time.Millisecond)
	sim.Shutdown()

	return processCommands(os.Args, sim)
}

// processCommands handles the execution of the commands specified on
// the command line.
func processCommands(args []string, sim *simulation.Simulation) error {
	switch args[1] {
	case "bals":
		if err := commands.Balances(sim); err != nil {
			return fmt.Errorf("getting balances: %w", err)
		}
	case "tree":
		if err := commands.Tree(sim); err != nil {
			return fmt.Errorf("getting tree: %w", err)
		}
	case "stats":
		if err := commands.Stats(sim); err != nil {
			return fmt.Errorf("getting stats: %w", err)
		}
	default:
		return fmt.Errorf("unknown command %q", args[1])
	}

	return nil
}
