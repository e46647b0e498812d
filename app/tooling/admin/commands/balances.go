// Package commands contains the functionality for the set of commands
// currently supported by the admin tool.
package commands

import (
	"fmt"

	"github.com/ardanlabs/forkchain/business/core/simulation"
)

// Balances prints the balances every node computed from its own chain.
func Balances(sim *simulation.Simulation) error {
	for _, info := range sim.ListNodes() {
		bals, err := sim.NamedBalances(info.Name)
		if err != nil {
			return err
		}

		chain, err := sim.CurrentChain(info.Name)
		if err != nil {
			return err
		}
		head := chain[len(chain)-1]

		fmt.Printf("%s: head[%s]\n", info.Name, head)
		for _, bal := range bals {
			fmt.Printf("  %-10s %12d  %s\n", bal.Name, bal.Balance, bal.Account)
		}
		fmt.Print("\n")
	}

	return nil
}
