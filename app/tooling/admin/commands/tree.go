package commands

import (
	"fmt"

	"github.com/ardanlabs/forkchain/business/core/simulation"
)

// Tree prints the fork tree as seen by the first node.
func Tree(sim *simulation.Simulation) error {
	name := sim.ListNodes()[0].Name

	text, err := sim.TreeText(name)
	if err != nil {
		return err
	}

	fmt.Printf("%s:\n%s\n", name, text)
	return nil
}

// Stats prints the chain statistics of every node.
func Stats(sim *simulation.Simulation) error {
	for _, info := range sim.ListNodes() {
		stats, err := sim.Stats(info.Name)
		if err != nil {
			return err
		}

		fmt.Printf("%s: blocks[%d] known[%d] reward[%d] difficulty[%d] avg[%v]\n",
			info.Name, stats.TotalBlocks, stats.KnownBlocks, stats.Reward, stats.Difficulty, stats.AvgBlockTime)
	}

	return nil
}
