package state

import (
	"fmt"
	"time"

	"github.com/ardanlabs/forkchain/foundation/blockchain/database"
	"github.com/ardanlabs/forkchain/foundation/blockchain/forktree"
	"github.com/disiqueira/gotree"
	"github.com/fatih/color"
	"github.com/mxmCherry/movavg"
)

// blockTimeWindow is the number of recent block gaps averaged by Stats.
const blockTimeWindow = 10

// Stats summarizes the longest chain.
type Stats struct {
	TotalBlocks  int           `json:"total_blocks"`
	KnownBlocks  int           `json:"known_blocks"`
	Reward       int64         `json:"reward"`
	Difficulty   int64         `json:"difficulty"`
	AvgBlockTime time.Duration `json:"avg_block_time"`
}

// Stats returns the chain length, the head's reward and difficulty and the
// moving average of the time between the most recent blocks.
func (s *State) Stats() Stats {
	s.mu.RLock()
	chain := s.tree.LongestChain()
	known := s.tree.Len()
	s.mu.RUnlock()

	head := chain[len(chain)-1]

	var avg time.Duration
	if gaps := min(len(chain)-1, blockTimeWindow); gaps > 0 {
		sma := movavg.NewSMA(gaps)
		for i := len(chain) - gaps; i < len(chain); i++ {
			sma.Add(float64(chain[i].CreatedAt - chain[i-1].CreatedAt))
		}
		avg = time.Duration(sma.Avg() * float64(time.Millisecond))
	}

	return Stats{
		TotalBlocks:  len(chain),
		KnownBlocks:  known,
		Reward:       head.Reward,
		Difficulty:   head.Difficulty,
		AvgBlockTime: avg,
	}
}

// TreeText renders every known block as a tree. Blocks on the longest chain
// are highlighted and blocks on stale branches are dimmed.
func (s *State) TreeText() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	canonical := make(map[string]bool)
	for _, block := range s.tree.LongestChain() {
		canonical[block.ID] = true
	}

	label := func(block database.Block) string {
		name := blockLabel(block)
		if canonical[block.ID] {
			return color.HiGreenString(name)
		}
		return color.New(color.Faint).Sprint(name)
	}

	root := s.tree.Root()
	text := gotree.New(label(root.Value))

	nodes := map[string]gotree.Tree{root.Key: text}
	s.tree.Walk(func(node forktree.Node[database.Block], parentKey string) {
		if node.Key == root.Key {
			return
		}
		nodes[node.Key] = nodes[parentKey].Add(label(node.Value))
	})

	return text.Print()
}

func blockLabel(block database.Block) string {
	id := block.ID
	if len(id) > 8 {
		id = id[:8]
	}

	return fmt.Sprintf("#%d %s miner[%s] txs[%d] diff[%d]", block.Index, id, block.MinerID.Short(), len(block.Transactions), block.Difficulty)
}
