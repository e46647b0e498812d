package cmd

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"
)

type chainBlock struct {
	ID           string `json:"id"`
	MinerName    string `json:"miner_name"`
	Index        uint64 `json:"index"`
	CreatedAt    int64  `json:"created_at"`
	Difficulty   int64  `json:"difficulty"`
	Reward       int64  `json:"reward"`
	Transactions []struct {
		SenderName   string `json:"sender_name"`
		ReceiverName string `json:"receiver_name"`
		Amount       int64  `json:"amount"`
		Fee          int64  `json:"fee"`
	} `json:"transactions"`
}

var chainCmd = &cobra.Command{
	Use:   "chain",
	Short: "Print the longest chain as seen by a node.",
	Run:   chainRun,
}

func init() {
	rootCmd.AddCommand(chainCmd)
}

func chainRun(cmd *cobra.Command, args []string) {
	var chain []chainBlock
	if err := getJSON("/v1/chain/"+nodeName, &chain); err != nil {
		log.Fatal(err)
	}

	for _, b := range chain {
		created := time.UnixMilli(b.CreatedAt).UTC().Format(time.RFC3339)
		fmt.Printf("#%-4d %s miner[%s] diff[%d] reward[%d] %s\n", b.Index, b.ID, b.MinerName, b.Difficulty, b.Reward, created)
		for _, tx := range b.Transactions {
			fmt.Printf("      %s -> %s amount[%d] fee[%d]\n", tx.SenderName, tx.ReceiverName, tx.Amount, tx.Fee)
		}
	}
}
