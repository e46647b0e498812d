package public

import (
	"github.com/ardanlabs/forkchain/foundation/blockchain/database"
	"github.com/ardanlabs/forkchain/foundation/nameservice"
)

type tx struct {
	Sender       database.AccountID `json:"sender"`
	SenderName   string             `json:"sender_name"`
	Receiver     database.AccountID `json:"receiver"`
	ReceiverName string             `json:"receiver_name"`
	Amount       int64              `json:"amount"`
	Fee          int64              `json:"fee"`
}

type block struct {
	ID           string             `json:"id"`
	ParentID     string             `json:"parent_id"`
	Miner        database.AccountID `json:"miner"`
	MinerName    string             `json:"miner_name"`
	Index        uint64             `json:"index"`
	CreatedAt    int64              `json:"created_at"`
	Difficulty   int64              `json:"difficulty"`
	Reward       int64              `json:"reward"`
	Transactions []tx               `json:"transactions"`
}

type sendRequest struct {
	From   string `json:"from" validate:"required"`
	To     string `json:"to" validate:"required"`
	Amount int64  `json:"amount" validate:"required,gt=0"`
	Fee    int64  `json:"fee" validate:"required,gt=0"`
}

type submitRequest struct {
	Node     string `json:"node" validate:"required"`
	Envelope string `json:"envelope" validate:"required"`
}

type txResponse struct {
	Status   string `json:"status"`
	Envelope string `json:"envelope"`
	Tx       tx     `json:"tx"`
}

// =============================================================================

func toTx(ns *nameservice.NameService, t database.Tx) tx {
	return tx{
		Sender:       t.Sender,
		SenderName:   ns.Lookup(t.Sender),
		Receiver:     t.Receiver,
		ReceiverName: ns.Lookup(t.Receiver),
		Amount:       t.Amount,
		Fee:          t.Fee,
	}
}

func toBlock(ns *nameservice.NameService, b database.Block) block {
	txs := make([]tx, len(b.Transactions))
	for i, stx := range b.Transactions {
		txs[i] = toTx(ns, stx.Tx)
	}

	return block{
		ID:           b.ID,
		ParentID:     b.ParentID,
		Miner:        b.MinerID,
		MinerName:    ns.Lookup(b.MinerID),
		Index:        b.Index,
		CreatedAt:    b.CreatedAt,
		Difficulty:   b.Difficulty,
		Reward:       b.Reward,
		Transactions: txs,
	}
}
