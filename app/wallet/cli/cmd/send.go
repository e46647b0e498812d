package cmd

import (
	"bytes"
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/ardanlabs/forkchain/foundation/blockchain/database"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
)

var (
	to     string
	amount int64
	fee    int64
)

// sendCmd represents the send command
var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Sign a transaction and submit it through a node",
	Run: func(cmd *cobra.Command, args []string) {
		privateKey, err := crypto.LoadECDSA(getPrivateKeyPath())
		if err != nil {
			log.Fatal(err)
		}

		if err := sendWithDetails(privateKey); err != nil {
			log.Fatal(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVarP(&to, "to", "t", "", "Account id or node name of the receiver.")
	sendCmd.Flags().Int64VarP(&amount, "amount", "v", 0, "Amount to send.")
	sendCmd.Flags().Int64VarP(&fee, "fee", "f", 1, "Fee paid to the miner.")
}

func sendWithDetails(privateKey *ecdsa.PrivateKey) error {
	receiver, err := resolveAccount(to)
	if err != nil {
		return err
	}

	tx, err := database.NewTx(database.PublicKeyToAccountID(privateKey.PublicKey), receiver, amount, fee)
	if err != nil {
		return err
	}

	signedTx, err := tx.Sign(privateKey)
	if err != nil {
		return err
	}

	req := struct {
		Node     string `json:"node"`
		Envelope string `json:"envelope"`
	}{
		Node:     nodeName,
		Envelope: signedTx.Envelope,
	}

	data, err := json.Marshal(req)
	if err != nil {
		return err
	}

	resp, err := http.Post(fmt.Sprintf("%s/v1/tx/submit", url), "application/json", bytes.NewBuffer(data))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var result struct {
		Status string `json:"status"`
		Error  string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("submit: status[%d]: %s", resp.StatusCode, result.Error)
	}

	fmt.Println(result.Status, signedTx)
	return nil
}

// resolveAccount accepts an account id or the name of a node.
func resolveAccount(nameOrID string) (database.AccountID, error) {
	if id, err := database.ToAccountID(nameOrID); err == nil {
		return id, nil
	}

	var nodes []struct {
		Name     string             `json:"name"`
		Identity database.AccountID `json:"identity"`
	}
	if err := getJSON("/v1/nodes", &nodes); err != nil {
		return "", err
	}

	for _, nd := range nodes {
		if nd.Name == nameOrID {
			return nd.Identity, nil
		}
	}

	return "", fmt.Errorf("%q is not an account or a node", nameOrID)
}
