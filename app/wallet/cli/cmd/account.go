package cmd

import (
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/ardanlabs/forkchain/foundation/blockchain/database"
	"github.com/ardanlabs/forkchain/foundation/nameservice"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
)

var listAll bool

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Print the account id behind a wallet key, or every key with --all",
	Run: func(cmd *cobra.Command, args []string) {
		if listAll {
			if err := writeAccounts(os.Stdout, accountPath); err != nil {
				log.Fatal(err)
			}
			return
		}

		privateKey, err := crypto.LoadECDSA(getPrivateKeyPath())
		if err != nil {
			log.Fatal(err)
		}

		fmt.Println(database.PublicKeyToAccountID(privateKey.PublicKey))
	},
}

func init() {
	rootCmd.AddCommand(accountCmd)
	accountCmd.Flags().BoolVar(&listAll, "all", false, "List every key found in the account path.")
}

// writeAccounts prints a name and account id row for every key file found
// below the root folder, ordered by name.
func writeAccounts(w io.Writer, root string) error {
	ns, err := nameservice.Load(root)
	if err != nil {
		return err
	}

	type row struct {
		name    string
		account database.AccountID
	}

	var rows []row
	for account, name := range ns.Copy() {
		rows = append(rows, row{name: name, account: account})
	}

	sort.Slice(rows, func(i, j int) bool {
		return strings.Compare(rows[i].name, rows[j].name) < 0
	})

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tACCOUNT")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\n", r.name, r.account)
	}

	return tw.Flush()
}
