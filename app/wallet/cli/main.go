// This program is a small wallet for the forkchain simulation. It manages
// key files and signs transactions locally before handing them to a node.
package main

import "github.com/ardanlabs/forkchain/app/wallet/cli/cmd"

func main() {
	cmd.Execute()
}
