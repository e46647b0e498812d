package nameservice_test

import (
	"path/filepath"
	"testing"

	"github.com/ardanlabs/forkchain/foundation/blockchain/database"
	"github.com/ardanlabs/forkchain/foundation/nameservice"
	"github.com/ethereum/go-ethereum/crypto"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	pk, err := crypto.HexToECDSA("fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959")
	if err != nil {
		t.Fatalf("Should be able to load the key: %s", err)
	}

	if err := crypto.SaveECDSA(filepath.Join(dir, "pavel.ecdsa"), pk); err != nil {
		t.Fatalf("Should be able to save the key: %s", err)
	}

	ns, err := nameservice.Load(dir)
	if err != nil {
		t.Fatalf("Should be able to load the accounts folder: %s", err)
	}

	account := database.PublicKeyToAccountID(pk.PublicKey)
	if got := ns.Lookup(account); got != "pavel" {
		t.Logf("got: %s", got)
		t.Logf("exp: %s", "pavel")
		t.Fatalf("Should be able to lookup the account name.")
	}

	ns.Register("0x04aabbccddeeff00112233", "node0")
	if ns.Lookup("0x04aabbccddeeff00112233") != "node0" {
		t.Fatalf("Should be able to register a name.")
	}

	if got := ns.Lookup("0x04ffeeddccbbaa99887766"); got != "ffeeddccbb" {
		t.Logf("got: %s", got)
		t.Fatalf("Should fall back to the short account for unknown names.")
	}

	if len(ns.Copy()) != 2 {
		t.Fatalf("Should get back a copy of every name.")
	}
}
