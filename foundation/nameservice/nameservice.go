// Package nameservice maps account ids to friendly names. Names come from the
// nodes of a simulation and from the key files in an accounts folder.
package nameservice

import (
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ardanlabs/forkchain/foundation/blockchain/database"
	"github.com/ethereum/go-ethereum/crypto"
)

// NameService maintains a map of accounts for name lookup.
type NameService struct {
	mu       sync.RWMutex
	accounts map[database.AccountID]string
}

// New constructs an empty name service.
func New() *NameService {
	return &NameService{
		accounts: make(map[database.AccountID]string),
	}
}

// Load constructs a name service with the accounts of every .ecdsa key file
// found below the root folder. The file name is the account name.
func Load(root string) (*NameService, error) {
	ns := New()

	fn := func(fileName string, info fs.FileInfo, err error) error {
		if err != nil {
			return fmt.Errorf("walkdir failure: %w", err)
		}

		if path.Ext(fileName) != ".ecdsa" {
			return nil
		}

		privateKey, err := crypto.LoadECDSA(fileName)
		if err != nil {
			return err
		}

		account := database.PublicKeyToAccountID(privateKey.PublicKey)
		ns.Register(account, strings.TrimSuffix(path.Base(fileName), ".ecdsa"))

		return nil
	}

	if err := filepath.Walk(root, fn); err != nil {
		return nil, fmt.Errorf("walking directory: %w", err)
	}

	return ns, nil
}

// Register associates the name with the account.
func (ns *NameService) Register(account database.AccountID, name string) {
	ns.mu.Lock()
	defer ns.mu.Unlock()

	ns.accounts[account] = name
}

// Lookup returns the name for the specified account. Unknown accounts are
// returned in their short form.
func (ns *NameService) Lookup(account database.AccountID) string {
	ns.mu.RLock()
	defer ns.mu.RUnlock()

	name, exists := ns.accounts[account]
	if !exists {
		return account.Short()
	}
	return name
}

// Copy returns a copy of the map of names and accounts.
func (ns *NameService) Copy() map[database.AccountID]string {
	ns.mu.RLock()
	defer ns.mu.RUnlock()

	cpy := make(map[database.AccountID]string, len(ns.accounts))
	for account, name := range ns.accounts {
		cpy[account] = name
	}
	return cpy
}
