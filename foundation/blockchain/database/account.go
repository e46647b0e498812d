package database

import (
	"crypto/ecdsa"
	"errors"

	"github.com/ardanlabs/forkchain/foundation/blockchain/signature"
)

// AccountID represents an account id. It is the identity string of the key
// pair that signs transactions for the account.
type AccountID string

// ToAccountID converts an identity string to an account and validates the
// string is a proper public key.
func ToAccountID(identity string) (AccountID, error) {
	a := AccountID(identity)
	if !a.IsAccountID() {
		return "", errors.New("invalid account format")
	}

	return a, nil
}

// PublicKeyToAccountID converts the public key to an account value.
func PublicKeyToAccountID(pk ecdsa.PublicKey) AccountID {
	return AccountID(signature.Identity(pk))
}

// IsAccountID verifies whether the underlying data represents a valid
// public key identity.
func (a AccountID) IsAccountID() bool {
	_, err := signature.ToPublicKey(string(a))
	return err == nil
}

// Short returns an abbreviated form of the account for display.
func (a AccountID) Short() string {
	const maxLength = 10

	s := string(a)
	if has0xPrefix(s) {
		s = s[2:]
	}

	// Uncompressed keys all start with the 04 marker byte.
	if len(s) > 2 && s[:2] == "04" {
		s = s[2:]
	}

	if len(s) > maxLength {
		return s[:maxLength]
	}
	return s
}

// has0xPrefix validates the account starts with a 0x.
func has0xPrefix(a string) bool {
	return len(a) >= 2 && a[0] == '0' && (a[1] == 'x' || a[1] == 'X')
}
