// Package signature provides helper functions for handling the blockchain
// signature needs. It covers identities, deterministic signing, the
// fingerprint used in place of a block hash, and the envelopes that carry
// signed data across the network.
package signature

import (
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// stampPrefix is mixed into every digest so signatures produced here are
// always unique to the forkchain network.
const stampPrefix = "\x19Forkchain Signed Message:\n32"

// notaryKeyHex is the fixed, publicly known key used to fingerprint data.
// Anyone can produce a fingerprint with it. Only the determinism of the
// signature and its sensitivity to the payload are relied on.
const notaryKeyHex = "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"

var (
	notaryKey      *ecdsa.PrivateKey
	notaryIdentity string
)

func init() {
	pk, err := crypto.HexToECDSA(notaryKeyHex)
	if err != nil {
		panic(fmt.Sprintf("signature: invalid notary key: %s", err))
	}

	notaryKey = pk
	notaryIdentity = Identity(pk.PublicKey)
}

// =============================================================================

// GenerateIdentity constructs a new key pair. The returned identity string is
// the public key and doubles as the account id throughout the system.
func GenerateIdentity() (string, *ecdsa.PrivateKey, error) {
	privateKey, err := crypto.GenerateKey()
	if err != nil {
		return "", nil, fmt.Errorf("generating key: %w", err)
	}

	return Identity(privateKey.PublicKey), privateKey, nil
}

// Identity returns the identity string for the specified public key.
func Identity(pk ecdsa.PublicKey) string {
	return hexutil.Encode(crypto.FromECDSAPub(&pk))
}

// ToPublicKey converts an identity string back into a public key.
func ToPublicKey(identity string) (*ecdsa.PublicKey, error) {
	data, err := hexutil.Decode(identity)
	if err != nil {
		return nil, &DecodingError{Err: fmt.Errorf("identity %q: %w", short(identity), err)}
	}

	pk, err := crypto.UnmarshalPubkey(data)
	if err != nil {
		return nil, &DecodingError{Err: fmt.Errorf("identity %q: %w", short(identity), err)}
	}

	return pk, nil
}

// NotaryIdentity returns the identity of the fixed fingerprint key.
func NotaryIdentity() string {
	return notaryIdentity
}

// =============================================================================

// Sign uses the specified private key to sign the canonical serialization of
// the value. The same value and key always produce the same signature.
func Sign(value any, privateKey *ecdsa.PrivateKey) (string, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return "", &DecodingError{Err: err}
	}

	return signData(data, privateKey)
}

// Verify checks the signature was produced over the value by the private key
// belonging to the specified identity.
func Verify(value any, sig string, identity string) error {
	data, err := json.Marshal(value)
	if err != nil {
		return &DecodingError{Err: err}
	}

	return verifyData(data, sig, identity)
}

// Fingerprint returns the deterministic digest of the value. It is the
// signature of the value under the notary key.
func Fingerprint(value any) (string, error) {
	return Sign(value, notaryKey)
}

// VerifyFingerprint checks the digest is the fingerprint of the value.
func VerifyFingerprint(value any, digest string) error {
	if err := Verify(value, digest, notaryIdentity); err != nil {
		if IsAuthenticationError(err) {
			return &AuthenticationError{msg: "fingerprint does not match data"}
		}
		return err
	}

	return nil
}

// FingerprintInt interprets the digest as a non-negative integer.
func FingerprintInt(digest string) (*big.Int, error) {
	sig, err := hexutil.Decode(digest)
	if err != nil {
		return nil, &DecodingError{Err: fmt.Errorf("digest: %w", err)}
	}

	return new(big.Int).SetBytes(sig), nil
}

// =============================================================================

// signData signs the stamped digest of the raw bytes and returns the 65 byte
// [R|S|V] signature hex encoded.
func signData(data []byte, privateKey *ecdsa.PrivateKey) (string, error) {
	sig, err := crypto.Sign(stamp(data), privateKey)
	if err != nil {
		return "", fmt.Errorf("signing: %w", err)
	}

	return hexutil.Encode(sig), nil
}

// verifyData checks the signature over the raw bytes against the identity.
func verifyData(data []byte, sigStr string, identity string) error {
	pk, err := ToPublicKey(identity)
	if err != nil {
		return err
	}

	sig, err := hexutil.Decode(sigStr)
	if err != nil {
		return &DecodingError{Err: fmt.Errorf("signature: %w", err)}
	}

	if len(sig) != crypto.SignatureLength {
		return &DecodingError{Err: fmt.Errorf("signature length %d, exp %d", len(sig), crypto.SignatureLength)}
	}

	// The recovery id is not needed to verify, only the R and S values.
	rs := sig[:crypto.RecoveryIDOffset]
	if !crypto.VerifySignature(crypto.FromECDSAPub(pk), stamp(data), rs) {
		return &AuthenticationError{msg: "signature does not match data"}
	}

	return nil
}

// stamp returns a hash of 32 bytes that represents this data with
// the forkchain stamp embedded into the final hash.
func stamp(data []byte) []byte {
	dataHash := crypto.Keccak256(data)
	return crypto.Keccak256([]byte(stampPrefix), dataHash)
}

// short trims long identities for error messages.
func short(s string) string {
	if len(s) > 12 {
		return s[:12]
	}
	return s
}
