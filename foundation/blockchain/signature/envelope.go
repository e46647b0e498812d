package signature

import (
	"crypto/ecdsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
)

// Envelope is the self-contained bundle that travels between nodes. The data
// is kept as the exact bytes that were signed.
type Envelope struct {
	Data      json.RawMessage `json:"data"`
	PublicKey string          `json:"public_key"`
	Signature string          `json:"signature"`
}

// Pack bundles the value with the identity and signature into an opaque
// envelope string.
func Pack(value any, identity string, sig string) (string, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return "", &DecodingError{Err: err}
	}

	env := Envelope{
		Data:      data,
		PublicKey: identity,
		Signature: sig,
	}

	raw, err := json.Marshal(env)
	if err != nil {
		return "", &DecodingError{Err: err}
	}

	return base64.RawStdEncoding.EncodeToString(raw), nil
}

// Unpack decodes the envelope without checking the signature.
func Unpack(packed string) (Envelope, error) {
	raw, err := base64.RawStdEncoding.DecodeString(packed)
	if err != nil {
		return Envelope{}, &DecodingError{Err: fmt.Errorf("envelope: %w", err)}
	}

	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Envelope{}, &DecodingError{Err: fmt.Errorf("envelope: %w", err)}
	}

	if len(env.Data) == 0 || env.PublicKey == "" || env.Signature == "" {
		return Envelope{}, &DecodingError{Err: errors.New("envelope: missing fields")}
	}

	return env, nil
}

// UnpackAndVerify decodes the envelope, checks the embedded signature against
// the embedded identity and stores the payload in the value pointed to. The
// signer identity is returned.
func UnpackAndVerify(packed string, value any) (string, error) {
	env, err := Unpack(packed)
	if err != nil {
		return "", err
	}

	if err := verifyData(env.Data, env.Signature, env.PublicKey); err != nil {
		return "", err
	}

	if err := json.Unmarshal(env.Data, value); err != nil {
		return "", &DecodingError{Err: fmt.Errorf("payload: %w", err)}
	}

	return env.PublicKey, nil
}

// SignAndPack signs the value with the private key and packs it with the
// identity of that key.
func SignAndPack(value any, privateKey *ecdsa.PrivateKey) (string, error) {
	sig, err := Sign(value, privateKey)
	if err != nil {
		return "", err
	}

	return Pack(value, Identity(privateKey.PublicKey), sig)
}

// FingerprintAndPack fingerprints the value and packs it with the notary
// identity. Both the envelope and the digest are returned.
func FingerprintAndPack(value any) (packed string, digest string, err error) {
	digest, err = Fingerprint(value)
	if err != nil {
		return "", "", err
	}

	packed, err = Pack(value, notaryIdentity, digest)
	if err != nil {
		return "", "", err
	}

	return packed, digest, nil
}

// VerifyFingerprintAndUnpack decodes an envelope produced by
// FingerprintAndPack, checks the fingerprint and stores the payload in the
// value pointed to. The digest is returned.
func VerifyFingerprintAndUnpack(packed string, value any) (string, error) {
	env, err := Unpack(packed)
	if err != nil {
		return "", err
	}

	if env.PublicKey != notaryIdentity {
		return "", &AuthenticationError{msg: "envelope is not fingerprinted by the notary key"}
	}

	if _, err := UnpackAndVerify(packed, value); err != nil {
		if IsAuthenticationError(err) {
			return "", &AuthenticationError{msg: "fingerprint does not match data"}
		}
		return "", err
	}

	return env.Signature, nil
}
