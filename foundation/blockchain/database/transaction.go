package database

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math"

	"github.com/ardanlabs/forkchain/foundation/blockchain/signature"
)

// ErrInvalidTransaction is returned when a transaction fails the basic
// accounting checks.
var ErrInvalidTransaction = errors.New("invalid transaction")

// =============================================================================

// Tx is the transactional information between two parties.
type Tx struct {
	Sender   AccountID `json:"sender"`   // Account paying the amount and the fee.
	Receiver AccountID `json:"receiver"` // Account receiving the amount.
	Amount   int64     `json:"amount"`   // Monetary value received from this transaction.
	Fee      int64     `json:"fee"`      // Fee offered by the sender to the miner that includes it.
}

// NewTx constructs a new transaction.
func NewTx(sender AccountID, receiver AccountID, amount int64, fee int64) (Tx, error) {
	tx := Tx{
		Sender:   sender,
		Receiver: receiver,
		Amount:   amount,
		Fee:      fee,
	}

	if err := tx.Validate(); err != nil {
		return Tx{}, err
	}

	return tx, nil
}

// Validate performs the basic checks every transaction must pass.
func (tx Tx) Validate() error {
	if tx.Sender == "" {
		return fmt.Errorf("%w: missing sender", ErrInvalidTransaction)
	}

	if tx.Receiver == "" {
		return fmt.Errorf("%w: missing receiver", ErrInvalidTransaction)
	}

	if tx.Amount <= 0 {
		return fmt.Errorf("%w: amount must be positive, got %d", ErrInvalidTransaction, tx.Amount)
	}

	if tx.Fee <= 0 {
		return fmt.Errorf("%w: fee must be positive, got %d", ErrInvalidTransaction, tx.Fee)
	}

	// The sender is debited amount plus fee in one step.
	if tx.Amount > math.MaxInt64-tx.Fee {
		return fmt.Errorf("%w: amount %d plus fee %d overflows", ErrInvalidTransaction, tx.Amount, tx.Fee)
	}

	return nil
}

// Sign uses the specified private key to sign the transaction and pack it
// into an envelope.
func (tx Tx) Sign(privateKey *ecdsa.PrivateKey) (SignedTx, error) {
	if tx.Sender != PublicKeyToAccountID(privateKey.PublicKey) {
		return SignedTx{}, fmt.Errorf("%w: sender is not the signing account", ErrInvalidTransaction)
	}

	envelope, err := signature.SignAndPack(tx, privateKey)
	if err != nil {
		return SignedTx{}, err
	}

	signedTx := SignedTx{
		Tx:       tx,
		Envelope: envelope,
	}

	return signedTx, nil
}

// String implements the fmt.Stringer interface for logging.
func (tx Tx) String() string {
	return fmt.Sprintf("%s->%s:%d+%d", tx.Sender.Short(), tx.Receiver.Short(), tx.Amount, tx.Fee)
}

// =============================================================================

// SignedTx is a transaction together with the envelope that proves the
// sender signed it. The envelope string is the identity of the transaction.
type SignedTx struct {
	Tx       Tx     `json:"tx"`
	Envelope string `json:"envelope"`
}

// VerifyTransaction unpacks a transaction envelope, checks the signature and
// that the signer is the sender.
func VerifyTransaction(envelope string) (SignedTx, error) {
	var tx Tx
	signer, err := signature.UnpackAndVerify(envelope, &tx)
	if err != nil {
		return SignedTx{}, err
	}

	if AccountID(signer) != tx.Sender {
		return SignedTx{}, signature.NewAuthenticationError("transaction is not signed by the sender")
	}

	if err := tx.Validate(); err != nil {
		return SignedTx{}, err
	}

	signedTx := SignedTx{
		Tx:       tx,
		Envelope: envelope,
	}

	return signedTx, nil
}

// Validate verifies the envelope and that it carries the same transaction
// as the one recorded next to it.
func (stx SignedTx) Validate() error {
	verified, err := VerifyTransaction(stx.Envelope)
	if err != nil {
		return err
	}

	if verified.Tx != stx.Tx {
		return fmt.Errorf("%w: envelope does not carry the recorded transaction", ErrInvalidTransaction)
	}

	return nil
}

// String implements the fmt.Stringer interface for logging.
func (stx SignedTx) String() string {
	return stx.Tx.String()
}
