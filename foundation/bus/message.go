package bus

import (
	"errors"
)

// Topic is the name of a channel on the bus.
type Topic string

// Set of topics nodes communicate over.
const (
	TopicIdentify       Topic = "IDENTIFY"
	TopicAddTransaction Topic = "ADD_TRANSACTION"
	TopicAddBlock       Topic = "ADD_BLOCK"
)

// Message is implemented by the closed set of variants that travel on the
// bus. Each variant belongs to exactly one topic.
type Message interface {
	Topic() Topic
	Validate() error
	sealed()
}

// =============================================================================

// IdentifyMsg announces a node to the other participants.
type IdentifyMsg struct {
	Identity string
	Name     string
}

// Topic returns the topic the message travels on.
func (IdentifyMsg) Topic() Topic { return TopicIdentify }

// Validate checks the message carries an identity.
func (m IdentifyMsg) Validate() error {
	if m.Identity == "" {
		return errors.New("missing identity")
	}
	return nil
}

func (IdentifyMsg) sealed() {}

// =============================================================================

// TransactionMsg carries a packed transaction envelope.
type TransactionMsg struct {
	Envelope string
}

// Topic returns the topic the message travels on.
func (TransactionMsg) Topic() Topic { return TopicAddTransaction }

// Validate checks the message carries an envelope.
func (m TransactionMsg) Validate() error {
	if m.Envelope == "" {
		return errors.New("missing transaction envelope")
	}
	return nil
}

func (TransactionMsg) sealed() {}

// =============================================================================

// BlockMsg carries a packed block envelope.
type BlockMsg struct {
	Envelope string
}

// Topic returns the topic the message travels on.
func (BlockMsg) Topic() Topic { return TopicAddBlock }

// Validate checks the message carries an envelope.
func (m BlockMsg) Validate() error {
	if m.Envelope == "" {
		return errors.New("missing block envelope")
	}
	return nil
}

func (BlockMsg) sealed() {}
