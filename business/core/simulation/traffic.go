package simulation

import (
	"context"
	"math/rand"
	"time"

	"github.com/ardanlabs/forkchain/foundation/blockchain/database"
)

// SendRandom makes one attempt at a random payment between two nodes. The
// sender is a random node that has not sent anything since the chain last
// grew. The receiver is a random other node and the amount is up to half
// the sender's balance. It reports whether a transaction was sent.
func (s *Simulation) SendRandom(rng *rand.Rand) (database.SignedTx, bool, error) {
	if len(s.nodes) < 2 {
		return database.SignedTx{}, false, nil
	}

	sender := s.nodes[rng.Intn(len(s.nodes))]

	// Everybody is allowed one pending send per chain height.
	chain := sender.BlockchainView()
	s.mu.Lock()
	if top := uint64(len(chain)); top > s.height {
		s.height = top
		s.sent = make(map[database.AccountID]bool)
	}
	if s.sent[sender.Identity()] {
		s.mu.Unlock()
		return database.SignedTx{}, false, nil
	}
	s.sent[sender.Identity()] = true
	s.mu.Unlock()

	receiver := sender
	for receiver == sender {
		receiver = s.nodes[rng.Intn(len(s.nodes))]
	}

	balance := sender.PublicBalances()[sender.Identity()]
	half := balance / 2
	if half < 1 {
		return database.SignedTx{}, false, nil
	}

	amount := 1 + rng.Int63n(half)
	fee := rng.Int63n(amount*3/100 + 1)
	if fee < 1 {
		fee = 1
	}

	stx, err := sender.Send(receiver.Identity(), amount, fee)
	if err != nil {
		return database.SignedTx{}, false, err
	}

	return stx, true, nil
}

// Traffic makes a random payment attempt every interval until the context
// is cancelled.
func (s *Simulation) Traffic(ctx context.Context, interval time.Duration) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.ev("simulation", "simulation: Traffic: started: interval[%v]", interval)
	defer s.ev("simulation", "simulation: Traffic: completed")

	for {
		select {
		case <-ticker.C:
			if _, _, err := s.SendRandom(rng); err != nil {
				s.ev("simulation", "simulation: Traffic: ERROR: %s", err)
			}
		case <-ctx.Done():
			return
		}
	}
}
