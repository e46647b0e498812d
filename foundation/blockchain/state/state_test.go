package state_test

import (
	"errors"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ardanlabs/forkchain/foundation/blockchain/database"
	"github.com/ardanlabs/forkchain/foundation/blockchain/genesis"
	"github.com/ardanlabs/forkchain/foundation/blockchain/signature"
	"github.com/ardanlabs/forkchain/foundation/blockchain/state"
	"github.com/ethereum/go-ethereum/crypto"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

const (
	minerHexKey    = "8dc79feefd3b86e2f9991def0e5ccd9a5128e104682407b308594bc1032ac7f0"
	senderHexKey   = "fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959"
	receiverHexKey = "aed31b6b5a341af8f27e66fb0b7633cf20fc27049e3eb7f6f623a4655b719ebb"
)

// alternatingClock returns the start plus two seconds on the first two calls,
// plus four seconds on the next two and so on. Mining one block per call
// alternates slow and fast gaps, so difficulty swings between one and zero
// and every candidate is solved.
func alternatingClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	var n int64

	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()

		n++
		return start.Add(time.Duration((n+1)/2) * 2 * time.Second)
	}
}

func newState(t *testing.T, gen genesis.Genesis) *state.State {
	t.Helper()

	s, err := state.New(state.Config{
		Genesis: gen,
		Now:     alternatingClock(gen.Date),
	})
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct the engine: %s", failed, err)
	}

	return s
}

func account(t *testing.T, hexKey string) database.AccountID {
	t.Helper()

	pk, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		t.Fatalf("Should be able to load the key: %s", err)
	}

	return database.PublicKeyToAccountID(pk.PublicKey)
}

func signTx(t *testing.T, amount int64, fee int64) database.SignedTx {
	t.Helper()

	pk, err := crypto.HexToECDSA(senderHexKey)
	if err != nil {
		t.Fatalf("Should be able to load the key: %s", err)
	}

	tx, err := database.NewTx(database.PublicKeyToAccountID(pk.PublicKey), account(t, receiverHexKey), amount, fee)
	if err != nil {
		t.Fatalf("Should be able to construct a transaction: %s", err)
	}

	stx, err := tx.Sign(pk)
	if err != nil {
		t.Fatalf("Should be able to sign the transaction: %s", err)
	}

	return stx
}

func mine(t *testing.T, s *state.State, miner database.AccountID, txs []database.SignedTx) string {
	t.Helper()

	envelope, err := s.CreateCandidate(miner, txs)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to create a candidate: %s", failed, err)
	}

	return envelope
}

func admit(t *testing.T, s *state.State, envelope string) database.Block {
	t.Helper()

	block, err := s.Admit(envelope)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to admit the block: %s", failed, err)
	}

	return block
}

// =============================================================================

func TestCreateAndAdmit(t *testing.T) {
	gen := genesis.Default()
	s := newState(t, gen)
	miner := account(t, minerHexKey)
	stx := signTx(t, 100, 1)

	t.Log("Given the need to mine and admit a block.")
	{
		block := admit(t, s, mine(t, s, miner, []database.SignedTx{stx}))
		t.Logf("\t%s\tShould be able to mine and admit a block.", success)

		if block.Index != 1 || block.ParentID != gen.ID || block.Reward != gen.InitialReward || block.Difficulty != gen.Difficulty {
			t.Fatalf("\t%s\tShould build the block on top of genesis: %+v", failed, block)
		}
		t.Logf("\t%s\tShould build the block on top of genesis.", success)

		chain := s.Chain()
		if len(chain) != 2 || chain[0].ID != gen.ID || chain[1].ID != block.ID {
			t.Fatalf("\t%s\tShould have a chain of two blocks, got %d.", failed, len(chain))
		}
		t.Logf("\t%s\tShould have a chain of two blocks.", success)

		if s.Head().ID != block.ID || !s.Contains(block.ID) {
			t.Fatalf("\t%s\tShould move the head to the new block.", failed)
		}
		t.Logf("\t%s\tShould move the head to the new block.", success)

		bal := s.Balances()
		exp := map[database.AccountID]int64{
			database.AccountID(gen.Miner): 1024,
			miner:                         1024 + 1,
			stx.Tx.Sender:                 -101,
			stx.Tx.Receiver:               100,
		}
		for acct, v := range exp {
			if bal[acct] != v {
				t.Logf("\t%s\tgot: %d", failed, bal[acct])
				t.Logf("\t%s\texp: %d", failed, v)
				t.Fatalf("\t%s\tShould have the right balance for %s.", failed, acct.Short())
			}
		}
		t.Logf("\t%s\tShould replay the chain into balances.", success)

		if bal.Total() != 2048 {
			t.Fatalf("\t%s\tShould conserve the supply, got %d.", failed, bal.Total())
		}
		t.Logf("\t%s\tShould conserve the supply.", success)
	}
}

func TestAdmitDuplicate(t *testing.T) {
	s := newState(t, genesis.Default())
	miner := account(t, minerHexKey)

	envelope := mine(t, s, miner, []database.SignedTx{signTx(t, 100, 1)})
	admit(t, s, envelope)

	before := s.Balances()
	known := s.KnownBlocks()

	if _, err := s.Admit(envelope); !errors.Is(err, state.ErrDuplicateBlock) {
		t.Fatalf("\t%s\tShould reject the same block twice: %v", failed, err)
	}
	t.Logf("\t%s\tShould reject the same block twice.", success)

	if s.KnownBlocks() != known {
		t.Fatalf("\t%s\tShould not add a duplicate node.", failed)
	}

	after := s.Balances()
	for acct, v := range before {
		if after[acct] != v {
			t.Fatalf("\t%s\tShould not double count balances for %s.", failed, acct.Short())
		}
	}
	t.Logf("\t%s\tShould leave the tree and balances unchanged.", success)
}

func TestAdmitUnknownParent(t *testing.T) {
	gen := genesis.Default()
	a := newState(t, gen)
	b := newState(t, gen)
	miner := account(t, minerHexKey)

	admit(t, a, mine(t, a, miner, nil))
	second := mine(t, a, miner, nil)

	if _, err := b.Admit(second); !errors.Is(err, database.ErrUnknownParent) {
		t.Fatalf("\t%s\tShould reject a block with an unseen parent: %v", failed, err)
	}
	t.Logf("\t%s\tShould reject a block with an unseen parent.", success)

	if b.KnownBlocks() != 1 {
		t.Fatalf("\t%s\tShould leave the tree unchanged.", failed)
	}
	t.Logf("\t%s\tShould leave the tree unchanged.", success)
}

func TestAdmitDuplicateTransaction(t *testing.T) {
	gen := genesis.Default()
	miner := account(t, minerHexKey)
	stx := signTx(t, 100, 1)

	t.Run("withinblock", func(t *testing.T) {
		s := newState(t, gen)

		block := database.Block{
			ID:           "twice",
			ParentID:     gen.ID,
			MinerID:      miner,
			Index:        1,
			CreatedAt:    gen.Date.UnixMilli(),
			Transactions: []database.SignedTx{stx, stx},
			Difficulty:   gen.Difficulty,
			Reward:       gen.InitialReward,
		}

		envelope, _, err := block.Pack()
		if err != nil {
			t.Fatalf("\t%s\tShould be able to pack the block: %s", failed, err)
		}

		if _, err := s.Admit(envelope); !errors.Is(err, state.ErrDuplicateTransaction) {
			t.Fatalf("\t%s\tShould reject a block carrying a transaction twice: %v", failed, err)
		}
		if s.KnownBlocks() != 1 {
			t.Fatalf("\t%s\tShould leave the tree unchanged.", failed)
		}
		t.Logf("\t%s\tShould reject a block carrying a transaction twice.", success)
	})

	t.Run("ancestry", func(t *testing.T) {
		s := newState(t, gen)

		first := admit(t, s, mine(t, s, miner, []database.SignedTx{stx}))
		root, _ := s.QueryBlock(gen.ID)

		block := database.Block{
			ParentID:     first.ID,
			MinerID:      miner,
			Index:        first.Index + 1,
			CreatedAt:    first.CreatedAt + 1,
			Transactions: []database.SignedTx{stx},
			Difficulty:   database.NextDifficulty(first, &root, gen.BlockTime()),
			Reward:       database.NextReward(first, gen.RewardHalvingSchedule),
		}

		// Find a fingerprint that passes the expected difficulty.
		var envelope string
		for i := 0; ; i++ {
			block.ID = "replay-" + string(rune('a'+i%26)) + strings.Repeat("x", i/26)

			env, digest, err := block.Pack()
			if err != nil {
				t.Fatalf("\t%s\tShould be able to pack the block: %s", failed, err)
			}

			if solved, _ := block.IsSolved(digest); solved {
				envelope = env
				break
			}
		}

		if _, err := s.Admit(envelope); !errors.Is(err, state.ErrDuplicateTransaction) {
			t.Fatalf("\t%s\tShould reject a block repeating a transaction of its ancestry: %v", failed, err)
		}
		if s.KnownBlocks() != 2 {
			t.Fatalf("\t%s\tShould leave the tree unchanged.", failed)
		}
		t.Logf("\t%s\tShould reject a block repeating a transaction of its ancestry.", success)

		// A candidate on the same head leaves the included transaction out.
		next := admit(t, s, mine(t, s, miner, []database.SignedTx{stx, signTx(t, 50, 1)}))
		if len(next.Transactions) != 1 || next.Transactions[0].Tx.Amount != 50 {
			t.Fatalf("\t%s\tShould leave an included transaction out of a candidate: txs[%d]", failed, len(next.Transactions))
		}
		t.Logf("\t%s\tShould leave an included transaction out of a candidate.", success)

		if bal := s.Balances(); bal[stx.Tx.Sender] != -101-51 {
			t.Fatalf("\t%s\tShould debit the sender once per transaction: got %d", failed, bal[stx.Tx.Sender])
		}
		t.Logf("\t%s\tShould debit the sender once per transaction.", success)
	})
}

func TestAdmitRejected(t *testing.T) {
	gen := genesis.Default()
	miner := account(t, minerHexKey)

	t.Run("difficulty", func(t *testing.T) {
		s := newState(t, gen)

		// Find a fingerprint that fails a declared difficulty of seven.
		block := database.Block{
			ParentID:     gen.ID,
			MinerID:      miner,
			Index:        1,
			CreatedAt:    gen.Date.UnixMilli(),
			Transactions: []database.SignedTx{},
			Difficulty:   7,
			Reward:       gen.InitialReward,
		}

		var envelope string
		for i := 0; ; i++ {
			block.ID = "liar-" + string(rune('a'+i%26)) + strings.Repeat("x", i/26)

			env, digest, err := block.Pack()
			if err != nil {
				t.Fatalf("\t%s\tShould be able to pack the block: %s", failed, err)
			}

			if solved, _ := block.IsSolved(digest); !solved {
				envelope = env
				break
			}
		}

		if _, err := s.Admit(envelope); !errors.Is(err, database.ErrInvalidDifficulty) {
			t.Fatalf("\t%s\tShould reject a block failing its declared difficulty: %v", failed, err)
		}
		t.Logf("\t%s\tShould reject a block failing its declared difficulty.", success)
	})

	t.Run("retarget", func(t *testing.T) {
		s := newState(t, gen)

		block := database.Block{
			ID:           "zero",
			ParentID:     gen.ID,
			MinerID:      miner,
			Index:        1,
			CreatedAt:    gen.Date.UnixMilli(),
			Transactions: []database.SignedTx{},
			Difficulty:   0,
			Reward:       gen.InitialReward,
		}

		envelope, _, err := block.Pack()
		if err != nil {
			t.Fatalf("\t%s\tShould be able to pack the block: %s", failed, err)
		}

		if _, err := s.Admit(envelope); !errors.Is(err, database.ErrInvalidDifficulty) {
			t.Fatalf("\t%s\tShould reject a difficulty that does not follow the parent: %v", failed, err)
		}
		t.Logf("\t%s\tShould reject a difficulty that does not follow the parent.", success)
	})

	t.Run("reward", func(t *testing.T) {
		s := newState(t, gen)

		block := database.Block{
			ID:           "greedy",
			ParentID:     gen.ID,
			MinerID:      miner,
			Index:        1,
			CreatedAt:    gen.Date.UnixMilli(),
			Transactions: []database.SignedTx{},
			Difficulty:   gen.Difficulty,
			Reward:       1_000_000,
		}

		envelope, _, err := block.Pack()
		if err != nil {
			t.Fatalf("\t%s\tShould be able to pack the block: %s", failed, err)
		}

		if _, err := s.Admit(envelope); !errors.Is(err, state.ErrInvalidReward) {
			t.Fatalf("\t%s\tShould reject an inflated reward: %v", failed, err)
		}
		t.Logf("\t%s\tShould reject an inflated reward.", success)
	})

	t.Run("index", func(t *testing.T) {
		s := newState(t, gen)

		block := database.Block{
			ID:           "skip",
			ParentID:     gen.ID,
			MinerID:      miner,
			Index:        5,
			CreatedAt:    gen.Date.UnixMilli(),
			Transactions: []database.SignedTx{},
			Difficulty:   gen.Difficulty,
			Reward:       gen.InitialReward,
		}

		envelope, _, err := block.Pack()
		if err != nil {
			t.Fatalf("\t%s\tShould be able to pack the block: %s", failed, err)
		}

		if _, err := s.Admit(envelope); !errors.Is(err, state.ErrInvalidIndex) {
			t.Fatalf("\t%s\tShould reject an index that skips ahead: %v", failed, err)
		}
		t.Logf("\t%s\tShould reject an index that skips ahead.", success)
	})

	t.Run("tampered", func(t *testing.T) {
		s := newState(t, gen)

		envelope := mine(t, s, miner, nil)
		block, digest, err := database.UnpackBlock(envelope)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to unpack the block: %s", failed, err)
		}

		block.Reward = 1_000_000
		forged, err := signature.Pack(block, signature.NotaryIdentity(), digest)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to pack the forged block: %s", failed, err)
		}

		if _, err := s.Admit(forged); !signature.IsAuthenticationError(err) {
			t.Fatalf("\t%s\tShould reject a block changed after fingerprinting: %v", failed, err)
		}
		t.Logf("\t%s\tShould reject a block changed after fingerprinting.", success)

		if _, err := s.Admit("garbage"); !signature.IsDecodingError(err) {
			t.Fatalf("\t%s\tShould reject a malformed envelope: %v", failed, err)
		}
		t.Logf("\t%s\tShould reject a malformed envelope.", success)
	})

	t.Run("toolarge", func(t *testing.T) {
		s := newState(t, gen)

		txs := make([]database.SignedTx, gen.TransPerBlock+1)
		for i := range txs {
			txs[i] = signTx(t, int64(i+1), 1)
		}

		if _, err := s.Admit(mine(t, s, miner, txs)); !errors.Is(err, state.ErrBlockTooLarge) {
			t.Fatalf("\t%s\tShould reject a block over the size limit: %v", failed, err)
		}
		t.Logf("\t%s\tShould reject a block over the size limit.", success)
	})

	t.Run("notsolved", func(t *testing.T) {
		hard := gen
		hard.Difficulty = math.MaxInt64
		s := newState(t, hard)

		if _, err := s.CreateCandidate(miner, nil); !errors.Is(err, state.ErrNotSolved) {
			t.Fatalf("\t%s\tShould not solve an impossible difficulty: %v", failed, err)
		}
		t.Logf("\t%s\tShould not solve an impossible difficulty.", success)
	})
}

func TestForkChoice(t *testing.T) {
	gen := genesis.Default()
	a := newState(t, gen)
	b := newState(t, gen)
	miner := account(t, minerHexKey)
	other := account(t, receiverHexKey)

	t.Log("Given two engines that saw competing blocks in a different order.")
	{
		envA := mine(t, a, miner, nil)
		envB := mine(t, b, other, nil)

		blkA := admit(t, a, envA)
		admit(t, a, envB)

		blkB := admit(t, b, envB)
		admit(t, b, envA)

		if a.Head().ID != blkA.ID || b.Head().ID != blkB.ID {
			t.Fatalf("\t%s\tShould keep the first branch seen on a tie.", failed)
		}
		t.Logf("\t%s\tShould keep the first branch seen on a tie.", success)

		if a.KnownBlocks() != 3 || b.KnownBlocks() != 3 {
			t.Fatalf("\t%s\tShould keep both branches in the tree.", failed)
		}
		t.Logf("\t%s\tShould keep both branches in the tree.", success)

		// Extending A's branch resolves the fork for both engines.
		envA2 := mine(t, a, miner, nil)
		blkA2 := admit(t, a, envA2)
		admit(t, b, envA2)

		if a.Head().ID != blkA2.ID || b.Head().ID != blkA2.ID {
			t.Fatalf("\t%s\tShould switch to the longer branch.", failed)
		}
		t.Logf("\t%s\tShould switch to the longer branch.", success)

		balA, balB := a.Balances(), b.Balances()
		if balA[miner] != 2048 || balB[miner] != 2048 || balB[other] != 0 {
			t.Logf("\t%s\tgot: %d %d %d", failed, balA[miner], balB[miner], balB[other])
			t.Fatalf("\t%s\tShould agree on balances from the same chain.", failed)
		}
		t.Logf("\t%s\tShould agree on balances from the same chain.", success)

		text := b.TreeText()
		for _, id := range []string{blkA.ID[:8], blkB.ID[:8], blkA2.ID[:8], gen.ID} {
			if !strings.Contains(text, id) {
				t.Logf("\t%s\ttree:\n%s", failed, text)
				t.Fatalf("\t%s\tShould render block %s in the tree.", failed, id)
			}
		}
		t.Logf("\t%s\tShould render every branch in the tree.", success)
	}
}

func TestStats(t *testing.T) {
	gen := genesis.Default()
	s := newState(t, gen)
	miner := account(t, minerHexKey)

	stats := s.Stats()
	if stats.TotalBlocks != 1 || stats.AvgBlockTime != 0 || stats.Reward != gen.InitialReward {
		t.Fatalf("\t%s\tShould report the genesis block only: %+v", failed, stats)
	}
	t.Logf("\t%s\tShould report the genesis block only.", success)

	// Gaps of two seconds and zero seconds.
	admit(t, s, mine(t, s, miner, nil))
	admit(t, s, mine(t, s, miner, nil))

	stats = s.Stats()
	if stats.TotalBlocks != 3 || stats.KnownBlocks != 3 {
		t.Fatalf("\t%s\tShould count three blocks: %+v", failed, stats)
	}

	if stats.AvgBlockTime != time.Second {
		t.Logf("\t%s\tgot: %v", failed, stats.AvgBlockTime)
		t.Logf("\t%s\texp: %v", failed, time.Second)
		t.Fatalf("\t%s\tShould average the block gaps.", failed)
	}

	if stats.Difficulty != 0 {
		t.Fatalf("\t%s\tShould lower the difficulty after a slow block, got %d.", failed, stats.Difficulty)
	}
	t.Logf("\t%s\tShould report the chain statistics.", success)
}

func TestConcurrentAccess(t *testing.T) {
	gen := genesis.Default()
	s := newState(t, gen)
	miner := account(t, minerHexKey)

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < 10; i++ {
			envelope, err := s.CreateCandidate(miner, nil)
			if err != nil {
				continue
			}
			s.Admit(envelope)
		}
	}()

	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			s.Balances()
			s.Stats()
		}
	}()

	wg.Wait()

	chain := s.Chain()
	for i := 1; i < len(chain); i++ {
		if chain[i].ParentID != chain[i-1].ID {
			t.Fatalf("\t%s\tShould keep the chain linked.", failed)
		}
	}
	t.Logf("\t%s\tShould keep the chain linked under concurrent access.", success)
}
