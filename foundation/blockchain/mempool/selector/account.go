package selector

import (
	"sort"

	"github.com/ardanlabs/forkchain/foundation/blockchain/database"
)

// accountSelect returns transactions with the best fee while respecting the
// arrival order of each sender's transactions.
var accountSelect = func(entries []Entry, howMany int) []database.SignedTx {
	if howMany < 0 {
		howMany = len(entries)
	}

	/*
		Bill: {Seq: 4, Fee: 250}, {Seq: 1, Fee: 150}
		Pavl: {Seq: 5, Fee: 200}, {Seq: 2, Fee: 75}
		Edua: {Seq: 6, Fee: 75},  {Seq: 3, Fee: 100}
	*/

	// Group the transactions by sender and sort each group by arrival.
	sort.Sort(bySeq(entries))

	var senders []database.AccountID
	m := make(map[database.AccountID][]Entry)
	for _, e := range entries {
		sender := e.Tx.Tx.Sender
		if _, exists := m[sender]; !exists {
			senders = append(senders, sender)
		}
		m[sender] = append(m[sender], e)
	}

	/*
		Bill: {Seq: 1, Fee: 150}, {Seq: 4, Fee: 250}
		Pavl: {Seq: 2, Fee: 75},  {Seq: 5, Fee: 200}
		Edua: {Seq: 3, Fee: 100}, {Seq: 6, Fee: 75}
	*/

	// Pick the first transaction for each sender. Each iteration represents
	// a new row of selections. Keep doing that until all the transactions
	// have been selected.
	var rows [][]Entry
	for {
		var row []Entry
		for _, sender := range senders {
			if len(m[sender]) > 0 {
				row = append(row, m[sender][0])
				m[sender] = m[sender][1:]
			}
		}
		if row == nil {
			break
		}
		rows = append(rows, row)
	}

	/*
		0: Bill: {Seq: 1, Fee: 150}
		0: Pavl: {Seq: 2, Fee: 75}
		0: Edua: {Seq: 3, Fee: 100}
		1: Bill: {Seq: 4, Fee: 250}
		1: Pavl: {Seq: 5, Fee: 200}
		1: Edua: {Seq: 6, Fee: 75}
	*/

	// Sort each row by fee unless we will take all transactions from that row
	// anyway. Keep pulling transactions from each row until the amount is
	// fulfilled or there are no more transactions.
	final := []database.SignedTx{}
	for _, row := range rows {
		need := howMany - len(final)
		if len(row) >= need {
			sort.Sort(byFee(row))
			final = append(final, take(row, need)...)
			break
		}
		final = append(final, take(row, -1)...)
	}

	/*
		0: Bill: {Seq: 1, Fee: 150}
		1: Pavl: {Seq: 2, Fee: 75}
		2: Edua: {Seq: 3, Fee: 100}
		3: Bill: {Seq: 4, Fee: 250}
	*/

	return final
}
