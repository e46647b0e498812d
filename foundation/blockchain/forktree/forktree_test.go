package forktree_test

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/ardanlabs/forkchain/foundation/blockchain/forktree"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

type block struct {
	ID       string
	ParentID string
}

func newTree() *forktree.Tree[block] {
	return forktree.New("G", block{ID: "G", ParentID: "G"})
}

func insert(t *forktree.Tree[block], parent string, id string) bool {
	return t.Insert(parent, id, block{ID: id, ParentID: parent})
}

// =============================================================================

func TestInsert(t *testing.T) {
	tree := newTree()

	if !insert(tree, "G", "A") {
		t.Fatalf("\t%s\tShould be able to insert below the root.", failed)
	}
	t.Logf("\t%s\tShould be able to insert below the root.", success)

	if insert(tree, "missing", "B") {
		t.Fatalf("\t%s\tShould drop a node with an unknown parent.", failed)
	}
	t.Logf("\t%s\tShould drop a node with an unknown parent.", success)

	if insert(tree, "G", "A") {
		t.Fatalf("\t%s\tShould refuse a duplicate key.", failed)
	}
	t.Logf("\t%s\tShould refuse a duplicate key.", success)

	if tree.Len() != 2 {
		t.Fatalf("\t%s\tShould have two nodes, got %d.", failed, tree.Len())
	}

	parent, ok := tree.Parent("A")
	if !ok || parent.Key != "G" {
		t.Fatalf("\t%s\tShould find the parent of A.", failed)
	}

	if _, ok := tree.Parent("G"); ok {
		t.Fatalf("\t%s\tShould not find a parent for the root.", failed)
	}
	t.Logf("\t%s\tShould navigate parent references.", success)
}

func TestLongestChain(t *testing.T) {
	tree := newTree()

	// G - A - B - C
	//   \ D - E
	insert(tree, "G", "A")
	insert(tree, "A", "B")
	insert(tree, "G", "D")
	insert(tree, "D", "E")
	insert(tree, "B", "C")

	node, length := tree.LongestBranch()
	if node.Key != "C" || length != 3 {
		t.Logf("\t%s\tgot: %s %d", failed, node.Key, length)
		t.Logf("\t%s\texp: C 3", failed)
		t.Fatalf("\t%s\tShould find the longest branch.", failed)
	}
	t.Logf("\t%s\tShould find the longest branch.", success)

	chain := tree.LongestChain()
	exp := []string{"G", "A", "B", "C"}
	if len(chain) != len(exp) {
		t.Fatalf("\t%s\tShould get a chain of %d blocks, got %d.", failed, len(exp), len(chain))
	}
	for i := range exp {
		if chain[i].ID != exp[i] {
			t.Fatalf("\t%s\tShould get %s at position %d, got %s.", failed, exp[i], i, chain[i].ID)
		}
	}
	t.Logf("\t%s\tShould get the chain in root first order.", success)
}

func TestTieBreak(t *testing.T) {
	tree := newTree()

	insert(tree, "G", "first")
	insert(tree, "G", "second")

	node, length := tree.LongestBranch()
	if node.Key != "first" || length != 1 {
		t.Fatalf("\t%s\tShould pick the first inserted branch on a tie, got %s.", failed, node.Key)
	}
	t.Logf("\t%s\tShould pick the first inserted branch on a tie.", success)

	insert(tree, "second", "third")

	node, _ = tree.LongestBranch()
	if node.Key != "third" {
		t.Fatalf("\t%s\tShould switch to a strictly longer branch, got %s.", failed, node.Key)
	}
	t.Logf("\t%s\tShould switch to a strictly longer branch.", success)

	single := newTree()
	if node, length := single.LongestBranch(); node.Key != "G" || length != 0 {
		t.Fatalf("\t%s\tShould return the root for an empty tree.", failed)
	}
	t.Logf("\t%s\tShould return the root for an empty tree.", success)
}

func TestRandomInserts(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))

	for run := 0; run < 20; run++ {
		tree := newTree()
		keys := []string{"G"}
		depth := map[string]int{"G": 0}
		maxDepth := 0

		for i := 0; i < 200; i++ {
			parent := keys[rnd.Intn(len(keys))]

			// Occasionally reference a block that was never seen.
			if rnd.Intn(10) == 0 {
				parent = "unknown"
			}

			key := fmt.Sprintf("%d-%d", run, i)
			if !insert(tree, parent, key) {
				continue
			}

			keys = append(keys, key)
			depth[key] = depth[parent] + 1
			if depth[key] > maxDepth {
				maxDepth = depth[key]
			}
		}

		chain := tree.LongestChain()
		if len(chain) != maxDepth+1 {
			t.Logf("\t%s\tRun %d:\tgot: %d", failed, run, len(chain))
			t.Logf("\t%s\tRun %d:\texp: %d", failed, run, maxDepth+1)
			t.Fatalf("\t%s\tRun %d:\tShould get a chain as long as the deepest node.", failed, run)
		}

		if chain[0].ID != "G" {
			t.Fatalf("\t%s\tRun %d:\tShould start the chain at the root.", failed, run)
		}

		for i := 1; i < len(chain); i++ {
			if chain[i].ParentID != chain[i-1].ID {
				t.Fatalf("\t%s\tRun %d:\tShould link %s to its parent %s.", failed, run, chain[i].ID, chain[i-1].ID)
			}
		}
	}
	t.Logf("\t%s\tShould keep the longest chain property for random inserts.", success)
}

func TestWalk(t *testing.T) {
	tree := newTree()

	insert(tree, "G", "A")
	insert(tree, "G", "B")
	insert(tree, "A", "C")

	var order []string
	parents := make(map[string]string)
	tree.Walk(func(node forktree.Node[block], parentKey string) {
		order = append(order, node.Key)
		parents[node.Key] = parentKey
	})

	exp := []string{"G", "A", "C", "B"}
	if fmt.Sprint(order) != fmt.Sprint(exp) {
		t.Logf("\t%s\tgot: %v", failed, order)
		t.Logf("\t%s\texp: %v", failed, exp)
		t.Fatalf("\t%s\tShould visit the nodes depth first.", failed)
	}
	t.Logf("\t%s\tShould visit the nodes depth first.", success)

	if parents["C"] != "A" || parents["G"] != "G" {
		t.Fatalf("\t%s\tShould report the parent of every node.", failed)
	}
	t.Logf("\t%s\tShould report the parent of every node.", success)

	children := tree.Children("G")
	if len(children) != 2 || children[0].Key != "A" || children[1].Key != "B" {
		t.Fatalf("\t%s\tShould return the children in insertion order.", failed)
	}
	t.Logf("\t%s\tShould return the children in insertion order.", success)
}
