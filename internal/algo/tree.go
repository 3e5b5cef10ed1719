package algo

import (
	"strconv"

	"github.com/roach88/algotrace/internal/trace"
)

// NullNode marks a missing child in a level-order tree input.
const NullNode = -999

// bstTree is the complete BST searched by BSTSearch, in level order:
//
//	      4
//	    /   \
//	   2     6
//	  / \   / \
//	 1   3 5   7
var bstTree = []int{4, 2, 6, 1, 3, 5, 7}

// drawTree puts every non-null node of a level-order tree on the overlay,
// with an edge from each node to its children.
func drawTree(s *trace.Step, tree, left, right []int) {
	for i, v := range tree {
		if v == NullNode {
			continue
		}
		s.Node(i, strconv.Itoa(v))
	}
	for i := range tree {
		if left[i] != nilIndex {
			s.Edge(i, left[i])
		}
		if right[i] != nilIndex {
			s.Edge(i, right[i])
		}
	}
}

// BSTSearch walks bstTree from the root looking for input[0].
func BSTSearch(w *trace.Writer, input []int) error {
	if len(input) < 1 {
		return inputErrorf("bst_search needs a target")
	}
	target := input[0]
	tree := append([]int(nil), bstTree...)
	n := len(tree)
	left := make([]int, n)
	right := make([]int, n)
	for i := range tree {
		left[i], right[i] = nilIndex, nilIndex
		if l := 2*i + 1; l < n {
			left[i] = l
		}
		if r := 2*i + 2; r < n {
			right[i] = r
		}
	}
	const structure = "TreeStructure"
	t := newTracer(w)

	t.step(func(s *trace.Step) {
		drawTree(s, tree, left, right)
		s.Array(structure, tree)
		s.Variable("target", target)
		s.Message("Initial BST")
	})

	for curr := 0; curr != nilIndex && !t.failed(); {
		val := tree[curr]
		t.step(func(s *trace.Step) {
			s.Array(structure, tree)
			s.Highlight(structure, curr)
			s.Variable("target", target)
			s.Messagef("Checking Node %d...", val)
		})

		if val == target {
			t.step(func(s *trace.Step) {
				s.Array(structure, tree)
				s.Highlight(structure, curr)
				s.Message("Target Found!")
			})
			return t.err
		}
		if target < val {
			curr = left[curr]
			t.step(func(s *trace.Step) {
				s.Array(structure, tree)
				s.Messagef("%d < %d, Moving Left", target, val)
			})
		} else {
			curr = right[curr]
			t.step(func(s *trace.Step) {
				s.Array(structure, tree)
				s.Messagef("%d > %d, Moving Right", target, val)
			})
		}
	}

	t.step(func(s *trace.Step) {
		s.Array(structure, tree)
		s.Message("Target not found in BST.")
	})
	return t.err
}

// BinaryTreeLevelOrder builds a tree from level-order input, where NullNode
// marks a missing child, and visits it breadth-first. Children are linked
// the way LeetCode reads its tree arrays: each dequeued parent takes the next
// two entries.
func BinaryTreeLevelOrder(w *trace.Writer, input []int) error {
	tree := append([]int(nil), input...)
	n := len(tree)
	left := make([]int, n)
	right := make([]int, n)
	for i := range tree {
		left[i], right[i] = nilIndex, nilIndex
	}
	if n > 0 && tree[0] != NullNode {
		parents := []int{0}
		for next := 1; len(parents) > 0 && next < n; {
			p := parents[0]
			parents = parents[1:]
			if tree[next] != NullNode {
				left[p] = next
				parents = append(parents, next)
			}
			next++
			if next < n {
				if tree[next] != NullNode {
					right[p] = next
					parents = append(parents, next)
				}
				next++
			}
		}
	}

	const structure = "TreeStructure"
	var queue, result []int
	queueValues := func() []int {
		out := make([]int, len(queue))
		for i, idx := range queue {
			out[i] = tree[idx]
		}
		return out
	}
	t := newTracer(w)

	if n > 0 && tree[0] != NullNode {
		queue = append(queue, 0)
	}
	t.step(func(s *trace.Step) {
		drawTree(s, tree, left, right)
		s.Array(structure, tree)
		s.Array("Queue", queueValues())
		s.Array("Result", result)
		if len(queue) == 0 {
			s.Message("Initial State: Empty Tree")
			return
		}
		s.Message("Initial State: Root pushed to Queue")
	})

	for len(queue) > 0 && !t.failed() {
		waiting := queueValues()
		curr := queue[0]
		queue = queue[1:]
		t.step(func(s *trace.Step) {
			s.Array(structure, tree)
			s.Array("Queue", waiting)
			s.Array("Result", result)
			s.Highlight(structure, curr)
			s.Highlight("Queue", 0)
			s.Messagef("Processing Node: %d", tree[curr])
		})

		result = append(result, tree[curr])
		if left[curr] != nilIndex {
			queue = append(queue, left[curr])
		}
		if right[curr] != nilIndex {
			queue = append(queue, right[curr])
		}
		t.step(func(s *trace.Step) {
			s.Array(structure, tree)
			s.Array("Queue", queueValues())
			s.Array("Result", result)
			s.Highlight("Result", len(result)-1)
			s.Message("Added children to Queue & Node to Result")
		})
	}

	t.step(func(s *trace.Step) {
		s.Array("Result", result)
		s.Message("Traversal Complete!")
	})
	return t.err
}
