package algo

import (
	"fmt"
	"strings"

	"github.com/roach88/algotrace/internal/trace"
)

// nilIndex stands for a null pointer in index-linked structures.
const nilIndex = -1

// ReverseLinkedList reverses a list stored as values plus next-indices.
func ReverseLinkedList(w *trace.Writer, input []int) error {
	if len(input) == 0 {
		return inputErrorf("reverse_linked_list needs at least one value")
	}
	values := append([]int(nil), input...)
	n := len(values)
	next := make([]int, n)
	for i := range next {
		next[i] = i + 1
	}
	next[n-1] = nilIndex
	t := newTracer(w)

	t.step(func(s *trace.Step) {
		s.Array("Values", values)
		s.Array("NextPtrs", next)
		s.Messagef("Initial State: Linked List %s", describeList(values))
	})

	prev, curr := nilIndex, 0
	for curr != nilIndex && !t.failed() {
		saved := next[curr]
		pointers := func(s *trace.Step) {
			s.Array("Values", values)
			s.Array("NextPtrs", next)
			if prev != nilIndex {
				s.Highlight("Prev", prev)
			}
			s.Highlight("Curr", curr)
		}
		t.step(func(s *trace.Step) {
			pointers(s)
			savedValue := nilIndex
			if saved != nilIndex {
				savedValue = values[saved]
			}
			s.Messagef("Processing Node %d. Saving Next (%d).", values[curr], savedValue)
		})

		next[curr] = prev
		t.step(func(s *trace.Step) {
			pointers(s)
			target := "Prev"
			if prev == nilIndex {
				target = "NULL"
			}
			s.Messagef("Reversed pointer: Node %d -> %s", values[curr], target)
		})

		prev, curr = curr, saved
	}

	t.step(func(s *trace.Step) {
		s.Array("Values", values)
		s.Array("NextPtrs", next)
		s.Highlight("Head", prev)
		s.Message("List Reversed! New Head is at the end.")
	})
	return t.err
}

func describeList(values []int) string {
	var b strings.Builder
	for _, v := range values {
		fmt.Fprintf(&b, "%d -> ", v)
	}
	b.WriteString("NULL")
	return b.String()
}

// bfsGraph is the fixed undirected graph the BFS walk runs on.
var bfsGraph = [][]int{
	{0, 1, 1, 0, 0},
	{1, 0, 0, 1, 0},
	{1, 0, 0, 1, 1},
	{0, 1, 1, 0, 1},
	{0, 0, 1, 1, 0},
}

// BFSGraph walks bfsGraph breadth-first from input[0]. The graph itself is
// drawn on the overlay; the Visited and Queue arrays change per step.
func BFSGraph(w *trace.Writer, input []int) error {
	start := 0
	if len(input) > 0 {
		start = input[0]
	}
	n := len(bfsGraph)
	if start < 0 || start >= n {
		return inputErrorf("bfs_graph start vertex must be in [0, %d), got %d", n, start)
	}
	visited := make([]int, n)
	var queue []int
	t := newTracer(w)

	t.step(func(s *trace.Step) {
		for u := 0; u < n; u++ {
			s.Node(u, fmt.Sprintf("%d", u))
			for v := 0; v < n; v++ {
				if bfsGraph[u][v] == 1 {
					s.Edge(u, v)
				}
			}
		}
		s.Array("Visited", visited)
		s.Array("Queue", queue)
		s.Messagef("Initial State: Graph BFS starting from Node %d", start)
	})

	visited[start] = 1
	queue = append(queue, start)

	for len(queue) > 0 && !t.failed() {
		curr := queue[0]
		queue = queue[1:]
		t.step(func(s *trace.Step) {
			s.Array("Visited", visited)
			s.Array("Queue", queue)
			s.Highlight("Visited", curr)
			s.Variable("current", curr)
			s.Messagef("Visiting Node %d", curr)
		})

		for v := 0; v < n; v++ {
			if bfsGraph[curr][v] != 1 || visited[v] == 1 {
				continue
			}
			visited[v] = 1
			queue = append(queue, v)
			t.step(func(s *trace.Step) {
				s.Array("Visited", visited)
				s.Array("Queue", queue)
				s.Highlight("Visited", v)
				s.Variable("current", curr)
				s.Messagef("Found neighbor %d. Added to Queue.", v)
			})
		}
	}

	t.step(func(s *trace.Step) {
		s.Array("Visited", visited)
		s.Message("BFS Traversal Complete.")
	})
	return t.err
}

// links returns next and prev indices chaining n nodes in order.
func links(n int) (next, prev []int) {
	next = make([]int, n)
	prev = make([]int, n)
	for i := 0; i < n; i++ {
		next[i], prev[i] = i+1, i-1
	}
	if n > 0 {
		next[n-1] = nilIndex
	}
	return next, prev
}

// StackLinkedList pushes every input value onto a linked stack, then pops it
// empty. Nodes are allocated in push order, so the top is always the last
// index.
func StackLinkedList(w *trace.Writer, input []int) error {
	values := make([]int, 0, len(input))
	next := make([]int, 0, len(input))
	head := nilIndex
	t := newTracer(w)

	nodes := func(s *trace.Step) {
		s.Array("Values", values)
		s.Array("NextPtrs", next)
		if head != nilIndex {
			s.Highlight("Top", head)
		}
	}
	t.step(func(s *trace.Step) {
		nodes(s)
		s.Message("Initial State: Empty Stack")
	})

	for i := 0; i < len(input) && !t.failed(); i++ {
		v := input[i]
		values = append(values, v)
		next = append(next, head)
		head = len(values) - 1
		t.step(func(s *trace.Step) {
			nodes(s)
			s.Messagef("Push(%d): New Top is Node %d", v, v)
		})
	}

	for head != nilIndex && !t.failed() {
		popped := values[head]
		head = next[head]
		values = values[:len(values)-1]
		next = next[:len(next)-1]
		t.step(func(s *trace.Step) {
			nodes(s)
			s.Messagef("Pop(): Removed %d", popped)
		})
	}

	t.step(func(s *trace.Step) {
		nodes(s)
		s.Message("Stack is empty.")
	})
	return t.err
}

// QueueLinkedList enqueues every input value at the tail, then dequeues from
// the head until empty. After a dequeue the remaining nodes are renumbered
// from zero.
func QueueLinkedList(w *trace.Writer, input []int) error {
	var values, next []int
	t := newTracer(w)

	nodes := func(s *trace.Step) {
		s.Array("Values", values)
		s.Array("NextPtrs", next)
		if len(values) > 0 {
			s.Highlight("Front", 0)
			s.Highlight("Rear", len(values)-1)
		}
	}
	t.step(func(s *trace.Step) {
		nodes(s)
		s.Message("Initial State: Empty Queue")
	})

	for i := 0; i < len(input) && !t.failed(); i++ {
		v := input[i]
		values = append(values, v)
		next, _ = links(len(values))
		t.step(func(s *trace.Step) {
			nodes(s)
			s.Messagef("Enqueue(%d)", v)
		})
	}

	for len(values) > 0 && !t.failed() {
		front := values[0]
		values = values[1:]
		next, _ = links(len(values))
		t.step(func(s *trace.Step) {
			nodes(s)
			s.Messagef("Dequeue(): Removed %d", front)
		})
	}

	t.step(func(s *trace.Step) {
		nodes(s)
		s.Message("Queue is empty.")
	})
	return t.err
}

// DequeLinkedList builds a doubly linked deque from input, pushing even
// positions at the rear and odd positions at the front.
func DequeLinkedList(w *trace.Writer, input []int) error {
	var values, next, prev []int
	t := newTracer(w)

	nodes := func(s *trace.Step) {
		s.Array("Values", values)
		s.Array("NextPtrs", next)
		s.Array("PrevPtrs", prev)
	}
	t.step(func(s *trace.Step) {
		nodes(s)
		s.Message("Initial State: Empty Deque")
	})

	for i := 0; i < len(input) && !t.failed(); i++ {
		v := input[i]
		if i%2 == 0 {
			values = append(values, v)
			next, prev = links(len(values))
			t.step(func(s *trace.Step) {
				nodes(s)
				s.Highlight("Rear", len(values)-1)
				s.Messagef("PushRear(%d)", v)
			})
			continue
		}
		values = append([]int{v}, values...)
		next, prev = links(len(values))
		t.step(func(s *trace.Step) {
			nodes(s)
			s.Highlight("Front", 0)
			s.Messagef("PushFront(%d)", v)
		})
	}

	t.step(func(s *trace.Step) {
		nodes(s)
		if len(values) > 0 {
			s.Highlight("Front", 0)
			s.Highlight("Rear", len(values)-1)
		}
		s.Messagef("Deque holds %d values.", len(values))
	})
	return t.err
}

// DoublyLinkedList builds a doubly linked list from input and unlinks the
// node at index 1, showing each pointer update.
func DoublyLinkedList(w *trace.Writer, input []int) error {
	values := append([]int(nil), input...)
	n := len(values)
	next, prev := links(n)
	t := newTracer(w)

	nodes := func(s *trace.Step) {
		s.Array("Values", values)
		s.Array("NextPtrs", next)
		s.Array("PrevPtrs", prev)
	}
	t.step(func(s *trace.Step) {
		nodes(s)
		s.Message("Initial Doubly Linked List")
	})

	const target = 1
	if n <= target {
		t.step(func(s *trace.Step) {
			nodes(s)
			s.Message("Nothing to delete: the list has fewer than two nodes.")
		})
		return t.err
	}

	t.step(func(s *trace.Step) {
		nodes(s)
		s.Highlight("Target", target)
		s.Messagef("Deleting Node at Index %d...", target)
	})

	before, after := prev[target], next[target]
	if before != nilIndex {
		next[before] = after
		t.step(func(s *trace.Step) {
			nodes(s)
			s.Highlight("Prev", before)
			s.Message("Updated PrevNode->next")
		})
	}
	if after != nilIndex {
		prev[after] = before
		t.step(func(s *trace.Step) {
			nodes(s)
			s.Highlight("Next", after)
			s.Message("Updated NextNode->prev")
		})
	}

	values = append(values[:target:target], values[target+1:]...)
	next, prev = links(len(values))
	t.step(func(s *trace.Step) {
		nodes(s)
		s.Message("Node Removed.")
	})
	return t.err
}
