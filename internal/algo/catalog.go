package algo

import (
	"errors"
	"fmt"
	"sort"

	"github.com/roach88/algotrace/internal/trace"
)

// ErrInput marks input an algorithm cannot run on.
var ErrInput = errors.New("invalid input")

func inputErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInput, fmt.Sprintf(format, args...))
}

// Algorithm is one catalog entry.
type Algorithm struct {
	Name        string
	Description string
	// Defaults is used when the caller supplies no input.
	Defaults []int
	// Run emits the algorithm's steps into an open writer.
	Run func(w *trace.Writer, input []int) error
}

// Execute runs a with input, falling back to Defaults for empty input.
func (a Algorithm) Execute(w *trace.Writer, input []int) error {
	if len(input) == 0 {
		input = a.Defaults
	}
	return a.Run(w, input)
}

var catalog = map[string]Algorithm{}

func register(a Algorithm) {
	if _, dup := catalog[a.Name]; dup {
		panic("algo: duplicate algorithm " + a.Name)
	}
	catalog[a.Name] = a
}

func init() {
	register(Algorithm{
		Name:        "binary_search",
		Description: "Binary search for input[0] in the sorted remainder",
		Defaults:    []int{8, 2, 5, 8, 12, 16, 23, 38, 56, 72, 91},
		Run:         BinarySearch,
	})
	register(Algorithm{
		Name:        "two_sum",
		Description: "Brute-force pair search for two values summing to input[0]",
		Defaults:    []int{9, 2, 7, 11, 15},
		Run:         TwoSum,
	})
	register(Algorithm{
		Name:        "bubble_sort",
		Description: "Bubble sort with early exit",
		Defaults:    []int{29, 10, 14, 37, 14, 5, 12, 20, 8, 25},
		Run:         BubbleSort,
	})
	register(Algorithm{
		Name:        "insertion_sort",
		Description: "Insertion sort shifting larger values right",
		Defaults:    []int{12, 11, 13, 5, 6},
		Run:         InsertionSort,
	})
	register(Algorithm{
		Name:        "selection_sort",
		Description: "Selection sort swapping the minimum into place",
		Defaults:    []int{64, 25, 12, 22, 11},
		Run:         SelectionSort,
	})
	register(Algorithm{
		Name:        "merge_sort",
		Description: "Top-down merge sort with its recursion tree",
		Defaults:    []int{38, 27, 43, 3, 9, 82, 10},
		Run:         MergeSort,
	})
	register(Algorithm{
		Name:        "quick_sort",
		Description: "Quick sort with Lomuto partitioning",
		Defaults:    []int{10, 80, 30, 90, 40, 50, 70},
		Run:         QuickSort,
	})
	register(Algorithm{
		Name:        "counting_sort",
		Description: "Counting sort for values in [0, 99]",
		Defaults:    []int{4, 2, 2, 8, 3, 3, 1},
		Run:         CountingSort,
	})
	register(Algorithm{
		Name:        "fibonacci_dp",
		Description: "Bottom-up Fibonacci table up to n = input[0] (max 20)",
		Defaults:    []int{7},
		Run:         FibonacciDP,
	})
	register(Algorithm{
		Name:        "factorial",
		Description: "Recursive factorial of input[0] (max 12) drawn as a call tree",
		Defaults:    []int{4},
		Run:         Factorial,
	})
	register(Algorithm{
		Name:        "reverse_linked_list",
		Description: "In-place linked list reversal over index pointers",
		Defaults:    []int{1, 2, 3, 4, 5},
		Run:         ReverseLinkedList,
	})
	register(Algorithm{
		Name:        "bfs_graph",
		Description: "Breadth-first search over a fixed 5-vertex graph from input[0]",
		Defaults:    []int{0},
		Run:         BFSGraph,
	})
	register(Algorithm{
		Name:        "three_sum",
		Description: "Sort plus two pointers for the distinct triplets summing to zero",
		Defaults:    []int{-1, 0, 1, 2, -1, -4},
		Run:         ThreeSum,
	})
	register(Algorithm{
		Name:        "radix_sort",
		Description: "LSD radix sort for non-negative values",
		Defaults:    []int{170, 45, 75, 90, 802, 24, 2, 66},
		Run:         RadixSort,
	})
	register(Algorithm{
		Name:        "randomized_quick_sort",
		Description: "Quick sort with seeded random pivots",
		Defaults:    []int{10, 7, 8, 9, 1, 5},
		Run:         RandomizedQuickSort,
	})
	register(Algorithm{
		Name:        "n_queens",
		Description: "Backtracking to the first placement of n = input[0] queens (max 8)",
		Defaults:    []int{4},
		Run:         NQueens,
	})
	register(Algorithm{
		Name:        "bst_search",
		Description: "Search for input[0] in a fixed 7-node BST",
		Defaults:    []int{5},
		Run:         BSTSearch,
	})
	register(Algorithm{
		Name:        "binary_tree_level_order",
		Description: "Level-order traversal of a level-order tree, -999 for a missing node",
		Defaults:    []int{3, 9, 20, NullNode, NullNode, 15, 7},
		Run:         BinaryTreeLevelOrder,
	})
	register(Algorithm{
		Name:        "stack_ll",
		Description: "Push every value onto a linked stack, then pop it empty",
		Defaults:    []int{1, 2, 3, 4},
		Run:         StackLinkedList,
	})
	register(Algorithm{
		Name:        "queue_ll",
		Description: "Enqueue every value on a linked queue, then dequeue it empty",
		Defaults:    []int{1, 2, 3, 4},
		Run:         QueueLinkedList,
	})
	register(Algorithm{
		Name:        "deque_ll",
		Description: "Build a doubly linked deque, alternating rear and front pushes",
		Defaults:    []int{5, 10, 15, 20},
		Run:         DequeLinkedList,
	})
	register(Algorithm{
		Name:        "doubly_linked_list",
		Description: "Unlink the node at index 1 of a doubly linked list",
		Defaults:    []int{10, 20, 30, 40},
		Run:         DoublyLinkedList,
	})
}

// Lookup returns the named algorithm.
func Lookup(name string) (Algorithm, bool) {
	a, ok := catalog[name]
	return a, ok
}

// All returns every algorithm sorted by name.
func All() []Algorithm {
	out := make([]Algorithm, 0, len(catalog))
	for _, a := range catalog {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Names returns the sorted algorithm names.
func Names() []string {
	all := All()
	names := make([]string, len(all))
	for i, a := range all {
		names[i] = a.Name
	}
	return names
}

// tracer emits steps and remembers the first failure; once failed, further
// steps are skipped and the algorithm returns the error when it checks err.
type tracer struct {
	w   *trace.Writer
	err error
}

func newTracer(w *trace.Writer) *tracer {
	return &tracer{w: w}
}

func (t *tracer) step(fn func(s *trace.Step)) {
	if t.err != nil {
		return
	}
	t.err = t.w.Step(fn)
}

func (t *tracer) failed() bool {
	return t.err != nil
}
