package algo

import (
	"fmt"

	"github.com/roach88/algotrace/internal/trace"
)

const (
	maxFibonacci = 20
	maxFactorial = 12
	maxQueens    = 8
)

// FibonacciDP fills dp[0..n] bottom-up.
func FibonacciDP(w *trace.Writer, input []int) error {
	if len(input) < 1 {
		return inputErrorf("fibonacci_dp needs n")
	}
	n := input[0]
	if n < 1 {
		return inputErrorf("fibonacci_dp needs n >= 1, got %d", n)
	}
	if n > maxFibonacci {
		n = maxFibonacci
	}
	const table = "DP Table"
	dp := make([]int, n+1)
	t := newTracer(w)

	t.step(func(s *trace.Step) {
		s.Array(table, dp)
		s.Message("Initial State: DP Array initialized to 0")
	})

	dp[1] = 1
	t.step(func(s *trace.Step) {
		s.Array(table, dp)
		s.Highlight(table, 0)
		s.Highlight(table, 1)
		s.Message("Base Cases: dp[0]=0, dp[1]=1")
	})

	for i := 2; i <= n && !t.failed(); i++ {
		dp[i] = dp[i-1] + dp[i-2]
		t.step(func(s *trace.Step) {
			s.Array(table, dp)
			s.Highlight(table, i)
			s.Messagef("Calculated dp[%d] = dp[%d] + dp[%d] = %d + %d = %d",
				i, i-1, i-2, dp[i-1], dp[i-2], dp[i])
		})
	}

	t.step(func(s *trace.Step) {
		s.Array(table, dp)
		s.Messagef("Fibonacci(%d) is %d", n, dp[n])
	})
	return t.err
}

// Factorial computes input[0]! recursively. Each call is an overlay node
// labeled f(n) with an edge from its caller.
func Factorial(w *trace.Writer, input []int) error {
	if len(input) < 1 {
		return inputErrorf("factorial needs n")
	}
	n := input[0]
	if n < 0 || n > maxFactorial {
		return inputErrorf("factorial needs 0 <= n <= %d, got %d", maxFactorial, n)
	}
	t := newTracer(w)
	nextID := 0

	var fact func(n, parent int) int
	fact = func(n, parent int) int {
		id := nextID
		nextID++
		label := fmt.Sprintf("f(%d)", n)
		call := func(s *trace.Step) {
			s.Node(id, label)
			if parent >= 0 {
				s.Edge(parent, id)
			}
			s.Variable("n", n)
		}

		t.step(func(s *trace.Step) {
			call(s)
			s.Messagef("Calling factorial(%d)", n)
		})
		if n <= 1 {
			t.step(func(s *trace.Step) {
				call(s)
				s.Message("Base case reached: return 1")
			})
			return 1
		}

		res := n * fact(n-1, id)
		t.step(func(s *trace.Step) {
			call(s)
			s.Variable("result", res)
			s.Messagef("Returning %d * factorial(%d) = %d", n, n-1, res)
		})
		return res
	}
	fact(n, -1)
	return t.err
}

// NQueens backtracks row by row until the first placement of input[0]
// non-attacking queens. The board holds each row's column, -1 when empty.
func NQueens(w *trace.Writer, input []int) error {
	if len(input) < 1 {
		return inputErrorf("n_queens needs n")
	}
	n := input[0]
	if n < 1 || n > maxQueens {
		return inputErrorf("n_queens needs 1 <= n <= %d, got %d", maxQueens, n)
	}
	const board = "Board (Col Indices)"
	queens := make([]int, n)
	for i := range queens {
		queens[i] = nilIndex
	}
	t := newTracer(w)

	t.step(func(s *trace.Step) {
		s.Array(board, queens)
		s.Variable("n", n)
		s.Message("Initial State: Empty Board")
	})

	safe := func(row, col int) bool {
		for r := 0; r < row; r++ {
			c := queens[r]
			if c == col || absInt(c-col) == row-r {
				return false
			}
		}
		return true
	}

	var solve func(row int) bool
	solve = func(row int) bool {
		if row == n {
			t.step(func(s *trace.Step) {
				s.Array(board, queens)
				s.Message("Solution Found!")
			})
			return true
		}
		for col := 0; col < n && !t.failed(); col++ {
			queens[row] = col
			attempt := func(s *trace.Step) {
				s.Array(board, queens)
				s.Highlight(board, row)
				s.Variable("row", row)
				s.Variable("col", col)
			}
			t.step(func(s *trace.Step) {
				attempt(s)
				s.Messagef("Trying Queen at Row %d, Col %d", row, col)
			})
			if safe(row, col) {
				if solve(row + 1) {
					return true
				}
			} else {
				t.step(func(s *trace.Step) {
					attempt(s)
					s.Messagef("Conflict at Row %d, Col %d. Backtracking...", row, col)
				})
			}
			queens[row] = nilIndex
		}
		return false
	}

	if !solve(0) {
		t.step(func(s *trace.Step) {
			s.Array(board, queens)
			s.Message("No solution found.")
		})
	}
	return t.err
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
