package algo

import (
	"fmt"
	"math/rand/v2"

	"github.com/roach88/algotrace/internal/trace"
)

// BubbleSort sorts a copy of input, stopping after a pass without swaps.
func BubbleSort(w *trace.Writer, input []int) error {
	arr := append([]int(nil), input...)
	n := len(arr)
	t := newTracer(w)

	t.step(func(s *trace.Step) {
		s.Array("arr", arr)
		s.Message("Initial State: Unsorted Array")
	})

	for i := 0; i < n-1 && !t.failed(); i++ {
		swapped := false
		for j := 0; j < n-i-1 && !t.failed(); j++ {
			t.step(func(s *trace.Step) {
				s.Array("arr", arr)
				s.Highlight("j", j)
				s.Highlight("j+1", j+1)
				s.Variable("pass", i+1)
				s.Messagef("Comparing %d and %d", arr[j], arr[j+1])
			})
			if arr[j] > arr[j+1] {
				arr[j], arr[j+1] = arr[j+1], arr[j]
				swapped = true
				t.step(func(s *trace.Step) {
					s.Array("arr", arr)
					s.Highlight("j", j)
					s.Highlight("j+1", j+1)
					s.Variable("pass", i+1)
					s.Messagef("Swapped %d and %d", arr[j+1], arr[j])
				})
			}
		}
		if !swapped {
			t.step(func(s *trace.Step) {
				s.Array("arr", arr)
				s.Variable("pass", i+1)
				s.Message("No swaps in this pass. Array is sorted.")
			})
			break
		}
	}

	t.step(func(s *trace.Step) {
		s.Array("arr", arr)
		s.Message("Sorting Complete!")
	})
	return t.err
}

// InsertionSort sorts a copy of input by growing a sorted prefix.
func InsertionSort(w *trace.Writer, input []int) error {
	arr := append([]int(nil), input...)
	t := newTracer(w)

	t.step(func(s *trace.Step) {
		s.Array("arr", arr)
		s.Message("Initial State: Unsorted Array")
	})

	for i := 1; i < len(arr) && !t.failed(); i++ {
		key := arr[i]
		j := i - 1
		t.step(func(s *trace.Step) {
			s.Array("arr", arr)
			s.Variable("key", key)
			s.Highlight("i", i)
			s.Messagef("Picked key %d at index %d", key, i)
		})
		for j >= 0 && arr[j] > key && !t.failed() {
			arr[j+1] = arr[j]
			t.step(func(s *trace.Step) {
				s.Array("arr", arr)
				s.Variable("key", key)
				s.Highlight("j", j)
				s.Messagef("%d > %d, shifting right", arr[j], key)
			})
			j--
		}
		arr[j+1] = key
		t.step(func(s *trace.Step) {
			s.Array("arr", arr)
			s.Variable("key", key)
			s.Highlight("inserted", j+1)
			s.Messagef("Inserted %d at index %d", key, j+1)
		})
	}

	t.step(func(s *trace.Step) {
		s.Array("arr", arr)
		s.Message("Sorting Complete!")
	})
	return t.err
}

// SelectionSort sorts a copy of input by repeatedly selecting the minimum.
func SelectionSort(w *trace.Writer, input []int) error {
	arr := append([]int(nil), input...)
	n := len(arr)
	t := newTracer(w)

	t.step(func(s *trace.Step) {
		s.Array("arr", arr)
		s.Message("Initial State: Unsorted Array")
	})

	for i := 0; i < n-1 && !t.failed(); i++ {
		minIdx := i
		for j := i + 1; j < n && !t.failed(); j++ {
			t.step(func(s *trace.Step) {
				s.Array("arr", arr)
				s.Highlight("i", i)
				s.Highlight("j", j)
				s.Highlight("min", minIdx)
				s.Messagef("Comparing %d with current minimum %d", arr[j], arr[minIdx])
			})
			if arr[j] < arr[minIdx] {
				minIdx = j
			}
		}
		if minIdx != i {
			arr[i], arr[minIdx] = arr[minIdx], arr[i]
		}
		t.step(func(s *trace.Step) {
			s.Array("arr", arr)
			s.Highlight("i", i)
			s.Highlight("min", minIdx)
			s.Messagef("Placed %d at index %d", arr[i], i)
		})
	}

	t.step(func(s *trace.Step) {
		s.Array("arr", arr)
		s.Message("Sorting Complete!")
	})
	return t.err
}

// MergeSort sorts a copy of input top-down. Every call becomes a node of the
// overlay, labeled with its index range, linked to its caller.
func MergeSort(w *trace.Writer, input []int) error {
	arr := append([]int(nil), input...)
	t := newTracer(w)
	nextID := 0

	t.step(func(s *trace.Step) {
		s.Array("arr", arr)
		s.Message("Initial State: Unsorted Array")
	})

	var sortRange func(left, right, parent int)
	sortRange = func(left, right, parent int) {
		if t.failed() {
			return
		}
		id := nextID
		nextID++
		label := fmt.Sprintf("[%d..%d]", left, right)
		t.step(func(s *trace.Step) {
			s.Node(id, label)
			if parent >= 0 {
				s.Edge(parent, id)
			}
			s.Array("arr", arr)
			s.Highlight("left", left)
			s.Highlight("right", right)
			s.Messagef("Sorting range %s", label)
		})
		if left >= right {
			return
		}
		mid := left + (right-left)/2
		sortRange(left, mid, id)
		sortRange(mid+1, right, id)
		merge(t, arr, left, mid, right)
	}
	if len(arr) > 0 {
		sortRange(0, len(arr)-1, -1)
	}

	t.step(func(s *trace.Step) {
		s.Array("arr", arr)
		s.Message("Sorting Complete!")
	})
	return t.err
}

func merge(t *tracer, arr []int, left, mid, right int) {
	merged := make([]int, 0, right-left+1)
	i, j := left, mid+1
	for i <= mid && j <= right {
		if arr[i] <= arr[j] {
			merged = append(merged, arr[i])
			i++
		} else {
			merged = append(merged, arr[j])
			j++
		}
	}
	merged = append(merged, arr[i:mid+1]...)
	merged = append(merged, arr[j:right+1]...)
	copy(arr[left:], merged)

	t.step(func(s *trace.Step) {
		s.Array("arr", arr)
		s.Array("merged", merged)
		s.Highlight("left", left)
		s.Highlight("mid", mid)
		s.Highlight("right", right)
		s.Messagef("Merged [%d..%d] and [%d..%d]", left, mid, mid+1, right)
	})
}

// QuickSort sorts a copy of input using the last element as pivot.
func QuickSort(w *trace.Writer, input []int) error {
	arr := append([]int(nil), input...)
	t := newTracer(w)

	t.step(func(s *trace.Step) {
		s.Array("arr", arr)
		s.Message("Initial State: Unsorted Array")
	})

	var quick func(low, high int)
	quick = func(low, high int) {
		if low >= high || t.failed() {
			return
		}
		p := partition(t, arr, low, high)
		quick(low, p-1)
		quick(p+1, high)
	}
	quick(0, len(arr)-1)

	t.step(func(s *trace.Step) {
		s.Array("arr", arr)
		s.Message("Sorting Complete!")
	})
	return t.err
}

func partition(t *tracer, arr []int, low, high int) int {
	pivot := arr[high]
	t.step(func(s *trace.Step) {
		s.Array("arr", arr)
		s.Variable("pivot", pivot)
		s.Highlight("low", low)
		s.Highlight("high", high)
		s.Messagef("Partitioning [%d..%d] around pivot %d", low, high, pivot)
	})

	i := low - 1
	for j := low; j < high; j++ {
		if arr[j] < pivot {
			i++
			arr[i], arr[j] = arr[j], arr[i]
			t.step(func(s *trace.Step) {
				s.Array("arr", arr)
				s.Variable("pivot", pivot)
				s.Highlight("i", i)
				s.Highlight("j", j)
				s.Messagef("%d < pivot, swapped into index %d", arr[i], i)
			})
		}
	}
	arr[i+1], arr[high] = arr[high], arr[i+1]
	t.step(func(s *trace.Step) {
		s.Array("arr", arr)
		s.Variable("pivot", pivot)
		s.Highlight("pivot", i+1)
		s.Messagef("Pivot %d placed at index %d", pivot, i+1)
	})
	return i + 1
}

// randomizedPivotSeed fixes pivot selection, so replaying an input picks the
// same pivots and yields the same document.
const randomizedPivotSeed = 0x5eed

// RandomizedQuickSort sorts a copy of input, swapping a pseudo-random element
// of each range into the pivot slot before partitioning.
func RandomizedQuickSort(w *trace.Writer, input []int) error {
	arr := append([]int(nil), input...)
	rng := rand.New(rand.NewPCG(randomizedPivotSeed, uint64(len(arr))))
	t := newTracer(w)

	t.step(func(s *trace.Step) {
		s.Array("arr", arr)
		s.Variable("seed", randomizedPivotSeed)
		s.Message("Initial State: Unsorted Array")
	})

	var quick func(low, high int)
	quick = func(low, high int) {
		if low >= high || t.failed() {
			return
		}
		r := low + rng.IntN(high-low+1)
		t.step(func(s *trace.Step) {
			s.Array("arr", arr)
			s.Highlight("low", low)
			s.Highlight("high", high)
			s.Highlight("random", r)
			s.Messagef("Chose random pivot %d at index %d", arr[r], r)
		})
		arr[r], arr[high] = arr[high], arr[r]
		p := partition(t, arr, low, high)
		quick(low, p-1)
		quick(p+1, high)
	}
	quick(0, len(arr)-1)

	t.step(func(s *trace.Step) {
		s.Array("arr", arr)
		s.Message("Sorting Complete!")
	})
	return t.err
}

// maxCountingValue keeps the count table within one array's element bound.
const maxCountingValue = trace.DefaultMaxArrayLen - 1

// CountingSort sorts input values in [0, 99].
func CountingSort(w *trace.Writer, input []int) error {
	maxVal := 0
	for _, v := range input {
		if v < 0 || v > maxCountingValue {
			return inputErrorf("counting_sort values must be in [0, %d], got %d", maxCountingValue, v)
		}
		if v > maxVal {
			maxVal = v
		}
	}
	arr := append([]int(nil), input...)
	count := make([]int, maxVal+1)
	output := make([]int, len(arr))
	t := newTracer(w)

	t.step(func(s *trace.Step) {
		s.Array("arr", arr)
		s.Array("count", count)
		s.Variable("max", maxVal)
		s.Message("Initial State: Count array sized to the maximum value")
	})

	for i, v := range arr {
		count[v]++
		t.step(func(s *trace.Step) {
			s.Array("arr", arr)
			s.Array("count", count)
			s.Highlight("arr", i)
			s.Highlight("count", v)
			s.Messagef("Counted %d", v)
		})
	}

	for i := 1; i < len(count); i++ {
		count[i] += count[i-1]
	}
	t.step(func(s *trace.Step) {
		s.Array("arr", arr)
		s.Array("count", count)
		s.Message("Prefix sums give each value's final position")
	})

	for i := len(arr) - 1; i >= 0; i-- {
		v := arr[i]
		count[v]--
		pos := count[v]
		output[pos] = v
		t.step(func(s *trace.Step) {
			s.Array("arr", arr)
			s.Array("count", count)
			s.Array("output", output)
			s.Highlight("arr", i)
			s.Highlight("output", pos)
			s.Messagef("Placed %d at output index %d", v, pos)
		})
	}

	t.step(func(s *trace.Step) {
		s.Array("output", output)
		s.Message("Sorting Complete!")
	})
	return t.err
}

// RadixSort sorts non-negative input digit by digit, least significant first.
// Each digit pass is a stable counting sort; the copy back into arr is one
// step per element.
func RadixSort(w *trace.Writer, input []int) error {
	maxVal := 0
	for _, v := range input {
		if v < 0 {
			return inputErrorf("radix_sort values must be non-negative, got %d", v)
		}
		if v > maxVal {
			maxVal = v
		}
	}
	arr := append([]int(nil), input...)
	t := newTracer(w)

	t.step(func(s *trace.Step) {
		s.Array("arr", arr)
		s.Variable("max", maxVal)
		s.Message("Initial State: Unsorted Array")
	})

	for exp := 1; maxVal/exp > 0 && !t.failed(); exp *= 10 {
		var count [10]int
		for _, v := range arr {
			count[(v/exp)%10]++
		}
		t.step(func(s *trace.Step) {
			s.Array("arr", arr)
			s.Array("Digit Counts", count[:])
			s.Variable("exp", exp)
			s.Messagef("Counted digits at exp %d", exp)
		})

		for d := 1; d < len(count); d++ {
			count[d] += count[d-1]
		}
		output := make([]int, len(arr))
		for i := len(arr) - 1; i >= 0; i-- {
			d := (arr[i] / exp) % 10
			count[d]--
			output[count[d]] = arr[i]
		}

		for i := 0; i < len(arr) && !t.failed(); i++ {
			arr[i] = output[i]
			t.step(func(s *trace.Step) {
				s.Array("arr", arr)
				s.Highlight("arr", i)
				s.Variable("exp", exp)
				s.Messagef("Sorted by digit at exp %d", exp)
			})
		}
	}

	t.step(func(s *trace.Step) {
		s.Array("arr", arr)
		s.Message("Sorting Complete!")
	})
	return t.err
}
