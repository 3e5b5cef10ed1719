package algo

import (
	"sort"

	"github.com/roach88/algotrace/internal/trace"
)

// BinarySearch looks for input[0] in input[1:], which should be sorted.
func BinarySearch(w *trace.Writer, input []int) error {
	if len(input) < 1 {
		return inputErrorf("binary_search needs a target")
	}
	target := input[0]
	nums := append([]int(nil), input[1:]...)
	t := newTracer(w)

	t.step(func(s *trace.Step) {
		s.Array("nums", nums)
		s.Variable("target", target)
		s.Message("Initial State: Sorted Array ready for Binary Search")
	})

	left, right := 0, len(nums)-1
	for left <= right && !t.failed() {
		mid := left + (right-left)/2
		pointers := func(s *trace.Step) {
			s.Array("nums", nums)
			s.Highlight("left", left)
			s.Highlight("right", right)
			s.Highlight("mid", mid)
		}
		t.step(func(s *trace.Step) {
			pointers(s)
			s.Variable("target", target)
			s.Messagef("Checking Middle Index %d (Value: %d)", mid, nums[mid])
		})

		switch {
		case nums[mid] == target:
			t.step(func(s *trace.Step) {
				s.Array("nums", nums)
				s.Variable("target", target)
				s.Highlight("Found", mid)
				s.Message("Target Found!")
			})
			return t.err
		case nums[mid] < target:
			t.step(func(s *trace.Step) {
				pointers(s)
				s.Message("Value < Target. Moving Left pointer to Mid + 1")
			})
			left = mid + 1
		default:
			t.step(func(s *trace.Step) {
				pointers(s)
				s.Message("Value > Target. Moving Right pointer to Mid - 1")
			})
			right = mid - 1
		}
	}

	t.step(func(s *trace.Step) {
		s.Array("nums", nums)
		s.Message("Target not found in the array.")
	})
	return t.err
}

// TwoSum checks every pair of input[1:] against the target input[0].
func TwoSum(w *trace.Writer, input []int) error {
	if len(input) < 1 {
		return inputErrorf("two_sum needs a target")
	}
	target := input[0]
	nums := append([]int(nil), input[1:]...)
	t := newTracer(w)

	t.step(func(s *trace.Step) {
		s.Array("nums", nums)
		s.Variable("target", target)
		s.Message("Initial State: Finding two numbers that add up to target.")
	})

	for i := 0; i < len(nums) && !t.failed(); i++ {
		for j := i + 1; j < len(nums) && !t.failed(); j++ {
			sum := nums[i] + nums[j]
			t.step(func(s *trace.Step) {
				s.Array("nums", nums)
				s.Variable("target", target)
				s.Variable("sum", sum)
				s.Highlight("left", i)
				s.Highlight("right", j)
				s.Messagef("Checking %d + %d = %d", nums[i], nums[j], sum)
			})
			if sum == target {
				t.step(func(s *trace.Step) {
					s.Array("nums", nums)
					s.Variable("target", target)
					s.Highlight("left", i)
					s.Highlight("right", j)
					s.Message("Found match!")
				})
				return t.err
			}
		}
	}

	t.step(func(s *trace.Step) {
		s.Array("nums", nums)
		s.Variable("target", target)
		s.Message("No solution found.")
	})
	return t.err
}

// ThreeSum finds the distinct triplets of input that sum to zero: sort once,
// then close two pointers over the suffix of each anchor.
func ThreeSum(w *trace.Writer, input []int) error {
	nums := append([]int(nil), input...)
	t := newTracer(w)

	t.step(func(s *trace.Step) {
		s.Array("nums", nums)
		s.Message("Step 1: Sort the array to use Two Pointers technique.")
	})
	sort.Ints(nums)
	t.step(func(s *trace.Step) {
		s.Array("nums", nums)
		s.Message("Array currently sorted.")
	})

	found := 0
	for i := 0; i < len(nums)-2 && !t.failed(); i++ {
		if i > 0 && nums[i] == nums[i-1] {
			continue
		}
		left, right := i+1, len(nums)-1
		for left < right && !t.failed() {
			sum := nums[i] + nums[left] + nums[right]
			pointers := func(s *trace.Step) {
				s.Array("nums", nums)
				s.Highlight("i", i)
				s.Highlight("left", left)
				s.Highlight("right", right)
			}
			t.step(func(s *trace.Step) {
				pointers(s)
				s.Variable("sum", sum)
				s.Messagef("Checking: %d + %d + %d = %d", nums[i], nums[left], nums[right], sum)
			})

			switch {
			case sum == 0:
				found++
				t.step(func(s *trace.Step) {
					pointers(s)
					s.Variable("triplets", found)
					s.Messagef("Found Triplet [%d, %d, %d]! Skipping duplicates...", nums[i], nums[left], nums[right])
				})
				for left < right && nums[left] == nums[left+1] {
					left++
				}
				for left < right && nums[right] == nums[right-1] {
					right--
				}
				left++
				right--
			case sum < 0:
				left++
			default:
				right--
			}
		}
	}

	t.step(func(s *trace.Step) {
		s.Array("nums", nums)
		s.Variable("triplets", found)
		if found == 0 {
			s.Message("No triplets found summing to 0.")
			return
		}
		s.Messagef("Finished searching. Found %d triplet(s).", found)
	})
	return t.err
}
