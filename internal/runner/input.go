package runner

import (
	"fmt"
	"strconv"
	"strings"
)

// Input limits applied to untrusted callers.
const (
	MaxInputs      = 100
	MaxInputLength = 1000
)

// InputError describes rejected input.
type InputError struct {
	Index   int // 1-based position, 0 when the whole list is at fault
	Message string
}

func (e *InputError) Error() string {
	if e.Index > 0 {
		return fmt.Sprintf("input %d: %s", e.Index, e.Message)
	}
	return e.Message
}

// ParseInputs converts raw string inputs into ints. Each raw value may itself
// hold several integers separated by commas or spaces ("3,1,2" or "3 1 2"),
// as form fields usually do.
func ParseInputs(raw []string) ([]int, error) {
	if len(raw) > MaxInputs {
		return nil, &InputError{Message: fmt.Sprintf("too many inputs: maximum %d allowed", MaxInputs)}
	}
	var out []int
	for i, r := range raw {
		if len(r) > MaxInputLength {
			return nil, &InputError{Index: i + 1, Message: fmt.Sprintf("too long: maximum %d characters", MaxInputLength)}
		}
		fields := strings.FieldsFunc(r, func(c rune) bool {
			return c == ',' || c == ' ' || c == '\t' || c == '\n'
		})
		for _, f := range fields {
			v, err := strconv.Atoi(f)
			if err != nil {
				return nil, &InputError{Index: i + 1, Message: fmt.Sprintf("%q is not an integer", f)}
			}
			out = append(out, v)
		}
	}
	if len(out) > MaxInputs {
		return nil, &InputError{Message: fmt.Sprintf("too many values: maximum %d allowed", MaxInputs)}
	}
	return out, nil
}
