package server

import (
	"bytes"
	"encoding/json"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	// Error is the error message.
	Error string `json:"error"`

	// Code is a stable machine-readable error code.
	Code string `json:"code,omitempty"`
}

// Error codes.
const (
	CodeInvalidAlgorithm = "INVALID_ALGORITHM"
	CodeUnknownAlgorithm = "UNKNOWN_ALGORITHM"
	CodeInvalidRequest   = "INVALID_REQUEST"
	CodeInvalidInput     = "INVALID_INPUT"
	CodeTimeout          = "TIMEOUT"
	CodeRunFailed        = "RUN_FAILED"
	CodeRunNotFound      = "RUN_NOT_FOUND"
	CodeNoStore          = "NO_STORE"
)

// RunRequest is the body of POST /run/:algorithm.
type RunRequest struct {
	// Inputs are raw values; each may be a number or a string holding one
	// or more integers separated by commas or spaces.
	Inputs []RawInput `json:"inputs"`
}

// RawInput accepts a JSON number or string.
type RawInput string

func (r *RawInput) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*r = RawInput(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*r = RawInput(n.String())
	return nil
}

// AlgorithmInfo describes one catalog entry.
type AlgorithmInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Defaults    []int  `json:"defaults"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status     string `json:"status"`
	Algorithms int    `json:"algorithms"`
}
