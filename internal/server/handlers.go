package server

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/roach88/algotrace/internal/algo"
	"github.com/roach88/algotrace/internal/runner"
	"github.com/roach88/algotrace/internal/store"
	"github.com/roach88/algotrace/internal/trace"
)

var validAlgorithmName = regexp.MustCompile(`(?i)^[a-z0-9_-]+$`)

const contentTypeJSON = "application/json; charset=utf-8"

func getOrCreateRequestID(c *gin.Context) string {
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Header("X-Request-ID", requestID)
	return requestID
}

// HandleHealth handles GET /health.
func (s *Server) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "healthy", Algorithms: len(algo.Names())})
}

// HandleAlgorithms handles GET /algorithms.
func (s *Server) HandleAlgorithms(c *gin.Context) {
	all := algo.All()
	out := make([]AlgorithmInfo, len(all))
	for i, a := range all {
		out[i] = AlgorithmInfo{Name: a.Name, Description: a.Description, Defaults: a.Defaults}
	}
	c.JSON(http.StatusOK, out)
}

// HandleRunPost handles POST /run/:algorithm.
//
// Request Body:
//
//	RunRequest with at least one input; GET runs the catalog defaults
//
// Response:
//
//	200 OK: the trace document
//	400 Bad Request: invalid algorithm name, body or inputs
//	404 Not Found: algorithm not in the catalog
//	408 Request Timeout: run exceeded the timeout
//	500 Internal Server Error: run failed
func (s *Server) HandleRunPost(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := s.logger.With("request_id", requestID, "handler", "HandleRunPost")

	name, ok := s.algorithmParam(c, logger)
	if !ok {
		return
	}

	var req RunRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			logger.Warn("invalid request body", "error", err)
			s.metrics.runsTotal.WithLabelValues(name, outcomeInvalid).Inc()
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error: "Invalid request body",
				Code:  CodeInvalidRequest,
			})
			return
		}
	}

	if len(req.Inputs) == 0 {
		logger.Warn("no inputs")
		s.metrics.runsTotal.WithLabelValues(name, outcomeInvalid).Inc()
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Please provide input values. The input cannot be empty.",
			Code:  CodeInvalidInput,
		})
		return
	}

	raw := make([]string, len(req.Inputs))
	for i, in := range req.Inputs {
		raw[i] = string(in)
	}
	s.run(c, logger, name, raw)
}

// HandleRunGet handles GET /run/:algorithm. Inputs come from repeated
// ?input= query parameters.
func (s *Server) HandleRunGet(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := s.logger.With("request_id", requestID, "handler", "HandleRunGet")

	name, ok := s.algorithmParam(c, logger)
	if !ok {
		return
	}
	s.run(c, logger, name, c.QueryArray("input"))
}

// HandleStoredRun handles GET /runs/:id.
func (s *Server) HandleStoredRun(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := s.logger.With("request_id", requestID, "handler", "HandleStoredRun")

	if s.store == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "run storage is not configured", Code: CodeNoStore})
		return
	}

	id := c.Param("id")
	doc, err := s.store.ReadDocument(c.Request.Context(), id)
	if errors.Is(err, store.ErrRunNotFound) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error(), Code: CodeRunNotFound})
		return
	}
	if err != nil {
		logger.Error("read stored run failed", "run_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error(), Code: CodeRunFailed})
		return
	}

	data, err := doc.MarshalJSON()
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error(), Code: CodeRunFailed})
		return
	}
	c.Header("X-Run-ID", id)
	c.Data(http.StatusOK, contentTypeJSON, data)
}

// algorithmParam validates the :algorithm path parameter and writes the
// error response itself when it is unusable. Names match case-insensitively.
func (s *Server) algorithmParam(c *gin.Context, logger *slog.Logger) (string, bool) {
	name := c.Param("algorithm")
	if !validAlgorithmName.MatchString(name) {
		logger.Warn("invalid algorithm name", "algorithm", name)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid algorithm name",
			Code:  CodeInvalidAlgorithm,
		})
		return "", false
	}
	name = strings.ToLower(name)
	if _, ok := algo.Lookup(name); !ok {
		s.metrics.runsTotal.WithLabelValues("unknown", outcomeNotFound).Inc()
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error: "Algorithm not found",
			Code:  CodeUnknownAlgorithm,
		})
		return "", false
	}
	return name, true
}

type runOutcome struct {
	result *runner.Result
	doc    []byte
	err    error
}

func (s *Server) run(c *gin.Context, logger *slog.Logger, name string, raw []string) {
	input, err := runner.ParseInputs(raw)
	if err != nil {
		logger.Warn("invalid inputs", "error", err)
		s.metrics.runsTotal.WithLabelValues(name, outcomeInvalid).Inc()
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: CodeInvalidInput})
		return
	}

	start := time.Now()
	deadline := start.Add(s.timeout)
	timer := time.NewTimer(s.timeout)
	defer timer.Stop()

	// The run keeps going after a timeout so its store record is finished;
	// the writer never leaves this goroutine.
	runCtx := context.WithoutCancel(c.Request.Context())
	done := make(chan runOutcome, 1)
	s.metrics.inFlight.Inc()
	go func() {
		defer s.metrics.inFlight.Dec()
		var buf bytes.Buffer
		res, err := s.runner.Run(runCtx, runner.Request{
			Algorithm: name,
			Input:     input,
			Policy:    s.policy,
			MaxSteps:  s.maxSteps,
		}, trace.NewStreamSink(&buf))
		done <- runOutcome{result: res, doc: buf.Bytes(), err: err}
	}()

	var out runOutcome
	select {
	case out = <-done:
	case <-timer.C:
		s.timedOut(c, logger, name)
		return
	}
	// Finishing after the deadline is still a timeout.
	if time.Now().After(deadline) {
		s.timedOut(c, logger, name)
		return
	}

	s.metrics.runDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	if out.result != nil {
		c.Header("X-Run-ID", out.result.RunID)
		s.metrics.runSteps.WithLabelValues(name).Observe(float64(out.result.Stats.Steps))
		if dropped := out.result.Stats.Dropped(); dropped > 0 {
			s.metrics.droppedEntries.WithLabelValues(name).Add(float64(dropped))
		}
	}

	if out.err != nil {
		status, code, outcome := http.StatusInternalServerError, CodeRunFailed, outcomeFailed
		if errors.Is(out.err, algo.ErrInput) {
			status, code, outcome = http.StatusBadRequest, CodeInvalidInput, outcomeInvalid
		}
		logger.Warn("run failed", "algorithm", name, "error", out.err)
		s.metrics.runsTotal.WithLabelValues(name, outcome).Inc()
		c.JSON(status, ErrorResponse{Error: out.err.Error(), Code: code})
		return
	}

	s.metrics.runsTotal.WithLabelValues(name, outcomeOK).Inc()
	logger.Info("run complete", "algorithm", name, "run_id", out.result.RunID, "steps", out.result.Stats.Steps)
	c.Data(http.StatusOK, contentTypeJSON, out.doc)
}

func (s *Server) timedOut(c *gin.Context, logger *slog.Logger, name string) {
	logger.Warn("run timed out", "algorithm", name, "timeout", s.timeout)
	s.metrics.runsTotal.WithLabelValues(name, outcomeTimeout).Inc()
	c.JSON(http.StatusRequestTimeout, ErrorResponse{
		Error: "Algorithm execution timed out",
		Code:  CodeTimeout,
	})
}
