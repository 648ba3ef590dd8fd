// Package server exposes the lamp controller over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"fuzzylight/internal/fuzzy"
	"fuzzylight/pkg/fuzzylight"
)

const (
	maxBodyBytes      = 1 << 20
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 5 * time.Second
)

type Server struct {
	client *fuzzylight.Client
	log    *zap.Logger
	mux    *http.ServeMux
}

type evaluateRequest struct {
	Scenario string             `json:"scenario,omitempty"`
	Inputs   map[string]float64 `json:"inputs"`
	Persist  bool               `json:"persist,omitempty"`
}

type activation struct {
	RuleID   string  `json:"rule_id"`
	Label    string  `json:"label,omitempty"`
	Strength float64 `json:"strength"`
}

type evaluateResponse struct {
	RunID       string             `json:"run_id"`
	Scenario    string             `json:"scenario,omitempty"`
	Outputs     map[string]float64 `json:"outputs"`
	Activations []activation       `json:"activations"`
	Empty       []string           `json:"empty,omitempty"`
	Error       string             `json:"error,omitempty"`
}

type term struct {
	Name  string `json:"name"`
	Shape string `json:"shape"`
}

type variable struct {
	Name  string  `json:"name"`
	Kind  string  `json:"kind"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Step  float64 `json:"step"`
	Terms []term  `json:"terms"`
}

type rule struct {
	ID    string `json:"id"`
	Label string `json:"label,omitempty"`
	Text  string `json:"text"`
}

type runItem struct {
	RunID        string             `json:"run_id"`
	CreatedAtUTC string             `json:"created_at_utc"`
	Scenario     string             `json:"scenario,omitempty"`
	Outputs      map[string]float64 `json:"outputs"`
	Empty        []string           `json:"empty,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// New wires the API routes and a /metrics endpoint backed by gatherer.
// A nil gatherer serves the default Prometheus registry.
func New(client *fuzzylight.Client, gatherer prometheus.Gatherer, log *zap.Logger) *Server {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{client: client, log: log, mux: http.NewServeMux()}
	s.mux.HandleFunc("POST /v1/evaluate", s.handleEvaluate)
	s.mux.HandleFunc("GET /v1/variables", s.handleVariables)
	s.mux.HandleFunc("GET /v1/rules", s.handleRules)
	s.mux.HandleFunc("GET /v1/runs", s.handleRuns)
	s.mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return s
}

func (s *Server) Handler() http.Handler { return s.mux }

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	errc := make(chan error, 1)
	go func() {
		s.log.Info("serving", zap.String("addr", ln.Addr().String()))
		errc <- srv.Serve(ln)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req evaluateRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	res, err := s.client.Evaluate(r.Context(), fuzzylight.EvaluateRequest{
		Scenario: req.Scenario,
		Inputs:   req.Inputs,
		Persist:  req.Persist,
	})
	if err != nil && !errors.Is(err, fuzzy.ErrEmptyAggregate) {
		writeJSON(w, statusFor(err), errorResponse{Error: err.Error()})
		return
	}

	body := evaluateResponse{
		RunID:       res.RunID,
		Scenario:    res.Scenario,
		Outputs:     res.Outputs,
		Activations: make([]activation, 0, len(res.Activations)),
		Empty:       res.Empty,
	}
	for _, a := range res.Activations {
		body.Activations = append(body.Activations, activation{RuleID: a.RuleID, Label: a.Label, Strength: a.Strength})
	}
	status := http.StatusOK
	if err != nil {
		status = statusFor(err)
		body.Error = err.Error()
	}
	writeJSON(w, status, body)
}

func (s *Server) handleVariables(w http.ResponseWriter, _ *http.Request) {
	infos := s.client.Variables()
	out := make([]variable, 0, len(infos))
	for _, info := range infos {
		v := variable{
			Name: info.Name,
			Kind: info.Kind,
			Min:  info.Universe.Min,
			Max:  info.Universe.Max,
			Step: info.Universe.Step,
		}
		for _, t := range info.Terms {
			v.Terms = append(v.Terms, term{Name: t.Name, Shape: t.Shape})
		}
		out = append(out, v)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleRules(w http.ResponseWriter, _ *http.Request) {
	infos := s.client.Rules()
	out := make([]rule, 0, len(infos))
	for _, info := range infos {
		out = append(out, rule{ID: info.ID, Label: info.Label, Text: info.Text})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "limit must be a non-negative integer"})
			return
		}
		limit = n
	}
	runs, err := s.client.Runs(r.Context(), fuzzylight.RunsRequest{Limit: limit})
	if err != nil {
		s.log.Error("list runs", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	out := make([]runItem, 0, len(runs))
	for _, run := range runs {
		out = append(out, runItem{
			RunID:        run.RunID,
			CreatedAtUTC: run.CreatedAtUTC,
			Scenario:     run.Scenario,
			Outputs:      run.Outputs,
			Empty:        run.Empty,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, fuzzy.ErrOutOfRange),
		errors.Is(err, fuzzy.ErrMissingInput),
		errors.Is(err, fuzzy.ErrUnknownVariable):
		return http.StatusBadRequest
	case errors.Is(err, fuzzy.ErrEmptyAggregate):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}
