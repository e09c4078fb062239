package api

import (
	"encoding/json"
	stderrors "errors"
	"math"
	"net/http"

	"github.com/go-chi/chi/v5"

	"estiscan/domain/core"
	"estiscan/domain/estimate"
	"estiscan/internal/errors"
)

// estimateRequest is the wire shape of POST /estimate. Variables may be a
// single array or a matrix of rows for multivariate embeddings.
type estimateRequest struct {
	Variables map[string]variablePayload `json:"variables"`
	X         []string                   `json:"x"`
	Y         []string                   `json:"y"`
	Lags      []int                      `json:"lags,omitempty"`
	K         int                        `json:"k,omitempty"`
	Cond      string                     `json:"cond,omitempty"`
	CondLag   int                        `json:"cond_lag,omitempty"`
	Mask      []bool                     `json:"mask,omitempty"`

	Permutations int   `json:"permutations,omitempty"`
	Seed         int64 `json:"seed,omitempty"`
	Workers      int   `json:"workers,omitempty"`
}

type variablePayload struct {
	Samples  []float64   `json:"samples,omitempty"`
	Cols     [][]float64 `json:"cols,omitempty"`
	Discrete bool        `json:"discrete,omitempty"`
}

// cellPayload renders one result cell; NaN becomes null so the body stays
// valid JSON.
type cellPayload struct {
	X          string   `json:"x"`
	Y          string   `json:"y"`
	Lag        int      `json:"lag"`
	MI         *float64 `json:"mi"`
	Statistic  *float64 `json:"statistic"`
	PValue     *float64 `json:"p_value,omitempty"`
	SampleSize int      `json:"sample_size"`
	Degeneracy string   `json:"degeneracy,omitempty"`
}

type estimateResponse struct {
	RunID string        `json:"run_id"`
	Cells []cellPayload `json:"cells"`
}

func (s *Server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	var payload estimateRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, errors.IngestError("invalid JSON body"))
		return
	}

	vars := make(map[core.VariableKey]estimate.Variable, len(payload.Variables))
	for name, vp := range payload.Variables {
		key := core.VariableKey(name)
		vars[key] = toVariable(key, vp)
	}

	req := estimate.NewRequest(toKeys(payload.X), toKeys(payload.Y))
	if len(payload.Lags) > 0 {
		req.Lags = payload.Lags
	}
	if payload.K > 0 {
		req.K = payload.K
	}
	req.CondVar = core.VariableKey(payload.Cond)
	req.CondLag = payload.CondLag
	req.Mask = payload.Mask
	req.Permutations = payload.Permutations
	req.Seed = payload.Seed
	req.Workers = payload.Workers

	table, err := s.estimator.Estimate(r.Context(), vars, req)
	if err != nil {
		status := http.StatusInternalServerError
		if core.IsRequestError(err) || core.IsNotFoundError(err) {
			status = http.StatusBadRequest
		}
		writeError(w, status, err)
		return
	}

	if s.runs != nil {
		run := estimate.NewRun(r.RemoteAddr, req, table)
		if err := s.runs.SaveRun(r.Context(), run); err != nil {
			// Persistence is best-effort; the estimate already succeeded.
			writeJSON(w, http.StatusOK, buildResponse(table))
			return
		}
	}

	writeJSON(w, http.StatusOK, buildResponse(table))
}

// entropyRequest is the wire shape of POST /entropy. Targets defaults to
// every supplied variable.
type entropyRequest struct {
	Variables map[string]variablePayload `json:"variables"`
	Targets   []string                   `json:"targets,omitempty"`
	K         int                        `json:"k,omitempty"`
	Mask      []bool                     `json:"mask,omitempty"`
}

func (s *Server) handleEntropy(w http.ResponseWriter, r *http.Request) {
	var payload entropyRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, errors.IngestError("invalid JSON body"))
		return
	}

	targets := payload.Targets
	if len(targets) == 0 {
		for name := range payload.Variables {
			targets = append(targets, name)
		}
	}
	k := payload.K
	if k == 0 {
		k = estimate.DefaultK
	}

	out := make(map[string]*float64, len(targets))
	for _, name := range targets {
		vp, ok := payload.Variables[name]
		if !ok {
			writeError(w, http.StatusBadRequest, core.NewNotFoundError("variable", name))
			return
		}
		v := toVariable(core.VariableKey(name), vp)
		h, err := s.estimator.Entropy(r.Context(), v, k, payload.Mask)
		if err != nil {
			status := http.StatusInternalServerError
			if core.IsRequestError(err) || stderrors.Is(err, core.ErrInsufficientData) {
				status = http.StatusBadRequest
			}
			writeError(w, status, err)
			return
		}
		out[name] = finiteOrNil(h)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"entropy": out})
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.runs.ListRuns(r.Context(), 50, 0)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseRunID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	run, err := s.runs.GetRun(r.Context(), id)
	if err != nil {
		status := http.StatusInternalServerError
		if core.IsNotFoundError(err) {
			status = http.StatusNotFound
		}
		writeError(w, status, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":         run.ID.String(),
		"source":     run.Source,
		"created_at": run.CreatedAt,
		"cells":      buildResponse(run.Table).Cells,
	})
}

func buildResponse(table *estimate.Table) estimateResponse {
	cells := table.Cells()
	out := make([]cellPayload, len(cells))
	for i, c := range cells {
		out[i] = cellPayload{
			X:          c.Key.X.String(),
			Y:          c.Key.Y.String(),
			Lag:        c.Key.Lag,
			MI:         finiteOrNil(c.MI),
			Statistic:  finiteOrNil(c.Statistic),
			PValue:     finiteOrNil(c.PValue),
			SampleSize: c.SampleSize,
			Degeneracy: string(c.Degeneracy),
		}
	}
	return estimateResponse{RunID: table.RunID.String(), Cells: out}
}

func toVariable(key core.VariableKey, vp variablePayload) estimate.Variable {
	var v estimate.Variable
	if len(vp.Cols) > 0 {
		v = estimate.NewMultiVariable(key, vp.Cols)
	} else {
		v = estimate.NewVariable(key, vp.Samples)
	}
	v.Discrete = vp.Discrete
	return v
}

func toKeys(names []string) []core.VariableKey {
	keys := make([]core.VariableKey, len(names))
	for i, n := range names {
		keys[i] = core.VariableKey(n)
	}
	return keys
}

func finiteOrNil(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{
		"error": err.Error(),
		"code":  errors.GetCode(err),
	})
}
