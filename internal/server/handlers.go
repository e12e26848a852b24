package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dudecon/SpaceWheat-sub011/internal/environment"
	"github.com/dudecon/SpaceWheat-sub011/internal/telemetry"
)

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":       "healthy",
		"environments": len(s.manager.List()),
	})
}

type environmentSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	Qubits    int       `json:"qubits"`
	Labels    []string  `json:"labels"`
}

func summarize(env *environment.Environment) environmentSummary {
	return environmentSummary{
		ID:        env.ID(),
		Name:      env.Name(),
		CreatedAt: env.CreatedAt(),
		Qubits:    env.NumQubits(),
		Labels:    env.Labels(),
	}
}

func (s *Server) handleListEnvironments(w http.ResponseWriter, r *http.Request) {
	envs := s.manager.List()
	out := make([]environmentSummary, 0, len(envs))
	for _, env := range envs {
		out = append(out, summarize(env))
	}
	s.writeJSON(w, http.StatusOK, out)
}

// lookupEnv resolves the {id} URL parameter, writing a 404 on miss.
func (s *Server) lookupEnv(w http.ResponseWriter, r *http.Request) (*environment.Environment, bool) {
	id := chi.URLParam(r, "id")
	env, ok := s.manager.Get(id)
	if !ok {
		s.writeError(w, http.StatusNotFound, "environment not found")
		return nil, false
	}
	return env, true
}

func (s *Server) handleEnvironmentDetail(w http.ResponseWriter, r *http.Request) {
	env, ok := s.lookupEnv(w, r)
	if !ok {
		return
	}

	detail := struct {
		environmentSummary
		Purity    float64       `json:"purity"`
		Entropy   float64       `json:"entropy"`
		Entangled map[int][]int `json:"entangled"`
	}{
		environmentSummary: summarize(env),
		Purity:             env.Purity(),
		Entropy:            env.Entropy(),
		Entangled:          make(map[int][]int),
	}
	for q := 0; q < env.NumQubits(); q++ {
		if linked := env.Entangled(q); len(linked) > 0 {
			detail.Entangled[q] = linked
		}
	}

	s.writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleObservables(w http.ResponseWriter, r *http.Request) {
	env, ok := s.lookupEnv(w, r)
	if !ok {
		return
	}

	pops := make(map[string]float64)
	for _, label := range env.Labels() {
		pops[label] = env.Population(label)
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"populations": pops,
		"purity":      env.Purity(),
		"entropy":     env.Entropy(),
	})
}

func (s *Server) handleCoherence(w http.ResponseWriter, r *http.Request) {
	env, ok := s.lookupEnv(w, r)
	if !ok {
		return
	}

	labelA := r.URL.Query().Get("a")
	labelB := r.URL.Query().Get("b")
	if labelA == "" || labelB == "" {
		s.writeError(w, http.StatusBadRequest, "query parameters a and b are required")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"a":         labelA,
		"b":         labelB,
		"coherence": env.Coherence(labelA, labelB),
	})
}

func (s *Server) handleMutualInformation(w http.ResponseWriter, r *http.Request) {
	env, ok := s.lookupEnv(w, r)
	if !ok {
		return
	}

	qubitA, errA := strconv.Atoi(r.URL.Query().Get("a"))
	qubitB, errB := strconv.Atoi(r.URL.Query().Get("b"))
	if errA != nil || errB != nil {
		s.writeError(w, http.StatusBadRequest, "query parameters a and b must be qubit indices")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"a":                  qubitA,
		"b":                  qubitB,
		"mutual_information": env.MutualInformation(qubitA, qubitB),
	})
}

func (s *Server) handleBloch(w http.ResponseWriter, r *http.Request) {
	env, ok := s.lookupEnv(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, env.Bloch())
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	env, ok := s.lookupEnv(w, r)
	if !ok {
		return
	}
	if s.history == nil {
		s.writeError(w, http.StatusNotFound, "history is not enabled")
		return
	}

	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			s.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	recs, err := s.history.History(r.Context(), env.ID(), limit)
	if err != nil {
		s.log.Error().Err(err).Str("env", env.ID()).Msg("Failed to query history")
		s.writeError(w, http.StatusInternalServerError, "failed to query history")
		return
	}
	if recs == nil {
		recs = []telemetry.Record{}
	}
	s.writeJSON(w, http.StatusOK, recs)
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError writes a JSON error response
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
