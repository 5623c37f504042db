package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"mercator-hq/saturn/pkg/judge"
	"mercator-hq/saturn/pkg/ruleset"
)

type judgeRequest struct {
	TenantID  string         `json:"tenant_id"`
	RulesetID string         `json:"ruleset_id"`
	Input     map[string]any `json:"input"`
	Policy    string         `json:"policy"`
	Context   map[string]any `json:"context"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleJudge(w http.ResponseWriter, r *http.Request) {
	var req judgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	tenantID, err := uuid.Parse(req.TenantID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "tenant_id: "+err.Error())
		return
	}
	rulesetID, err := uuid.Parse(req.RulesetID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "ruleset_id: "+err.Error())
		return
	}
	policy, err := judge.ParsePolicy(req.Policy)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.engine.Judge(r.Context(), judge.Request{
		TenantID:  tenantID,
		RulesetID: rulesetID,
		Input:     req.Input,
		Policy:    policy,
		Context:   req.Context,
	})
	if err != nil {
		var ve *judge.ValidationError
		var pe *judge.UnknownPolicyError
		if errors.As(err, &ve) || errors.As(err, &pe) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.Error("judgment failed", "error", err)
		writeError(w, http.StatusInternalServerError, "judgment failed")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

type invalidateRequest struct {
	TenantID  string `json:"tenant_id"`
	RulesetID string `json:"ruleset_id,omitempty"`
}

func (s *Server) handleCacheInvalidate(w http.ResponseWriter, r *http.Request) {
	var req invalidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	tenantID, err := uuid.Parse(req.TenantID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "tenant_id: "+err.Error())
		return
	}
	rulesetID := uuid.Nil
	if req.RulesetID != "" {
		if rulesetID, err = uuid.Parse(req.RulesetID); err != nil {
			writeError(w, http.StatusBadRequest, "ruleset_id: "+err.Error())
			return
		}
	}

	removed, err := s.engine.Invalidate(r.Context(), tenantID, rulesetID)
	if err != nil {
		slog.Error("cache invalidation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "cache invalidation failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"removed": removed})
}

func (s *Server) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.engine.CacheStats(r.Context())
	if err != nil {
		slog.Error("cache stats failed", "error", err)
		writeError(w, http.StatusInternalServerError, "cache stats failed")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleBreakerList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.breakers.ListAll())
}

func (s *Server) handleBreakerReset(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if !s.breakers.Reset(name) {
		writeError(w, http.StatusNotFound, "no breaker named "+name)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reset": name})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (s *Server) handleRulesetSave(w http.ResponseWriter, r *http.Request) {
	var rs ruleset.Ruleset
	if err := json.NewDecoder(r.Body).Decode(&rs); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if rs.ID == uuid.Nil || rs.TenantID == uuid.Nil {
		writeError(w, http.StatusBadRequest, "id and tenant_id are required")
		return
	}
	if rs.Script == "" {
		writeError(w, http.StatusBadRequest, "script cannot be empty")
		return
	}

	if err := s.rulesets.Save(r.Context(), &rs); err != nil {
		slog.Error("ruleset save failed", "error", err)
		writeError(w, http.StatusInternalServerError, "ruleset save failed")
		return
	}

	// A changed ruleset invalidates its cached judgments.
	if _, err := s.engine.Invalidate(r.Context(), rs.TenantID, rs.ID); err != nil {
		slog.Warn("cache invalidation after ruleset save failed", "error", err)
	}

	writeJSON(w, http.StatusOK, rs)
}

func (s *Server) handleRulesetList(w http.ResponseWriter, r *http.Request) {
	tenantID, err := uuid.Parse(r.URL.Query().Get("tenant_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "tenant_id: "+err.Error())
		return
	}

	rulesets, err := s.rulesets.ListByTenant(r.Context(), tenantID)
	if err != nil {
		slog.Error("ruleset list failed", "error", err)
		writeError(w, http.StatusInternalServerError, "ruleset list failed")
		return
	}
	if rulesets == nil {
		rulesets = []*ruleset.Ruleset{}
	}
	writeJSON(w, http.StatusOK, rulesets)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
