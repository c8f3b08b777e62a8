package http

import (
	"net/http"

	"github.com/FireWonders/personal-finance-assistant-ai-agent/internal/forecast"
	"github.com/FireWonders/personal-finance-assistant-ai-agent/internal/log"
	"github.com/FireWonders/personal-finance-assistant-ai-agent/internal/services"
)

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := s.deps.Goals.ListGoals(r.Context())
	if err != nil {
		s.respondError(w, r, log.OpList, err)
		return
	}
	resp := make([]goalResponse, 0, len(goals))
	for _, g := range goals {
		resp = append(resp, newGoalResponse(g))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, log.OpParse, err)
		return
	}
	goal, err := req.toGoal()
	if err != nil {
		s.respondError(w, r, log.OpValidate, err)
		return
	}
	created, err := s.deps.Goals.CreateGoal(r.Context(), goal)
	if err != nil {
		s.respondError(w, r, log.OpCreate, err)
		return
	}
	writeJSON(w, http.StatusCreated, newGoalResponse(created))
}

func (s *Server) handleGetGoal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.respondError(w, r, log.OpParse, err)
		return
	}
	goal, err := s.deps.Goals.GetGoal(r.Context(), id)
	if err != nil {
		s.respondError(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, newGoalResponse(goal))
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.respondError(w, r, log.OpParse, err)
		return
	}
	if err := s.deps.Goals.DeleteGoal(r.Context(), id); err != nil {
		s.respondError(w, r, log.OpDelete, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGoalSnapshot(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.respondError(w, r, log.OpParse, err)
		return
	}
	snap, err := s.deps.Goals.LatestSnapshot(r.Context(), id)
	if err != nil {
		s.respondError(w, r, log.OpSnapshot, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// handleRefreshGoal recomputes the snapshot synchronously, or with
// ?async=true hands the work to the projection worker.
func (s *Server) handleRefreshGoal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.respondError(w, r, log.OpParse, err)
		return
	}
	if r.URL.Query().Get("async") == "true" {
		if _, err := s.deps.Goals.GetGoal(r.Context(), id); err != nil {
			s.respondError(w, r, log.OpSnapshot, err)
			return
		}
		s.deps.Goals.RequestRefresh(r.Context(), id, services.ReasonManual)
		writeJSON(w, http.StatusAccepted, map[string]any{"goal_id": id, "status": "queued"})
		return
	}
	snap, err := s.deps.Goals.RefreshSnapshot(r.Context(), id, services.ReasonManual)
	if err != nil {
		s.respondError(w, r, log.OpSnapshot, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleAnalyzeGoal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.respondError(w, r, log.OpParse, err)
		return
	}
	res, err := s.deps.Goals.Analyze(r.Context(), id)
	if err != nil {
		s.respondError(w, r, log.OpAnalyze, err)
		return
	}
	s.logAnalysis(r, res)
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleAnalyzeAll(w http.ResponseWriter, r *http.Request) {
	results, err := s.deps.Goals.AnalyzeAll(r.Context())
	if err != nil {
		s.respondError(w, r, log.OpAnalyze, err)
		return
	}
	if results == nil {
		results = []forecast.Result{}
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) logAnalysis(r *http.Request, res forecast.Result) {
	if len(res.MonthlyData) == 0 {
		return
	}
	s.structured.LogGoalAnalyzed(r.Context(), res.GoalID, res.MonthlyData[0].TargetLine,
		res.FinalAmount, res.Shortfall, res.IsAchievable, len(res.MonthlyData)-1)
}
