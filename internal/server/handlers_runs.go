package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/resume-screener/internal/export"
	"github.com/jonathan/resume-screener/internal/server/middleware"
	"github.com/jonathan/resume-screener/internal/types"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// runResponse is a stored run with its rows in rank order.
type runResponse struct {
	Run   *types.AnalysisRun `json:"run"`
	Table types.RankingTable `json:"table"`
}

// handleListRuns lists the caller's runs, newest first.
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 {
			s.errorResponse(w, &ErrValidation{Field: "limit", Message: "must be a positive integer"})
			return
		}
	}

	runs, err := s.store.ListRuns(r.Context(), &userID, limit)
	if err != nil {
		s.errorResponse(w, fmt.Errorf("failed to list runs: %w", err))
		return
	}
	writeJSON(w, s.log, http.StatusOK, map[string]any{"runs": runs})
}

// handleGetRun returns one run and its ranking table.
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	resp, err := s.loadRun(r)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	writeJSON(w, s.log, http.StatusOK, resp)
}

// handleExportCSV downloads a run's ranking table as CSV.
func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	resp, err := s.loadRun(r)
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", attachment(resp.Run.ID, "csv"))
	if err := export.WriteCSV(w, resp.Table); err != nil {
		s.log.Error("csv export failed", zap.String("run_id", resp.Run.ID.String()), zap.Error(err))
	}
}

// handleExportXLSX downloads a run's ranking table as a workbook with a score chart.
func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	resp, err := s.loadRun(r)
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", attachment(resp.Run.ID, "xlsx"))
	if err := export.WriteXLSX(w, resp.Table, ""); err != nil {
		s.log.Error("xlsx export failed", zap.String("run_id", resp.Run.ID.String()), zap.Error(err))
	}
}

// loadRun fetches the run named by the path. Runs owned by someone else are
// reported as not found.
func (s *Server) loadRun(r *http.Request) (*runResponse, error) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		return nil, err
	}

	runID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return nil, &ErrValidation{Field: "id", Message: "must be a UUID"}
	}

	run, err := s.store.GetRun(r.Context(), runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	if run == nil || run.UserID == nil || *run.UserID != userID {
		return nil, &ErrRunNotFound{RunID: runID}
	}

	rows, err := s.store.ListRankingRows(r.Context(), runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rows: %w", err)
	}
	return &runResponse{Run: run, Table: types.RankingTable{Rows: rows}}, nil
}

func attachment(runID uuid.UUID, ext string) string {
	return fmt.Sprintf("attachment; filename=\"run-%s.%s\"", runID, ext)
}
