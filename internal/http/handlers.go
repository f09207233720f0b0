package http

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"time"

	"shortlog/internal/core"
	"shortlog/internal/middleware/ratelimit"
	"shortlog/internal/middleware/trace"
	"shortlog/internal/report"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, "")
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			writeError(w, http.StatusServiceUnavailable, "NOT_READY", err.Error())
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"}, "")
}

type statsResponse struct {
	Requests           trace.Metrics     `json:"requests"`
	RateLimit          ratelimit.Metrics `json:"rate_limit"`
	SuspiciousRequests int64             `json:"suspicious_requests"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statsResponse{
		Requests:           s.tracer.GetMetrics(),
		RateLimit:          s.limiter.GetMetrics(),
		SuspiciousRequests: s.detector.SuspiciousRequests(),
	}, "")
}

func (s *Server) handleListWorkers(w http.ResponseWriter, r *http.Request) {
	workers, err := s.ledger.Workers(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, workers, "")
}

func (s *Server) handleAddWorker(w http.ResponseWriter, r *http.Request) {
	var req addWorkerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	worker, err := s.ledger.AddWorker(r.Context(), req.Name)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, worker, MsgWorkerAdded)
}

func (s *Server) handleRemoveWorker(w http.ResponseWriter, r *http.Request) {
	id, err := parseWorkerID(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if err := s.ledger.RemoveWorker(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"id": id}, MsgWorkerRemoved)
}

func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := s.ledger.Entries(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries, "")
}

func (s *Server) handleGetEntry(w http.ResponseWriter, r *http.Request) {
	view, err := s.ledger.DayView(r.Context(), s.dateParam(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view, "")
}

func (s *Server) handleSaveEntry(w http.ResponseWriter, r *http.Request) {
	var req saveEntryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	res, err := s.ledger.SaveEntry(r.Context(), s.dateParam(r), req.entry())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res, MsgEntrySaved)
}

type previewResponse struct {
	core.DailySplit
	Display map[string]string `json:"display"`
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	split := s.ledger.Preview(float64(req.Unrecorded), float64(req.Short), req.Attendees)
	writeJSON(w, http.StatusOK, previewResponse{
		DailySplit: split,
		Display: map[string]string{
			"unrecorded_penalty": core.FormatPeso(split.UnrecordedPenalty),
			"short_penalty":      core.FormatPeso(split.ShortPenalty),
			"total_penalty":      core.FormatPeso(split.TotalPenalty),
			"per_person_share":   core.FormatPeso(split.PerPersonShare),
		},
	}, "")
}

func (s *Server) handleRules(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ledger.PenaltyRules(), "")
}

type monthReportResponse struct {
	core.MonthReport
	Label string `json:"label"`
}

func (s *Server) handleMonthReport(w http.ResponseWriter, r *http.Request) {
	year, month, err := parsePeriod(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	mr, err := s.reports.MonthReport(r.Context(), year, month)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, monthReportResponse{MonthReport: mr, Label: report.MonthLabel(year, month)}, "")
}

// handleExport renders into memory first so a failed render still gets a
// JSON error instead of a truncated file.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	year, month, err := parsePeriod(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	format, err := report.ParseFormat(strings.TrimSpace(r.URL.Query().Get("format")))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	renderer, err := s.reports.Renderer(format)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := s.reports.Export(r.Context(), &buf, format, year, month); err != nil {
		writeServiceError(w, r, err)
		return
	}

	name := s.reports.FileName(format, year, month)
	w.Header().Set("Content-Type", renderer.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	msg := MsgExportReady
	if format == report.FormatCSV {
		msg = MsgCSVExportReady
	}
	w.Header().Set("X-Message", msg)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	year, month, err := parsePeriod(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	queued, err := s.reports.RequestSync(r.Context(), year, month)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if queued {
		writeJSON(w, http.StatusAccepted, map[string]bool{"queued": true}, MsgSyncQueued)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"queued": false}, MsgReportPublished)
}
