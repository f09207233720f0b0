package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"shortlog/internal/core"
	applog "shortlog/internal/log"
	"shortlog/internal/report"
	"shortlog/internal/services"
)

// Messages shown by the client's notification toast.
const (
	MsgEntrySaved      = "Entry Saved! Moving to next day..."
	MsgExportReady     = "Excel report downloaded successfully!"
	MsgCSVExportReady  = "CSV report downloaded successfully!"
	MsgWorkerAdded     = "Worker added!"
	MsgWorkerRemoved   = "Worker removed!"
	MsgSyncQueued      = "Report sync queued."
	MsgReportPublished = "Report published to Google Sheets."
)

// APIResponse is the envelope for every JSON response.
type APIResponse struct {
	Success bool      `json:"success"`
	Message string    `json:"message,omitempty"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, data any, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(APIResponse{
		Success: status >= 200 && status < 300,
		Message: message,
		Data:    data,
	})
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: message},
	})
}

func badRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, "BAD_REQUEST", message)
}

// writeServiceError maps domain errors to status codes. Unknown errors are
// logged and reported as 500 without their details.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, core.ErrEmptyName),
		errors.Is(err, core.ErrNameTooLong),
		errors.Is(err, core.ErrInvalidDateKey),
		errors.Is(err, core.ErrInvalidWorkerID),
		errors.Is(err, services.ErrInvalidPeriod),
		errors.Is(err, report.ErrUnknownFormat):
		writeError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, core.ErrWorkerNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, services.ErrSyncDisabled):
		writeError(w, http.StatusServiceUnavailable, "SYNC_DISABLED", err.Error())
	default:
		applog.FromContext(r.Context()).Logger.Log(r.Context(), slog.LevelError, "Request failed",
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldError, err.Error())
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}
