package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"shortlog/internal/core"
	"shortlog/internal/services"
)

const maxBodyBytes = 64 << 10

// Amount decodes a JSON number or numeric string. Anything that does not
// parse as a finite, positive amount becomes 0, as the entry form does.
type Amount float64

func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = Amount(core.ParseAmount(s))
		return nil
	}
	*a = Amount(core.ParseAmount(string(b)))
	return nil
}

type addWorkerRequest struct {
	Name string `json:"name"`
}

type saveEntryRequest struct {
	Unrecorded Amount  `json:"unrecorded"`
	Short      Amount  `json:"short"`
	Attendance []int64 `json:"attendance"`
}

func (r saveEntryRequest) entry() core.DayEntry {
	return core.DayEntry{
		UnrecordedAmount: float64(r.Unrecorded),
		ShortAmount:      float64(r.Short),
		Attendance:       r.Attendance,
	}
}

type previewRequest struct {
	Unrecorded Amount `json:"unrecorded"`
	Short      Amount `json:"short"`
	Attendees  int    `json:"attendees"`
}

// decodeJSON reads a bounded JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return fmt.Errorf("request body too large")
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// parsePeriod reads {year}/{month} path parameters; month is 1-based.
func parsePeriod(r *http.Request) (int, time.Month, error) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: year %q", services.ErrInvalidPeriod, chi.URLParam(r, "year"))
	}
	m, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: month %q", services.ErrInvalidPeriod, chi.URLParam(r, "month"))
	}
	month := time.Month(m)
	if err := services.ValidatePeriod(year, month); err != nil {
		return 0, 0, err
	}
	return year, month, nil
}

func parseWorkerID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q", core.ErrInvalidWorkerID, chi.URLParam(r, "id"))
	}
	return id, nil
}

// dateParam resolves {date}, accepting "today" in the server's local time.
func (s *Server) dateParam(r *http.Request) string {
	d := strings.TrimSpace(chi.URLParam(r, "date"))
	if strings.EqualFold(d, "today") {
		return core.DateKey(s.now())
	}
	return d
}
