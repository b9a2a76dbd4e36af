package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"
)

func writeJSON(w http.ResponseWriter, v any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("encode response", "err", err)
	}
}

func currentUserID(r *http.Request) int64 {
	id, _ := r.Context().Value(CtxUserID).(int64)
	return id
}

func currentRole(r *http.Request) string {
	role, _ := r.Context().Value(CtxUserRole).(string)
	return role
}

// parseIDList parses a comma separated list of positive integer IDs.
// Malformed entries are a caller error, answered with 400.
func parseIDList(s string) ([]int64, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil || id <= 0 {
			return nil, strconv.ErrSyntax
		}
		out = append(out, id)
	}
	return out, nil
}

// parseDay parses a YYYY-MM-DD calendar date in local time.
func parseDay(s string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", s, time.Local)
}

// dayBounds returns the unix-milli instants of the first and last
// moment of the local days start and end.
func dayBounds(start, end time.Time) (int64, int64) {
	s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
	e := time.Date(end.Year(), end.Month(), end.Day(), 23, 59, 59, 999_000_000, end.Location())
	return s.UnixMilli(), e.UnixMilli()
}

func parseLimitOffset(r *http.Request) (int, int) {
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 500 {
			limit = v
		}
	}
	offset := 0
	if o := r.URL.Query().Get("offset"); o != "" {
		if v, err := strconv.Atoi(o); err == nil && v >= 0 {
			offset = v
		}
	}
	return limit, offset
}
