package api

import (
	"net/http"

	"github.com/garnizeh/bidtrack/internal/stats"
	"github.com/garnizeh/bidtrack/pkg/repository"
)

type StatsHandler struct {
	stats *stats.Service
}

func NewStatsHandler(s *stats.Service) *StatsHandler {
	return &StatsHandler{stats: s}
}

// JobStats answers GET /v1/admin/job-stats. All filters are optional;
// malformed filter values are a 400, never silently dropped.
func (h *StatsHandler) JobStats(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var f repository.StatsFilter

	var err error
	if f.PlatformIDs, err = parseIDList(q.Get("platform")); err != nil {
		http.Error(w, "invalid platform filter", http.StatusBadRequest)
		return
	}
	if f.UserIDs, err = parseIDList(q.Get("userId")); err != nil {
		http.Error(w, "invalid userId filter", http.StatusBadRequest)
		return
	}
	if s := q.Get("profileId"); s != "" {
		ids, err := parseIDList(s)
		if err != nil || len(ids) != 1 {
			http.Error(w, "invalid profileId filter", http.StatusBadRequest)
			return
		}
		f.ProfileID = &ids[0]
	}

	startStr, endStr := q.Get("startDate"), q.Get("endDate")
	if (startStr == "") != (endStr == "") {
		http.Error(w, "startDate and endDate must be given together", http.StatusBadRequest)
		return
	}
	if startStr != "" {
		start, err := parseDay(startStr)
		if err != nil {
			http.Error(w, "invalid startDate", http.StatusBadRequest)
			return
		}
		end, err := parseDay(endStr)
		if err != nil {
			http.Error(w, "invalid endDate", http.StatusBadRequest)
			return
		}
		if end.Before(start) {
			http.Error(w, "endDate before startDate", http.StatusBadRequest)
			return
		}
		s, e := dayBounds(start, end)
		f.Start, f.End = &s, &e
	}

	out, err := h.stats.JobStats(r.Context(), f)
	if err != nil {
		logger.Error("job stats", "err", err)
		http.Error(w, "failed to compute job stats", http.StatusInternalServerError)
		return
	}

	writeJSON(w, out, http.StatusOK)
}
