package api

import (
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/garnizeh/bidtrack/internal/apps"
	"github.com/garnizeh/bidtrack/internal/files"
	"github.com/garnizeh/bidtrack/pkg/models"
	"github.com/garnizeh/bidtrack/pkg/repository"
)

// maxUploadSize bounds a multipart apply/edit request body.
const maxUploadSize = 20 << 20

type JobsHandler struct {
	apps  *apps.Service
	store *files.Store
}

func NewJobsHandler(s *apps.Service, store *files.Store) *JobsHandler {
	return &JobsHandler{apps: s, store: store}
}

type applyRequest struct {
	PlatformID   *int64   `json:"platform_id,omitempty"`
	ProfileID    *int64   `json:"profile_id,omitempty"`
	JobID        *int64   `json:"job_id,omitempty"`
	Connects     int64    `json:"connects"`
	AppliedAt    *int64   `json:"applied_at,omitempty"`
	Notes        string   `json:"notes,omitempty"`
	Technologies []string `json:"technologies,omitempty"`
}

func (h *JobsHandler) Apply(w http.ResponseWriter, r *http.Request) {
	var req applyRequest
	var uploads []*multipart.FileHeader

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			http.Error(w, "invalid multipart form", http.StatusBadRequest)
			return
		}
		parsed, err := applyFromForm(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		req = *parsed
		uploads = r.MultipartForm.File["attachments"]
	} else {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
	}

	if req.Connects < 0 {
		http.Error(w, "connects must not be negative", http.StatusBadRequest)
		return
	}

	attachments, err := h.saveUploads(uploads)
	if err != nil {
		http.Error(w, "failed to store attachment", http.StatusInternalServerError)
		return
	}

	a := &models.AppliedJob{
		UserID:       currentUserID(r),
		PlatformID:   req.PlatformID,
		ProfileID:    req.ProfileID,
		JobID:        req.JobID,
		Connects:     req.Connects,
		Notes:        req.Notes,
		Technologies: req.Technologies,
		Attachments:  attachments,
	}
	if req.AppliedAt != nil {
		a.AppliedAt = *req.AppliedAt
	}

	id, err := h.apps.Apply(r.Context(), a)
	if err != nil {
		switch {
		case errors.Is(err, apps.ErrDuplicate):
			http.Error(w, err.Error(), http.StatusConflict)
		case errors.Is(err, apps.ErrInvalidStage):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			http.Error(w, "failed to record application", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, map[string]any{"id": id}, http.StatusCreated)
}

func (h *JobsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := repository.AppliedJobQuery{Stage: r.URL.Query().Get("stage")}
	q.Limit, q.Offset = parseLimitOffset(r)

	if q.Stage != "" && !models.ValidStage(q.Stage) {
		http.Error(w, "invalid stage", http.StatusBadRequest)
		return
	}

	// non-admins only ever see their own applications
	if currentRole(r) == models.RoleAdmin {
		if s := r.URL.Query().Get("userId"); s != "" {
			ids, err := parseIDList(s)
			if err != nil || len(ids) != 1 {
				http.Error(w, "invalid userId", http.StatusBadRequest)
				return
			}
			q.UserID = &ids[0]
		}
	} else {
		uid := currentUserID(r)
		q.UserID = &uid
	}

	if s := r.URL.Query().Get("platform"); s != "" {
		ids, err := parseIDList(s)
		if err != nil || len(ids) != 1 {
			http.Error(w, "invalid platform", http.StatusBadRequest)
			return
		}
		q.PlatformID = &ids[0]
	}

	items, total, err := h.apps.List(r.Context(), q)
	if err != nil {
		http.Error(w, "failed to list applied jobs", http.StatusInternalServerError)
		return
	}
	if items == nil {
		items = []models.AppliedJob{}
	}

	writeJSON(w, map[string]any{
		"total":  total,
		"limit":  q.Limit,
		"offset": q.Offset,
		"items":  items,
	}, http.StatusOK)
}

func (h *JobsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	a, err := h.apps.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, apps.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to load applied job", http.StatusInternalServerError)
		return
	}

	if currentRole(r) != models.RoleAdmin && a.UserID != currentUserID(r) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	writeJSON(w, a, http.StatusOK)
}

type updateStageRequest struct {
	Stage string `json:"stage"`
	At    *int64 `json:"at,omitempty"`
	Notes string `json:"notes,omitempty"`
}

func (h *JobsHandler) UpdateStage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	if !h.authorizeOwner(w, r, id) {
		return
	}

	var req updateStageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	a, err := h.apps.UpdateStage(r.Context(), id, currentUserID(r), req.Stage, req.At, req.Notes)
	if err != nil {
		switch {
		case errors.Is(err, apps.ErrNotFound):
			http.Error(w, "not found", http.StatusNotFound)
		case errors.Is(err, apps.ErrInvalidStage):
			http.Error(w, "invalid stage", http.StatusBadRequest)
		default:
			http.Error(w, "failed to update stage", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, a, http.StatusOK)
}

type editRequest struct {
	PlatformID   *int64   `json:"platform_id,omitempty"`
	ProfileID    *int64   `json:"profile_id,omitempty"`
	Connects     *int64   `json:"connects,omitempty"`
	Notes        *string  `json:"notes,omitempty"`
	Technologies []string `json:"technologies,omitempty"`
	Attachments  []string `json:"attachments,omitempty"`
}

func (h *JobsHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	if !h.authorizeOwner(w, r, id) {
		return
	}

	var req editRequest
	var uploads []*multipart.FileHeader

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			http.Error(w, "invalid multipart form", http.StatusBadRequest)
			return
		}
		parsed, err := editFromForm(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		req = *parsed
		uploads = r.MultipartForm.File["attachments"]
	} else {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
	}

	// new uploads extend the kept attachment list
	if len(uploads) > 0 {
		saved, err := h.saveUploads(uploads)
		if err != nil {
			http.Error(w, "failed to store attachment", http.StatusInternalServerError)
			return
		}
		if req.Attachments == nil {
			current, err := h.apps.Get(r.Context(), id)
			if err == nil {
				req.Attachments = current.Attachments
			}
		}
		req.Attachments = append(req.Attachments, saved...)
	}

	a, err := h.apps.Edit(r.Context(), id, currentUserID(r), apps.EditRequest{
		PlatformID:   req.PlatformID,
		ProfileID:    req.ProfileID,
		Connects:     req.Connects,
		Notes:        req.Notes,
		Technologies: req.Technologies,
		Attachments:  req.Attachments,
	})
	if err != nil {
		if errors.Is(err, apps.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to edit applied job", http.StatusInternalServerError)
		return
	}

	writeJSON(w, a, http.StatusOK)
}

type ignoreRequest struct {
	JobID  int64  `json:"job_id"`
	Reason string `json:"reason,omitempty"`
}

func (h *JobsHandler) Ignore(w http.ResponseWriter, r *http.Request) {
	var req ignoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if req.JobID <= 0 {
		http.Error(w, "job_id required", http.StatusBadRequest)
		return
	}

	id, err := h.apps.Ignore(r.Context(), &models.IgnoredJob{
		UserID: currentUserID(r),
		JobID:  req.JobID,
		Reason: req.Reason,
	})
	if err != nil {
		if errors.Is(err, apps.ErrDuplicate) {
			http.Error(w, "job already ignored", http.StatusConflict)
			return
		}
		http.Error(w, "failed to ignore job", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{"id": id}, http.StatusCreated)
}

// authorizeOwner loads the applied job and rejects callers who neither
// own it nor hold the admin role. It writes the error response itself.
func (h *JobsHandler) authorizeOwner(w http.ResponseWriter, r *http.Request, id int64) bool {
	a, err := h.apps.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, apps.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return false
		}
		http.Error(w, "failed to load applied job", http.StatusInternalServerError)
		return false
	}
	if currentRole(r) != models.RoleAdmin && a.UserID != currentUserID(r) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return false
	}
	return true
}

func (h *JobsHandler) saveUploads(uploads []*multipart.FileHeader) ([]string, error) {
	var out []string
	for _, fh := range uploads {
		f, err := fh.Open()
		if err != nil {
			return nil, err
		}
		url, err := h.store.Save(fh.Filename, f)
		f.Close()
		if err != nil {
			return nil, err
		}
		out = append(out, url)
	}
	return out, nil
}

func applyFromForm(r *http.Request) (*applyRequest, error) {
	req := &applyRequest{Notes: r.FormValue("notes")}
	var err error
	if req.PlatformID, err = optFormID(r, "platform_id"); err != nil {
		return nil, err
	}
	if req.ProfileID, err = optFormID(r, "profile_id"); err != nil {
		return nil, err
	}
	if req.JobID, err = optFormID(r, "job_id"); err != nil {
		return nil, err
	}
	if v := r.FormValue("connects"); v != "" {
		req.Connects, err = strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, errors.New("invalid connects")
		}
	}
	if v := r.FormValue("technologies"); v != "" {
		req.Technologies = splitCSV(v)
	}
	return req, nil
}

func editFromForm(r *http.Request) (*editRequest, error) {
	req := &editRequest{}
	var err error
	if req.PlatformID, err = optFormID(r, "platform_id"); err != nil {
		return nil, err
	}
	if req.ProfileID, err = optFormID(r, "profile_id"); err != nil {
		return nil, err
	}
	if v := r.FormValue("connects"); v != "" {
		c, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, errors.New("invalid connects")
		}
		req.Connects = &c
	}
	if _, ok := r.Form["notes"]; ok {
		notes := r.FormValue("notes")
		req.Notes = &notes
	}
	if _, ok := r.Form["technologies"]; ok {
		req.Technologies = splitCSV(r.FormValue("technologies"))
	}
	if _, ok := r.Form["attachments"]; ok {
		req.Attachments = splitCSV(r.FormValue("attachments"))
	}
	return req, nil
}

func optFormID(r *http.Request, field string) (*int64, error) {
	v := r.FormValue(field)
	if v == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id <= 0 {
		return nil, errors.New("invalid " + field)
	}
	return &id, nil
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}
