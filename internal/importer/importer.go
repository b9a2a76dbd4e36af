// Package importer loads historical applied jobs from a JSON payload,
// validated against the embedded import schema before any row is written.
package importer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"

	"github.com/qri-io/jsonschema"

	dbfs "github.com/garnizeh/bidtrack/db"
	"github.com/garnizeh/bidtrack/pkg/models"
	"github.com/garnizeh/bidtrack/pkg/repository"
)

var ErrInvalidPayload = errors.New("import payload failed schema validation")

type Importer struct {
	schema  *jsonschema.Schema
	applied repository.AppliedJobRepo
}

// Row is one applied job of the import payload.
type Row struct {
	UserID        int64    `json:"user_id"`
	PlatformID    *int64   `json:"platform_id,omitempty"`
	ProfileID     *int64   `json:"profile_id,omitempty"`
	JobID         *int64   `json:"job_id,omitempty"`
	Connects      int64    `json:"connects"`
	Stage         string   `json:"stage"`
	AppliedAt     int64    `json:"applied_at"`
	RepliedAt     *int64   `json:"replied_at,omitempty"`
	InterviewedAt *int64   `json:"interviewed_at,omitempty"`
	HiredAt       *int64   `json:"hired_at,omitempty"`
	Notes         string   `json:"notes,omitempty"`
	Technologies  []string `json:"technologies,omitempty"`
}

// Result reports what the import did.
type Result struct {
	Inserted int      `json:"inserted"`
	Skipped  int      `json:"skipped"`
	Problems []string `json:"problems,omitempty"`
}

func New(applied repository.AppliedJobRepo) (*Importer, error) {
	b, err := fs.ReadFile(dbfs.SeedFiles, "seed/import_schema_v1.json")
	if err != nil {
		return nil, fmt.Errorf("read import schema: %w", err)
	}
	rs := &jsonschema.Schema{}
	if err := json.Unmarshal(b, rs); err != nil {
		return nil, fmt.Errorf("parse import schema: %w", err)
	}
	return &Importer{schema: rs, applied: applied}, nil
}

// Import validates the payload and inserts rows one by one. Duplicates
// of an existing (user, job, profile) application are skipped, not
// errors.
func (im *Importer) Import(ctx context.Context, payload []byte) (*Result, error) {
	keyErrs, err := im.schema.ValidateBytes(ctx, payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if len(keyErrs) > 0 {
		msgs := make([]string, 0, len(keyErrs))
		for _, ke := range keyErrs {
			msgs = append(msgs, ke.Error())
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, msgs)
	}

	var rows []Row
	if err := json.Unmarshal(payload, &rows); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	res := &Result{}
	for i, row := range rows {
		existing, err := im.applied.FindApplication(ctx, row.UserID, row.JobID, row.ProfileID)
		if err != nil {
			return nil, fmt.Errorf("duplicate check row %d: %w", i, err)
		}
		if existing != nil {
			res.Skipped++
			continue
		}

		a := &models.AppliedJob{
			UserID:        row.UserID,
			PlatformID:    row.PlatformID,
			ProfileID:     row.ProfileID,
			JobID:         row.JobID,
			Connects:      row.Connects,
			Stage:         row.Stage,
			AppliedAt:     row.AppliedAt,
			RepliedAt:     row.RepliedAt,
			InterviewedAt: row.InterviewedAt,
			HiredAt:       row.HiredAt,
			Notes:         row.Notes,
			Technologies:  row.Technologies,
		}
		if _, err := im.applied.CreateAppliedJob(ctx, a); err != nil {
			res.Problems = append(res.Problems, fmt.Sprintf("row %d: %v", i, err))
			continue
		}
		res.Inserted++
	}
	return res, nil
}
