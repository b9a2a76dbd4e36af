package models

import "encoding/json"

// Stage values for an applied job. The UI may set any stage directly;
// there is no enforced linear order.
const (
	StageApplied   = "applied"
	StageReplied   = "replied"
	StageInterview = "interview"
	StageHired     = "hired"
	StageNotHired  = "not-hired"
)

// Notification priority tiers. High and urgent notifications are also
// broadcast to the admin-wide channel.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

const (
	BudgetHourly = "Hourly"
	BudgetFixed  = "Fixed"
)

type User struct {
	ID           int64  `json:"id" db:"id"`
	Name         string `json:"name" db:"name" validate:"required"`
	Email        string `json:"email" db:"email" validate:"required,email"`
	Role         string `json:"role" db:"role"`
	Blocked      bool   `json:"blocked" db:"blocked"`
	PasswordHash string `json:"-" db:"password_hash"`
	Created      int64  `json:"created" db:"created"`
	Updated      int64  `json:"updated" db:"updated"`
}

// Platform is a freelance marketplace with a per-connect cost.
// Static reference data, admin editable.
type Platform struct {
	ID         int64   `json:"id" db:"id"`
	Name       string  `json:"name" db:"name"`
	ConnectUSD float64 `json:"connect_usd" db:"connect_usd"`
	ConnectINR float64 `json:"connect_inr" db:"connect_inr"`
	Created    int64   `json:"created" db:"created"`
	Updated    int64   `json:"updated" db:"updated"`
}

// Profile is a bidding identity. OwnerID is nil for shared agency profiles.
type Profile struct {
	ID      int64  `json:"id" db:"id"`
	Name    string `json:"name" db:"name"`
	OwnerID *int64 `json:"owner_id,omitempty" db:"owner_id"`
	Created int64  `json:"created" db:"created"`
	Updated int64  `json:"updated" db:"updated"`
}

// Job is a manually entered marketplace posting.
type Job struct {
	ID          int64  `json:"id" db:"id"`
	PlatformID  *int64 `json:"platform_id,omitempty" db:"platform_id"`
	ExternalID  string `json:"external_id,omitempty" db:"external_id"`
	Title       string `json:"title" db:"title"`
	URL         string `json:"url,omitempty" db:"url"`
	Description string `json:"description,omitempty" db:"description"`
	PostedAt    *int64 `json:"posted_at,omitempty" db:"posted_at"`
	Created     int64  `json:"created" db:"created"`
}

// AppliedJob is one application by a user to a job under a profile.
// At most one row exists per (user, job, profile).
type AppliedJob struct {
	ID            int64    `json:"id" db:"id"`
	UserID        int64    `json:"user_id" db:"user_id"`
	PlatformID    *int64   `json:"platform_id,omitempty" db:"platform_id"`
	ProfileID     *int64   `json:"profile_id,omitempty" db:"profile_id"`
	JobID         *int64   `json:"job_id,omitempty" db:"job_id"`
	Connects      int64    `json:"connects" db:"connects"`
	Stage         string   `json:"stage" db:"stage"`
	AppliedAt     int64    `json:"applied_at" db:"applied_at"`
	RepliedAt     *int64   `json:"replied_at,omitempty" db:"replied_at"`
	InterviewedAt *int64   `json:"interviewed_at,omitempty" db:"interviewed_at"`
	HiredAt       *int64   `json:"hired_at,omitempty" db:"hired_at"`
	Notes         string   `json:"notes,omitempty" db:"notes"`
	Technologies  []string `json:"technologies,omitempty" db:"technologies"`
	Attachments   []string `json:"attachments,omitempty" db:"attachments"`
	Created       int64    `json:"created" db:"created"`
	Updated       int64    `json:"updated" db:"updated"`
}

// HiredJob records the hire outcome of an AppliedJob. Exactly one per
// applied job; AppliedJobID is the FK to the source row.
type HiredJob struct {
	ID           int64   `json:"id" db:"id"`
	AppliedJobID int64   `json:"applied_job_id" db:"applied_job_id"`
	ClientName   string  `json:"client_name" db:"client_name"`
	DeveloperID  *int64  `json:"developer_id,omitempty" db:"developer_id"`
	BidderID     int64   `json:"bidder_id" db:"bidder_id"`
	BudgetType   string  `json:"budget_type" db:"budget_type"`
	BudgetAmount float64 `json:"budget_amount" db:"budget_amount"`
	HiredAt      int64   `json:"hired_at" db:"hired_at"`
	Notes        string  `json:"notes,omitempty" db:"notes"`
	Created      int64   `json:"created" db:"created"`
}

type IgnoredJob struct {
	ID      int64  `json:"id" db:"id"`
	UserID  int64  `json:"user_id" db:"user_id"`
	JobID   int64  `json:"job_id" db:"job_id"`
	Reason  string `json:"reason,omitempty" db:"reason"`
	Created int64  `json:"created" db:"created"`
}

// WeeklyTarget is a per-user revenue goal for one week window.
// At most one row per (user, week_start, week_end); writes are upserts.
type WeeklyTarget struct {
	ID             int64   `json:"id" db:"id"`
	UserID         int64   `json:"user_id" db:"user_id"`
	WeekStart      int64   `json:"week_start" db:"week_start"`
	WeekEnd        int64   `json:"week_end" db:"week_end"`
	TargetAmount   float64 `json:"target_amount" db:"target_amount"`
	AchievedAmount float64 `json:"achieved_amount" db:"achieved_amount"`
	Created        int64   `json:"created" db:"created"`
	Updated        int64   `json:"updated" db:"updated"`
}

type Notification struct {
	ID       int64           `json:"id" db:"id"`
	UserID   int64           `json:"user_id" db:"user_id"`
	ActorID  *int64          `json:"actor_id,omitempty" db:"actor_id"`
	Type     string          `json:"type" db:"type"`
	Title    string          `json:"title" db:"title"`
	Body     string          `json:"body,omitempty" db:"body"`
	Priority string          `json:"priority" db:"priority"`
	Read     bool            `json:"read" db:"read"`
	Metadata json.RawMessage `json:"metadata,omitempty" db:"metadata"`
	Created  int64           `json:"created" db:"created"`
}

type Portfolio struct {
	ID           int64    `json:"id" db:"id"`
	UserID       int64    `json:"user_id" db:"user_id"`
	Title        string   `json:"title" db:"title"`
	URL          string   `json:"url,omitempty" db:"url"`
	Description  string   `json:"description,omitempty" db:"description"`
	Technologies []string `json:"technologies,omitempty" db:"technologies"`
	Created      int64    `json:"created" db:"created"`
	Updated      int64    `json:"updated" db:"updated"`
}

// FieldChange is one entry of a ChangeLog diff.
type FieldChange struct {
	Old any `json:"old"`
	New any `json:"new"`
}

// ChangeLog is an audit row recording the field-level diff of an edit.
type ChangeLog struct {
	ID       int64           `json:"id" db:"id"`
	Entity   string          `json:"entity" db:"entity"`
	EntityID int64           `json:"entity_id" db:"entity_id"`
	UserID   int64           `json:"user_id" db:"user_id"`
	Changes  json.RawMessage `json:"changes" db:"changes"`
	Created  int64           `json:"created" db:"created"`
}

// ValidStage reports whether s is a known stage value.
func ValidStage(s string) bool {
	switch s {
	case StageApplied, StageReplied, StageInterview, StageHired, StageNotHired:
		return true
	}
	return false
}

// ValidPriority reports whether p is a known priority tier.
func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}
