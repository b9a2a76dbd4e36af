package models

// DimensionStats is one row of a breakdown: the metrics for a single
// platform, user or profile. Breakdowns are keyed by entity ID; Name is
// the display name resolved for the presentation layer.
type DimensionStats struct {
	Name        string  `json:"name"`
	Applied     int64   `json:"applied"`
	Connects    int64   `json:"connects"`
	CostUSD     float64 `json:"cost_usd"`
	CostINR     float64 `json:"cost_inr"`
	Hired       int64   `json:"hired"`
	Replied     int64   `json:"replied"`
	Interviewed int64   `json:"interviewed"`
}

// StatsTotals are the scalar totals of a stats summary.
type StatsTotals struct {
	AppliedJobs      int64   `json:"applied_jobs"`
	Connects         int64   `json:"connects"`
	ConnectsCostUSD  float64 `json:"connects_cost_usd"`
	ConnectsCostINR  float64 `json:"connects_cost_inr"`
	HiredJobs        int64   `json:"hired_jobs"`
	HiredBudget      float64 `json:"hired_budget"`
	Replied          int64   `json:"replied"`
	Interviewed      int64   `json:"interviewed"`
	NotHired         int64   `json:"not_hired"`
}

// TargetProgress is the weekly target portion of a stats summary.
// Percentage is achieved/target*100 rounded to 2 decimals, 0 when the
// target is 0.
type TargetProgress struct {
	Target     float64 `json:"target"`
	Achieved   float64 `json:"achieved"`
	Percentage float64 `json:"percentage"`
}

// JobStats is the full multi-dimensional summary produced by the
// aggregation service. Every known platform/user/profile appears in its
// breakdown even when all its metrics are zero.
type JobStats struct {
	Totals      StatsTotals                `json:"totals"`
	ByPlatform  map[int64]*DimensionStats  `json:"by_platform"`
	ByUser      map[int64]*DimensionStats  `json:"by_user"`
	ByProfile   map[int64]*DimensionStats  `json:"by_profile"`
	WeeklyTarget TargetProgress            `json:"weekly_target"`
	TargetByUser map[int64]*TargetProgress `json:"target_by_user"`
}
