package sqlite

import (
	"encoding/json"
	"time"

	"github.com/garnizeh/bidtrack/internal/db"
	"github.com/garnizeh/bidtrack/pkg/repository"
)

// SQLiteRepo implements repository interfaces using the internal DB wrapper.
type SQLiteRepo struct {
	conn *db.DB
}

// Ensure SQLiteRepo implements the public interfaces.
var _ repository.UserRepo = (*SQLiteRepo)(nil)
var _ repository.PlatformRepo = (*SQLiteRepo)(nil)
var _ repository.ProfileRepo = (*SQLiteRepo)(nil)
var _ repository.JobRepo = (*SQLiteRepo)(nil)
var _ repository.AppliedJobRepo = (*SQLiteRepo)(nil)
var _ repository.HiredJobRepo = (*SQLiteRepo)(nil)
var _ repository.IgnoredJobRepo = (*SQLiteRepo)(nil)
var _ repository.WeeklyTargetRepo = (*SQLiteRepo)(nil)
var _ repository.NotificationRepo = (*SQLiteRepo)(nil)
var _ repository.PortfolioRepo = (*SQLiteRepo)(nil)
var _ repository.ChangeLogRepo = (*SQLiteRepo)(nil)
var _ repository.StatsRepo = (*SQLiteRepo)(nil)

func New(conn *db.DB) *SQLiteRepo {
	return &SQLiteRepo{conn: conn}
}

func now() int64 {
	return time.Now().UTC().UnixMilli()
}

// encodeList stores string slices as JSON text columns.
func encodeList(v []string) string {
	if len(v) == 0 {
		return "[]"
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func decodeList(s string) []string {
	if s == "" || s == "[]" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil
	}
	return out
}
