// Package stats computes the cross-user job application summary served
// on the admin dashboard: counts, connects spend and its monetary cost,
// hire outcomes and weekly target progress, broken down by platform,
// user and profile.
package stats

import (
	"context"
	"fmt"
	"math"

	"github.com/garnizeh/bidtrack/pkg/models"
	"github.com/garnizeh/bidtrack/pkg/repository"
)

type Service struct {
	stats     repository.StatsRepo
	platforms repository.PlatformRepo
	users     repository.UserRepo
	profiles  repository.ProfileRepo
	targets   repository.WeeklyTargetRepo
}

func New(
	sr repository.StatsRepo,
	plr repository.PlatformRepo,
	ur repository.UserRepo,
	prr repository.ProfileRepo,
	tr repository.WeeklyTargetRepo,
) *Service {
	return &Service{stats: sr, platforms: plr, users: ur, profiles: prr, targets: tr}
}

// JobStats produces the full summary for the given filter. Breakdowns
// are dense: every known platform, user and profile appears even when
// all its metrics are zero.
func (s *Service) JobStats(ctx context.Context, f repository.StatsFilter) (*models.JobStats, error) {
	platforms, err := s.platforms.ListPlatforms(ctx)
	if err != nil {
		return nil, fmt.Errorf("list platforms: %w", err)
	}
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	profiles, err := s.profiles.ListProfiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}

	rates := make(map[int64]models.Platform, len(platforms))
	for _, p := range platforms {
		rates[p.ID] = p
	}

	out := &models.JobStats{
		ByPlatform:   make(map[int64]*models.DimensionStats, len(platforms)),
		ByUser:       make(map[int64]*models.DimensionStats, len(users)),
		ByProfile:    make(map[int64]*models.DimensionStats, len(profiles)),
		TargetByUser: make(map[int64]*models.TargetProgress, len(users)),
	}

	// zero-initialize every breakdown from the reference lists so
	// missing groups read as zero instead of being absent
	for _, p := range platforms {
		out.ByPlatform[p.ID] = &models.DimensionStats{Name: p.Name}
	}
	for _, u := range users {
		out.ByUser[u.ID] = &models.DimensionStats{Name: u.Name}
		out.TargetByUser[u.ID] = &models.TargetProgress{}
	}
	for _, p := range profiles {
		out.ByProfile[p.ID] = &models.DimensionStats{Name: p.Name}
	}

	totals, err := s.stats.StatsTotals(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("stats totals: %w", err)
	}
	out.Totals = *totals

	byPlatform, err := s.stats.GroupedByPlatform(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("group by platform: %w", err)
	}
	for _, g := range byPlatform {
		d, ok := out.ByPlatform[g.Key]
		if !ok {
			continue
		}
		overlay(d, g)
		if p, ok := rates[g.Key]; ok {
			d.CostUSD = round2(float64(g.Connects) * p.ConnectUSD)
			d.CostINR = round2(float64(g.Connects) * p.ConnectINR)
			out.Totals.ConnectsCostUSD += float64(g.Connects) * p.ConnectUSD
			out.Totals.ConnectsCostINR += float64(g.Connects) * p.ConnectINR
		}
	}
	out.Totals.ConnectsCostUSD = round2(out.Totals.ConnectsCostUSD)
	out.Totals.ConnectsCostINR = round2(out.Totals.ConnectsCostINR)

	byUser, err := s.stats.GroupedByUser(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("group by user: %w", err)
	}
	for _, g := range byUser {
		if d, ok := out.ByUser[g.Key]; ok {
			overlay(d, g)
		}
	}

	byProfile, err := s.stats.GroupedByProfile(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("group by profile: %w", err)
	}
	for _, g := range byProfile {
		if d, ok := out.ByProfile[g.Key]; ok {
			overlay(d, g)
		}
	}

	// cost per user/profile needs a second pass grouped by platform,
	// because the per-connect rate is platform specific
	userConnects, err := s.stats.ConnectsByUserPlatform(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("connects by user: %w", err)
	}
	priceConnects(out.ByUser, userConnects, rates)

	profileConnects, err := s.stats.ConnectsByProfilePlatform(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("connects by profile: %w", err)
	}
	priceConnects(out.ByProfile, profileConnects, rates)

	if err := s.targetProgress(ctx, f, out); err != nil {
		return nil, err
	}

	return out, nil
}

// targetProgress fills the weekly target block: targets count only when
// their window fully contains the filter's date range.
func (s *Service) targetProgress(ctx context.Context, f repository.StatsFilter, out *models.JobStats) error {
	if f.Start == nil || f.End == nil {
		return nil
	}

	targets, err := s.targets.ListTargetsContaining(ctx, f.UserIDs, *f.Start, *f.End)
	if err != nil {
		return fmt.Errorf("list targets: %w", err)
	}

	for _, t := range targets {
		out.WeeklyTarget.Target += t.TargetAmount
		out.WeeklyTarget.Achieved += t.AchievedAmount

		p, ok := out.TargetByUser[t.UserID]
		if !ok {
			p = &models.TargetProgress{}
			out.TargetByUser[t.UserID] = p
		}
		p.Target += t.TargetAmount
		p.Achieved += t.AchievedAmount
	}

	out.WeeklyTarget.Percentage = Percentage(out.WeeklyTarget.Achieved, out.WeeklyTarget.Target)
	for _, p := range out.TargetByUser {
		p.Percentage = Percentage(p.Achieved, p.Target)
	}

	return nil
}

func overlay(d *models.DimensionStats, g repository.GroupedRow) {
	d.Applied = g.Applied
	d.Connects = g.Connects
	d.Hired = g.Hired
	d.Replied = g.Replied
	d.Interviewed = g.Interviewed
}

func priceConnects(dims map[int64]*models.DimensionStats, rows []repository.ConnectsRow, rates map[int64]models.Platform) {
	usd := make(map[int64]float64)
	inr := make(map[int64]float64)
	for _, c := range rows {
		p, ok := rates[c.PlatformID]
		if !ok {
			continue
		}
		usd[c.Key] += float64(c.Connects) * p.ConnectUSD
		inr[c.Key] += float64(c.Connects) * p.ConnectINR
	}
	for key, d := range dims {
		d.CostUSD = round2(usd[key])
		d.CostINR = round2(inr[key])
	}
}

// Percentage returns achieved/target*100 rounded to 2 decimals; a zero
// target yields 0, not an error.
func Percentage(achieved, target float64) float64 {
	if target == 0 {
		return 0
	}
	return round2(achieved / target * 100)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
