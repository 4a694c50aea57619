package service

import (
	"context"
	"math"
	"time"

	"navega/internal/models"
	"navega/internal/observability"
	"navega/internal/repository"

	"golang.org/x/sync/errgroup"
)

// NotAvailable stands in for a most-frequent value when there are no results.
const NotAvailable = "N/D"

// ReportService computes the admin dashboard and analytics. Nothing is cached.
type ReportService struct {
	reports repository.ReportRepository
	results repository.ResultRepository
	now     func() time.Time
}

type DashboardStats struct {
	TotalTests     int64  `json:"totalTests"`
	NewUsersToday  int64  `json:"newUsersToday"`
	AverageResult  string `json:"averageResult"`
	TotalUsers     int64  `json:"totalUsers"`
	MostActiveRole string `json:"mostActiveRole"`
}

type ResultsPage struct {
	TotalItems  int64           `json:"totalItems"`
	TotalPages  int             `json:"totalPages"`
	CurrentPage int             `json:"currentPage"`
	Results     []models.Result `json:"results"`
}

type CategoryShare struct {
	Count      int64   `json:"count"`
	Percentage float64 `json:"percentage"`
}

type Distribution struct {
	Verde    CategoryShare `json:"verde"`
	Amarillo CategoryShare `json:"amarillo"`
	Rojo     CategoryShare `json:"rojo"`
	Total    int64         `json:"total"`
}

type RoleSummary struct {
	Role         string  `json:"role"`
	TestCount    int64   `json:"testCount"`
	AverageScore float64 `json:"averageScore"`
}

type AnalyticsSummary struct {
	Distribution  Distribution  `json:"distribution"`
	ResultsByRole []RoleSummary `json:"resultsByRole"`
}

func NewReportService(reports repository.ReportRepository, results repository.ResultRepository) *ReportService {
	return &ReportService{reports: reports, results: results, now: time.Now}
}

// WithClock replaces the time source used for "today".
func (s *ReportService) WithClock(now func() time.Time) *ReportService {
	s.now = now
	return s
}

// today returns server-local midnight and the last millisecond of the day.
func (s *ReportService) today() (time.Time, time.Time) {
	now := s.now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 0, 1).Add(-time.Millisecond)
	return start, end
}

func orNotAvailable(v string) string {
	if v == "" {
		return NotAvailable
	}
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func (s *ReportService) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	defer observability.TrackReport("dashboard_stats")()

	var stats DashboardStats
	var category, role string
	from, to := s.today()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats.TotalTests, err = s.reports.CountResults(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.NewUsersToday, err = s.reports.CountUsersCreatedBetween(gctx, from, to)
		return err
	})
	g.Go(func() (err error) {
		category, err = s.reports.MostFrequentCategory(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalUsers, err = s.reports.CountUsers(gctx)
		return err
	})
	g.Go(func() (err error) {
		role, err = s.reports.MostFrequentRole(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats.AverageResult = orNotAvailable(category)
	stats.MostActiveRole = orNotAvailable(role)
	return &stats, nil
}

// ListResults pages through every result newest first.
func (s *ReportService) ListResults(ctx context.Context, req PageRequest) (*ResultsPage, error) {
	defer observability.TrackReport("results_page")()

	req = req.Normalize()
	results, total, err := s.results.List(ctx, req.window())
	if err != nil {
		return nil, err
	}
	return &ResultsPage{
		TotalItems:  total,
		TotalPages:  totalPages(total, req.Limit),
		CurrentPage: req.Page,
		Results:     results,
	}, nil
}

func (s *ReportService) Summary(ctx context.Context) (*AnalyticsSummary, error) {
	defer observability.TrackReport("analytics_summary")()

	var (
		total  int64
		counts map[models.ResultCategory]int64
		roles  []repository.RoleStat
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		total, err = s.reports.CountResults(gctx)
		return err
	})
	g.Go(func() (err error) {
		counts, err = s.reports.CategoryCounts(gctx)
		return err
	})
	g.Go(func() (err error) {
		roles, err = s.reports.RoleStats(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	share := func(c models.ResultCategory) CategoryShare {
		n := counts[c]
		if total == 0 {
			return CategoryShare{Count: n}
		}
		return CategoryShare{Count: n, Percentage: round2(float64(n) / float64(total) * 100)}
	}

	summary := &AnalyticsSummary{
		Distribution: Distribution{
			Verde:    share(models.CategoryVerde),
			Amarillo: share(models.CategoryAmarillo),
			Rojo:     share(models.CategoryRojo),
			Total:    total,
		},
		ResultsByRole: make([]RoleSummary, 0, len(roles)),
	}
	for _, r := range roles {
		summary.ResultsByRole = append(summary.ResultsByRole, RoleSummary{
			Role:         r.Role,
			TestCount:    r.TestCount,
			AverageScore: round2(r.AverageScore),
		})
	}
	return summary, nil
}
