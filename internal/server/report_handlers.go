package server

import "github.com/gofiber/fiber/v2"

// GetDashboardStats handles GET /api/dashboard/stats
// @Summary Dashboard counters
// @Tags reporting
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.DashboardStats
// @Failure 403 {object} models.ErrorResponse
// @Router /dashboard/stats [get]
func (s *Server) GetDashboardStats(c *fiber.Ctx) error {
	stats, err := s.reportService.DashboardStats(c.UserContext())
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(stats)
}

// GetAnalyticsResults handles GET /api/analytics/results
// @Summary Paged results, newest first
// @Tags reporting
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page (default 1)"
// @Param limit query int false "Page size (default 10, max 100)"
// @Success 200 {object} service.ResultsPage
// @Router /analytics/results [get]
func (s *Server) GetAnalyticsResults(c *fiber.Ctx) error {
	page, err := s.reportService.ListResults(c.UserContext(), parsePageRequest(c))
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(page)
}

// GetAnalyticsSummary handles GET /api/analytics/summary
// @Summary Category distribution and per-role averages
// @Tags reporting
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.AnalyticsSummary
// @Router /analytics/summary [get]
func (s *Server) GetAnalyticsSummary(c *fiber.Ctx) error {
	summary, err := s.reportService.Summary(c.UserContext())
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(summary)
}
