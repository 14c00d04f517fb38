package api

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/rxtech-lab/deployment-portal/internal/services"
)

// handleGeneralReport streams the filtered deployments as a CSV attachment
func (s *APIServer) handleGeneralReport(c *fiber.Ctx) error {
	filter := services.ReportFilter{
		Release:     c.Query("release"),
		Environment: c.Query("environment"),
		Team:        c.Query("team"),
		StartDate:   c.Query("startDate"),
		EndDate:     c.Query("endDate"),
	}

	report, err := s.deps.Reports.Generate(c.UserContext(), filter)
	if err != nil {
		return s.respondError(c, err)
	}

	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", report.Filename))
	return c.Send(report.Data)
}
