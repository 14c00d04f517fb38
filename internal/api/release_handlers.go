package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rxtech-lab/deployment-portal/internal/services"
)

func (s *APIServer) handleListReleases(c *fiber.Ctx) error {
	releases, err := s.deps.Releases.List(c.UserContext())
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(releases)
}

func (s *APIServer) handleCreateRelease(c *fiber.Ctx) error {
	var args services.CreateReleaseArgs
	if err := c.BodyParser(&args); err != nil {
		return badRequest(c, "Invalid request body")
	}

	release, err := s.deps.Releases.Create(c.UserContext(), args)
	if err != nil {
		return s.respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Release created successfully",
		"release": release,
	})
}
