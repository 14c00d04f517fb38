package api

import (
	"github.com/gofiber/fiber/v2"
)

// handleListServices returns the service catalog ordered by name
func (s *APIServer) handleListServices(c *fiber.Ctx) error {
	list, err := s.deps.Catalog.List(c.UserContext())
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(list)
}

// handleSearchServices returns catalog entries whose name contains the query
func (s *APIServer) handleSearchServices(c *fiber.Ctx) error {
	if !c.Context().QueryArgs().Has("query") {
		return badRequest(c, "query parameter is required")
	}

	list, err := s.deps.Catalog.Search(c.UserContext(), c.Query("query"))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(list)
}
