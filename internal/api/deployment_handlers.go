package api

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rxtech-lab/deployment-portal/internal/api/middleware"
	"github.com/rxtech-lab/deployment-portal/internal/services"
)

// handleListDeployments lists deployment requests, optionally filtered by
// the search and config query parameters
func (s *APIServer) handleListDeployments(c *fiber.Ctx) error {
	filter := services.ListFilter{
		Search: c.Query("search"),
		Config: c.Query("config"),
	}

	deployments, err := s.deps.Deployments.List(c.UserContext(), filter)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(deployments)
}

// handleListAllDeployments lists every deployment request without filters
func (s *APIServer) handleListAllDeployments(c *fiber.Ctx) error {
	deployments, err := s.deps.Deployments.ListAll(c.UserContext())
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(deployments)
}

func (s *APIServer) handleCreateDeployment(c *fiber.Ctx) error {
	var draft services.DeploymentDraft
	if err := c.BodyParser(&draft); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if strings.TrimSpace(draft.CreatedBy) == "" {
		if session := middleware.GetSession(c); session != nil {
			draft.CreatedBy = session.Username
		}
	}

	deployment, err := s.deps.Deployments.Create(c.UserContext(), draft)
	if err != nil {
		return s.respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":    "Deployment created",
		"deployment": deployment,
	})
}

func (s *APIServer) handleUpdateDeployment(c *fiber.Ctx) error {
	id, ok := deploymentID(c)
	if !ok {
		return badRequest(c, "Invalid deployment id")
	}

	var draft services.DeploymentDraft
	if err := c.BodyParser(&draft); err != nil {
		return badRequest(c, "Invalid request body")
	}

	deployment, err := s.deps.Deployments.Update(c.UserContext(), id, draft, middleware.GetSession(c))
	if err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"message":    "Deployment updated",
		"deployment": deployment,
	})
}

func (s *APIServer) handleDeleteDeployment(c *fiber.Ctx) error {
	id, ok := deploymentID(c)
	if !ok {
		return badRequest(c, "Invalid deployment id")
	}

	if err := s.deps.Deployments.Delete(c.UserContext(), id); err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Deployment deleted"})
}

func deploymentID(c *fiber.Ctx) (uint, bool) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
