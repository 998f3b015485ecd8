package server

import (
	"strings"

	"aurelo/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetWorkplaces handles GET /api/workplaces
func (s *Server) GetWorkplaces(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	workplaces, err := s.workplaceRepo.ListByUser(c.Context(), userID)
	if err != nil {
		return models.RespondWithError(c, models.HTTPStatus(err), err)
	}

	return c.JSON(workplaces)
}

// CreateWorkplace handles POST /api/workplaces
func (s *Server) CreateWorkplace(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req struct {
		InstitutionName string `json:"institution_name"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	name := strings.TrimSpace(req.InstitutionName)
	if name == "" || len(name) > 200 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("institution_name must be 1-200 characters"))
	}

	workplace := &models.Workplace{
		UserID:          userID,
		InstitutionName: name,
	}
	if err := s.workplaceRepo.Create(c.Context(), workplace); err != nil {
		return models.RespondWithError(c, models.HTTPStatus(err), err)
	}

	return c.Status(fiber.StatusCreated).JSON(workplace)
}
