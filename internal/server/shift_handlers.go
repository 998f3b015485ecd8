package server

import (
	"time"

	"aurelo/internal/models"

	"github.com/gofiber/fiber/v2"
)

type shiftRequest struct {
	WorkplaceID    *uint   `json:"workplace_id"`
	StartTime      string  `json:"start_time"`
	EndTime        string  `json:"end_time"`
	EstimatedValue float64 `json:"estimated_value"`
	Notes          string  `json:"notes"`
}

func (r shiftRequest) window() (time.Time, time.Time, error) {
	start, err := time.Parse(time.RFC3339, r.StartTime)
	if err != nil {
		return time.Time{}, time.Time{}, models.NewValidationError("start_time must be RFC3339")
	}
	end, err := time.Parse(time.RFC3339, r.EndTime)
	if err != nil {
		return time.Time{}, time.Time{}, models.NewValidationError("end_time must be RFC3339")
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, models.NewValidationError("end_time must be after start_time")
	}
	return start, end, nil
}

// GetMyShifts handles GET /api/shifts with optional from/to RFC3339 bounds.
func (s *Server) GetMyShifts(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var from, to *time.Time
	if raw := c.Query("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("from must be RFC3339"))
		}
		from = &t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("to must be RFC3339"))
		}
		to = &t
	}

	shifts, err := s.shiftRepo.ListByUser(c.Context(), userID, from, to)
	if err != nil {
		return models.RespondWithError(c, models.HTTPStatus(err), err)
	}

	return c.JSON(shifts)
}

// CreateShift handles POST /api/shifts
func (s *Server) CreateShift(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)

	var req shiftRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	start, end, err := req.window()
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}
	if req.WorkplaceID != nil {
		if _, err := s.workplaceRepo.GetOwned(ctx, userID, *req.WorkplaceID); err != nil {
			return models.RespondWithError(c, models.HTTPStatus(err), err)
		}
	}

	shift := &models.Shift{
		UserID:         userID,
		WorkplaceID:    req.WorkplaceID,
		StartTime:      start,
		EndTime:        end,
		EstimatedValue: req.EstimatedValue,
		Status:         models.ShiftStatusScheduled,
		Notes:          req.Notes,
	}
	if err := s.shiftRepo.Create(ctx, shift); err != nil {
		return models.RespondWithError(c, models.HTTPStatus(err), err)
	}

	return c.Status(fiber.StatusCreated).JSON(shift)
}

// UpdateShift handles PUT /api/shifts/:id, owner scoped.
func (s *Server) UpdateShift(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)

	shiftID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	shift, err := s.shiftRepo.GetOwned(ctx, userID, shiftID)
	if err != nil {
		return models.RespondWithError(c, models.HTTPStatus(err), err)
	}
	if shift.Status == models.ShiftStatusCancelled {
		return models.RespondWithError(c, fiber.StatusConflict,
			models.NewInvalidStateError("Cancelled shifts cannot be edited"))
	}

	var req shiftRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	start, end, err := req.window()
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}
	if req.WorkplaceID != nil {
		if _, err := s.workplaceRepo.GetOwned(ctx, userID, *req.WorkplaceID); err != nil {
			return models.RespondWithError(c, models.HTTPStatus(err), err)
		}
	}

	shift.WorkplaceID = req.WorkplaceID
	shift.StartTime = start
	shift.EndTime = end
	shift.EstimatedValue = req.EstimatedValue
	shift.Notes = req.Notes
	if err := s.shiftRepo.Update(ctx, shift); err != nil {
		return models.RespondWithError(c, models.HTTPStatus(err), err)
	}

	return c.JSON(shift)
}

// CancelShift handles POST /api/shifts/:id/cancel
func (s *Server) CancelShift(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	shiftID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.shiftRepo.SetStatus(c.Context(), userID, shiftID, models.ShiftStatusCancelled); err != nil {
		return models.RespondWithError(c, models.HTTPStatus(err), err)
	}

	return c.JSON(fiber.Map{"message": "Shift cancelled"})
}

// GetShift handles GET /api/shifts/:id
func (s *Server) GetShift(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	shiftID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	shift, err := s.shiftRepo.GetOwned(c.Context(), userID, shiftID)
	if err != nil {
		return models.RespondWithError(c, models.HTTPStatus(err), err)
	}

	return c.JSON(shift)
}
