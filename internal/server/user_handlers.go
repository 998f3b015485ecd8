// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"aurelo/internal/models"
	"aurelo/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile handles GET /api/users/me
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	user, err := s.userService.GetUserByID(c.Context(), userID)
	if err != nil {
		return models.RespondWithError(c, models.HTTPStatus(err), err)
	}

	return c.JSON(user)
}

// UpdateMyProfile handles PUT /api/users/me
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)

	var req struct {
		FullName  string `json:"full_name"`
		Role      string `json:"role"`
		AvatarURL string `json:"avatar_url"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.UpdateProfile(ctx, service.UpdateProfileInput{
		UserID:    userID,
		FullName:  req.FullName,
		Role:      req.Role,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		return models.RespondWithError(c, models.HTTPStatus(err), err)
	}

	return c.JSON(user)
}

// GetMyFriendCode handles POST /api/users/me/friend-code. The code is
// generated lazily on first request and stable afterwards.
func (s *Server) GetMyFriendCode(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	code, err := s.userService.EnsureFriendCode(c.Context(), userID)
	if err != nil {
		return models.RespondWithError(c, models.HTTPStatus(err), err)
	}

	return c.JSON(fiber.Map{"friend_code": code})
}

// SearchUsers handles GET /api/users/search?q=...
func (s *Server) SearchUsers(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	users, err := s.userService.Search(c.Context(), userID, c.Query("q"))
	if err != nil {
		return models.RespondWithError(c, models.HTTPStatus(err), err)
	}

	return c.JSON(users)
}
