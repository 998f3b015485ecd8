package server

import (
	"aurelo/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetNotifications handles GET /api/notifications?unread_only=true&limit=20
func (s *Server) GetNotifications(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	pagination := parsePagination(c, 20)
	unreadOnly := c.QueryBool("unread_only", false)

	notifs, err := s.notifRepo.ListByUser(c.Context(), userID, unreadOnly,
		pagination.Limit, pagination.Offset)
	if err != nil {
		return models.RespondWithError(c, models.HTTPStatus(err), err)
	}

	return c.JSON(notifs)
}

// GetUnreadNotificationCount handles GET /api/notifications/unread-count
func (s *Server) GetUnreadNotificationCount(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	count, err := s.notifRepo.CountUnread(c.Context(), userID)
	if err != nil {
		return models.RespondWithError(c, models.HTTPStatus(err), err)
	}

	return c.JSON(fiber.Map{"count": count})
}

// MarkNotificationRead handles POST /api/notifications/:id/read
func (s *Server) MarkNotificationRead(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	notifID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.notifRepo.MarkRead(c.Context(), userID, notifID); err != nil {
		return models.RespondWithError(c, models.HTTPStatus(err), err)
	}

	return c.JSON(fiber.Map{"message": "Notification marked as read"})
}

// MarkAllNotificationsRead handles POST /api/notifications/read-all
func (s *Server) MarkAllNotificationsRead(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	if err := s.notifRepo.MarkAllRead(c.Context(), userID); err != nil {
		return models.RespondWithError(c, models.HTTPStatus(err), err)
	}

	return c.JSON(fiber.Map{"message": "All notifications marked as read"})
}
