package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"aurelo/internal/middleware"
	"aurelo/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// wsTicketTTL bounds the window between issuing a ticket and opening the
// websocket with it.
const wsTicketTTL = 30 * time.Second

// IssueWSTicket handles POST /api/ws/ticket. Browsers cannot set an
// Authorization header on a websocket upgrade, so the client trades its JWT
// for a short-lived single-use ticket and passes that as a query parameter.
func (s *Server) IssueWSTicket(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	if s.redis == nil {
		return models.RespondWithError(c, fiber.StatusServiceUnavailable,
			models.NewInternalError(fmt.Errorf("realtime backend unavailable")))
	}

	ticket := uuid.NewString()
	key := fmt.Sprintf("ws_ticket:%s", ticket)
	if err := s.redis.Set(c.Context(), key, fmt.Sprintf("%d", userID), wsTicketTTL).Err(); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	return c.JSON(fiber.Map{
		"ticket":     ticket,
		"expires_in": int(wsTicketTTL.Seconds()),
	})
}

// WebsocketHandler returns a websocket handler that registers connections with the Hub.
// Authentication is handled by route middleware and userID is read from connection locals.
func (s *Server) WebsocketHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		middleware.ActiveWebSockets.Inc()
		defer middleware.ActiveWebSockets.Dec()

		userIDVal := conn.Locals("userID")
		if userIDVal == nil {
			if cerr := conn.Close(); cerr != nil {
				log.Printf("websocket close error: %v", cerr)
			}
			return
		}
		uid, ok := userIDVal.(uint)
		if !ok {
			if cerr := conn.Close(); cerr != nil {
				log.Printf("websocket close error: %v", cerr)
			}
			return
		}

		if s.hub == nil {
			_ = conn.Close()
			return
		}

		// Register connection with scaling guardrails
		client, err := s.hub.Register(uid, conn)
		if err != nil {
			log.Printf("websocket: failed to register user %d: %v", uid, err)
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"`+err.Error()+`"}`))
			_ = conn.Close()
			return
		}

		defer s.hub.UnregisterClient(client)
		defer s.consumeWSTicket(context.Background(), conn.Locals("wsTicket"))

		s.notifyFriendsPresence(uid, "online")
		s.sendFriendsOnlineSnapshot(conn, uid)

		go client.WritePump()
		client.ReadPump()

		// After ReadPump returns, the connection is gone. Only announce
		// offline once the last connection for the user dropped.
		if !s.hub.IsOnline(uid) {
			s.notifyFriendsPresence(uid, "offline")
		}
	})
}

func (s *Server) notifyFriendsPresence(userID uint, status string) {
	if s.friendRepo == nil {
		return
	}
	friends, err := s.friendRepo.GetFriends(context.Background(), userID)
	if err != nil {
		log.Printf("failed to load friends for presence event: %v", err)
		return
	}
	user, err := s.userRepo.GetByID(context.Background(), userID)
	if err != nil {
		log.Printf("failed to load user for presence event: %v", err)
		return
	}
	for _, friend := range friends {
		s.publishUserEvent(friend.ID, EventFriendPresenceChanged, map[string]interface{}{
			"user_id":    user.ID,
			"full_name":  user.FullName,
			"avatar":     user.AvatarURL,
			"status":     status,
			"updated_at": time.Now().UTC().Format(time.RFC3339Nano),
		})
	}
}

func (s *Server) sendFriendsOnlineSnapshot(conn *websocket.Conn, userID uint) {
	if s.friendRepo == nil || s.hub == nil {
		return
	}
	friends, err := s.friendRepo.GetFriends(context.Background(), userID)
	if err != nil {
		log.Printf("failed to load friends for online snapshot: %v", err)
		return
	}
	onlineFriendIDs := make([]uint, 0, len(friends))
	for _, friend := range friends {
		if s.hub.IsOnline(friend.ID) {
			onlineFriendIDs = append(onlineFriendIDs, friend.ID)
		}
	}
	msg, err := json.Marshal(map[string]interface{}{
		"type": "friends_online_snapshot",
		"payload": map[string]interface{}{
			"user_ids": onlineFriendIDs,
		},
	})
	if err != nil {
		log.Printf("failed to marshal friends online snapshot: %v", err)
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
		log.Printf("failed to write friends online snapshot: %v", err)
	}
}
