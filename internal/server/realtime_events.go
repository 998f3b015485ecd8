package server

import (
	"context"
	"encoding/json"
	"log"

	"aurelo/internal/models"
	"aurelo/internal/observability"
)

// Event type constants prevent typos in event names.
const (
	EventFriendRequestReceived  = "friend_request_received"
	EventFriendRequestSent      = "friend_request_sent"
	EventFriendRequestAccepted  = "friend_request_accepted"
	EventFriendAdded            = "friend_added"
	EventFriendRequestRejected  = "friend_request_rejected"
	EventFriendRequestCancelled = "friend_request_cancelled"
	EventFriendRemoved          = "friend_removed"
	EventFriendPresenceChanged  = "friend_presence_changed"
	EventSwapPostingCreated     = "swap_posting_created"
	EventSwapInterestReceived   = "swap_interest_received"
	EventSwapInterestRejected   = "swap_interest_rejected"
	EventSwapMatched            = "swap_matched"
	EventSwapCancelled          = "swap_cancelled"
	EventNotificationCreated    = "notification_created"
)

func (s *Server) publishUserEvent(userID uint, eventType string, payload map[string]interface{}) {
	event := map[string]interface{}{
		"type":    eventType,
		"payload": payload,
	}
	eventJSON, err := json.Marshal(event)
	if err != nil {
		log.Printf("failed to marshal %s event: %v", eventType, err)
		return
	}
	message := string(eventJSON)
	if s.hub != nil {
		s.hub.Broadcast(userID, message)
	}
	if s.notifier != nil {
		if err := s.notifier.PublishUser(context.Background(), userID, message); err != nil {
			observability.NotificationPublishFailures.WithLabelValues(eventType).Inc()
			log.Printf("failed to publish %s event to user %d: %v", eventType, userID, err)
		}
	}
}

func (s *Server) publishBroadcastEvent(eventType string, payload map[string]interface{}) {
	event := map[string]interface{}{
		"type":    eventType,
		"payload": payload,
	}
	eventJSON, err := json.Marshal(event)
	if err != nil {
		log.Printf("failed to marshal %s event: %v", eventType, err)
		return
	}
	message := string(eventJSON)
	if s.hub != nil {
		s.hub.BroadcastAll(message)
	}
	if s.notifier != nil {
		if err := s.notifier.PublishBroadcast(context.Background(), message); err != nil {
			observability.NotificationPublishFailures.WithLabelValues(eventType).Inc()
			log.Printf("failed to publish %s broadcast event: %v", eventType, err)
		}
	}
}

// notifyUser persists a notification row and pushes the realtime event. The
// row is the durable record; the push is best-effort.
func (s *Server) notifyUser(ctx context.Context, userID uint, notifType models.NotificationType,
	title, message, link string, eventType string, payload map[string]interface{},
) {
	if s.notifRepo != nil {
		n := &models.Notification{
			UserID:  userID,
			Type:    notifType,
			Title:   title,
			Message: message,
			Link:    link,
		}
		if err := s.notifRepo.Create(ctx, n); err != nil {
			log.Printf("failed to persist %s notification for user %d: %v", notifType, userID, err)
		} else if payload != nil {
			payload["notification_id"] = n.ID
		}
	}
	s.publishUserEvent(userID, eventType, payload)
}

func userSummary(user models.User) map[string]interface{} {
	return map[string]interface{}{
		"id":        user.ID,
		"full_name": user.FullName,
		"role":      user.Role,
		"avatar":    user.AvatarURL,
	}
}

func userSummaryPtr(user *models.User) map[string]interface{} {
	if user == nil {
		return nil
	}
	return userSummary(*user)
}
