package service

import (
	"context"
	"errors"

	"ai-contract-review-be/internal/pkg/logger"
	"ai-contract-review-be/internal/websocket"
	"ai-contract-review-be/pkg/events"
	pkgNats "ai-contract-review-be/pkg/nats"

	"github.com/google/uuid"
)

// NotificationService bridges the event bus to the WebSocket hub: analysis
// lifecycle events become real-time status pushes to the owning user.
type NotificationService struct {
	subscriber *pkgNats.Subscriber
	hub        *websocket.Hub
	logger     logger.ILogger
}

func NewNotificationService(sub *pkgNats.Subscriber, hub *websocket.Hub, log logger.ILogger) *NotificationService {
	return &NotificationService{
		subscriber: sub,
		hub:        hub,
		logger:     log,
	}
}

// Start begins listening to the event bus.
func (s *NotificationService) Start() {
	err := s.subscriber.Subscribe(pkgNats.WildcardSubject(), "status-push-worker", s.handleEvent)
	if err != nil {
		s.logger.Error("NotificationService", "Failed to start status subscriber", map[string]interface{}{"error": err})
		return
	}
	s.logger.Info("NotificationService", "Status push service started", map[string]interface{}{
		"subject": pkgNats.WildcardSubject(),
	})
}

func (s *NotificationService) handleEvent(ctx context.Context, event events.Event) error {
	typeCode := event.EventType()

	switch typeCode {
	case EventContractAnalyzed, EventContractAnalysisFailed:
	default:
		return nil
	}

	payload := event.Payload()

	userId, err := parsePayloadUUID(payload["user_id"])
	if err != nil {
		s.logger.Warn("NotificationService", "Event without valid user_id", map[string]interface{}{
			"type": typeCode,
		})
		return nil
	}
	contractId, err := parsePayloadUUID(payload["contract_id"])
	if err != nil {
		return nil
	}

	update := websocket.StatusUpdate{
		ContractId: contractId,
		UserId:     userId,
		OccurredAt: event.Timestamp(),
	}

	if typeCode == EventContractAnalyzed {
		update.Status = "done"
		if score, ok := payload["overall_score"].(float64); ok {
			v := int(score)
			update.OverallScore = &v
		}
	} else {
		update.Status = "error"
		if reason, ok := payload["reason"].(string); ok {
			update.Reason = reason
		}
	}

	s.hub.Send(userId, update)
	return nil
}

func parsePayloadUUID(v interface{}) (uuid.UUID, error) {
	str, ok := v.(string)
	if !ok {
		return uuid.Nil, errors.New("payload field is not a uuid string")
	}
	return uuid.Parse(str)
}
