package events

import (
	"time"

	"github.com/google/uuid"
)

const EventTypeLeaveStatusChanged = "leave.status_changed"

// NewLeaveStatusChangedEvent records one workflow transition for the
// notification subscribers.
func NewLeaveStatusChangedEvent(requestID, userID int64, status, comments string) BaseEvent {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      EventTypeLeaveStatusChanged,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"request_id": requestID,
			"user_id":    userID,
			"status":     status,
			"comments":   comments,
		},
	}
}
