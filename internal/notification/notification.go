package notification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/leave-management/internal/core/events"
	"github.com/frahmantamala/leave-management/internal/leave"
)

// Message is one outbound email.
type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Dispatcher delivers messages to the external mail service.
type Dispatcher interface {
	Send(ctx context.Context, msg Message) error
}

// RecipientResolver maps a user id to a deliverable address.
type RecipientResolver interface {
	RecipientForUser(userID int64) (name, email string, err error)
}

// ResolverFunc adapts a plain function to RecipientResolver.
type ResolverFunc func(userID int64) (string, string, error)

func (f ResolverFunc) RecipientForUser(userID int64) (string, string, error) {
	return f(userID)
}

// Notifier bridges the leave workflow to the event bus. It satisfies
// the workflow's publisher hook: publishing happens after the
// transition has committed and can never undo it.
type Notifier struct {
	bus    *events.EventBus
	logger *slog.Logger
}

func NewNotifier(bus *events.EventBus, logger *slog.Logger) *Notifier {
	return &Notifier{bus: bus, logger: logger}
}

func (n *Notifier) LeaveStatusChanged(requestID, userID int64, status leave.Status, comments string) {
	event := events.NewLeaveStatusChangedEvent(requestID, userID, string(status), comments)
	if err := n.bus.Publish(context.Background(), event); err != nil {
		n.logger.Error("failed to publish status change event",
			"error", err, "request_id", requestID, "status", status)
	}
}

var statusSubjects = map[string]string{
	string(leave.StatusEndorsed):   "Your leave request has been endorsed",
	string(leave.StatusRejected):   "Your leave request has been rejected",
	string(leave.StatusReturned):   "Your leave request has been returned for revision",
	string(leave.StatusTMApproved): "Your leave request has been approved",
	string(leave.StatusTMRejected): "Your leave request has been rejected by top management",
	string(leave.StatusTMReturned): "Your leave request has been returned by top management",
}

// RegisterSubscribers wires the mail side of the status-change hook.
// The handler always returns nil: a dispatch failure is logged and
// swallowed, never surfaced to the workflow.
func RegisterSubscribers(bus *events.EventBus, dispatcher Dispatcher, resolver RecipientResolver, logger *slog.Logger) {
	bus.Subscribe(events.EventTypeLeaveStatusChanged, func(ctx context.Context, event events.Event) error {
		data, ok := event.Payload().(map[string]interface{})
		if !ok {
			logger.Error("malformed status change payload", "event_id", event.EventID())
			return nil
		}

		userID, _ := data["user_id"].(int64)
		requestID, _ := data["request_id"].(int64)
		status, _ := data["status"].(string)
		comments, _ := data["comments"].(string)

		name, email, err := resolver.RecipientForUser(userID)
		if err != nil {
			logger.Error("failed to resolve notification recipient",
				"error", err, "user_id", userID, "request_id", requestID)
			return nil
		}

		subject, ok := statusSubjects[status]
		if !ok {
			subject = "Your leave request status has changed"
		}

		body := fmt.Sprintf("Hi %s,\n\nYour leave request #%d is now %q.", name, requestID, status)
		if comments != "" {
			body += fmt.Sprintf("\n\nComments: %s", comments)
		}

		if err := dispatcher.Send(ctx, Message{To: email, Subject: subject, Body: body}); err != nil {
			logger.Error("failed to dispatch status notification",
				"error", err, "user_id", userID, "request_id", requestID, "status", status)
		}
		return nil
	})
}
