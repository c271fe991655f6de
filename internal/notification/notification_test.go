package notification_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/leave-management/internal/core/events"
	"github.com/frahmantamala/leave-management/internal/leave"
	"github.com/frahmantamala/leave-management/internal/notification"
)

func TestNotification(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Notification Suite")
}

// Mock dispatcher for testing
type mockDispatcher struct {
	sent      []notification.Message
	sendError error
}

func (m *mockDispatcher) Send(ctx context.Context, msg notification.Message) error {
	if m.sendError != nil {
		return m.sendError
	}
	m.sent = append(m.sent, msg)
	return nil
}

var _ = Describe("StatusChangeSubscriber", func() {
	var (
		bus        *events.EventBus
		dispatcher *mockDispatcher
		logger     *slog.Logger
	)

	resolver := notification.ResolverFunc(func(userID int64) (string, string, error) {
		if userID == 1 {
			return "Devi Developer", "dev@mail.com", nil
		}
		return "", "", errors.New("user not found")
	})

	publish := func(status leave.Status, comments string) {
		event := events.NewLeaveStatusChangedEvent(42, 1, string(status), comments)
		Expect(bus.PublishSync(context.Background(), event)).To(Succeed())
	}

	BeforeEach(func() {
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		bus = events.NewEventBus(logger)
		dispatcher = &mockDispatcher{}
		notification.RegisterSubscribers(bus, dispatcher, resolver, logger)
	})

	It("should mail the owner when their request is endorsed", func() {
		publish(leave.StatusEndorsed, "")

		Expect(dispatcher.sent).To(HaveLen(1))
		msg := dispatcher.sent[0]
		Expect(msg.To).To(Equal("dev@mail.com"))
		Expect(msg.Subject).To(ContainSubstring("endorsed"))
		Expect(msg.Body).To(ContainSubstring("Devi Developer"))
		Expect(msg.Body).To(ContainSubstring("#42"))
	})

	It("should include manager comments when present", func() {
		publish(leave.StatusReturned, "please attach the travel itinerary")

		Expect(dispatcher.sent).To(HaveLen(1))
		Expect(dispatcher.sent[0].Body).To(ContainSubstring("please attach the travel itinerary"))
	})

	It("should swallow dispatch failures", func() {
		dispatcher.sendError = errors.New("mail API down")

		event := events.NewLeaveStatusChangedEvent(42, 1, string(leave.StatusTMApproved), "")
		err := bus.PublishSync(context.Background(), event)

		Expect(err).ToNot(HaveOccurred())
	})

	It("should swallow unresolvable recipients", func() {
		event := events.NewLeaveStatusChangedEvent(43, 999, string(leave.StatusRejected), "")
		err := bus.PublishSync(context.Background(), event)

		Expect(err).ToNot(HaveOccurred())
		Expect(dispatcher.sent).To(BeEmpty())
	})
})
