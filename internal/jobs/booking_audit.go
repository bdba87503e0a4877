package jobs

import (
	"encoding/json"

	"github.com/nats-io/stan.go"

	"fitgrid/internal/logger"
	"fitgrid/internal/messaging"
	"fitgrid/internal/models"
)

const auditQueue = "fitgrid-worker"

// BookingAuditor consumes booking lifecycle events through durable
// queue subscriptions and writes them to the audit log.
type BookingAuditor struct {
	subs []stan.Subscription
}

func StartBookingAuditor(client *messaging.Client) (*BookingAuditor, error) {
	a := &BookingAuditor{}

	for subject, action := range map[string]string{
		models.SubjectBookingCreated:   "created",
		models.SubjectBookingCancelled: "cancelled",
	} {
		action := action
		sub, err := client.SubscribeQueue(subject, auditQueue, func(msg *stan.Msg) {
			a.handle(action, msg)
		})
		if err != nil {
			a.Stop()
			return nil, err
		}
		a.subs = append(a.subs, sub)
	}

	logger.Get().Info("booking auditor started", "queue", auditQueue)
	return a, nil
}

func (a *BookingAuditor) handle(action string, msg *stan.Msg) {
	var event models.BookingEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		logger.Get().Error("dropping malformed booking event",
			"subject", msg.Subject, "error", err)
		_ = msg.Ack()
		return
	}

	logger.Get().Info("booking "+action,
		"booking_id", event.BookingID,
		"class_id", event.OccurrenceID,
		"user", event.UserName,
		"at", event.Timestamp)

	if err := msg.Ack(); err != nil {
		logger.Get().Error("failed to ack booking event", "error", err)
	}
}

func (a *BookingAuditor) Stop() {
	for _, sub := range a.subs {
		if err := sub.Close(); err != nil {
			logger.Get().Error("failed to close subscription", "error", err)
		}
	}
}
