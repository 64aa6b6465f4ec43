package notification

import (
	"context"
	"log"

	"AcademyNotify/internal/config"
)

// DeliveryOutcome reports both halves of a dispatch so each entry point can
// apply its own error policy.
type DeliveryOutcome struct {
	Saved      int
	PersistErr error
	Sent       int
	Failed     int
	SendErr    error
}

// DeliveryCoordinator persists the history records and submits the push
// messages of one dispatch. The two steps are independent: a failure in
// either never prevents the other, and a send failure never rolls back
// persisted records.
type DeliveryCoordinator struct {
	records RecordStore
	push    PushSender
}

func NewDeliveryCoordinator(records RecordStore, push PushSender) *DeliveryCoordinator {
	return &DeliveryCoordinator{records: records, push: push}
}

func (c *DeliveryCoordinator) Deliver(ctx context.Context, records []*NotificationRecord, messages []*config.PushMessage) DeliveryOutcome {
	var outcome DeliveryOutcome

	if len(records) > 0 {
		if err := c.records.SaveNotifications(ctx, records); err != nil {
			log.Println("Error saving notifications:", err)
			outcome.PersistErr = err
		} else {
			outcome.Saved = len(records)
			log.Printf("Saved %d notifications", len(records))
		}
	}

	if len(messages) > 0 {
		report, err := c.push.SendEach(ctx, messages)
		if err != nil {
			log.Println("Error sending FCM messages:", err)
			outcome.SendErr = err
		} else {
			outcome.Sent = report.SuccessCount
			outcome.Failed = report.FailureCount
			log.Printf("Sent %d FCM messages, %d failed", report.SuccessCount, report.FailureCount)
		}
	}

	return outcome
}
