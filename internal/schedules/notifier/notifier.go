package notifier

import (
	"context"

	"fleetdesk/internal/schedules/service"
	"fleetdesk/pkg/config"
	"fleetdesk/pkg/kafka"
	"fleetdesk/pkg/logger"
	"fleetdesk/pkg/mailer"
	"fleetdesk/pkg/model"
)

// Producer is the slice of the Kafka producer the notifier needs.
type Producer interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

// Mailer is the slice of the SMTP dispatcher the notifier needs.
type Mailer interface {
	SendScheduleEvent(to string, event mailer.Event, schedule *model.Schedule)
}

// Notifier fans successful schedule mutations out to email and the
// schedule-events topic. Both channels are best effort: failures are
// logged and never surfaced to the booking path.
type Notifier struct {
	mail     Mailer
	producer Producer
	to       string
	log      *logger.Logger
}

func New(mail Mailer, producer Producer, cfg *config.Config) *Notifier {
	return &Notifier{
		mail:     mail,
		producer: producer,
		to:       cfg.NotifyEmail,
		log:      cfg.Log,
	}
}

type scheduleEvent struct {
	Kind     string          `json:"kind"`
	Schedule *model.Schedule `json:"schedule"`
}

func (n *Notifier) ScheduleMutated(ctx context.Context, kind string, schedule *model.Schedule) {
	n.sendEmail(kind, schedule)
	n.publishEvent(ctx, kind, schedule)
}

func (n *Notifier) sendEmail(kind string, schedule *model.Schedule) {
	if n.mail == nil {
		return
	}

	var event mailer.Event
	switch kind {
	case service.MutationCreated:
		event = mailer.EventCreated
	case service.MutationCancelled:
		event = mailer.EventCancelled
	case service.MutationRescheduled:
		event = mailer.EventRescheduled
	default:
		// metadata-only updates do not notify by email
		return
	}

	n.mail.SendScheduleEvent(n.to, event, schedule)
}

func (n *Notifier) publishEvent(ctx context.Context, kind string, schedule *model.Schedule) {
	if n.producer == nil {
		return
	}

	msg := kafka.NewMessage().
		WithKey(schedule.ID).
		WithValue(scheduleEvent{Kind: kind, Schedule: schedule}).
		WithEventType("schedule." + kind).
		WithSource("fleetdesk").
		Build()

	if err := n.producer.Publish(ctx, msg); err != nil {
		n.log.Error("Failed to publish schedule event",
			"kind", kind,
			"schedule_id", schedule.ID,
			"error", err,
		)
	}
}
