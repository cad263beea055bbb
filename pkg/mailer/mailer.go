package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"fleetdesk/pkg/logger"
	"fleetdesk/pkg/model"
)

// Event names the schedule mutation a notification describes.
type Event string

const (
	EventCreated     Event = "created"
	EventCancelled   Event = "cancelled"
	EventRescheduled Event = "rescheduled"
)

type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// Enabled reports whether the SMTP transport is configured. A Mailer
// built from a disabled config silently drops every send.
func (c Config) Enabled() bool {
	return c.Host != "" && c.User != ""
}

type Mailer struct {
	cfg Config
	log *logger.Logger
}

func New(cfg Config, log *logger.Logger) *Mailer {
	return &Mailer{cfg: cfg, log: log}
}

// SendScheduleEvent delivers the notification for a schedule mutation.
// Delivery failures are logged, never surfaced to the caller: mail is a
// side effect, not part of the booking transaction.
func (m *Mailer) SendScheduleEvent(to string, event Event, schedule *model.Schedule) {
	if !m.cfg.Enabled() || to == "" {
		return
	}

	subject, body := composeScheduleEmail(event, schedule)
	if subject == "" {
		return
	}

	if err := m.send(to, subject, body); err != nil {
		m.log.Error("failed to send schedule email",
			"to", to,
			"event", string(event),
			"schedule_id", schedule.ID,
			"error", err,
		)
		return
	}

	m.log.Debug("schedule email sent", "to", to, "event", string(event))
}

// SendWelcome greets a newly registered user. Best effort, same as
// schedule notifications.
func (m *Mailer) SendWelcome(to, name string) {
	if !m.cfg.Enabled() || to == "" {
		return
	}

	body := fmt.Sprintf(`<h2>Welcome, %s!</h2>
<p>Your account has been created. You can now sign in and manage schedules.</p>`, name)

	if err := m.send(to, "Welcome to FleetDesk", body); err != nil {
		m.log.Error("failed to send welcome email", "to", to, "error", err)
	}
}

func (m *Mailer) send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	d := gomail.NewDialer(m.cfg.Host, m.cfg.Port, m.cfg.User, m.cfg.Password)
	return d.DialAndSend(msg)
}

func composeScheduleEmail(event Event, s *model.Schedule) (subject, body string) {
	date := s.Date.Format("02 Jan 2006")

	switch event {
	case EventCreated:
		subject = "Your Schedule is Confirmed"
		body = fmt.Sprintf(`<h2>Schedule Confirmed</h2>
<h3>Client: %s</h3>
<p>Your schedule has been confirmed for <strong>%s</strong>.</p>
<ul>
  <li>Time: %s - %s</li>
  <li>Destination: %s</li>
  <li>Service: %s</li>
</ul>
<p>Status: %s</p>`,
			s.ClientName, date, s.StartTime, s.EndTime, s.Destination, s.Service, s.Status)

	case EventCancelled:
		subject = "Your Schedule has been Cancelled"
		body = fmt.Sprintf(`<h2>Schedule Cancelled</h2>
<p>The booking on <strong>%s</strong> for client <strong>%s</strong> has been cancelled.</p>
<p>If you have any questions, please contact dispatch.</p>`,
			date, s.ClientName)

	case EventRescheduled:
		subject = "Your Schedule has been Rescheduled"
		body = fmt.Sprintf(`<h2>Hello %s,</h2>
<p>Your schedule has been updated:</p>
<ul>
  <li>New Date: %s</li>
  <li>Time: %s - %s</li>
  <li>Destination: %s</li>
  <li>Service: %s</li>
</ul>
<p>Status: %s</p>`,
			s.ClientName, date, s.StartTime, s.EndTime, s.Destination, s.Service, s.Status)
	}

	return subject, body
}
