package reminders

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/creditdesk/payment-reminder/internal/events"
	"github.com/creditdesk/payment-reminder/internal/modules/transactions"
)

// JobName keys the scheduler registration; registering under the same name
// again replaces the previous entry instead of doubling the daily send.
const JobName = "payment_reminder"

// Outcome classifies a reminder run
type Outcome string

const (
	OutcomeSent       Outcome = "sent"
	OutcomeNoDue      Outcome = "no_due"
	OutcomeStoreError Outcome = "store_error"
	OutcomeSendError  Outcome = "send_error"
)

// Sender delivers a digest message. The Twilio client implements it; tests
// substitute a fake.
type Sender interface {
	Send(body string) error
}

// DueReader is the slice of the transaction repository the job needs
type DueReader interface {
	GetDueUnpaid(today string) ([]transactions.DueTransaction, error)
}

// Job queries due unpaid transactions and sends a single digest message.
// Failures never escape the job: store errors degrade to a no-op, send
// errors are logged without retry. The outcome is emitted to the event
// sink either way.
type Job struct {
	repo         DueReader
	sender       Sender
	eventManager *events.Manager
	log          zerolog.Logger
	now          func() time.Time
}

// NewJob creates a new reminder job
func NewJob(repo DueReader, sender Sender, eventManager *events.Manager, log zerolog.Logger) *Job {
	return &Job{
		repo:         repo,
		sender:       sender,
		eventManager: eventManager,
		log:          log.With().Str("job", JobName).Logger(),
		now:          time.Now,
	}
}

// Name returns the scheduler registration key
func (j *Job) Name() string {
	return JobName
}

// Run satisfies scheduler.Job. It always returns nil: reminder failures
// are observable through logs and the event sink, not the scheduler.
func (j *Job) Run() error {
	j.RunOnce()
	return nil
}

// RunOnce executes a single reminder check and returns its outcome
func (j *Job) RunOnce() Outcome {
	j.log.Info().Msg("Running payment reminder check")

	today := j.now().Format("2006-01-02")

	due, err := j.repo.GetDueUnpaid(today)
	if err != nil {
		// Degrade to "no due users": the next scheduled run will retry
		j.log.Error().Err(err).Msg("Database error, skipping reminder run")
		j.eventManager.Emit(events.ReminderStoreError, "reminders", map[string]interface{}{
			"error": err.Error(),
		})
		return OutcomeStoreError
	}

	if len(due) == 0 {
		j.log.Info().Msg("No users due today")
		j.eventManager.Emit(events.ReminderNoDue, "reminders", map[string]interface{}{
			"date": today,
		})
		return OutcomeNoDue
	}

	digest := BuildDigest(due)

	if err := j.sender.Send(digest); err != nil {
		j.log.Error().Err(err).Int("due_count", len(due)).Msg("Failed to send payment reminders")
		j.eventManager.Emit(events.ReminderSendError, "reminders", map[string]interface{}{
			"error":     err.Error(),
			"due_count": len(due),
		})
		return OutcomeSendError
	}

	j.log.Info().Int("due_count", len(due)).Msg("Payment reminders sent successfully")
	j.eventManager.Emit(events.ReminderSent, "reminders", map[string]interface{}{
		"due_count": len(due),
		"date":      today,
	})
	return OutcomeSent
}
