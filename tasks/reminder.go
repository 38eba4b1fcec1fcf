package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"venuebook/config"
	"venuebook/models"

	"github.com/hibiken/asynq"
)

const TypeSendReminder = "reminder:send"

// reminderLead is how long before the slot start the reminder fires.
const reminderLead = time.Hour

func NewReminderTask(payload models.ReminderPayload, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeSendReminder, b)
	opts := []asynq.Option{asynq.ProcessAt(fireAt)}

	return task, opts, nil
}

// AsynqReminderScheduler queues booking reminders on the Redis-backed task
// queue. It satisfies the flow's ReminderScheduler contract.
type AsynqReminderScheduler struct {
	Client *asynq.Client
}

func NewReminderScheduler() *AsynqReminderScheduler {
	client := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisReminderDB,
	})
	return &AsynqReminderScheduler{Client: client}
}

// ScheduleBookingReminder enqueues a reminder an hour before the booked
// slot starts. Bookings starting sooner than that get the reminder
// immediately.
func (s *AsynqReminderScheduler) ScheduleBookingReminder(ctx context.Context, booking *models.Booking) error {
	day, err := time.ParseInLocation("2006-01-02", booking.Date, time.Local)
	if err != nil {
		return fmt.Errorf("invalid booking date %q: %w", booking.Date, err)
	}
	slotStart := day.Add(time.Duration(booking.StartMinute) * time.Minute)
	fireAt := slotStart.Add(-reminderLead)
	if fireAt.Before(time.Now()) {
		fireAt = time.Now()
	}

	payload := models.ReminderPayload{
		BookingID: booking.ID,
		UserID:    booking.UserID,
		VenueName: booking.VenueName,
		Date:      booking.Date,
		FireDate:  fireAt.Format(time.RFC3339),
	}
	task, opts, err := NewReminderTask(payload, fireAt)
	if err != nil {
		return err
	}
	if _, err := s.Client.EnqueueContext(ctx, task, opts...); err != nil {
		return fmt.Errorf("failed to enqueue reminder: %w", err)
	}
	return nil
}
