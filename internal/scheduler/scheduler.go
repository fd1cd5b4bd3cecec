package scheduler

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"consulting-os/internal/config"
	"consulting-os/internal/email"
	"consulting-os/internal/repository"
)

// Scheduler handles periodic tasks
type Scheduler struct {
	sessionRepo    *repository.SessionRepository
	engagementRepo *repository.EngagementRepository
	userRepo       *repository.UserRepository
	messageRepo    *repository.MessageRepository
	emailService   *email.Service
	config         *config.SchedulerConfig
	stopChan       chan bool
}

// NewScheduler creates a new scheduler
func NewScheduler(
	sessionRepo *repository.SessionRepository,
	engagementRepo *repository.EngagementRepository,
	userRepo *repository.UserRepository,
	messageRepo *repository.MessageRepository,
	emailService *email.Service,
	cfg *config.SchedulerConfig,
) *Scheduler {
	return &Scheduler{
		sessionRepo:    sessionRepo,
		engagementRepo: engagementRepo,
		userRepo:       userRepo,
		messageRepo:    messageRepo,
		emailService:   emailService,
		config:         cfg,
		stopChan:       make(chan bool),
	}
}

// Start starts all scheduled tasks
func (s *Scheduler) Start() {
	slog.Info("Starting scheduler",
		"session_reminders_enabled", s.config.EnableSessionReminders,
		"unread_digest_enabled", s.config.EnableUnreadDigest)

	if s.config.EnableSessionReminders {
		if err := s.startCronTask(s.config.SessionReminderCron, "session_reminders", s.sendSessionReminders); err != nil {
			slog.Error("Failed to start session reminders", "error", err)
		}
	}

	if s.config.EnableUnreadDigest {
		if err := s.startCronTask(s.config.UnreadDigestCron, "unread_digest", s.sendUnreadDigests); err != nil {
			slog.Error("Failed to start unread digest", "error", err)
		}
	}

	slog.Info("Scheduler started")
}

// startCronTask parses a cron expression and starts the task
// Supports simple cron format: "minute hour day month weekday"
// Examples: "0 9 * * 1" = Monday 9 AM, "0 8 * * *" = Daily 8 AM, "*/5 * * * *" = Every 5 minutes
func (s *Scheduler) startCronTask(cronExpr, taskName string, task func()) error {
	parts := strings.Fields(cronExpr)
	if len(parts) != 5 {
		return fmt.Errorf("invalid cron expression: %s (expected 5 fields)", cronExpr)
	}

	// Parse minute field (supports */n for intervals)
	if strings.HasPrefix(parts[0], "*/") {
		// Interval notation: */5 = every 5 minutes
		interval, err := strconv.Atoi(parts[0][2:])
		if err != nil || interval < 1 || interval > 59 {
			return fmt.Errorf("invalid minute interval in cron: %s", parts[0])
		}
		// For interval tasks, run immediately
		go s.scheduleIntervalTask(time.Duration(interval)*time.Minute, taskName, task)
		return nil
	}

	minute, err := strconv.Atoi(parts[0])
	if err != nil || minute < 0 || minute > 59 {
		return fmt.Errorf("invalid minute in cron: %s", parts[0])
	}

	hour, err := strconv.Atoi(parts[1])
	if err != nil || hour < 0 || hour > 23 {
		return fmt.Errorf("invalid hour in cron: %s", parts[1])
	}

	// Check if daily or weekly
	if parts[4] == "*" {
		go s.scheduleDailyTask(hour, minute, taskName, task)
	} else {
		weekday, err := strconv.Atoi(parts[4])
		if err != nil || weekday < 0 || weekday > 6 {
			return fmt.Errorf("invalid weekday in cron: %s (0-6, 0=Sunday)", parts[4])
		}
		go s.scheduleWeeklyTask(time.Weekday(weekday), hour, minute, taskName, task)
	}

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	slog.Info("Stopping scheduler")
	close(s.stopChan)
}

// scheduleIntervalTask runs a task at regular intervals
func (s *Scheduler) scheduleIntervalTask(interval time.Duration, taskName string, task func()) {
	slog.Info("Starting interval task", "task", taskName, "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Run immediately on start
	slog.Info("Running interval task", "task", taskName)
	task()

	for {
		select {
		case <-ticker.C:
			slog.Info("Running interval task", "task", taskName)
			task()
		case <-s.stopChan:
			return
		}
	}
}

// scheduleWeeklyTask runs a task weekly on a specific weekday and time
func (s *Scheduler) scheduleWeeklyTask(weekday time.Weekday, hour, minute int, taskName string, task func()) {
	for {
		now := time.Now()
		next := s.nextWeekday(now, weekday, hour, minute)
		duration := next.Sub(now)

		slog.Info("Next weekly task scheduled", "task", taskName, "next_run", next.Format("2006-01-02 15:04:05"))

		select {
		case <-time.After(duration):
			slog.Info("Running weekly task", "task", taskName)
			task()
		case <-s.stopChan:
			return
		}
	}
}

// scheduleDailyTask runs a task daily at a specific time
func (s *Scheduler) scheduleDailyTask(hour, minute int, taskName string, task func()) {
	for {
		now := time.Now()
		next := s.nextDailyRun(now, hour, minute)
		duration := next.Sub(now)

		slog.Info("Next daily task scheduled", "task", taskName, "next_run", next.Format("2006-01-02 15:04:05"))

		select {
		case <-time.After(duration):
			slog.Info("Running daily task", "task", taskName)
			task()
		case <-s.stopChan:
			return
		}
	}
}

// nextWeekday calculates the next occurrence of a specific weekday and time
func (s *Scheduler) nextWeekday(from time.Time, weekday time.Weekday, hour, minute int) time.Time {
	next := time.Date(from.Year(), from.Month(), from.Day(), hour, minute, 0, 0, from.Location())

	daysUntil := int(weekday - from.Weekday())
	if daysUntil < 0 {
		daysUntil += 7
	}

	next = next.AddDate(0, 0, daysUntil)

	// If the calculated time has already passed today, add 7 days
	if next.Before(from) || next.Equal(from) {
		next = next.AddDate(0, 0, 7)
	}

	return next
}

// nextDailyRun calculates the next daily run time
func (s *Scheduler) nextDailyRun(from time.Time, hour, minute int) time.Time {
	next := time.Date(from.Year(), from.Month(), from.Day(), hour, minute, 0, 0, from.Location())

	// If the time has already passed today, schedule for tomorrow
	if next.Before(from) || next.Equal(from) {
		next = next.AddDate(0, 0, 1)
	}

	return next
}

// sendSessionReminders emails both engagement parties about sessions coming
// up within the configured lead window.
func (s *Scheduler) sendSessionReminders() {
	slog.Info("Sending session reminders")

	now := time.Now()
	until := now.Add(time.Duration(s.config.ReminderLeadHours) * time.Hour)

	sessions, err := s.sessionRepo.ListUpcoming(now, until)
	if err != nil {
		slog.Error("Failed to list upcoming sessions", "error", err)
		return
	}

	remindersSent := 0
	for _, session := range sessions {
		parties, err := s.engagementRepo.GetParties(session.EngagementID)
		if err != nil {
			slog.Error("Failed to resolve engagement parties",
				"engagement_id", session.EngagementID,
				"error", err,
			)
			continue
		}

		consultant, err := s.userRepo.GetByID(parties.ConsultantUserID)
		if err != nil {
			slog.Error("Failed to get consultant", "user_id", parties.ConsultantUserID, "error", err)
		} else if consultant != nil {
			if err := s.emailService.SendSessionReminderEmail(consultant.Email, consultant.FullName, session.Title, session.ScheduledAt, session.DurationMinutes); err != nil {
				slog.Error("Failed to send session reminder",
					"session_id", session.ID,
					"user_email", consultant.Email,
					"error", err,
				)
			} else {
				remindersSent++
			}
		}

		if parties.ClientUserID == nil {
			continue
		}
		client, err := s.userRepo.GetByID(*parties.ClientUserID)
		if err != nil {
			slog.Error("Failed to get client user", "user_id", *parties.ClientUserID, "error", err)
			continue
		}
		if client == nil {
			continue
		}
		if err := s.emailService.SendSessionReminderEmail(client.Email, client.FullName, session.Title, session.ScheduledAt, session.DurationMinutes); err != nil {
			slog.Error("Failed to send session reminder",
				"session_id", session.ID,
				"user_email", client.Email,
				"error", err,
			)
			continue
		}
		remindersSent++
	}

	slog.Info("Session reminders completed", "reminders_sent", remindersSent)
}

// sendUnreadDigests emails users who have unread messages waiting
func (s *Scheduler) sendUnreadDigests() {
	slog.Info("Sending unread message digests")

	totals, err := s.messageRepo.ListUnreadTotals()
	if err != nil {
		slog.Error("Failed to aggregate unread messages", "error", err)
		return
	}

	digestsSent := 0
	for _, t := range totals {
		if t.Count == 0 || t.Email == "" {
			continue
		}

		if err := s.emailService.SendUnreadDigestEmail(t.Email, t.Name, t.Count); err != nil {
			slog.Error("Failed to send unread digest",
				"user_email", t.Email,
				"error", err,
			)
			continue
		}

		digestsSent++
		slog.Info("Unread digest sent", "user_email", t.Email, "unread_count", t.Count)
	}

	slog.Info("Unread digests completed", "digests_sent", digestsSent)
}
