package server

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron"
)

// DefaultReminderSchedule runs the check-in reminder on Monday mornings.
// robfig/cron specs carry a leading seconds field.
const DefaultReminderSchedule = "0 0 7 * * MON"

// StartReminders schedules the weekly check-in reminder. The caller stops
// the returned scheduler on shutdown.
func (s *Server) StartReminders(spec string) (*cron.Cron, error) {
	if spec == "" {
		spec = DefaultReminderSchedule
	}
	c := cron.New()
	if err := c.AddFunc(spec, s.remindCheckIns); err != nil {
		return nil, fmt.Errorf("scheduling reminders %q: %w", spec, err)
	}
	c.Start()
	s.log.Info("check-in reminders scheduled", "spec", spec)
	return c, nil
}

// remindCheckIns logs one line per running plan whose last week has no
// check-in yet.
func (s *Server) remindCheckIns() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	due, err := s.plans.DueCheckIns(ctx, s.now())
	if err != nil {
		s.log.Error("check-in reminder failed", "error", err)
		return
	}
	for _, d := range due {
		s.log.Info("check-in due",
			"plan", d.Plan.ID,
			"name", d.Plan.Name,
			"user_id", d.Plan.UserID,
			"week", d.DueWeek,
			"recorded", d.Plan.CheckIns,
		)
	}
	s.log.Info("check-in reminder run", "due", len(due))
}
