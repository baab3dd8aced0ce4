// Package schedulersvc runs the periodic notification jobs.
package schedulersvc

import (
	"time"

	"github.com/robfig/cron/v3"

	"github.com/trezcool/lori/core"
	"github.com/trezcool/lori/core/notification"
)

type Scheduler struct {
	engine   *cron.Cron
	notifSvc notification.Service
	logger   core.Logger
}

func NewScheduler(notifSvc notification.Service, logger core.Logger) *Scheduler {
	return &Scheduler{
		engine:   cron.New(cron.WithLocation(time.Local)),
		notifSvc: notifSvc,
		logger:   logger,
	}
}

func (s *Scheduler) Start() error {
	_, err := s.engine.AddFunc(core.Conf.Cron.TripReminderSpec, func() {
		if err := s.notifSvc.SendTripReminders(); err != nil {
			s.logger.Error("sending trip reminders", err)
		}
	})
	if err != nil {
		return err
	}

	_, err = s.engine.AddFunc(core.Conf.Cron.LicenseExpirySpec, func() {
		if err := s.notifSvc.SendLicenseExpiryAlerts(); err != nil {
			s.logger.Error("sending license expiry alerts", err)
		}
	})
	if err != nil {
		return err
	}

	s.engine.Start()
	s.logger.Info("scheduler started")
	return nil
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.engine.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}
