// Package scheduler runs the periodic low-stock digest.
package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const digestTimeout = 2 * time.Minute

// DigestSender is implemented by the alert service.
type DigestSender interface {
	SendDigest(ctx context.Context) (int, error)
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron   *cron.Cron
	alerts DigestSender
	spec   string
	logger *zap.Logger
}

// Disabled reports whether a digest schedule turns the job off.
func Disabled(spec string) bool {
	s := strings.TrimSpace(strings.ToLower(spec))
	return s == "" || s == "off"
}

// New creates a scheduler running the digest on spec (standard 5-field cron) in the named timezone.
func New(spec, timezone string, alerts DigestSender, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	loc := time.UTC
	if timezone != "" {
		l, err := time.LoadLocation(timezone)
		if err != nil {
			return nil, fmt.Errorf("load timezone %q: %w", timezone, err)
		}
		loc = l
	}
	if !Disabled(spec) {
		if _, err := cron.ParseStandard(spec); err != nil {
			return nil, fmt.Errorf("parse digest schedule %q: %w", spec, err)
		}
	}

	return &Scheduler{
		cron:   cron.New(cron.WithLocation(loc)),
		alerts: alerts,
		spec:   spec,
		logger: logger,
	}, nil
}

// Start registers the digest job and starts the cron loop. It is a no-op when the schedule is disabled.
func (s *Scheduler) Start() error {
	if Disabled(s.spec) {
		s.logger.Info("digest scheduler disabled")
		return nil
	}
	if _, err := s.cron.AddFunc(s.spec, s.runDigest); err != nil {
		return fmt.Errorf("schedule digest: %w", err)
	}
	s.logger.Info("starting scheduler", zap.String("schedule", s.spec))
	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runDigest() {
	ctx, cancel := context.WithTimeout(context.Background(), digestTimeout)
	defer cancel()

	start := time.Now()
	n, err := s.alerts.SendDigest(ctx)
	if err != nil {
		s.logger.Error("low stock digest failed", zap.Error(err))
		return
	}
	s.logger.Info("low stock digest sent",
		zap.Int("messages", n),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
}
