// Copyright (c) 2026 Shiloh Intercession Mountain
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs periodic maintenance jobs.
package scheduler

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/shilointercessionmountain-org/shilohwebsite/internal/cache"
	"github.com/shilointercessionmountain-org/shilohwebsite/internal/service"
	"github.com/shilointercessionmountain-org/shilohwebsite/internal/store"
)

// Scheduler handles recurring housekeeping: deactivating events whose
// date has passed and pruning old audit log entries.
type Scheduler struct {
	db             *sql.DB
	queries        *store.Queries
	audit          *service.AuditService
	cacheManager   *cache.Manager
	cron           *cron.Cron
	logger         *slog.Logger
	auditRetention time.Duration
}

// New creates a new scheduler instance.
func New(db *sql.DB, audit *service.AuditService, cacheManager *cache.Manager, auditRetentionDays int, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		db:             db,
		queries:        store.New(db),
		audit:          audit,
		cacheManager:   cacheManager,
		cron:           cron.New(),
		logger:         logger,
		auditRetention: time.Duration(auditRetentionDays) * 24 * time.Hour,
	}
}

// Start registers the jobs and begins the cron loop. Past events are
// swept every ten minutes, the audit log is pruned once a day.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("*/10 * * * *", func() {
		if err := s.deactivatePastEvents(); err != nil {
			s.logger.Error("failed to deactivate past events", "error", err)
		}
	}); err != nil {
		return err
	}

	if _, err := s.cron.AddFunc("30 3 * * *", func() {
		if err := s.pruneAuditLog(); err != nil {
			s.logger.Error("failed to prune audit log", "error", err)
		}
	}); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
	return nil
}

// Stop gracefully stops the scheduler, waiting for running jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// deactivatePastEvents clears the active flag on events that have
// already ended so they drop off the public events page.
func (s *Scheduler) deactivatePastEvents() error {
	ctx := context.Background()

	count, err := s.queries.DeactivatePastEvents(ctx, time.Now())
	if err != nil {
		return err
	}
	if count == 0 {
		return nil
	}

	s.logger.Info("deactivated past events", "count", count)

	if s.cacheManager != nil {
		s.cacheManager.InvalidateEvents(ctx)
	}

	if s.audit != nil {
		if err := s.audit.LogContentEvent(ctx, "info",
			"Deactivated past events", nil, "",
			map[string]any{"count": count}); err != nil {
			s.logger.Warn("failed to log event sweep", "error", err)
		}
	}
	return nil
}

// pruneAuditLog removes audit entries older than the retention window.
func (s *Scheduler) pruneAuditLog() error {
	if s.audit == nil || s.auditRetention <= 0 {
		return nil
	}
	ctx := context.Background()

	count, err := s.audit.DeleteOldEvents(ctx, s.auditRetention)
	if err != nil {
		return err
	}
	if count > 0 {
		s.logger.Info("pruned audit log", "deleted", count,
			"retention", s.auditRetention.String())
	}
	return nil
}
