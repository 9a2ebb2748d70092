package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"discipline_tracker/internal/app"
	"discipline_tracker/internal/domain/discipline"
	"discipline_tracker/internal/domain/notification"
	"discipline_tracker/internal/domain/period"
	"discipline_tracker/internal/infra/config"
	idb "discipline_tracker/internal/infra/database"
	"discipline_tracker/internal/infra/httpapi"
	"discipline_tracker/internal/infra/logger"
	"discipline_tracker/internal/infra/scheduler"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Logger is not configured yet; fall back to a bare one.
		logger.New(&config.AppConfig{LogLevel: "info"}).Fatalf("Could not load application configuration: %v", err)
	}

	log := logger.New(cfg)
	log.Infof("Configuration loaded. LogLevel: %s, Environment: %s, Timezone: %s", cfg.LogLevel, cfg.Environment, cfg.Timezone)

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Fatalf("Could not load timezone %q: %v", cfg.Timezone, err)
	}

	db, err := idb.NewPostgresConnection(cfg)
	if err != nil {
		log.Fatalf("Could not connect to database: %v", err)
	}
	defer db.Close()
	log.Info("Database connection established successfully.")

	recordRepo := idb.NewPostgresRecordRepository(db)
	notificationRepo := idb.NewPostgresNotificationRepository(db)
	subjectRepo := idb.NewPostgresSubjectRepository(db)
	log.Info("Repositories initialized.")

	kinds := discipline.DefaultConfig()
	periods := period.NewCalculator(loc)

	progressService := app.NewProgressService(recordRepo, kinds, periods, log)
	reminderService := app.NewReminderService(
		subjectRepo, recordRepo, notificationRepo,
		kinds, periods, log,
		cfg.ReminderConcurrency, cfg.StoreTimeout,
	)
	notificationService := app.NewNotificationService(notificationRepo, log, cfg.NotificationRetentionDays)
	log.Info("Application services initialized.")

	reminderJob := func(slot notification.ScheduleSlot) scheduler.Action {
		return func(ctx context.Context) error {
			_, err := reminderService.CreateTaskReminders(ctx, slot)
			return err
		}
	}
	jobs := []scheduler.JobSpec{
		{Name: "reminder:morning", TimeOfDay: cfg.ReminderTimes[0], Action: reminderJob(notification.SlotMorning)},
		{Name: "reminder:midday", TimeOfDay: cfg.ReminderTimes[1], Action: reminderJob(notification.SlotMidday)},
		{Name: "reminder:evening", TimeOfDay: cfg.ReminderTimes[2], Action: reminderJob(notification.SlotEvening)},
		{Name: "notification-cleanup", TimeOfDay: cfg.CleanupTime, Action: func(ctx context.Context) error {
			_, err := notificationService.CleanupExpired(ctx)
			return err
		}},
	}
	sched := scheduler.New(loc, log, jobs)
	if err := sched.Initialize(); err != nil {
		log.Fatalf("Could not initialize scheduler: %v", err)
	}

	server := httpapi.NewServer(progressService, reminderService, notificationService, sched, log)
	go func() {
		log.Infof("HTTP server listening on %s", cfg.HTTPListenAddr)
		if err := server.Listen(cfg.HTTPListenAddr); err != nil {
			log.Fatalf("HTTP server stopped unexpectedly: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down application...")
	sched.StopAll()
	if err := server.Shutdown(); err != nil {
		log.Errorf("HTTP server shutdown error: %v", err)
	}
	log.Info("Application shut down gracefully.")
}
