package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"reality-archive/internal/config"
	"reality-archive/internal/database"
	"reality-archive/internal/services"
	"reality-archive/internal/telegram"
)

// Application is the long-running daemon. Every access to the services runs
// on the loop goroutine; bot updates, cron jobs and reminder timers only hand
// work to it.
type Application struct {
	config     *config.Config
	db         *database.Database
	bot        *telegram.Bot
	services   *services.ServiceManager
	cron       *cron.Cron
	jobs       chan func()
	log        *zap.Logger
	wg         sync.WaitGroup
	cancelFunc context.CancelFunc
	ctx        context.Context
}

func New(cfg *config.Config, log *zap.Logger) (*Application, error) {
	return newApplication(cfg, log, os.Stdout)
}

func newApplication(cfg *config.Config, log *zap.Logger, out io.Writer) (*Application, error) {
	db, err := database.New(cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	permission := &deferredPermission{}
	serviceManager := services.NewServiceManager(database.NewRepository(db), services.Options{
		Permission: permission,
		Logger:     log,
	})

	ctx, cancel := context.WithCancel(context.Background())
	app := &Application{
		config:     cfg,
		db:         db,
		services:   serviceManager,
		cron:       cron.New(),
		jobs:       make(chan func()),
		log:        log,
		cancelFunc: cancel,
		ctx:        ctx,
	}

	var host notificationHost = NewConsoleNotifier(out)
	if cfg.Telegram.Enabled() {
		bot, err := telegram.NewBot(cfg.Telegram.Token, cfg.Telegram.ChatID, serviceManager, log)
		if err != nil {
			cancel()
			db.Close()
			return nil, err
		}
		bot.SetDispatcher(app.Do)
		app.bot = bot
		host = bot
	}

	if cfg.Notifications.Enabled {
		permission.host = host
	}
	serviceManager.SetNotificationSender(host)

	if err := app.setupCronJobs(); err != nil {
		cancel()
		db.Close()
		return nil, err
	}

	return app, nil
}

// notificationHost delivers notifications and answers the permission prompt.
type notificationHost interface {
	services.NotificationSender
	services.PermissionHost
}

// deferredPermission forwards the prompt to the host chosen after the
// services are built. With no host, permission is denied.
type deferredPermission struct {
	host services.PermissionHost
}

func (d *deferredPermission) RequestPermission() bool {
	return d.host != nil && d.host.RequestPermission()
}

func (a *Application) Start() error {
	a.log.Info("🚀 Starting application")

	if a.config.Notifications.RearmOnStart {
		armed := a.services.Reminders.Rearm(a.services.Entries())
		a.log.Info("⏰ Reminders re-armed", zap.Int("count", armed))
	}

	a.wg.Add(1)
	go a.loop()

	a.cron.Start()

	if a.bot != nil {
		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			a.bot.Start(a.ctx)
		}()
		a.Do(a.sendWelcomeMessage)
		a.log.Info("✅ Application started", zap.String("bot", "@"+a.bot.GetUsername()))
		return nil
	}

	a.log.Info("✅ Application started without chat host")
	return nil
}

func (a *Application) Stop() error {
	a.log.Info("🛑 Stopping application")

	<-a.cron.Stop().Done()
	a.cancelFunc()
	a.wg.Wait()

	if err := a.db.Close(); err != nil {
		a.log.Warn("⚠️ Database close failed", zap.Error(err))
		return err
	}

	a.log.Info("✅ Application stopped")
	return nil
}

// Do runs fn on the loop goroutine and waits for it. After Stop it is a no-op.
func (a *Application) Do(fn func()) {
	done := make(chan struct{})
	job := func() {
		defer close(done)
		fn()
	}

	select {
	case a.jobs <- job:
	case <-a.ctx.Done():
		return
	}

	select {
	case <-done:
	case <-a.ctx.Done():
	}
}

func (a *Application) loop() {
	defer a.wg.Done()
	for {
		select {
		case <-a.ctx.Done():
			return
		case job := <-a.jobs:
			job()
			a.flush()
		case <-a.services.Outbox.Ready():
			a.flush()
		}
	}
}

func (a *Application) flush() {
	if a.services.Outbox.Len() == 0 {
		return
	}
	sent := a.services.Notification.Flush()
	a.log.Debug("📨 Outbox flushed", zap.Int("sent", sent))
}

func (a *Application) setupCronJobs() error {
	_, err := a.cron.AddFunc(a.config.Notifications.SummaryCron, func() {
		a.Do(a.services.Notification.SendDailySummary)
	})
	if err != nil {
		return fmt.Errorf("schedule daily summary: %w", err)
	}
	return nil
}

func (a *Application) sendWelcomeMessage() {
	stats := a.services.Stats()
	message := fmt.Sprintf(`🧪 <b>Archivo de Realidad</b>

Tu archivo está listo.
Experimentos: %d · Completados: %d · Racha: %d días

Describe un síntoma para empezar, o usa /ayuda`,
		stats.TotalExperiments, stats.CompletedExperiments, stats.Streak)

	if err := a.bot.SendMessage(message); err != nil {
		a.log.Warn("⚠️ Welcome message failed", zap.Error(err))
	}
}
