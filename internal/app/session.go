package app

import (
	"go.uber.org/zap"

	"reality-archive/internal/config"
	"reality-archive/internal/database"
	"reality-archive/internal/services"
)

// Session backs one-shot commands. The process exits right after the
// command, so reminders are not armed; the daemon re-arms them on start.
type Session struct {
	db       *database.Database
	Services *services.ServiceManager
}

func OpenSession(cfg *config.Config, log *zap.Logger) (*Session, error) {
	db, err := database.New(cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	sm := services.NewServiceManager(database.NewRepository(db), services.Options{
		Permission: services.StaticPermission(false),
		Logger:     log,
	})
	return &Session{db: db, Services: sm}, nil
}

// Events drains what the last command produced, e.g. unlocked achievements.
func (s *Session) Events() []services.Event {
	return s.Services.Outbox.Drain()
}

func (s *Session) Close() error {
	return s.db.Close()
}
