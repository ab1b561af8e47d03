package container

import (
	"log/slog"

	"github.com/bitrader/auth/internal/config"
	"github.com/bitrader/auth/internal/connect"
	"github.com/bitrader/auth/internal/models"
	"github.com/bitrader/auth/internal/services"
)

// Container holds all application dependencies
type Container struct {
	Logger       *slog.Logger
	Storage      *connect.Storage
	EventService *services.EventService
}

// NewContainer creates a new dependency injection container
func NewContainer(logger *slog.Logger, storage *connect.Storage, cfg *config.Config) *Container {
	eventsRepo := models.MongodbNewRepo(storage)
	eventService := services.NewEventService(
		eventsRepo,
		cfg.EventExpiration,
		cfg.DeleteAPIKey,
		cfg.RejectExpiredVotes,
	)

	return &Container{
		Logger:       logger,
		Storage:      storage,
		EventService: eventService,
	}
}
