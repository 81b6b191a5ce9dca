// Package container wires the application dependencies with dig.
package container

import (
	"attendance-bot/internal/app"
	"attendance-bot/internal/bot"
	"attendance-bot/internal/config"
	"attendance-bot/internal/db"
	"attendance-bot/internal/handler"
	"attendance-bot/internal/router"
	"attendance-bot/internal/services"
	"attendance-bot/internal/store"
	"attendance-bot/internal/types"

	"go.uber.org/dig"
)

// BuildContainer creates the dependency injection container. Embedded web
// assets are provided separately by main, since embed.FS values can only
// originate from a //go:embed directive.
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	providers := []any{
		// Infrastructure
		func() (types.ConfigManager, error) { return config.NewManager() },
		db.NewDB,
		func() store.Store { return store.NewMemoryStore() },

		// Services
		services.NewSettingsManager,
		services.NewUserService,
		services.NewAttendanceService,

		// Bot integration
		bot.NewSender,
		bot.NewAdapter,

		// HTTP layer
		handler.NewServer,
		router.NewRouter,

		// Application
		app.NewApp,
	}

	for _, provider := range providers {
		if err := container.Provide(provider); err != nil {
			return nil, err
		}
	}

	return container, nil
}
