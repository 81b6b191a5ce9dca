package router

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"

	"attendance-bot/internal/handler"
	"attendance-bot/internal/middleware"
	"attendance-bot/internal/types"

	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/static"
	"github.com/gin-gonic/gin"
)

type embedFileSystem struct {
	http.FileSystem
}

func (e embedFileSystem) Exists(prefix string, path string) bool {
	_, err := e.Open(path)
	return err == nil
}

// EmbedFolder exposes a subtree of an embedded filesystem to gin-contrib/static.
func EmbedFolder(fsEmbed embed.FS, targetPath string) static.ServeFileSystem {
	efs, err := fs.Sub(fsEmbed, targetPath)
	if err != nil {
		panic(err)
	}
	return embedFileSystem{
		FileSystem: http.FS(efs),
	}
}

// NewRouter assembles the gin engine: global middleware, webhook routes, the
// admin console and the embedded static assets.
func NewRouter(
	serverHandler *handler.Server,
	configManager types.ConfigManager,
	webFS embed.FS,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Register global middleware
	router.Use(middleware.Recovery())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.Logger(configManager.GetLogConfig()))
	router.Use(middleware.CORS(configManager.GetCORSConfig()))
	router.Use(middleware.RateLimiter(configManager.GetPerformanceConfig()))
	router.Use(middleware.SecurityHeaders())
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	router.SetHTMLTemplate(template.Must(template.ParseFS(webFS, "web/templates/*.html")))

	registerSystemRoutes(router, serverHandler)
	registerBotRoutes(router, serverHandler)
	registerAdminRoutes(router, serverHandler, configManager)
	registerStaticRoutes(router, webFS)

	return router
}

// registerSystemRoutes registers system-level routes
func registerSystemRoutes(router *gin.Engine, serverHandler *handler.Server) {
	router.GET("/health", serverHandler.Health)
}

// registerBotRoutes registers the chat platform webhook routes. They are
// deliberately unauthenticated: the platform presents no credentials, and the
// handlers acknowledge everything.
func registerBotRoutes(router *gin.Engine, serverHandler *handler.Server) {
	bot := router.Group("/bot")
	{
		bot.POST("/message", serverHandler.BotMessage)
		bot.POST("/callback", serverHandler.BotCallback)
	}
}

// registerAdminRoutes registers the admin console routes
func registerAdminRoutes(router *gin.Engine, serverHandler *handler.Server, configManager types.ConfigManager) {
	admin := router.Group("")
	admin.Use(middleware.AdminAuth(configManager.GetAuthConfig()))
	{
		admin.GET("/", serverHandler.AdminIndex)
		admin.GET("/timing", serverHandler.AdminTiming)
		admin.GET("/tasks", serverHandler.AdminTasks)
		admin.GET("/status", serverHandler.AdminStatus)
		admin.GET("/data", serverHandler.AdminData)

		admin.POST("/settings/save", serverHandler.AdminSaveSettings)
		admin.POST("/timing/save", serverHandler.AdminSaveTiming)
		admin.POST("/tasks/save", serverHandler.AdminSaveTasks)
		admin.POST("/status/save", serverHandler.AdminSaveStatus)
	}
}

// registerStaticRoutes serves the embedded admin assets
func registerStaticRoutes(router *gin.Engine, webFS embed.FS) {
	router.Use(static.Serve("/assets", EmbedFolder(webFS, "web/assets")))
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not Found"})
	})
}
