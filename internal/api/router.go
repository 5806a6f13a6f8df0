package api

import (
	"github.com/gin-gonic/gin"
	"github.com/timmy/docmill/internal/api/handler"
	"github.com/timmy/docmill/internal/api/middleware"
	"github.com/timmy/docmill/internal/logger"
	"github.com/timmy/docmill/internal/worker"
)

// SetupRouter configures the Gin router with all routes
func SetupRouter(dispatcher *worker.Dispatcher, log *logger.Logger, mode string, cors middleware.CORSConfig) *gin.Engine {
	switch mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.Logger(log))
	r.Use(middleware.CORS(cors))

	healthHandler := handler.NewHealthHandler()
	jobHandler := handler.NewJobHandler(dispatcher, log)

	r.GET("/health", healthHandler.Health)

	v1 := r.Group("/api/v1")
	{
		v1.POST("/ingest", jobHandler.Ingest)
		v1.POST("/remote", jobHandler.Remote)
		v1.POST("/sync", jobHandler.Sync)
		v1.POST("/attachments", jobHandler.Attachment)

		v1.GET("/jobs", jobHandler.Jobs)
		v1.GET("/jobs/:id", jobHandler.Job)
	}

	return r
}
