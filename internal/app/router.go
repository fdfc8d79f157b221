package app

import (
	"eduspark_backend/docs"
	"eduspark_backend/internal/config"
	"eduspark_backend/internal/middleware"
	"eduspark_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	api := router.Group("/api")
	{
		api.GET("/health", c.health.HealthCheck)

		// 答题会话：可选认证，游客只批改不评估
		quiz := api.Group("/quiz")
		quiz.Use(middleware.TryAuthMiddleware(cfg))
		{
			quiz.POST("/sessions", c.quiz.CreateSession)
			quiz.POST("/sessions/:id/touch", c.quiz.Touch)
			quiz.POST("/sessions/:id/answer", c.quiz.RecordAnswer)
			quiz.POST("/sessions/:id/submit", c.quiz.Submit)
		}

		api.GET("/content-params", middleware.TryAuthMiddleware(cfg), c.quiz.ConsumeProfileParams)

		// 历史记录：强制认证
		authorized := api.Group("/")
		authorized.Use(middleware.AuthMiddleware(cfg))
		{
			authorized.GET("/quiz-records", c.record.ListQuizRecords)
			authorized.GET("/assessment-records", c.record.ListAssessmentRecords)
		}
	}
}
