package app

import (
	"studypath_backend/docs"
	"studypath_backend/internal/config"
	"studypath_backend/internal/middleware"
	"studypath_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())
	router.GET("/health", c.health.Health)

	// 公共路由(无需登录)
	public := router.Group("/api")
	{
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}

	// 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		authGroup.GET("/profile", c.auth.GetProfile)

		authGroup.POST("/onboarding", c.record.Onboard)
		authGroup.GET("/student/record", c.record.GetRecord)
		authGroup.PATCH("/student/record", c.record.PatchRecord)
		authGroup.DELETE("/student/record", c.record.ResetRecord)

		learning := authGroup.Group("/learning")
		{
			learning.POST("/activities", c.learning.LogActivity)
			learning.POST("/content", c.learning.GenerateContent)
			learning.POST("/quiz", c.learning.GenerateQuiz)
			learning.POST("/quiz/submit", c.learning.SubmitQuiz)
			learning.GET("/path", c.learning.GetLearningPath)
		}

		authGroup.POST("/tutor/ask", c.learning.AskTutor)

		authGroup.GET("/dashboard", c.dashboard.GetDashboard)

		analytics := authGroup.Group("/analytics")
		{
			analytics.GET("/overview", c.analytics.GetOverview)
			analytics.GET("/progress", c.analytics.GetWeeklyProgress)
			analytics.GET("/skills", c.analytics.GetSkillRadar)
			analytics.GET("/report", c.analytics.ExportReport)
		}
	}
}
