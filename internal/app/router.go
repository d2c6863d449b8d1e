package app

import (
	"healmymind_backend/docs"
	"healmymind_backend/internal/config"
	"healmymind_backend/internal/middleware"
	"healmymind_backend/internal/model"
	"healmymind_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		authGroup.GET("/profile", c.auth.GetProfile)

		tests := authGroup.Group("/tests")
		tests.GET("", c.test.ListTests)
		tests.GET("/results", c.result.ListResults)
		tests.GET("/results/:resultId", c.result.GetResult)
		tests.GET("/results/:resultId/analysis", c.result.GetAnalysis)
		tests.GET("/:id", c.test.GetTest)
		tests.POST("/:id/start", c.test.StartTest)
		tests.POST("/:id/submit", c.test.SubmitTest)
	}

	// 3. 管理员相关接口
	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(cfg), middleware.RequireRole(model.RoleAdmin))
	{
		admin.POST("/tests", c.adminTest.CreateTest)
		admin.POST("/tests/check", c.adminTest.CheckTest)
		admin.PUT("/tests/:id", c.adminTest.UpdateTest)
		admin.DELETE("/tests/:id", c.adminTest.DeleteTest)
		admin.GET("/tests/:id/statistics", c.adminTest.GetStatistics)
		admin.GET("/tests/:id/results/export", c.adminTest.ExportResults)
	}
}
