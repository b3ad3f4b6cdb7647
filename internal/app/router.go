package app

import (
	"sheet_lms_backend/docs"
	"sheet_lms_backend/internal/config"
	"sheet_lms_backend/internal/middleware"
	"sheet_lms_backend/internal/model"
	"sheet_lms_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	api := router.Group("/api")
	api.Use(middleware.RequestTimeout(cfg.Server.RequestTimeout))
	api.GET("/health", c.health.HealthCheck)

	a.registerAuthRoutes(api, c, cfg)
	a.registerCourseRoutes(api, c, cfg)
	a.registerLessonRoutes(api, c, cfg)
	a.registerQuizRoutes(api, c, cfg)
	a.registerProgressRoutes(api, c, cfg)
}

func (a *App) registerAuthRoutes(api *gin.RouterGroup, c *controllers, cfg *config.Config) {
	auth := api.Group("/auth")
	{
		auth.POST("/register", c.auth.Register)
		auth.POST("/login", c.auth.Login)
		auth.GET("/me", middleware.AuthMiddleware(cfg), c.auth.Me)
	}
}

func (a *App) registerCourseRoutes(api *gin.RouterGroup, c *controllers, cfg *config.Config) {
	courses := api.Group("/courses")
	{
		courses.GET("", middleware.TryAuthMiddleware(cfg), c.course.ListCourses)
		courses.GET("/categories", c.course.GetCategories)
		courses.GET("/:id", middleware.TryAuthMiddleware(cfg), c.course.GetCourse)

		// 讲师/管理员
		instructor := courses.Group("")
		instructor.Use(middleware.AuthMiddleware(cfg), middleware.RoleMiddleware(model.Instructor))
		{
			instructor.POST("", c.course.CreateCourse)
			instructor.POST("/:id/modules", c.course.AddModule)
			instructor.POST("/:id/thumbnail", c.course.UploadThumbnail)
		}
	}
}

func (a *App) registerLessonRoutes(api *gin.RouterGroup, c *controllers, cfg *config.Config) {
	lessons := api.Group("/lessons")
	{
		lessons.GET("/:id", middleware.TryAuthMiddleware(cfg), c.lesson.GetLesson)

		instructor := lessons.Group("")
		instructor.Use(middleware.AuthMiddleware(cfg), middleware.RoleMiddleware(model.Instructor))
		{
			instructor.POST("", c.lesson.CreateLesson)
			instructor.POST("/:id/quizzes", c.lesson.AddQuizzes)
		}
	}
}

func (a *App) registerQuizRoutes(api *gin.RouterGroup, c *controllers, cfg *config.Config) {
	quiz := api.Group("/quiz")
	{
		quiz.GET("/lesson/:lessonId", c.quiz.GetLessonQuiz)
		quiz.POST("/submit", middleware.AuthMiddleware(cfg), c.quiz.SubmitQuiz)
	}
}

func (a *App) registerProgressRoutes(api *gin.RouterGroup, c *controllers, cfg *config.Config) {
	progress := api.Group("/progress")
	progress.Use(middleware.AuthMiddleware(cfg))
	{
		progress.GET("/course/:courseId", c.progress.GetCourseProgress)
		progress.GET("/:userId", c.progress.GetUserProgress)
	}
}
