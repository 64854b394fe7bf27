package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	authmw "github.com/mabel-app/mabel-backend/internal/infrastructure/http/middleware"
	"github.com/mabel-app/mabel-backend/pkg/config"
	"github.com/mabel-app/mabel-backend/pkg/jwt"
)

// Router holds all handlers
type Router struct {
	cfg             *config.Config
	tokens          *jwt.Manager
	authHandler     *Auth
	projectHandler  *Project
	moduleHandler   *Module
	questionHandler *Question
	jobHandler      *Job
}

// NewRouter creates a new router with all handlers
func NewRouter(
	cfg *config.Config,
	tokens *jwt.Manager,
	authHandler *Auth,
	projectHandler *Project,
	moduleHandler *Module,
	questionHandler *Question,
	jobHandler *Job,
) *Router {
	return &Router{
		cfg:             cfg,
		tokens:          tokens,
		authHandler:     authHandler,
		projectHandler:  projectHandler,
		moduleHandler:   moduleHandler,
		questionHandler: questionHandler,
		jobHandler:      jobHandler,
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	e.GET("/health", rt.healthCheck)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	v1 := e.Group("/v1")

	rt.setupAuthRoutes(v1)

	// Everything below requires a valid session
	protected := v1.Group("", authmw.EchoAuth(rt.tokens))
	rt.setupProjectRoutes(protected)
	rt.setupModuleRoutes(protected)
	rt.setupJobRoutes(protected)
}

// setupAuthRoutes configures authentication routes
func (rt *Router) setupAuthRoutes(g *echo.Group) {
	authGroup := g.Group("/auth")

	authGroup.POST("/register", rt.authHandler.Register)
	authGroup.POST("/login", rt.authHandler.Login)
	authGroup.POST("/refresh", rt.authHandler.Refresh)
	authGroup.GET("/me", rt.authHandler.Me, authmw.EchoAuth(rt.tokens))
}

// setupProjectRoutes configures memoir project routes
func (rt *Router) setupProjectRoutes(g *echo.Group) {
	projectGroup := g.Group("/projects")

	projectGroup.POST("", rt.projectHandler.Create)
	projectGroup.GET("", rt.projectHandler.List)
	projectGroup.GET("/:id", rt.projectHandler.Get)
	projectGroup.DELETE("/:id", rt.projectHandler.Delete)
	projectGroup.POST("/:id/interviewee", rt.projectHandler.AddInterviewee)
	projectGroup.GET("/:id/export", rt.projectHandler.Export)
	projectGroup.GET("/:id/jobs", rt.jobHandler.ListByProject)
}

// setupModuleRoutes configures module, question and chapter routes
func (rt *Router) setupModuleRoutes(g *echo.Group) {
	moduleGroup := g.Group("/projects/:id/modules")

	moduleGroup.POST("", rt.moduleHandler.Create)
	moduleGroup.GET("", rt.moduleHandler.List)
	moduleGroup.GET("/:moduleId", rt.moduleHandler.Get)
	moduleGroup.DELETE("/:moduleId", rt.moduleHandler.Delete)
	moduleGroup.POST("/:moduleId/approve", rt.moduleHandler.Approve)

	moduleGroup.PATCH("/:moduleId/questions/:questionId", rt.questionHandler.Answer)
	moduleGroup.POST("/:moduleId/questions/:questionId/audio", rt.questionHandler.AnswerAudio)

	moduleGroup.POST("/:moduleId/chapter/generate", rt.moduleHandler.GenerateChapter)
	moduleGroup.POST("/:moduleId/chapter/regenerate", rt.moduleHandler.RegenerateChapter)
	moduleGroup.POST("/:moduleId/chapter/image/generate", rt.moduleHandler.GenerateImage)
	moduleGroup.POST("/:moduleId/chapter/image/upload", rt.moduleHandler.UploadImage)
	moduleGroup.GET("/:moduleId/chapter/export", rt.moduleHandler.ExportChapter)
}

// setupJobRoutes configures job polling routes
func (rt *Router) setupJobRoutes(g *echo.Group) {
	jobGroup := g.Group("/jobs")

	jobGroup.GET("/:jobId", rt.jobHandler.Get)
}

// healthCheck returns health status
func (rt *Router) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"environment": rt.cfg.Server.Environment,
	})
}
