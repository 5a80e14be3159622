package router

import (
	"rtm-portal/internal/cache"
	"rtm-portal/internal/config"
	"rtm-portal/internal/content"
	"rtm-portal/internal/database"
	"rtm-portal/internal/handler"
	"rtm-portal/internal/handler/admin"
	"rtm-portal/internal/handler/auth"
	"rtm-portal/internal/handler/eligibility"
	"rtm-portal/internal/handler/pages"
	"rtm-portal/internal/handler/registrations"
	"rtm-portal/internal/handler/users"
	"rtm-portal/internal/middleware"
	"rtm-portal/internal/questionnaire"
	"rtm-portal/internal/worker"

	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"
)

// Deps is everything the handlers need.
type Deps struct {
	Config *config.Config
	DB     database.DB
	Cache  cache.Cache
	Pool   worker.Pool
	Flow   *questionnaire.Flow
	Site   *content.Site
	// Syncer is nil when SharePoint is not configured.
	Syncer admin.Syncer
	Logger *zap.Logger
}

// Setup registers every route and the JSON error handler.
func Setup(e *echo.Echo, d Deps) {
	e.HTTPErrorHandler = ErrorHandler(d.Logger)

	// marketing pages
	e.GET("/", pages.HomeHandler(d.Site))
	e.GET("/faq", pages.FAQHandler(d.Site))
	e.GET("/pricing", pages.PricingHandler(d.Site))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")
	api.GET("/ping", handler.PingHandler(d.DB, d.Cache))

	apiContent := api.Group("/content")
	apiContent.GET("/hero", pages.HeroAPIHandler(d.Site))
	apiContent.GET("/faqs", pages.FAQsAPIHandler(d.Site))
	apiContent.GET("/pricing", pages.PricingAPIHandler(d.Site))

	api.POST("/auth/login", auth.LoginHandler(d.DB, d.Config.Auth.TokenTTL))
	api.POST("/setup/admin", auth.SetupAdminHandler(d.DB, d.Config.Auth.SetupSecret))

	apiEligibility := api.Group("/eligibility")
	apiEligibility.GET("/flow", eligibility.FlowHandler(d.Flow))
	apiEligibility.POST("", eligibility.StartHandler(d.DB, d.Flow))
	apiEligibility.GET("/:id", eligibility.GetHandler(d.DB, d.Flow))
	apiEligibility.POST("/:id/answers", eligibility.AnswerHandler(d.DB, d.Flow))
	apiEligibility.POST("/:id/back", eligibility.BackHandler(d.DB, d.Flow))

	api.POST("/registrations", registrations.RegisterHandler(d.DB, d.Config.Auth.TokenTTL))

	// signed-in leaseholders
	api.GET("/dashboard", users.DashboardHandler(d.DB), middleware.RequireAuth)
	apiUsersMe := api.Group("/users/me", middleware.RequireAuth)
	apiUsersMe.GET("", users.GetMyUserHandler(d.DB))
	apiUsersMe.PUT("", users.UpdateMyUserHandler(d.DB))
	apiUsersMe.DELETE("", users.DeleteMyUserHandler(d.DB))
	apiUsersMe.PATCH("/password", users.UpdateMyUserPasswordHandler(d.DB))

	apiAdmin := api.Group("/admin", middleware.RequireAdmin)
	apiAdmin.GET("/stats", admin.StatsHandler(d.DB, d.Cache))
	apiAdmin.GET("/registrations", admin.ListRegistrationsHandler(d.DB))
	apiAdmin.PATCH("/registrations/:id/status", admin.UpdateRegistrationStatusHandler(d.DB))
	apiAdmin.GET("/buildings", admin.ListBuildingsHandler(d.DB))
	apiAdmin.GET("/cases", admin.ListCasesHandler(d.DB))
	apiAdmin.POST("/cases", admin.CreateCaseHandler(d.DB))
	apiAdmin.GET("/cases/:id", admin.GetCaseHandler(d.DB))
	apiAdmin.PATCH("/cases/:id/status", admin.UpdateCaseStatusHandler(d.DB))
	apiAdmin.GET("/eligibility-checks", admin.ListEligibilityChecksHandler(d.DB))
	apiAdmin.GET("/users", admin.ListUsersHandler(d.DB))
	apiAdmin.GET("/export/:table", admin.ExportHandler(d.DB))
	apiAdmin.POST("/sharepoint/sync", admin.SyncHandler(d.Syncer, d.Cache, d.Pool, d.Logger))
	apiAdmin.GET("/sharepoint/sync", admin.LatestSyncHandler(d.DB))
}
