package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"khata/internal/config"
	"khata/internal/handler"
	"khata/internal/middleware"
	"khata/internal/rbac"
	"khata/internal/service"
)

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Auth    *handler.AuthHandler
	Role    *handler.RoleHandler
	Company *handler.CompanyHandler
	Team    *handler.TeamHandler
	Party   *handler.PartyHandler
	Product *handler.ProductHandler
	Invoice *handler.InvoiceHandler
	Payment *handler.PaymentHandler
	Ledger  *handler.LedgerHandler
	Report  *handler.ReportHandler
	File    *handler.FileHandler
	Health  *handler.HealthHandler
}

// Setup configures the Gin engine with all routes and middleware.
func Setup(cfg *config.Config, authSvc service.AuthService, h Handlers) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	// Health checks
	r.GET("/healthz", h.Health.Liveness)
	r.GET("/readyz", h.Health.Readiness)

	if !cfg.Server.IsProduction() {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	v1 := r.Group("/api/v1")

	// Public auth routes, limited per client IP
	auth := v1.Group("/auth")
	auth.Use(middleware.RateLimit(cfg.RateLimit))
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)
	auth.POST("/refresh", h.Auth.RefreshToken)
	auth.POST("/accept-invite", h.Auth.AcceptInvite)

	// Protected routes - require valid JWT, limited per user
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(authSvc))
	protected.Use(middleware.CompanyGuard())
	protected.Use(middleware.RateLimit(cfg.RateLimit))

	perm := middleware.RequirePermission

	protected.GET("/roles", h.Role.List)

	// Company profile and settings
	protected.GET("/company", h.Company.Get)
	protected.PUT("/company", perm(rbac.ModuleSettings, rbac.ActionWrite), h.Company.Update)
	protected.GET("/settings", perm(rbac.ModuleSettings, rbac.ActionRead), h.Company.GetSettings)
	protected.PUT("/settings", perm(rbac.ModuleSettings, rbac.ActionWrite), h.Company.UpdateSettings)

	team := protected.Group("/team")
	team.GET("", perm(rbac.ModuleTeam, rbac.ActionRead), h.Team.List)
	team.POST("/invitations", perm(rbac.ModuleTeam, rbac.ActionWrite), h.Team.Invite)
	team.PUT("/:id", perm(rbac.ModuleTeam, rbac.ActionWrite), h.Team.Update)
	team.DELETE("/:id", perm(rbac.ModuleTeam, rbac.ActionDelete), h.Team.Remove)

	parties := protected.Group("/parties")
	parties.GET("", perm(rbac.ModuleParties, rbac.ActionRead), h.Party.List)
	parties.POST("", perm(rbac.ModuleParties, rbac.ActionWrite), h.Party.Create)
	parties.GET("/:id", perm(rbac.ModuleParties, rbac.ActionRead), h.Party.GetByID)
	parties.PUT("/:id", perm(rbac.ModuleParties, rbac.ActionWrite), h.Party.Update)
	parties.DELETE("/:id", perm(rbac.ModuleParties, rbac.ActionDelete), h.Party.Delete)
	parties.GET("/:id/outstanding", perm(rbac.ModuleParties, rbac.ActionRead), h.Party.Outstanding)
	parties.GET("/:id/statement", perm(rbac.ModuleReports, rbac.ActionRead), h.Party.Statement)
	parties.GET("/:id/statement/export", perm(rbac.ModuleReports, rbac.ActionRead), h.Party.ExportStatement)

	products := protected.Group("/products")
	products.GET("", perm(rbac.ModuleProducts, rbac.ActionRead), h.Product.List)
	products.POST("", perm(rbac.ModuleProducts, rbac.ActionWrite), h.Product.Create)
	products.GET("/by-code/:code", perm(rbac.ModuleProducts, rbac.ActionRead), h.Product.GetByCode)
	products.GET("/:id", perm(rbac.ModuleProducts, rbac.ActionRead), h.Product.GetByID)
	products.PUT("/:id", perm(rbac.ModuleProducts, rbac.ActionWrite), h.Product.Update)
	products.DELETE("/:id", perm(rbac.ModuleProducts, rbac.ActionDelete), h.Product.Delete)

	// Invoice permissions depend on the invoice type and are checked in the handler.
	invoices := protected.Group("/invoices")
	invoices.GET("", h.Invoice.List)
	invoices.POST("", h.Invoice.Create)
	invoices.GET("/:id", h.Invoice.GetByID)
	invoices.PUT("/:id", h.Invoice.Update)
	invoices.DELETE("/:id", h.Invoice.Delete)
	protected.POST("/returns", h.Invoice.CreateReturn)

	payments := protected.Group("/payments")
	payments.GET("", perm(rbac.ModulePayments, rbac.ActionRead), h.Payment.List)
	payments.POST("", perm(rbac.ModulePayments, rbac.ActionWrite), h.Payment.Create)
	payments.GET("/:id", perm(rbac.ModulePayments, rbac.ActionRead), h.Payment.GetByID)
	payments.DELETE("/:id", perm(rbac.ModulePayments, rbac.ActionDelete), h.Payment.Delete)
	protected.POST("/linking/preview", perm(rbac.ModulePayments, rbac.ActionRead), h.Payment.PreviewLinks)

	accounts := protected.Group("/bank-accounts")
	accounts.GET("", perm(rbac.ModuleCashBank, rbac.ActionRead), h.Ledger.ListAccounts)
	accounts.POST("", perm(rbac.ModuleCashBank, rbac.ActionWrite), h.Ledger.CreateAccount)
	accounts.POST("/transfer", perm(rbac.ModuleCashBank, rbac.ActionWrite), h.Ledger.Transfer)
	accounts.GET("/:id", perm(rbac.ModuleCashBank, rbac.ActionRead), h.Ledger.GetAccount)
	accounts.PUT("/:id", perm(rbac.ModuleCashBank, rbac.ActionWrite), h.Ledger.UpdateAccount)
	accounts.DELETE("/:id", perm(rbac.ModuleCashBank, rbac.ActionDelete), h.Ledger.DeleteAccount)

	txns := protected.Group("/transactions")
	txns.GET("", perm(rbac.ModuleCashBank, rbac.ActionRead), h.Ledger.ListTransactions)
	txns.POST("", perm(rbac.ModuleCashBank, rbac.ActionWrite), h.Ledger.CreateTransaction)
	txns.GET("/:id", perm(rbac.ModuleCashBank, rbac.ActionRead), h.Ledger.GetTransaction)
	txns.PUT("/:id", perm(rbac.ModuleCashBank, rbac.ActionWrite), h.Ledger.UpdateTransaction)
	txns.DELETE("/:id", perm(rbac.ModuleCashBank, rbac.ActionDelete), h.Ledger.DeleteTransaction)

	reports := protected.Group("/reports")
	reports.Use(perm(rbac.ModuleReports, rbac.ActionRead))
	reports.GET("/period-summary", h.Report.PeriodSummary)
	reports.GET("/outstanding", h.Report.Outstanding)
	reports.GET("/gst-summary", h.Report.GSTSummary)
	reports.GET("/low-stock", h.Report.LowStock)
	reports.GET("/reconciliation", h.Report.Reconciliation)

	// Files back product images and company logos.
	files := protected.Group("/files")
	files.POST("/upload", perm(rbac.ModuleProducts, rbac.ActionWrite), h.File.Upload)
	files.GET("", perm(rbac.ModuleProducts, rbac.ActionRead), h.File.List)
	files.GET("/:id", perm(rbac.ModuleProducts, rbac.ActionRead), h.File.GetByID)
	files.DELETE("/:id", perm(rbac.ModuleProducts, rbac.ActionDelete), h.File.Delete)

	return r
}
