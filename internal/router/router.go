package router

import (
	"time"

	"schoolpay/internal/config"
	"schoolpay/internal/handler"
	"schoolpay/internal/infra"
	"schoolpay/internal/middleware"
	"schoolpay/internal/model"
	"schoolpay/internal/repository"
	"schoolpay/internal/service"
	"schoolpay/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, smsCB *infra.CircuitBreaker) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	pricingRepo := repository.NewPricingRepository(db)
	feeTypeRepo := repository.NewFeeTypeRepository(db)
	registrationRepo := repository.NewRegistrationRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)

	// Worker dispatcher — injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(userRepo, cfg)
	registrationSvc := service.NewRegistrationService(registrationRepo, studentRepo, pricingRepo, cfg.PaymentDueDays)
	paymentSvc := service.NewPaymentService(registrationRepo, invoiceRepo, paymentRepo, feeTypeRepo, dispatcher, cfg.Domain)
	invoiceSvc := service.NewInvoiceService(invoiceRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	registrationsH := handler.NewRegistrationsHandler(registrationSvc)
	paymentsH := handler.NewPaymentsHandler(paymentSvc)
	invoicesH := handler.NewInvoicesHandler(invoiceSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, smsCB))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Gateway confirmation callback — authenticated by payment number +
	// transaction reference, not by a staff JWT.
	r.POST("/v1/payments/:number/confirm", paymentsH.ConfirmPayment)

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		staff := middleware.RequireRole(model.RoleCashier, model.RoleRegistrar, model.RoleBranchAdmin, model.RoleAdmin)

		regs := v1.Group("/registrations")
		{
			regs.POST("", middleware.RequireRole(model.RoleRegistrar, model.RoleBranchAdmin, model.RoleAdmin), registrationsH.Create)
			regs.GET("/:id", staff, registrationsH.Get)
			regs.POST("/:id/enroll", middleware.RequireRole(model.RoleRegistrar, model.RoleBranchAdmin, model.RoleAdmin), registrationsH.Enroll)
			regs.DELETE("/:id", middleware.RequireRole(model.RoleBranchAdmin, model.RoleAdmin), registrationsH.Cancel)

			// Payment page and submission live under the registration they pay for
			regs.GET("/:id/payment", staff, paymentsH.GetPaymentDetail)
			regs.POST("/:id/payment", middleware.RequireRole(model.RoleCashier, model.RoleBranchAdmin, model.RoleAdmin), paymentsH.SubmitPayment)
		}

		invoices := v1.Group("/invoices", staff)
		{
			invoices.GET("", invoicesH.List)
			invoices.GET("/:id", invoicesH.Get)
			invoices.GET("/:id/pdf", invoicesH.DownloadPDF)
		}

		users := v1.Group("/users", middleware.RequireRole(model.RoleAdmin))
		{
			users.POST("", authH.CreateUser)
			users.GET("", authH.ListUsers)
			users.PATCH("/:id", authH.UpdateUser)
			users.DELETE("/:id", authH.DeactivateUser)
			users.POST("/:id/reactivate", authH.ReactivateUser)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
