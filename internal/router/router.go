package router

import (
	"time"

	"github.com/garageMitre/garage-mitre-backend-sub000/internal/handler"
	"github.com/garageMitre/garage-mitre-backend-sub000/internal/middleware"
	"github.com/garageMitre/garage-mitre-backend-sub000/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// New returns the configured Gin engine for app.
func New(app *App) *gin.Engine {
	cfg := app.Config
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	counter := middleware.NewRedisCounter(app.Redis)

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORS(cfg.AllowedOrigins()))
	r.Use(middleware.RateLimiter(counter, "global", 1000, time.Minute)) // 1000 req/min per IP

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(app.Auth)
	usersH := handler.NewUsersHandler(app.Auth)
	customersH := handler.NewCustomersHandler(app.Customers)
	interestsH := handler.NewInterestsHandler(app.Customers, app.Interests, app.Clock)
	ticketsH := handler.NewTicketsHandler(app.Tickets)
	boxListsH := handler.NewBoxListsHandler(app.BoxLists)
	receiptsH := handler.NewReceiptsHandler(app.Receipts)
	notesH := handler.NewNotesHandler(app.Notes)
	printerH := handler.NewPrinterHandler(app.Tickets, app.BoxLists)
	jobsH := handler.NewJobsHandler(app.Redis)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(app.DB, app.Redis, app.Mailer))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(counter), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Devices: the barcode scanner and the thermal printer authenticate with
	// API_TOKEN; logged-in users may call the same endpoints.
	devices := r.Group("/v1", middleware.JWTOrAPIToken(cfg.JWTSecret, cfg.APIToken))
	{
		devices.POST("/scanner/scan", ticketsH.Scan)
		devices.GET("/printer/registrations/:id", printerH.Registration)
		devices.GET("/printer/box-lists/:id", printerH.BoxList)
	}

	// WebSockets accept the access token as ?token=.
	ws := r.Group("/ws", middleware.TokenFromQuery(), middleware.JWTAuth(cfg.JWTSecret))
	{
		ws.GET("/notifications", handler.WebSocket(app.NotificationsHub))
		ws.GET("/ticket-registrations", handler.WebSocket(app.RegistrationsHub))
	}

	v1 := r.Group("/v1", middleware.JWTAuth(cfg.JWTSecret))
	admin := middleware.RequireRole(model.RoleAdmin)
	{
		v1.GET("/auth/me", authH.Me)
		v1.POST("/auth/change-password", authH.ChangePassword)

		users := v1.Group("/users", admin)
		{
			users.POST("", usersH.Create)
			users.GET("", usersH.List)
			users.PUT("/:id", usersH.Update)
			users.DELETE("/:id", usersH.Deactivate)
		}

		// Owners and renters share the customer handlers with the type fixed.
		registerCustomers(v1.Group("/customers"), customersH, admin)
		registerCustomers(v1.Group("/owners"), customersH.Typed(model.CustomerOwner), admin)
		registerCustomers(v1.Group("/renters"), customersH.Typed(model.CustomerRenter), admin)

		interests := v1.Group("/customers/interests", admin)
		{
			interests.GET("/settings", interestsH.GetSettings)
			interests.PUT("/settings", interestsH.UpdateSettings)
			interests.POST("/run", interestsH.Run)
		}
		v1.GET("/customers/:id/interest", interestsH.GetCustomerInterest)
		v1.GET("/customers/:id/receipts", receiptsH.ListByCustomer)

		tickets := v1.Group("/tickets")
		{
			tickets.POST("", admin, ticketsH.Create)
			tickets.GET("", ticketsH.List)
			tickets.GET("/:id", ticketsH.Get)
			tickets.PUT("/:id", admin, ticketsH.Update)
			tickets.DELETE("/:id", admin, ticketsH.Deactivate)
			tickets.POST("/:id/registrations", ticketsH.OpenRegistration)

			tickets.GET("/registrations", ticketsH.ListRegistrations)
			tickets.POST("/registrations/:id/close", ticketsH.CloseRegistration)

			tickets.POST("/for-day", ticketsH.CreateForDay)
			tickets.GET("/for-day", ticketsH.ListForDay)
			tickets.PATCH("/for-day/:id", ticketsH.UpdateForDay)
		}

		boxLists := v1.Group("/box-lists")
		{
			boxLists.GET("", boxListsH.List)
			boxLists.GET("/date/:date", boxListsH.GetByDate)
			boxLists.GET("/:id", boxListsH.Get)
			boxLists.POST("/:id/reconcile", admin, boxListsH.Reconcile)
			boxLists.GET("/:id/other-payments", boxListsH.ListOtherPayments)
			boxLists.POST("/other-payments", boxListsH.AddOtherPayment)
			boxLists.DELETE("/other-payments/:id", admin, boxListsH.DeleteOtherPayment)
		}

		receipts := v1.Group("/receipts")
		{
			receipts.GET("", receiptsH.List)
			receipts.GET("/:id", receiptsH.Get)
			receipts.POST("/:id/pay", receiptsH.Pay)
			receipts.GET("/:id/pdf", receiptsH.PDF)
			receipts.POST("/:id/email", receiptsH.SendEmail)
		}

		notes := v1.Group("/notes")
		{
			notes.POST("", notesH.Create)
			notes.GET("", notesH.List)
			notes.GET("/:id", notesH.Get)
			notes.PUT("/:id", notesH.Update)
			notes.DELETE("/:id", notesH.Delete)
		}

		jobs := v1.Group("/jobs", admin)
		{
			jobs.GET("/dlq", jobsH.DLQ)
			jobs.POST("/dlq/requeue", jobsH.Requeue)
		}
	}

	// Swagger UI, only outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}

func registerCustomers(g *gin.RouterGroup, h *handler.CustomersHandler, admin gin.HandlerFunc) {
	g.POST("", h.Create)
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", admin, h.Delete)
	g.POST("/:id/restore", admin, h.Restore)
	g.POST("/:id/vehicles", h.AddVehicle)
	g.DELETE("/:id/vehicles/:vehicleId", h.RemoveVehicle)
}
