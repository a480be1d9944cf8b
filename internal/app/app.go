package app

import (
	"net/http"
	"time"

	"ministry-backend/internal/allowlist"
	"ministry-backend/internal/applications"
	"ministry-backend/internal/auth"
	"ministry-backend/internal/config"
	"ministry-backend/internal/constants"
	"ministry-backend/internal/database"
	"ministry-backend/internal/health"
	"ministry-backend/internal/intake"
	"ministry-backend/internal/messaging"
	"ministry-backend/internal/middleware"
	"ministry-backend/internal/ministers"
	"ministry-backend/internal/users"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// CreateApp builds the Fiber app with all global middleware and route registration.
func CreateApp(cfg *config.Config) (*fiber.App, error) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler,
		EnableTrustedProxyCheck: true,
	})

	// CORS (before session)
	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix: cfg.FrontendURLEndsWith,
		DevPassword:   cfg.DevPassword,
	}))

	// Session (Redis); the client is reused for OTP codes and health checks
	sessionCfg := middleware.SessionConfig{
		Secret:            cfg.SessionSecret,
		RedisURL:          cfg.RedisURL,
		AllowCrossSiteDev: cfg.AllowCrossSiteDev,
		IsProduction:      cfg.Env == "production",
	}
	sessionHandler, rdb, err := middleware.Session(sessionCfg)
	if err != nil {
		return nil, err
	}
	app.Use(sessionHandler)

	// Tracing + route logger
	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())

	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		db, err = database.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
	}

	// Health (no auth)
	healthHandlers := &health.Handlers{DB: db, Rdb: rdb}
	app.Get("/api/v1/health", healthHandlers.Check)

	// SMS provider shared by messaging and OTP delivery
	provider := &messaging.HTTPProvider{
		BaseURL:  cfg.SMSBaseURL,
		APIKey:   cfg.SMSAPIKey,
		SenderID: cfg.SMSSenderID,
		Client:   &http.Client{Timeout: 15 * time.Second},
	}

	// Auth: staff email+password login plus applicant phone OTP login
	var userFinder auth.UserFinder
	if db != nil {
		userFinder = &auth.GormUserFinder{DB: db}
	}
	ministerService := &ministers.Service{DB: db}
	messagingService := &messaging.Service{DB: db, Provider: provider, Ministers: ministerService}
	authHandlers := &auth.Handlers{
		UserFinder: userFinder,
		OTP: &auth.OTPService{
			DB:       db,
			Rdb:      rdb,
			Sender:   messagingService,
			Provider: messagingService,
		},
		Rdb:    rdb,
		Config: sessionCfg,
	}
	authGroup := app.Group("/api/v1/auth")
	authGroup.Post("/login", authHandlers.Login)
	authGroup.Post("/request-otp", authHandlers.RequestOTP)
	authGroup.Post("/verify-otp", authHandlers.VerifyOTP)
	authGroup.Get("/me", authHandlers.Me)
	authGroup.Delete("/logout", authHandlers.Logout)

	// Intake public token check (no auth, applicants hit this before login)
	intakeService := &intake.Service{DB: db}
	intakeHandlers := &intake.Handlers{Service: intakeService, InviteBaseURL: cfg.IntakeBaseURL}
	app.Post("/api/v1/intake/public/check-token", intakeHandlers.CheckToken)

	if db == nil || rdb == nil {
		return app, nil
	}

	// --- Protected modules (auth required) ---

	// Users
	userService := &users.Service{DB: db}
	userHandlers := &users.Handlers{Service: userService}
	userGroup := app.Group("/api/v1/users", middleware.RequireAuth())
	userGroup.Post("/", middleware.AuthorizePermission(constants.ManageUsers), userHandlers.CreateUser)
	userGroup.Get("/", middleware.AuthorizePermission(constants.ManageUsers), userHandlers.ListUsers)
	userGroup.Get("/:id", middleware.AuthorizePermission(constants.ManageUsers), userHandlers.ViewUser)
	userGroup.Put("/:id", middleware.AuthorizePermission(constants.ManageUsers), userHandlers.UpdateUser)
	userGroup.Patch("/update-role", middleware.AuthorizePermission(constants.AssignRole), userHandlers.UpdateRole)
	userGroup.Delete("/:id", middleware.AuthorizePermission(constants.RemoveUser), userHandlers.RemoveUser)

	// Ministers
	ministerHandlers := &ministers.Handlers{Service: ministerService}
	ministerGroup := app.Group("/api/v1/ministers", middleware.RequireAuth())
	ministerGroup.Get("/upcoming-events", middleware.AuthorizePermission(constants.ViewData), ministerHandlers.UpcomingEvents)
	ministerGroup.Get("/export", middleware.AuthorizePermission(constants.ViewData), ministerHandlers.ExportRoster)
	ministerGroup.Post("/", middleware.AuthorizePermission(constants.ManageMinisters), ministerHandlers.CreateMinister)
	ministerGroup.Get("/", middleware.AuthorizePermission(constants.ViewData), ministerHandlers.ListMinisters)
	ministerGroup.Get("/:id", middleware.AuthorizePermission(constants.ViewData), ministerHandlers.GetMinister)
	ministerGroup.Patch("/:id", middleware.AuthorizePermission(constants.ManageMinisters), ministerHandlers.UpdateMinister)
	ministerGroup.Delete("/:id", middleware.AuthorizePermission(constants.ManageMinisters), ministerHandlers.DeleteMinister)
	ministerGroup.Post("/:id/emergency-contacts", middleware.AuthorizePermission(constants.ManageMinisters), ministerHandlers.AddEmergencyContact)

	// Applications (admissions pipeline)
	applicationService := &applications.Service{DB: db}
	applicationHandlers := &applications.Handlers{Service: applicationService}
	applicationGroup := app.Group("/api/v1/applications", middleware.RequireAuth())
	applicationGroup.Post("/", applicationHandlers.Submit)
	applicationGroup.Get("/", middleware.AuthorizePermission(constants.ReviewApplications), applicationHandlers.List)
	applicationGroup.Post("/transition", middleware.AuthorizePermission(constants.ReviewApplications), applicationHandlers.Transition)
	applicationGroup.Post("/schedule-interview", middleware.AuthorizePermission(constants.ReviewApplications), applicationHandlers.ScheduleInterview)
	applicationGroup.Post("/reject", middleware.AuthorizePermission(constants.ReviewApplications), applicationHandlers.Reject)
	applicationGroup.Get("/:id", middleware.AuthorizePermission(constants.ReviewApplications), applicationHandlers.Get)
	applicationGroup.Post("/:id/documents", applicationHandlers.AttachDocument)

	// Intake sessions, invites and submissions
	intakeGroup := app.Group("/api/v1/intake", middleware.RequireAuth())
	intakeGroup.Post("/sessions", middleware.AuthorizePermission(constants.ManageIntake), intakeHandlers.CreateSession)
	intakeGroup.Get("/sessions", middleware.AuthorizePermission(constants.ManageIntake), intakeHandlers.ListSessions)
	intakeGroup.Post("/sessions/:id/close", middleware.AuthorizePermission(constants.ManageIntake), intakeHandlers.CloseSession)
	intakeGroup.Post("/invites", middleware.AuthorizePermission(constants.ManageIntake), intakeHandlers.CreateInvite)
	intakeGroup.Get("/sessions/:id/invites", middleware.AuthorizePermission(constants.ManageIntake), intakeHandlers.ListInvites)
	intakeGroup.Patch("/invites/:id/revoke", middleware.AuthorizePermission(constants.ManageIntake), intakeHandlers.RevokeInvite)
	intakeGroup.Post("/submissions/start", intakeHandlers.StartSubmission)
	intakeGroup.Put("/submissions/:id", intakeHandlers.SaveDraft)
	intakeGroup.Post("/submissions/:id/submit", intakeHandlers.SubmitSubmission)
	intakeGroup.Get("/sessions/:id/submissions", middleware.AuthorizePermission(constants.ReviewIntake), intakeHandlers.ListSubmissions)
	intakeGroup.Get("/submissions/:id/review", middleware.AuthorizePermission(constants.ReviewIntake), intakeHandlers.Review)
	intakeGroup.Post("/submissions/:id/approve", middleware.AuthorizePermission(constants.ReviewIntake), intakeHandlers.Approve)
	intakeGroup.Post("/submissions/:id/reject", middleware.AuthorizePermission(constants.ReviewIntake), intakeHandlers.Reject)

	// Messaging
	messagingHandlers := &messaging.Handlers{Service: messagingService}
	messageGroup := app.Group("/api/v1/messages", middleware.RequireAuth(), middleware.AuthorizePermission(constants.SendMessages))
	messageGroup.Post("/send", messagingHandlers.Send)
	messageGroup.Post("/import-preview", messagingHandlers.ImportPreview)
	messageGroup.Post("/celebrations", messagingHandlers.SendCelebrations)
	messageGroup.Get("/balance", messagingHandlers.Balance)
	messageGroup.Get("/history", messagingHandlers.History)

	// Allowlist
	allowlistService := &allowlist.Service{DB: db}
	allowlistHandlers := &allowlist.Handlers{Service: allowlistService}
	allowlistGroup := app.Group("/api/v1/allowlist", middleware.RequireAuth(), middleware.AuthorizePermission(constants.ManageAllowlist))
	allowlistGroup.Post("/", allowlistHandlers.Add)
	allowlistGroup.Get("/", allowlistHandlers.List)
	allowlistGroup.Delete("/:id", allowlistHandlers.Remove)

	return app, nil
}
