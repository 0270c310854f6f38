// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// compression, CORS, security headers, authentication, idempotency, and rate
// limiting.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	_ "github.com/caerus-app/caerus-backend/docs"
	"github.com/caerus-app/caerus-backend/internal/auth"
	"github.com/caerus-app/caerus-backend/internal/config"
	"github.com/caerus-app/caerus-backend/internal/domain"
	"github.com/caerus-app/caerus-backend/internal/entitlement"
	"github.com/caerus-app/caerus-backend/internal/http/handlers"
	"github.com/caerus-app/caerus-backend/internal/http/middleware"
	"github.com/caerus-app/caerus-backend/internal/iap"
	"github.com/caerus-app/caerus-backend/internal/notify"
	"github.com/caerus-app/caerus-backend/internal/repo"
	"github.com/caerus-app/caerus-backend/internal/services"
	"github.com/caerus-app/caerus-backend/internal/storage"
	"github.com/caerus-app/caerus-backend/internal/support"
)

// Deps are the collaborators the services are built from. Nil outbound
// clients degrade the features that need them: uploads and downloads fail
// with 502, receipts with 502, pushes are dropped and support answers from
// the FAQ only.
type Deps struct {
	DB        *gorm.DB
	Sessions  *auth.Issuer
	Identity  auth.IdentityVerifier
	Storage   storage.Signer
	Receipts  iap.Verifier
	Notifier  notify.Notifier
	Responder support.Responder
	Log       zerolog.Logger
}

// NewHandlers builds the services over deps and binds them to handlers.
func NewHandlers(deps Deps, cfg config.Config) (*handlers.Handlers, *services.AuthService) {
	db := deps.DB
	resolver := entitlement.NewResolver(db, cfg.Limits)
	if deps.Storage == nil {
		deps.Storage = storage.Disabled{}
	}

	authSvc := &services.AuthService{
		DB:        db,
		Sessions:  deps.Sessions,
		Verifier:  deps.Identity,
		FreeViews: cfg.Limits.FreePitchViews,
	}
	qa := &services.QAService{
		DB:             db,
		Notifier:       deps.Notifier,
		StatusLocked:   cfg.Limits.ThreadStatusLocked,
		IdempotencyTTL: cfg.IdempotencyTTL,
		Log:            deps.Log,
	}

	h := handlers.New(handlers.Services{
		Auth:        authSvc,
		Profiles:    &services.ProfileService{DB: db},
		Startups:    &services.StartupService{DB: db},
		Pitches:     &services.PitchService{DB: db, Resolver: resolver, Storage: deps.Storage},
		TalentPitch: &services.TalentPitchService{DB: db, Resolver: resolver, Storage: deps.Storage},
		QA:          qa,
		Templates:   &services.TemplateService{DB: db, Threads: qa},
		TalentQA: &services.TalentQAService{
			DB:             db,
			Resolver:       resolver,
			Notifier:       deps.Notifier,
			IdempotencyTTL: cfg.IdempotencyTTL,
			Log:            deps.Log,
		},
		Billing: &services.BillingService{DB: db, Verifier: deps.Receipts},
		Support: &services.SupportService{DB: db, Responder: deps.Responder},
		Admin:   &services.AdminService{DB: db},
	})
	return h, authSvc
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine and mounts the API under cfg.APIBasePath.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. AccessLog: structured logs with PII scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Metrics
//  7. gzip, CORS and security headers
//
// Inside the API group, Authenticate runs before the idempotency validator
// (which needs the caller) and the validator before the rate limiter (which
// lets replays through). Role guards are per route.
func RegisterRoutes(r *gin.Engine, deps Deps, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	r.Use(middleware.RequestID())
	r.Use(middleware.AccessLog(middleware.RedactOptions{
		MaskHeaders: []string{"X-Apple-Receipt", "X-Firebase-Token"},
	}))
	r.Use(middleware.Recovery())
	r.Use(limitBody(1 << 20))
	r.Use(middleware.Metrics())
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))
	r.Use(corsMiddleware(cfg.CORS)...)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS: cfg.Security.EnableHSTS,
		HSTSMaxAge: cfg.Security.HSTSMaxAge,
		NoStore:    true,
	}))

	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	h, authSvc := NewHandlers(deps, cfg)
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByPrincipalOrIP())

	base := groupWithPrefix(r, cfg.APIBasePath)

	public := base.Group("/auth", rl.Handler())
	{
		public.POST("/signup", h.Signup)
		public.POST("/login", h.Login)
	}

	api := base.Group("",
		middleware.Authenticate(authSvc),
		middleware.IdempotencyValidator(middleware.IdempotencyOptions{MaxLen: 200}, idempotencyLookup(deps.DB)),
		rl.Handler(),
	)

	var (
		founder   = middleware.RequireRole(domain.RoleFounder)
		investor  = middleware.RequireRole(domain.RoleInvestor)
		talent    = middleware.RequireRole(domain.RoleTalent)
		recruiter = middleware.RequireRole(domain.RoleFounder, domain.RoleInvestor)
	)

	// Account
	api.GET("/auth/me", h.Me)
	api.PUT("/auth/profile", h.UpdateProfile)
	api.POST("/auth/onboarding/founder", founder, h.OnboardFounder)
	api.POST("/auth/onboarding/investor", investor, h.OnboardInvestor)
	api.POST("/auth/onboarding/talent", talent, h.OnboardTalent)
	api.GET("/profiles/investors/:id", middleware.RequireRole(domain.RoleFounder, domain.RoleTalent), h.InvestorProfile)
	api.GET("/profiles/founders/:id", middleware.RequireRole(domain.RoleInvestor, domain.RoleTalent), h.FounderProfile)

	// Startups
	api.POST("/startups", founder, h.CreateStartup)
	api.GET("/startups/mine", founder, h.ListMyStartups)
	api.GET("/startups/:id", h.GetStartup)
	api.PUT("/startups/:id", founder, h.UpdateStartup)
	api.DELETE("/startups/:id", founder, h.DeleteStartup)

	// Pitches
	api.POST("/pitches/upload-url", founder, h.UploadPitch)
	api.POST("/pitches/:id/publish", founder, h.PublishPitch)
	api.GET("/pitches/feed", investor, h.PitchFeed)
	api.GET("/pitches/dashboard", founder, h.FounderDashboard)
	api.GET("/pitches/:id", investor, h.GetPitch)
	api.POST("/pitches/:id/view", investor, h.ViewPitch)

	// Talent pitches
	api.POST("/talent-pitches/upload-url", talent, h.UploadTalentPitch)
	api.POST("/talent-pitches/:id/publish", talent, h.PublishTalentPitch)
	api.GET("/talent-pitches/feed", recruiter, h.TalentFeed)
	api.GET("/talent-pitches/mine", talent, h.MyTalentPitch)
	api.GET("/talent-pitches/dashboard", talent, h.TalentDashboard)
	api.GET("/talent-pitches/:id", recruiter, h.GetTalentPitch)
	api.POST("/talent-pitches/:id/view", recruiter, h.ViewTalentPitch)

	// Q&A
	api.POST("/qa/threads", investor, h.CreateThread)
	api.GET("/qa/threads", recruiter, h.ListThreads)
	api.GET("/qa/threads/:id/messages", h.ThreadMessages)
	api.POST("/qa/threads/:id/messages", h.PostThreadMessage)
	api.PUT("/qa/threads/:id/status", investor, h.UpdateThreadStatus)

	api.GET("/questions/templates", investor, h.ListTemplates)
	api.POST("/questions/templates", investor, h.CreateTemplate)
	api.PUT("/questions/templates/:id", investor, h.UpdateTemplate)
	api.DELETE("/questions/templates/:id", investor, h.DeleteTemplate)
	api.POST("/questions/send", investor, h.SendQuestions)

	// Talent DMs
	api.POST("/talent-qa/threads", recruiter, h.ContactTalent)
	api.GET("/talent-qa/threads", h.ListTalentThreads)
	api.GET("/talent-qa/threads/:id/messages", h.TalentThreadMessages)
	api.POST("/talent-qa/threads/:id/messages", h.PostTalentMessage)

	// In-app purchases
	api.POST("/iap/verify-subscription", investor, h.VerifySubscription)
	api.POST("/iap/verify-unlock", founder, h.VerifyUnlock)
	api.GET("/iap/subscription", investor, h.CurrentSubscription)
	api.GET("/iap/unlocks", founder, h.ListUnlocks)

	// Support
	api.POST("/support/chat", h.SupportChat)
	api.POST("/support/tickets", h.CreateTicket)
	api.GET("/support/tickets", h.ListTickets)
	api.GET("/support/tickets/:id", h.GetTicket)
	api.POST("/support/tickets/:id/messages", h.PostTicketMessage)

	// Admin
	admin := api.Group("/admin", middleware.RequireAdmin())
	{
		admin.GET("/talent/pending", h.PendingTalent)
		admin.POST("/talent/:id/approve", h.ApproveTalent)
		admin.POST("/talent/:id/reject", h.RejectTalent)
		admin.GET("/talent/stats", h.TalentReviewStats)
	}
}

// idempotencyLookup reports whether an unexpired key record exists. Errors
// other than a miss are returned; the validator treats them as a miss.
func idempotencyLookup(db *gorm.DB) middleware.IdempotencyLookup {
	return func(ctx context.Context, userID, scope, key string, now time.Time) (bool, error) {
		_, err := repo.GetIdempotency(ctx, db, userID, scope, key, now)
		switch {
		case err == nil:
			return true, nil
		case errors.Is(err, repo.ErrNotFound):
			return false, nil
		default:
			return false, err
		}
	}
}

// corsMiddleware allows every origin when none are configured (mobile
// clients send none) and otherwise echoes allowlisted origins.
func corsMiddleware(cfg config.CORSConfig) []gin.HandlerFunc {
	base := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderIdempotencyKey},
		ExposeHeaders: []string{
			"X-Request-ID", "Content-Length", "Retry-After", "Idempotency-Replayed",
		},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}

	if len(cfg.AllowedOrigins) == 0 {
		base.AllowAllOrigins = true
		// Set ACAO even without an Origin header so plain clients see it too.
		return []gin.HandlerFunc{
			func(c *gin.Context) {
				c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
				c.Next()
			},
			cors.New(base),
		}
	}

	allowed := make(map[string]struct{}, len(cfg.AllowedOrigins))
	for _, o := range cfg.AllowedOrigins {
		allowed[o] = struct{}{}
	}
	base.AllowOrigins = cfg.AllowedOrigins
	return []gin.HandlerFunc{
		func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		},
		cors.New(base),
	}
}

// limitBody caps the request body at maxBytes using http.MaxBytesReader.
// Reads past the cap fail, which binding reports as a 400.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
