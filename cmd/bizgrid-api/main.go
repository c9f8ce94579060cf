package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bizgrid/bizgrid-api/internal/config"
	"github.com/bizgrid/bizgrid-api/internal/database"
	"github.com/bizgrid/bizgrid-api/internal/handlers"
	authmw "github.com/bizgrid/bizgrid-api/internal/middleware"
	"github.com/bizgrid/bizgrid-api/internal/services"
	"github.com/bizgrid/bizgrid-api/pkg/logger"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/m1z23r/drift/pkg/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Env: cfg.Env, Level: cfg.LogLevel})

	ctx := context.Background()

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	jwtService := services.NewJWTService(cfg.JWTSecret, cfg.JWTAccessExpiry, cfg.JWTRefreshExpiry)
	userService := services.NewUserService(db)
	tokenService := services.NewTokenService(db)
	resolverService := services.NewResolverService(db)
	accessService := services.NewAccessService(db)
	workspaceService := services.NewWorkspaceService(db)
	companyService := services.NewCompanyService(db)
	entityService := services.NewEntityService(db)
	emailService := services.NewEmailService(cfg.SMTP)
	invitationService := services.NewInvitationService(db, userService, accessService, emailService, cfg.BaseURL, cfg.InvitationExpiry)

	authHandler := handlers.NewAuthHandler(userService, tokenService, jwtService)
	workspaceHandler := handlers.NewWorkspaceHandler(workspaceService)
	companyHandler := handlers.NewCompanyHandler(companyService)
	invitationHandler := handlers.NewInvitationHandler(invitationService, userService, resolverService, tokenService, jwtService)
	entityHandler := handlers.NewEntityHandler(entityService)

	app := drift.New()

	if cfg.IsProduction() {
		app.SetMode(drift.ReleaseMode)
	} else {
		app.SetMode(drift.DebugMode)
	}

	app.Use(middleware.Recovery())
	app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		MaxAge:       86400,
	}))
	app.Use(middleware.BodyParser())

	api := app.Group("/api/v1")

	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.RefreshToken)
	auth.Post("/logout", authHandler.Logout)

	// Public invitation endpoints: the token is the credential.
	api.Get("/invitations/:token", invitationHandler.Preview)
	api.Post("/invitations/:token/accept", invitationHandler.Accept)

	protected := api.Group("")
	protected.Use(authmw.Auth(jwtService))

	protected.Post("/auth/logout-all", authHandler.LogoutAll)
	protected.Get("/users/me", authHandler.Me)

	protected.Get("/workspaces", workspaceHandler.List)
	protected.Post("/workspaces", workspaceHandler.Create)

	// Everything below resolves :workspace (and :company where present) and
	// evaluates the caller's access before the handler runs.
	ws := protected.Group("/workspaces/:workspace")
	ws.Use(authmw.Tenant(resolverService, accessService))

	ws.Get("", workspaceHandler.Get)
	ws.Patch("", workspaceHandler.Update)
	ws.Delete("", workspaceHandler.Delete)

	ws.Get("/members", workspaceHandler.ListMembers)
	ws.Patch("/members/:userId", workspaceHandler.UpdateMemberRole)
	ws.Delete("/members/:userId", workspaceHandler.RemoveMember)

	ws.Get("/invitations", invitationHandler.List)
	ws.Post("/invitations", invitationHandler.Create)
	ws.Post("/invitations/:invitationId/complete", invitationHandler.Complete)

	ws.Get("/companies", companyHandler.List)
	ws.Post("/companies", companyHandler.Create)

	company := ws.Group("/companies/:company")
	company.Get("", companyHandler.Get)
	company.Patch("", companyHandler.Update)
	company.Delete("", companyHandler.Delete)
	company.Post("/invitations", invitationHandler.Create)

	company.Get("/entities", entityHandler.List)
	company.Post("/entities", entityHandler.Create)
	company.Get("/entities/:entityId", entityHandler.Get)
	company.Patch("/entities/:entityId", entityHandler.Update)
	company.Delete("/entities/:entityId", entityHandler.Delete)

	api.Get("/health", func(c *drift.Context) {
		_ = c.JSON(200, map[string]string{"status": "ok"})
	})

	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		for range ticker.C {
			_ = tokenService.CleanupExpired(context.Background())
		}
	}()

	go func() {
		addr := fmt.Sprintf(":%s", cfg.Port)
		log.Info().Str("addr", addr).Msg("server starting")
		if err := app.Run(addr); err != nil {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
}
