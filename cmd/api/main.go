package main

import (
	"database/sql"
	"log"
	"net/http"
	"os"
	"time"

	_ "github.com/lib/pq"

	"sponsorengine/config"
	"sponsorengine/internal/adapters/auth"
	emailadapter "sponsorengine/internal/adapters/email"
	httpdelivery "sponsorengine/internal/delivery/http"
	"sponsorengine/internal/delivery/http/controllers"
	"sponsorengine/internal/delivery/http/middleware"
	"sponsorengine/internal/repository/postgres"
	"sponsorengine/internal/services"
)

const serviceTimeout = 10 * time.Second

// @title Sponsorship Engine API
// @version 1.0
// @description Sponsorship capacity and linkage engine: EOI review lifecycle, tier slot allocation, and sponsor-event links.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger := config.NewLogger()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("failed to open database", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Error("failed to ping database", "err", err)
		os.Exit(1)
	}

	mailer, err := emailadapter.NewMailer(emailadapter.MailerConfig{
		Provider:    cfg.EmailProvider,
		FromAddress: cfg.EmailFromAddress,
		FromName:    cfg.EmailFromName,
		SES: emailadapter.SESConfig{
			Region:             cfg.SESRegion,
			AccessKeyID:        cfg.SESAccessKeyID,
			SecretAccessKey:    cfg.SESSecretKey,
			InsecureSkipVerify: cfg.SESInsecureTLS,
		},
	})
	if err != nil {
		logger.Error("failed to create mailer", "err", err)
		os.Exit(1)
	}

	sponsorRepo := postgres.NewSponsorRepository(db)
	eventRepo := postgres.NewEventRepository(db)
	levelRepo := postgres.NewLevelRepository(db)
	eoiRepo := postgres.NewEOIRepository(db)
	linkRepo := postgres.NewLinkRepository(db)

	emailService := services.NewEmailService(mailer, emailadapter.NewTemplateRenderer())
	levelService := services.NewLevelService(levelRepo, eventRepo, linkRepo, serviceTimeout)
	eoiService := services.NewEOIService(eoiRepo, levelRepo, linkRepo, sponsorRepo, eventRepo, emailService, serviceTimeout)
	linkService := services.NewLinkService(linkRepo, levelRepo, sponsorRepo, eventRepo, serviceTimeout)
	sponsorService := services.NewSponsorService(sponsorRepo, serviceTimeout)

	verifier := auth.NewJWTVerifier(cfg.JWTSecret)
	nonces := auth.NewHMACNonce(cfg.NonceSecret)

	mux := httpdelivery.NewRouter(
		controllers.NewEOIController(logger, eoiService, nonces),
		controllers.NewLevelController(logger, levelService, nonces),
		controllers.NewLinkController(logger, linkService, nonces),
		controllers.NewSponsorController(logger, sponsorService),
		verifier,
		logger,
	)

	addr := ":" + cfg.Port
	logger.Info("starting server", "addr", addr, "environment", cfg.Environment)
	if err := http.ListenAndServe(addr, middleware.LoggingMiddleware(logger, mux)); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}
