package cmd

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Adwaitfound/tlp-provisioner/internal/application"
	"github.com/Adwaitfound/tlp-provisioner/internal/application/commands"
	"github.com/Adwaitfound/tlp-provisioner/internal/application/query"
	"github.com/Adwaitfound/tlp-provisioner/internal/infra/client/supabase"
	"github.com/Adwaitfound/tlp-provisioner/internal/infra/client/vercel"
	"github.com/Adwaitfound/tlp-provisioner/internal/infra/db/repo"
	"github.com/Adwaitfound/tlp-provisioner/internal/infra/dbsetup"
	"github.com/Adwaitfound/tlp-provisioner/internal/infra/mail"
	"github.com/Adwaitfound/tlp-provisioner/internal/infra/migrate"
	"github.com/Adwaitfound/tlp-provisioner/internal/infra/token"
	"github.com/Adwaitfound/tlp-provisioner/internal/presentation/rest"
	"github.com/Adwaitfound/tlp-provisioner/pkg/db"
	"github.com/Adwaitfound/tlp-provisioner/pkg/env"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func Init() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using process environment")
	}

	// DB
	dbConfig := db.NewConfig()
	pool, err := pgxpool.New(context.Background(), dbConfig.GetDSN())
	if err != nil {
		log.Panicf("failed to create pool: %v", err)
	}
	err = pool.Ping(context.Background())
	if err != nil {
		log.Panicf("failed to connect to db: %v", err)
	}
	uowFactory := db.NewUoWFactory(pool)
	onboardingRepo := repo.NewOnboardingRepo(uowFactory)

	// Configs
	supabaseConfig := supabase.NewConfig()
	vercelConfig := vercel.NewConfig()
	mailConfig := mail.NewMailConfig()
	tokenConfig, err := token.NewConfig()
	if err != nil {
		log.Panicf("setup token config: %v", err)
	}

	// Clients
	supabaseClient := supabase.NewClient(supabaseConfig)
	vercelClient := vercel.NewClient(vercelConfig)
	mailServer := mail.NewMailServer(mailConfig)
	migrationRunner := migrate.NewRunner()
	databaseSetup := dbsetup.NewSetup()
	tokenCodec := token.NewCodec(tokenConfig)

	collection := &application.Collection{
		RequestOnboarding: commands.NewRequestOnboarding(onboardingRepo),
		ProvisionAgency: commands.NewProvisionAgency(
			onboardingRepo, supabaseClient, migrationRunner, databaseSetup, vercelClient, mailServer, tokenCodec,
		),
		ResendWelcome: commands.NewResendWelcome(onboardingRepo, tokenCodec, mailServer),
		ClaimInstance: commands.NewClaimInstance(tokenCodec, databaseSetup),
		NotifyComment: commands.NewNotifyComment(mailServer),
		GetStatus:     query.NewGetStatus(onboardingRepo),
	}
	handler := rest.NewServer(collection)
	app := fiber.New(fiber.Config{
		IdleTimeout: 5 * time.Second,
	})
	app.Use(cors.New(cors.Config{
		AllowOrigins:     env.GetEnv("CORS_ALLOW_ORIGINS", "http://localhost:3000"),
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
	}))
	rest.RegisterHandlers(app, handler)

	go func() {
		if err := app.Listen(":" + env.GetEnv("PORT", "8080")); err != nil {
			log.Panic(err)
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	<-c
	fmt.Println("Gracefully shutting down...")
	_ = app.Shutdown()

	fmt.Println("Running cleanup tasks...")
	pool.Close()
	fmt.Println("Fiber was successfully shutdown.")
}
