// Command server runs the marketplace backend over HTTP.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/gofiber/fiber/v3"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/avelez/boxkeep"
	fiberadapter "github.com/avelez/boxkeep/adapters/fiber"
	pgxadapter "github.com/avelez/boxkeep/adapters/pgx"
	stripeadapter "github.com/avelez/boxkeep/adapters/stripe"
	"github.com/avelez/boxkeep/config"
	"github.com/avelez/boxkeep/pkg/crypto"
	"github.com/avelez/boxkeep/services"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	if err := run(context.Background(), log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

// run builds every dependency explicitly at startup. Nothing in the
// process holds package-level state besides the pool inside the storage
// adapter.
func run(ctx context.Context, log *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	store := pgxadapter.New(pool)
	if err := store.Migrate(); err != nil {
		return err
	}

	issuer := crypto.NewJWTIssuer(cfg.JWTSecret, cfg.RefreshSecret, cfg.JWTExpiresIn, cfg.RefreshExpires)
	gateway := stripeadapter.New(cfg.StripeSecretKey, cfg.StripeWebhookSecret)

	app, err := boxkeep.New(boxkeep.Config{
		Storage: store,
		Issuer:  issuer,
		Gateway: gateway,
		Payment: services.PaymentConfig{
			InitFeePriceID: cfg.InitFeePriceID,
			SuccessURL:     cfg.FrontendURL,
			CancelURL:      cfg.FrontendURL,
		},
		Logger: log,
	})
	if err != nil {
		return err
	}

	http := fiberadapter.New(
		app.Auth, app.Payments, app.Orders, app.Directory,
		issuer, log,
		fiberadapter.Config{
			Production:   cfg.Production(),
			CookieMaxAge: cfg.CookieMaxAge,
			Google: fiberadapter.GoogleConfig{
				ClientID:     cfg.GoogleClientID,
				ClientSecret: cfg.GoogleClientSecret,
				RedirectURL:  cfg.GoogleCallbackURL,
				FrontendURL:  cfg.FrontendURL,
			},
		},
	)

	server := fiber.New()
	http.RegisterRoutes(server)

	log.Info("listening", "port", cfg.Port)
	return server.Listen(":" + cfg.Port)
}
