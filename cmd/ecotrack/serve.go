package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dukerupert/ecotrack/internal/advisor"
	"github.com/dukerupert/ecotrack/internal/config"
	"github.com/dukerupert/ecotrack/internal/database"
	"github.com/dukerupert/ecotrack/internal/genai"
	"github.com/dukerupert/ecotrack/internal/identity"
	"github.com/dukerupert/ecotrack/internal/imagestore"
	"github.com/dukerupert/ecotrack/internal/logging"
	"github.com/dukerupert/ecotrack/internal/metrics"
	"github.com/dukerupert/ecotrack/internal/savings"
	"github.com/dukerupert/ecotrack/internal/server"
	"github.com/dukerupert/ecotrack/internal/telemetry"
)

func serveCommand(v *viper.Viper, load func() (*config.Config, error)) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
	cmd.Flags().String("addr", "", "listen address (default :8080)")
	if err := v.BindPFlag("server.addr", cmd.Flags().Lookup("addr")); err != nil {
		panic(err)
	}
	return cmd
}

func serve(ctx context.Context, cfg *config.Config) error {
	logger := logging.Setup(cfg.Log.Level, cfg.Log.Format)

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	clients, err := buildClients(cfg, logger)
	if err != nil {
		return err
	}
	defer clients.Reporter.Flush(2 * time.Second)

	srv := server.New(db, server.Options{
		Savings: savings.Config{
			CarbonBaseline: cfg.Savings.CarbonBaseline,
			EnergyBaseline: cfg.Savings.EnergyBaseline,
			WindowDays:     cfg.Savings.WindowDays,
		},
		Models: advisor.Models{
			Tip:      cfg.GenAI.TipModel,
			Category: cfg.GenAI.CategoryModel,
			Insight:  cfg.GenAI.InsightModel,
			Image:    cfg.GenAI.ImageModel,
		},
		SignInURL:      cfg.Identity.SignInURL,
		OriginPatterns: cfg.Server.AllowedOrigins,
		GenerateLimit:  cfg.RateLimit.Generate,
		GenerateWindow: cfg.RateLimit.Window,
		Version:        version,
	}, clients, logger)

	// No write timeout: generative requests and websocket connections are
	// bounded by their request contexts instead.
	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				srv.RateLimiter().Cleanup()
			case <-ctx.Done():
				return
			}
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("ecotrack starting", "addr", cfg.Server.Addr, "version", version,
			"image_storage", clients.Images.Configured(),
			"sentry", clients.Reporter.Enabled(),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

func buildClients(cfg *config.Config, logger *slog.Logger) (server.Clients, error) {
	verifier, err := identity.NewVerifier(identity.VerifierConfig{
		PublicKeyPEM:      cfg.Identity.PublicKey,
		DevSecret:         cfg.Identity.DevSecret,
		Issuer:            cfg.Identity.Issuer,
		AuthorizedParties: cfg.Identity.AuthorizedParties,
		Leeway:            5 * time.Second,
	})
	if err != nil {
		return server.Clients{}, err
	}

	users := identity.NewUserClient(cfg.Identity.SecretKey,
		identity.WithAPIURL(cfg.Identity.APIURL),
		identity.WithCacheTTL(cfg.Identity.CacheTTL),
	)
	if !users.Configured() {
		logger.Warn("identity.secret_key not set; session subjects are trusted without a user lookup")
	}

	var hooks *identity.WebhookVerifier
	if cfg.Identity.WebhookSecret != "" {
		if hooks, err = identity.NewWebhookVerifier(cfg.Identity.WebhookSecret); err != nil {
			return server.Clients{}, err
		}
	}

	m, err := metrics.New()
	if err != nil {
		return server.Clients{}, err
	}

	reporter, err := telemetry.New(telemetry.Config{
		DSN:         cfg.Sentry.DSN,
		Environment: cfg.Sentry.Environment,
		Release:     "ecotrack@" + version,
	})
	if err != nil {
		return server.Clients{}, err
	}

	gen := genai.NewClient(cfg.GenAI.APIKey,
		genai.WithBaseURL(cfg.GenAI.BaseURL),
		genai.WithHTTPClient(&http.Client{Timeout: cfg.GenAI.Timeout}),
	)
	if !gen.Configured() {
		logger.Warn("genai.api_key not set; tip and insight generation will fail")
	}

	images := imagestore.New(imagestore.Config{
		Endpoint:      cfg.Storage.Endpoint,
		Bucket:        cfg.Storage.Bucket,
		Region:        cfg.Storage.Region,
		AccessKey:     cfg.Storage.AccessKey,
		SecretKey:     cfg.Storage.SecretKey,
		PublicBaseURL: cfg.Storage.PublicBaseURL,
	}, logger.With("component", "imagestore"))

	return server.Clients{
		Verifier:  verifier,
		Users:     users,
		Generator: gen,
		Webhooks:  hooks,
		Images:    images,
		Metrics:   m,
		Reporter:  reporter,
	}, nil
}
