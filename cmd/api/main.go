package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/MrJamesThe3rd/facturador/internal/app"
	"github.com/MrJamesThe3rd/facturador/internal/config"
	apphttp "github.com/MrJamesThe3rd/facturador/internal/http"
	"github.com/MrJamesThe3rd/facturador/internal/http/auth"
	clientHandler "github.com/MrJamesThe3rd/facturador/internal/http/client"
	invoiceHandler "github.com/MrJamesThe3rd/facturador/internal/http/invoice"
	numberingHandler "github.com/MrJamesThe3rd/facturador/internal/http/numbering"
	stockHandler "github.com/MrJamesThe3rd/facturador/internal/http/stock"
	"github.com/MrJamesThe3rd/facturador/internal/logging"
	"github.com/MrJamesThe3rd/facturador/internal/telemetry"
)

var version = "dev"

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if err := logging.Setup(os.Stderr, cfg.Log.Level, cfg.Log.Format); err != nil {
		return err
	}

	if cfg.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, telemetry.Config{
		Endpoint:    cfg.Telemetry.OTLPEndpoint,
		ServiceName: cfg.Telemetry.ServiceName,
		Version:     version,
		Insecure:    cfg.Telemetry.Insecure,
	})
	if err != nil {
		return err
	}

	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			slog.Error("failed to shut down tracing", "error", err)
		}
	}()

	services, err := app.Build(ctx, cfg)
	if err != nil {
		return err
	}
	defer services.Close()

	router := apphttp.New(auth.New(cfg.Auth.JWTSecret), cfg.CORS.AllowedOrigins, apphttp.Handlers{
		Invoices:  invoiceHandler.NewHandler(services.Invoices),
		Numbering: numberingHandler.NewHandler(services.Numbering),
		Stock:     stockHandler.NewHandler(services.Stock),
		Clients:   clientHandler.NewHandler(services.Clients),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           otelhttp.NewHandler(router, "http.server"),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
	}

	errCh := make(chan error, 1)

	go func() {
		slog.Info("starting server", "port", srv.Addr, "store", cfg.Store.Driver)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.Timeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
