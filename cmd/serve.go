package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"instadm/internal/config"
	"instadm/internal/infrastructure"
	httpapi "instadm/internal/interfaces/http"
	"instadm/internal/logging"
	"instadm/internal/usecases"
)

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if cfg.Auth.InsecureSecret {
		logger.Warn("AUTH_JWT_SECRET not set, using the development secret")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backend, err := openBackend(ctx, cfg.Database, true)
	if err != nil {
		return err
	}
	defer backend.close()
	logger.Info("database ready", zap.String("driver", cfg.Database.Driver))

	metrics := httpapi.NewMetrics()
	dispatcher := infrastructure.NewDispatcher(buildNotifier(cfg.Notify, logger), cfg.Notify.Timeout, logger)
	dispatcher.OnResult(metrics.ObserveNotification)

	tenantLimiter := infrastructure.NewKeyedRateLimiter(cfg.Auth.RateLimit, cfg.Auth.RateBurst)
	ipLimiter := infrastructure.NewKeyedRateLimiter(cfg.Auth.RateLimit, cfg.Auth.RateBurst)
	go tenantLimiter.Run(ctx, time.Minute)
	go ipLimiter.Run(ctx, time.Minute)

	stores := backend.stores
	deps := httpapi.Dependencies{
		Auth:           usecases.NewAuthUsecase(stores.Companies, dispatcher, cfg.Auth.JWTSecret.Value(), cfg.Auth.TokenTTL),
		Analytics:      usecases.NewAnalyticsUsecase(stores.ChatHistory),
		Appointments:   usecases.NewAppointmentUsecase(stores.Appointments, stores.Companies, dispatcher),
		ProductDetails: usecases.NewProductDetailsUsecase(stores.ProductDetails, stores.Companies),
		Companies:      usecases.NewCompanyUsecase(stores.Companies, dispatcher),
		ChatHistory:    usecases.NewChatHistoryUsecase(stores.ChatHistory),
		TenantLimiter:  tenantLimiter,
		IPLimiter:      ipLimiter,
		Logger:         logger,
		Metrics:        metrics,
		Ping:           backend.ping,
		CORSOrigin:     cfg.HTTP.CORSOrigin,
		MaxBodyBytes:   cfg.HTTP.MaxBodyBytes,
		Production:     cfg.IsProduction(),
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	httpapi.SetupRoutes(r, deps)

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.HTTP.Addr), zap.String("env", cfg.App.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", zap.Error(err))
	}
	if err := dispatcher.Wait(shutdownCtx); err != nil {
		logger.Warn("pending notifications dropped", zap.Error(err))
	}
	return nil
}

// buildNotifier combines every configured channel. With none configured
// notifications are logged and discarded.
func buildNotifier(cfg config.NotifyConfig, logger *zap.Logger) infrastructure.MultiNotifier {
	var notifiers infrastructure.MultiNotifier

	if cfg.EmailEnabled() {
		email, err := infrastructure.NewEmailNotifier(infrastructure.SMTPSettings{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword.Value(),
			From:     cfg.SMTPFrom,
			To:       cfg.OperatorEmail,
		})
		if err != nil {
			logger.Warn("email notifications disabled", zap.Error(err))
		} else {
			notifiers = append(notifiers, email)
		}
	}

	if cfg.TelegramEnabled() {
		tg, err := infrastructure.NewTelegramNotifier(cfg.TelegramToken.Value(), cfg.TelegramChatID, cfg.Timeout)
		if err != nil {
			logger.Warn("telegram notifications disabled", zap.Error(err))
		} else {
			logger.Info("telegram notifications enabled", zap.String("bot", tg.BotName()))
			notifiers = append(notifiers, tg)
		}
	}

	if len(notifiers) == 0 {
		logger.Info("no notification channel configured")
	}
	return notifiers
}
