package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/princinho/shopitbackend/config"
	"github.com/princinho/shopitbackend/controllers"
	"github.com/princinho/shopitbackend/database"
	"github.com/princinho/shopitbackend/logging"
	"github.com/princinho/shopitbackend/mail"
	"github.com/princinho/shopitbackend/routes"
	"github.com/princinho/shopitbackend/storage"
	"github.com/princinho/shopitbackend/utils"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	production := cfg.Server.IsProduction()
	logger := logging.New(production)
	if production {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := database.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Timeout)
	if err != nil {
		return err
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			logger.Error("mongo disconnect failed", "error", err)
		}
	}()

	users := database.NewMongoUserStore(
		database.OpenCollection(client, cfg.Mongo.Database, database.UsersCollection),
		cfg.Mongo.Timeout,
	)
	if err := users.EnsureIndexes(ctx); err != nil {
		return err
	}

	hasher := utils.NewPasswordHasher(cfg.Auth.BcryptCost)
	if err := utils.SeedAdminUser(ctx, users, hasher, cfg.Admin); err != nil {
		return err
	}

	objects, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	if closer, ok := objects.(io.Closer); ok {
		defer closer.Close()
	}

	mailer, closeMailer, err := mail.New(cfg.Email)
	if err != nil {
		return err
	}
	defer closeMailer()

	auth := &controllers.AuthController{
		Users:        users,
		Tokens:       utils.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, production),
		Hasher:       hasher,
		Storage:      objects,
		Images:       storage.NewImageValidator(cfg.Storage.AllowedMIME, cfg.Storage.MaxUploadBytes),
		Mailer:       mailer,
		Logger:       logger,
		FrontendURL:  cfg.Email.FrontendURL,
		AvatarFolder: cfg.Storage.AvatarFolder,
		ResetTTL:     cfg.Auth.ResetTokenTTL,
	}

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: routes.NewRouter(cfg.Server, logger, auth),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", cfg.Server.Addr, "env", cfg.Server.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
