// Package app wires configuration, storage and the HTTP server together.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopcart-labs/recommendations/internal/config"
	"github.com/shopcart-labs/recommendations/internal/db"
	apphttp "github.com/shopcart-labs/recommendations/internal/http"
	"github.com/shopcart-labs/recommendations/internal/http/api/recommendations"
	"github.com/shopcart-labs/recommendations/internal/logging"
	"github.com/shopcart-labs/recommendations/internal/store"
	"github.com/shopcart-labs/recommendations/internal/util"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// loadConfig resolves and loads configuration, then applies logging settings.
func loadConfig(cfg config.AppConfig) (*config.Config, func(), error) {
	configPath := config.ResolveConfigPath(cfg.ConfigPath)
	loaded, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	closer, errLog := logging.Setup(loaded.Log)
	if errLog != nil {
		return nil, nil, errLog
	}
	cleanup := func() {
		if errClose := closer.Close(); errClose != nil {
			log.WithError(errClose).Warn("close log file")
		}
	}
	log.Infof("loaded config from %s", configPath)
	return loaded, cleanup, nil
}

func openDatabase(ctx context.Context, cfg config.DatabaseConfig) (*gorm.DB, error) {
	log.Infof("opening database %s", util.MaskDSN(cfg.DSN))
	conn, err := db.Open(cfg.DSN, db.PoolConfig{
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	})
	if err != nil {
		return nil, err
	}
	if errMigrate := db.Migrate(conn.WithContext(ctx)); errMigrate != nil {
		_ = db.Close(conn)
		return nil, errMigrate
	}
	return conn, nil
}

// Migrate opens the database and runs migrations.
func Migrate(ctx context.Context, cfg config.AppConfig) error {
	loaded, cleanup, err := loadConfig(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	conn, err := openDatabase(ctx, loaded.Database)
	if err != nil {
		return err
	}
	log.Info("migrations applied")
	return db.Close(conn)
}

// NewHandler builds the HTTP handler for the service on top of conn.
func NewHandler(conn *gorm.DB, serverCfg config.ServerConfig, corsCfg config.CORSConfig) http.Handler {
	engine := apphttp.NewEngine(apphttp.EngineOptions{
		MaxBodyBytes: serverCfg.MaxBodyBytes,
		AllowOrigins: corsCfg.AllowOrigins,
	})
	recommendations.RegisterRoutes(engine, store.NewRecommendations(conn))
	return engine
}

// RunServer serves the API until ctx is cancelled, then shuts down gracefully.
func RunServer(ctx context.Context, cfg config.AppConfig) error {
	loaded, cleanup, err := loadConfig(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	if log.GetLevel() < log.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	conn, err := openDatabase(ctx, loaded.Database)
	if err != nil {
		return err
	}
	defer func() {
		if errClose := db.Close(conn); errClose != nil {
			log.WithError(errClose).Warn("close database")
		}
	}()

	srv := &http.Server{
		Addr:         loaded.Server.Addr,
		Handler:      NewHandler(conn, loaded.Server, loaded.CORS),
		ReadTimeout:  loaded.Server.ReadTimeout,
		WriteTimeout: loaded.Server.WriteTimeout,
		IdleTimeout:  loaded.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("listening on %s", loaded.Server.Addr)
		if errServe := srv.ListenAndServe(); errServe != nil && !errors.Is(errServe, http.ErrServerClosed) {
			errCh <- errServe
		}
		close(errCh)
	}()

	select {
	case errServe := <-errCh:
		if errServe != nil {
			return fmt.Errorf("serve: %w", errServe)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), loaded.Server.ShutdownTimeout)
	defer cancel()
	if errShutdown := srv.Shutdown(shutdownCtx); errShutdown != nil {
		return fmt.Errorf("shutdown: %w", errShutdown)
	}
	return nil
}
