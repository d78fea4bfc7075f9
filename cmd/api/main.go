package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	"laundry-api/internal/core/auth"
	"laundry-api/internal/core/cache"
	"laundry-api/internal/core/config"
	"laundry-api/internal/core/database"
	"laundry-api/internal/core/logger"
	"laundry-api/internal/core/server"
	"laundry-api/internal/repo"
	"laundry-api/internal/service"
	"laundry-api/internal/transport/http/ez"
	"laundry-api/internal/transport/http/handler"
	mdw "laundry-api/internal/transport/http/middleware"
	"laundry-api/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log, cleanup := logger.FromConfig(cfg.Log)
	defer cleanup()
	defer logger.RedirectStdLog(log, zapcore.InfoLevel)()

	if cfg.App.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	db := mustOpenDB(cfg, log)
	defer func() { _ = database.Close(db) }()
	log.Info("database connected", zap.String("driver", cfg.DB.Driver))

	if cfg.DB.AutoMigrate {
		if err := repo.AutoMigrate(db); err != nil {
			log.Fatal("automigrate failed", zap.Error(err))
		}
		log.Info("automigrate done")
	}

	var catalogOpts []service.CatalogOption
	if cfg.Redis.Addr != "" {
		rc := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		defer func() { _ = rc.Close() }()
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := rc.Ping(ctx); err != nil {
			log.Warn("redis unreachable, listing cache will fall through", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
		cancel()
		catalogOpts = append(catalogOpts, service.WithListCache(rc, time.Duration(cfg.Redis.ListTTLSec)*time.Second))
	}

	jwter := &auth.JWTer{
		Secret: []byte(cfg.JWT.Secret),
		Issuer: cfg.JWT.Issuer,
		TTL:    time.Duration(cfg.JWT.AccessTokenTTLMin) * time.Minute,
	}
	authn := service.NewAuthenticator(jwter, repo.NewUserRepo(db), log)
	catalog := service.NewCatalog(repo.NewServiceRepo(db), log, catalogOpts...)

	opt := ez.Options{
		Log:          log,
		Guard:        func(role string) gin.HandlerFunc { return mdw.RequireRole(authn, role) },
		ExposeErrors: cfg.App.HTTP.ExposeErrors,
	}
	r := router.NewAPIEngine(log,
		router.Options{
			MaxBodyBytes: cfg.App.HTTP.MaxBodyBytes,
			MaxInFlight:  cfg.App.HTTP.MaxInFlight,
			CORSOrigins:  cfg.App.HTTP.CORSOrigins,
		},
		handler.NewAuthHandler(authn, opt),
		handler.NewServiceHandler(catalog, opt),
	)

	addr := server.Addr(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	srv := server.BuildServer(
		addr, r,
		time.Duration(cfg.App.HTTP.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.WriteTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.IdleTimeoutSec)*time.Second,
	)

	host4human := cfg.App.HTTP.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "127.0.0.1"
	}
	baseURL := "http://" + host4human + ":" + fmt.Sprint(cfg.App.HTTP.Port)
	log.Info("laundry api starting",
		zap.String("env", cfg.App.Env),
		zap.String("open", baseURL),
		zap.String("health", baseURL+"/health"),
		zap.String("services", baseURL+"/api/services"),
	)

	go func() {
		if err := server.StartHTTP(srv, log); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("laundry api start FAILED", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warn("shutdown", zap.Error(err))
	}
	log.Info("laundry api stopped gracefully")
}

func mustOpenDB(cfg *config.Config, l *zap.Logger) *gorm.DB {
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
		Writer:             zap.NewStdLog(l.Named("gorm")),
	})
	if err != nil {
		l.Fatal("db open", zap.Error(err))
	}
	return db
}
