// Command admin bootstraps administrator accounts and mints bearer tokens
// for them against the configured database.
//
//	admin create-admin -email ops@example.com -password ... [-name Ops]
//	admin token -email ops@example.com
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"laundry-api/internal/core/auth"
	"laundry-api/internal/core/config"
	"laundry-api/internal/core/database"
	"laundry-api/internal/core/logger"
	"laundry-api/internal/domain"
	"laundry-api/internal/repo"
	"laundry-api/internal/service"
)

const usage = `usage:
  admin create-admin -email EMAIL -password PASSWORD [-name NAME]
  admin token -email EMAIL`

var errUsage = errors.New(usage)

func main() {
	_ = godotenv.Load()
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, args := args[0], args[1:]

	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password (create-admin)")
	name := fs.String("name", "Administrator", "display name (create-admin)")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w\n%v", errUsage, err)
	}
	if *email == "" {
		return errUsage
	}

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	log, cleanup := logger.New(cfg.Log.Level, cfg.Log.JSON)
	defer cleanup()

	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
		Writer:             zap.NewStdLog(log.Named("gorm")),
	})
	if err != nil {
		return fmt.Errorf("db open: %w", err)
	}
	defer func() { _ = database.Close(db) }()
	if err := repo.AutoMigrate(db); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}

	authn := service.NewAuthenticator(&auth.JWTer{
		Secret: []byte(cfg.JWT.Secret),
		Issuer: cfg.JWT.Issuer,
		TTL:    time.Duration(cfg.JWT.AccessTokenTTLMin) * time.Minute,
	}, repo.NewUserRepo(db), log)

	switch cmd {
	case "create-admin":
		if len(*password) < 6 {
			return fmt.Errorf("%w\npassword must be at least 6 characters", errUsage)
		}
		u, created, err := authn.EnsureAdmin(ctx, *name, *email, *password)
		if err != nil {
			return fmt.Errorf("create admin: %w", err)
		}
		verb := "updated"
		if created {
			verb = "created"
		}
		log.Info("admin "+verb, zap.Uint("user_id", u.ID), zap.String("email", u.Email))
		fmt.Fprintf(out, "admin %s: id=%d email=%s\n", verb, u.ID, u.Email)
	case "token":
		sess, err := authn.IssueFor(ctx, *email)
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("no user with email %s", *email)
		}
		if err != nil {
			return fmt.Errorf("issue token: %w", err)
		}
		if !sess.User.IsAdmin() {
			log.Warn("token issued for non-admin user", zap.String("email", sess.User.Email))
		}
		fmt.Fprintln(out, sess.Token)
	default:
		return errUsage
	}
	return nil
}
