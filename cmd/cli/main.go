package main

import (
	"context"
	"os"
	"strings"

	"github.com/nimasrn/reservation-hub/internal/config"
	"github.com/nimasrn/reservation-hub/internal/model"
	"github.com/nimasrn/reservation-hub/internal/repository"
	"github.com/nimasrn/reservation-hub/internal/services"
	"github.com/nimasrn/reservation-hub/migrations"
	"github.com/nimasrn/reservation-hub/pkg/logger"
	"github.com/nimasrn/reservation-hub/pkg/pg"
	"github.com/pkg/errors"
)

// main.go --env=.env [--dir=./migrations]
// main.go --env=.env --admin=username:email:password
func main() {
	defer logger.Sync()

	err := config.Load(getEnvPath())
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return
	}
	cfg := config.Get()

	if admin := getArg("--admin="); admin != "" {
		if err := createAdmin(cfg, admin); err != nil {
			logger.Error("admin: failed to create admin", "error", err)
		}
		return
	}

	logger.Info("migration: running", "db", cfg.PostgresWrite().String(), "dir", getMigrationPath())
	err = pg.Migrate(cfg.PostgresWrite(), migrations.FS, getMigrationPath())
	if err != nil {
		logger.Error("migration: error running migrations", "error", err)
		return
	}
	logger.Info("migration: done")
}

func createAdmin(cfg *config.Config, arg string) error {
	parts := strings.SplitN(arg, ":", 3)
	if len(parts) != 3 {
		return errors.New("expected username:email:password")
	}
	db, err := pg.CreateReadWrite(cfg.PostgresWrite(), cfg.PostgresWrite(), false)
	if err != nil {
		return errors.Wrap(err, "connect")
	}
	users := services.NewUserService(repository.NewUserRepository(db))
	u, err := users.Create(context.Background(), model.UserCreateRequest{
		Username: parts[0],
		Email:    parts[1],
		Password: parts[2],
		Role:     model.RoleAdmin,
	})
	if err != nil {
		return err
	}
	logger.Info("admin: created", "id", u.ID, "username", u.Username)
	return nil
}

func getArg(prefix string) string {
	for _, v := range os.Args {
		if strings.HasPrefix(v, prefix) {
			return strings.TrimPrefix(v, prefix)
		}
	}
	return ""
}

func getEnvPath() string {
	p := getArg("--env=")
	if p == "" {
		p = ".env"
	}
	if _, err := os.Stat(p); err != nil {
		logger.Warn("env file not found, using process environment", "path", p)
		return ""
	}
	return p
}

// getMigrationPath returns "" to run the embedded migrations.
func getMigrationPath() string {
	p := getArg("--dir=")
	if p == "" {
		return ""
	}
	if _, err := os.Stat(p); err != nil {
		logger.Error("failed to open the migrations dir, using embedded", "dir", p, "error", err)
		return ""
	}
	return p
}
