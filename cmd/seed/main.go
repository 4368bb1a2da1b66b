package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"userauth/internal/config"
	"userauth/internal/db"
	"userauth/internal/logging"
	"userauth/internal/model"
	"userauth/internal/repository"
)

const defaultSeedFile = "seed/users.json"

// SeedUser is one entry of the seed file. Avatar and CoverImage are URLs
// already hosted on the media host.
type SeedUser struct {
	FullName   string `json:"fullName"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Avatar     string `json:"avatar"`
	CoverImage string `json:"coverImage"`
}

func main() {
	cfg := config.Load()

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	path := os.Getenv("SEED_FILE")
	if path == "" {
		path = defaultSeedFile
	}

	entries, err := loadSeedFile(path)
	if err != nil {
		logger.Fatal("load seed file", zap.String("path", path), zap.Error(err))
	}
	logger.Info("seed file loaded", zap.String("path", path), zap.Int("users", len(entries)))

	gormDB, err := db.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal("database init", zap.Error(err))
	}
	if err := db.Migrate(gormDB, false); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	created, skipped, err := seedUsers(context.Background(), repository.NewUserRepository(gormDB), entries)
	if err != nil {
		logger.Fatal("seed users", zap.Error(err))
	}

	logger.Info("seed completed", zap.Int("created", created), zap.Int("skipped", skipped))
}

func loadSeedFile(path string) ([]SeedUser, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var entries []SeedUser
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return entries, nil
}

// seedUsers creates every entry whose username and email are free. Invalid
// entries and existing users are skipped.
func seedUsers(ctx context.Context, repo repository.UserRepository, entries []SeedUser) (created int, skipped int, err error) {
	for _, e := range entries {
		user := &model.User{
			FullName:   strings.TrimSpace(e.FullName),
			Username:   strings.ToLower(strings.TrimSpace(e.Username)),
			Email:      strings.ToLower(strings.TrimSpace(e.Email)),
			Password:   e.Password,
			Avatar:     strings.TrimSpace(e.Avatar),
			CoverImage: strings.TrimSpace(e.CoverImage),
		}
		if user.FullName == "" || user.Username == "" || user.Email == "" ||
			strings.TrimSpace(user.Password) == "" || user.Avatar == "" {
			zap.L().Warn("skipping incomplete seed user", zap.String("username", e.Username))
			skipped++
			continue
		}

		exists, err := repo.ExistsByUsernameOrEmail(ctx, user.Username, user.Email)
		if err != nil {
			return created, skipped, fmt.Errorf("check user %s: %w", user.Username, err)
		}
		if exists {
			skipped++
			continue
		}

		if err := repo.Create(ctx, user); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				skipped++
				continue
			}
			return created, skipped, fmt.Errorf("create user %s: %w", user.Username, err)
		}
		created++
	}

	return created, skipped, nil
}
