// cmd/seeduser/main.go: creates or resets the bootstrap administrator.
// Usage: SEED_USERNAME=admin SEED_PASSWORD=secret go run ./cmd/seeduser
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/garageMitre/garage-mitre-backend-sub000/internal/config"
	"github.com/garageMitre/garage-mitre-backend-sub000/internal/infra"
	"github.com/garageMitre/garage-mitre-backend-sub000/internal/model"
	"github.com/garageMitre/garage-mitre-backend-sub000/internal/service"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm/clause"
)

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect")
	}

	username := getenv("SEED_USERNAME", "admin")
	password := getenv("SEED_PASSWORD", "admin1234")

	hash, err := service.HashPassword(password)
	if err != nil {
		log.Fatal().Err(err).Msg("bcrypt")
	}

	user := model.User{
		Username:     username,
		Name:         "Administrador",
		PasswordHash: hash,
		Role:         model.RoleAdmin,
		Active:       true,
	}
	err = db.WithContext(context.Background()).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "username"}},
		DoUpdates: clause.AssignmentColumns([]string{"password_hash", "role", "active", "updated_at"}),
	}).Create(&user).Error
	if err != nil {
		log.Fatal().Err(err).Msg("upsert user")
	}
	fmt.Printf("user %q created/updated\n", username)
}
