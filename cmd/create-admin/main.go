package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"

	"github.com/learnedu/learnedu-backend/internal/config"
	"github.com/learnedu/learnedu-backend/internal/database"
	"github.com/learnedu/learnedu-backend/internal/logger"
	"github.com/learnedu/learnedu-backend/internal/model"
	"github.com/learnedu/learnedu-backend/internal/repository"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	userRepo := repository.NewUserRepository(pool)

	// ─── CLI Input ─────────────────────────────────────────────────────
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("=== Create New Admin User ===")

	fmt.Print("Enter Name: ")
	name, _ := reader.ReadString('\n')
	name = strings.TrimSpace(name)
	if name == "" {
		fmt.Println("Error: Name is required")
		return
	}

	fmt.Print("Enter Email: ")
	email, _ := reader.ReadString('\n')
	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		fmt.Println("Error: A valid email is required")
		return
	}

	exists, err := userRepo.EmailExists(ctx, email)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to check email")
	}
	if exists {
		fmt.Println("Error: An account with this email already exists")
		return
	}

	fmt.Print("Enter Password (hidden): ")
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read password")
	}
	if len(password) < 6 {
		fmt.Println("Error: Password must be at least 6 characters")
		return
	}

	hash, err := bcrypt.GenerateFromPassword(password, cfg.BcryptCost)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to hash password")
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         model.RoleAdmin,
	}
	if err := userRepo.Create(ctx, user); err != nil {
		log.Fatal().Err(err).Msg("Failed to create admin")
	}

	fmt.Printf("Admin created: %s <%s> (id %s)\n", user.Name, user.Email, user.ID)
}
