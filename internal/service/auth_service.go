package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/learnedu/learnedu-backend/internal/config"
	"github.com/learnedu/learnedu-backend/internal/model"
	"github.com/learnedu/learnedu-backend/internal/repository"
	"github.com/learnedu/learnedu-backend/internal/store"
)

// Common auth errors.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
)

// Claims extends JWT standard claims with app-specific fields.
type Claims struct {
	jwt.RegisteredClaims
	UserID uuid.UUID  `json:"user_id"`
	Role   model.Role `json:"role"`
}

// AuthService handles authentication, JWT, and per-user store migration.
type AuthService struct {
	cfg   *config.Config
	users *repository.UserRepository
	kv    store.KV
}

// NewAuthService creates a new AuthService.
func NewAuthService(cfg *config.Config, users *repository.UserRepository, kv store.KV) *AuthService {
	return &AuthService{cfg: cfg, users: users, kv: kv}
}

// HashPassword hashes a password with the configured bcrypt cost.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	return string(hash), err
}

// CheckPassword compares a plaintext password against a bcrypt hash.
func (s *AuthService) CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// Signup registers a student account and returns it with a fresh token.
func (s *AuthService) Signup(ctx context.Context, req *model.SignupRequest) (*model.User, string, error) {
	exists, err := s.users.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, "", fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, "", ErrEmailTaken
	}

	hash, err := s.HashPassword(req.Password)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         model.RoleStudent,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", fmt.Errorf("create user: %w", err)
	}

	token, err := s.GenerateToken(ctx, user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login authenticates by email and password. On success it also folds any
// pre-namespacing store keys into the user's namespace, once.
func (s *AuthService) Login(ctx context.Context, req *model.LoginRequest) (*model.User, string, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("lookup user: %w", err)
	}

	if err := s.CheckPassword(user.PasswordHash, req.Password); err != nil {
		return nil, "", err
	}

	token, err := s.GenerateToken(ctx, user)
	if err != nil {
		return nil, "", err
	}

	store.MigrateLegacyKeys(ctx, s.kv, user.ID.String())

	return user, token, nil
}

// GenerateToken creates a JWT and registers the session in the store.
func (s *AuthService) GenerateToken(ctx context.Context, user *model.User) (string, error) {
	jti := uuid.New().String()
	now := time.Now()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWTExpiry)),
		},
		UserID: user.ID,
		Role:   user.Role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	if err := s.kv.Set(ctx, config.CacheKey.UserSessionKey(user.ID.String()), jti, s.cfg.JWTExpiry); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}

	return signed, nil
}

// ValidateToken parses and validates a JWT, returning the claims.
func (s *AuthService) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
