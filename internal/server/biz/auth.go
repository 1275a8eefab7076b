package biz

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/fx"
	"golang.org/x/crypto/bcrypt"

	"github.com/looplj/tenanthub/internal/log"
	"github.com/looplj/tenanthub/internal/objects"
	"github.com/looplj/tenanthub/internal/server/db"
	"github.com/looplj/tenanthub/internal/tenancy"
)

type AuthConfig struct {
	// SecretKey signs JWT tokens. Generated at boot when empty, which
	// invalidates sessions across restarts.
	SecretKey string `conf:"secret_key" yaml:"secret_key" json:"secret_key"`

	// TokenDuration bounds the lifetime of issued tokens.
	TokenDuration time.Duration `conf:"token_duration" yaml:"token_duration" json:"token_duration"`
}

type AuthServiceParams struct {
	fx.In

	Config      AuthConfig
	DB          *db.DB
	UserService *UserService
}

func NewAuthService(params AuthServiceParams) (*AuthService, error) {
	cfg := params.Config

	if cfg.SecretKey == "" {
		secretKey, err := GenerateSecretKey()
		if err != nil {
			return nil, err
		}

		cfg.SecretKey = secretKey
	}

	if cfg.TokenDuration <= 0 {
		cfg.TokenDuration = 7 * 24 * time.Hour
	}

	return &AuthService{
		AbstractService: &AbstractService{db: params.DB},
		config:          cfg,
		UserService:     params.UserService,
	}, nil
}

type AuthService struct {
	*AbstractService

	config      AuthConfig
	UserService *UserService
}

// HashPassword hashes a password using bcrypt.
func HashPassword(password string) (string, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	return hex.EncodeToString(hashedPassword), nil
}

// VerifyPassword verifies a password against a hash.
func VerifyPassword(hashedPassword, password string) error {
	decodedHashedPassword, err := hex.DecodeString(hashedPassword)
	if err != nil {
		return fmt.Errorf("failed to decode hashed password: %w", err)
	}

	return bcrypt.CompareHashAndPassword(decodedHashedPassword, []byte(password))
}

// GenerateSecretKey generates a random secret key for JWT.
func GenerateSecretKey() (string, error) {
	bytes := make([]byte, 32) // 256 bits

	_, err := rand.Read(bytes)
	if err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	return hex.EncodeToString(bytes), nil
}

// GenerateJWTToken generates a JWT token for a user.
func (s *AuthService) GenerateJWTToken(ctx context.Context, user *objects.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"exp":     time.Now().Add(s.config.TokenDuration).Unix(),
	})

	tokenString, err := token.SignedString([]byte(s.config.SecretKey))
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	return tokenString, nil
}

// AuthenticateUser authenticates a user with email and password.
func (s *AuthService) AuthenticateUser(ctx context.Context, email, password string) (*objects.User, error) {
	u, err := tenancy.RunWithSystemBypass(ctx, "auth-lookup", func(bypassCtx context.Context) (*objects.User, error) {
		return s.UserService.GetUserByEmail(bypassCtx, email)
	})
	if err != nil {
		return nil, fmt.Errorf("invalid email or password: %w", ErrInvalidPassword)
	}

	err = VerifyPassword(u.HashedPassword, password)
	if err != nil {
		return nil, fmt.Errorf("invalid email or password: %w", ErrInvalidPassword)
	}

	log.Debug(ctx, "user authenticated", log.Int64("user_id", u.ID))

	return u, nil
}

// AuthenticateJWTToken validates a JWT token and returns the user.
func (s *AuthService) AuthenticateJWTToken(ctx context.Context, tokenString string) (*objects.User, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("%w: unexpected signing method: %v", ErrInvalidJWT, token.Header["alg"])
		}

		return []byte(s.config.SecretKey), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse jwt token: %w", ErrInvalidJWT, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%w: invalid token", ErrInvalidJWT)
	}

	userID, ok := claims["user_id"].(float64)
	if !ok {
		return nil, fmt.Errorf("%w: invalid token claims", ErrInvalidJWT)
	}

	u, err := tenancy.RunWithSystemBypass(ctx, "auth-lookup", func(bypassCtx context.Context) (*objects.User, error) {
		return s.UserService.GetUserByID(bypassCtx, int64(userID))
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get user: %w", ErrInvalidJWT, err)
	}

	return u, nil
}
