package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"chat-server/internal/database"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned by Login for both unknown users and wrong
// passwords so callers cannot distinguish the two.
var ErrInvalidCredentials = errors.New("username or password not correct")

// Service issues and verifies the JWTs that authenticate every websocket
// frame, and backs the HTTP register/login endpoints.
type Service struct {
	users     database.UserStore
	secret    []byte
	expiresIn time.Duration
}

func NewService(users database.UserStore, secret []byte, expiresIn time.Duration) *Service {
	return &Service{
		users:     users,
		secret:    secret,
		expiresIn: expiresIn,
	}
}

// Verify validates an HS256 token and returns the user ID from its "user"
// claim. Expired and malformed tokens both fail verification.
func (s *Service) Verify(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.MapClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(*jwt.MapClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("invalid token")
	}

	user, ok := (*claims)["user"].(string)
	if !ok || user == "" {
		return "", fmt.Errorf("token carries no user claim")
	}
	return user, nil
}

// Issue creates a signed token for the given user. Call only after the user
// has been verified.
func (s *Service) Issue(userID string) (string, error) {
	claims := jwt.MapClaims{
		"user": userID,
		"exp":  time.Now().Add(s.expiresIn).Unix(),
		"iat":  time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Register creates a new user with a bcrypt password hash.
func (s *Service) Register(ctx context.Context, userID, password string) error {
	if userID == "" || password == "" {
		return fmt.Errorf("missing required fields")
	}
	if len(userID) > 30 {
		return fmt.Errorf("user ID must be at most 30 characters long")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return s.users.CreateUser(ctx, userID, string(hash))
}

// Login checks the credentials and returns a fresh token.
func (s *Service) Login(ctx context.Context, userID, password string) (string, error) {
	user, err := s.users.UserByID(ctx, userID)
	if err != nil {
		return "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	return s.Issue(user.UserID)
}
