package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"greentrack/internal/models"
	"greentrack/internal/repositories"
	"greentrack/pkg/rabbitmq"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrDuplicateAccount is returned when the username or email is taken.
	ErrDuplicateAccount = errors.New("an account with that username or email already exists")
	// ErrInvalidCredentials is returned on any login failure. It never
	// distinguishes a bad email from a bad password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken covers malformed, forged, and expired tokens alike.
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrUserNotFound is returned when a verified identity no longer
	// resolves to a stored user.
	ErrUserNotFound = errors.New("user not found")
)

// AuthService handles account registration, login, and bearer tokens.
type AuthService struct {
	userRepo   repositories.UserRepository
	mqClient   *rabbitmq.Client
	jwtSecret  []byte
	tokenDurat time.Duration // Duration for which JWT is valid
}

// NewAuthService creates a new AuthService. mqClient may be nil; event
// publication is best-effort.
func NewAuthService(userRepo repositories.UserRepository, mqClient *rabbitmq.Client, jwtSecret string) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		mqClient:   mqClient,
		jwtSecret:  []byte(jwtSecret),
		tokenDurat: 24 * time.Hour, // Token valid for 24 hours
	}
}

// Register creates an account with a salted bcrypt hash of the password and
// issues a token for the new identity.
func (s *AuthService) Register(username, email, plaintextPassword string) (*models.User, string, error) {
	if _, err := s.userRepo.GetByUsername(username); err == nil {
		return nil, "", ErrDuplicateAccount
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, "", fmt.Errorf("failed to check username: %w", err)
	}
	if _, err := s.userRepo.GetByEmail(email); err == nil {
		return nil, "", ErrDuplicateAccount
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, "", fmt.Errorf("failed to check email: %w", err)
	}

	// bcrypt generates a fresh random salt per call; DefaultCost is a work
	// factor of 10.
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(plaintextPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username: username,
		Email:    email,
		Password: string(hashedPassword),
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, "", fmt.Errorf("failed to register user: %w", err)
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, "", err
	}

	if s.mqClient != nil {
		if err := s.mqClient.PublishEvent(rabbitmq.EventUserRegistered, map[string]interface{}{
			"userId":   user.ID,
			"username": user.Username,
		}); err != nil {
			log.Printf("Warning: Failed to publish registration event for user %s: %v", user.ID, err)
		}
	}

	return user, token, nil
}

// Login verifies the email/password pair and issues a token on success.
func (s *AuthService) Login(email, plaintextPassword string) (*models.User, string, error) {
	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(plaintextPassword)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// issueToken signs an HS256 JWT binding the user's identity with a fixed
// expiry. There is no refresh mechanism.
func (s *AuthService) issueToken(user *models.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"exp":      time.Now().Add(s.tokenDurat).Unix(), // Token expiration time
		"iat":      time.Now().Unix(),                   // Issued at time
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken parses and verifies a JWT, returning its claims if valid.
// Bad signature, wrong algorithm, malformed structure, and expiry all
// collapse into ErrInvalidToken.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Validate the alg is what we expect:
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, ErrInvalidToken
}

// GetUserByID resolves a verified identity to its stored user record.
func (s *AuthService) GetUserByID(id string) (*models.User, error) {
	user, err := s.userRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user %s: %w", id, err)
	}
	return user, nil
}
