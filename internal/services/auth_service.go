package services

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"skytracker/backend/internal/db/repositories"
	"skytracker/backend/internal/logging"
	"skytracker/backend/internal/models/entities"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("an account already exists for this email or username")
)

const sessionLifetime = 7 * 24 * time.Hour

// AuthService issues and verifies session tokens for the SPA. The ingestion
// core never touches this; the HTTP layer gates favorite-touching endpoints
// on it.
type AuthService struct {
	users  *repositories.UserRepository
	secret []byte
}

func NewAuthService(users *repositories.UserRepository) *AuthService {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "dev-secret-change-me"
		logging.Warn("JWT_SECRET not set, using development default")
	}

	return &AuthService{
		users:  users,
		secret: []byte(secret),
	}
}

type sessionClaims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

// Register creates an account and returns the sanitized user with a session token
func (svc *AuthService) Register(ctx context.Context, email, password, fullName, username string) (*entities.User, string, error) {
	email = strings.TrimSpace(email)
	username = strings.TrimSpace(username)
	if email == "" || password == "" || username == "" {
		return nil, "", ErrInvalidCredentials
	}

	if existing, err := svc.users.FindByIdentifier(ctx, email); err != nil {
		return nil, "", err
	} else if existing != nil {
		return nil, "", ErrEmailTaken
	}
	if existing, err := svc.users.FindByIdentifier(ctx, username); err != nil {
		return nil, "", err
	} else if existing != nil {
		return nil, "", ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	user := &entities.User{
		Email:        email,
		Username:     username,
		PasswordHash: string(hash),
		IsActive:     true,
	}
	if fullName != "" {
		user.FullName = &fullName
	}

	if err := svc.users.InsertUser(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := svc.issueToken(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user.Sanitized(), token, nil
}

// Login verifies the identifier/password pair and returns a session token
func (svc *AuthService) Login(ctx context.Context, identifier, password string) (*entities.User, string, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, "", ErrInvalidCredentials
	}

	user, err := svc.users.FindByIdentifier(ctx, identifier)
	if err != nil {
		return nil, "", err
	}
	if user == nil {
		return nil, "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := svc.issueToken(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user.Sanitized(), token, nil
}

// UserFromToken resolves a bearer token to a sanitized user, or nil when the
// token is missing, malformed, expired, or orphaned
func (svc *AuthService) UserFromToken(ctx context.Context, token string) *entities.User {
	if token == "" {
		return nil
	}

	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return svc.secret, nil
	})
	if err != nil || !parsed.Valid || claims.UserID == "" {
		return nil
	}

	user, err := svc.users.FindByID(ctx, claims.UserID)
	if err != nil || user == nil {
		return nil
	}
	return user.Sanitized()
}

// UpdateProfile patches the mutable account fields, rehashing the password
// when a new one is supplied
func (svc *AuthService) UpdateProfile(ctx context.Context, userID string, fullName, email, password, username string) (*entities.User, error) {
	user, err := svc.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if email != "" {
		user.Email = strings.TrimSpace(email)
	}
	if username != "" {
		user.Username = strings.TrimSpace(username)
	}
	if fullName != "" {
		user.FullName = &fullName
	}
	if password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = string(hash)
	}

	if err := svc.users.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	return user.Sanitized(), nil
}

// ResetPassword replaces the password for the account matching the identifier.
// There is no mail delivery here, so the endpoint is only as strong as the
// deployment's network perimeter; SPAs pointing at a public instance should
// disable it.
func (svc *AuthService) ResetPassword(ctx context.Context, identifier, newPassword string) error {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || newPassword == "" {
		return ErrInvalidCredentials
	}

	user, err := svc.users.FindByIdentifier(ctx, identifier)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hash)

	return svc.users.UpdateUser(ctx, user)
}

// DeleteAccount removes the account and, through the favorites cascade, its saved flights
func (svc *AuthService) DeleteAccount(ctx context.Context, userID string) error {
	return svc.users.DeleteUser(ctx, userID)
}

func (svc *AuthService) issueToken(userID string) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(sessionLifetime)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(svc.secret)
}
