package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/readloopapp/readloop-server/internal/auth"
	"github.com/readloopapp/readloop-server/internal/domain"
	domainerrors "github.com/readloopapp/readloop-server/internal/errors"
	"github.com/readloopapp/readloop-server/internal/id"
	"github.com/readloopapp/readloop-server/internal/store"
	"github.com/readloopapp/readloop-server/internal/validation"
)

// validate is the shared request validator for the service layer.
var validate = validation.New()

// usernamePattern restricts usernames to URL-safe handles.
var usernamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{2,29}$`)

// defaultDeviceInfo stands in for clients that do not report their
// device. Sessions still need display fields, so assume a plain web
// client.
var defaultDeviceInfo = auth.DeviceInfo{
	DeviceType:    "web",
	Platform:      "Web",
	ClientName:    "ReadLoop Web",
	ClientVersion: "1.0.0",
}

// AuthService handles account registration and login. Session lifecycle
// is delegated to SessionService.
type AuthService struct {
	store          *store.Store
	tokenService   *auth.TokenService
	sessionService *SessionService
	logger         *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(store *store.Store, tokenService *auth.TokenService, sessionService *SessionService, logger *slog.Logger) *AuthService {
	return &AuthService{
		store:          store,
		tokenService:   tokenService,
		sessionService: sessionService,
		logger:         logger,
	}
}

// RegisterRequest contains new account data.
type RegisterRequest struct {
	Email       string          `json:"email" validate:"required,email"`
	Username    string          `json:"username" validate:"required,min=3,max=30"`
	Password    string          `json:"password" validate:"required,min=8,max=1024"`
	DisplayName string          `json:"display_name" validate:"max=100"`
	DeviceInfo  auth.DeviceInfo `json:"device_info"`
	IPAddress   string          `json:"-"` // Extracted from request by handler
}

// LoginRequest contains user credentials and device information.
type LoginRequest struct {
	Email      string          `json:"email" validate:"required,email"`
	Password   string          `json:"password" validate:"required"`
	DeviceInfo auth.DeviceInfo `json:"device_info"`
	IPAddress  string          `json:"-"` // Extracted from request by handler
}

// AuthResponse contains authentication tokens and user data.
type AuthResponse struct {
	User *domain.User `json:"user"`
	SessionResponse
}

// Register creates a new account and logs it in. The first account on
// the server becomes the admin.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	username := strings.ToLower(strings.TrimSpace(req.Username))
	if !usernamePattern.MatchString(username) {
		return nil, domainerrors.Validation("username must be 3-30 characters: lowercase letters, digits, _ or -")
	}
	if !req.DeviceInfo.IsValid() {
		req.DeviceInfo = defaultDeviceInfo
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	userID, err := id.Generate("user")
	if err != nil {
		return nil, fmt.Errorf("generate user ID: %w", err)
	}

	// The first registered user administers the catalogue.
	existing, err := s.store.CountUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}

	user := &domain.User{
		Email:        strings.TrimSpace(req.Email),
		Username:     username,
		PasswordHash: passwordHash,
		IsAdmin:      existing == 0,
		DisplayName:  strings.TrimSpace(req.DisplayName),
		LastLoginAt:  time.Now(),
	}
	user.ID = userID
	user.InitTimestamps()

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.AlreadyExists("email or username already in use")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	// Every account gets a default profile so avatar lookups never miss.
	if err := s.store.UpsertProfile(ctx, domain.NewUserProfile(userID)); err != nil {
		s.logger.Warn("failed to create default profile", "error", err, "user_id", userID)
	}

	sessionResp, err := s.sessionService.CreateSession(ctx, user, req.DeviceInfo, req.IPAddress)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.logger.Info("user registered",
		"user_id", userID,
		"username", username,
		"is_admin", user.IsAdmin,
	)

	user.PasswordHash = ""
	return &AuthResponse{
		User:            user,
		SessionResponse: *sessionResp,
	}, nil
}

// Login authenticates a user and creates a new session.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}
	if !req.DeviceInfo.IsValid() {
		req.DeviceInfo = defaultDeviceInfo
	}

	user, err := s.store.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Don't leak whether the email exists.
			return nil, domainerrors.InvalidCredentials("invalid email or password")
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	valid, err := auth.VerifyPassword(user.PasswordHash, req.Password)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !valid {
		return nil, domainerrors.InvalidCredentials("invalid email or password")
	}

	if err := s.store.TouchUserLogin(ctx, user.ID); err != nil {
		// Log but don't fail the login.
		s.logger.Warn("failed to update last login time", "error", err, "user_id", user.ID)
	}

	sessionResp, err := s.sessionService.CreateSession(ctx, user, req.DeviceInfo, req.IPAddress)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.logger.Info("user logged in",
		"user_id", user.ID,
		"device", req.DeviceInfo.Platform,
	)

	user.PasswordHash = ""
	return &AuthResponse{
		User:            user,
		SessionResponse: *sessionResp,
	}, nil
}

// Refresh rotates a session's tokens.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	if refreshToken == "" {
		return nil, domainerrors.Validation("refresh_token is required")
	}

	sessionResp, user, err := s.sessionService.RefreshSession(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	user.PasswordHash = ""
	return &AuthResponse{
		User:            user,
		SessionResponse: *sessionResp,
	}, nil
}

// VerifyAccessToken checks a bearer token and returns its claims.
func (s *AuthService) VerifyAccessToken(token string) (*auth.AccessClaims, error) {
	claims, err := s.tokenService.VerifyAccessToken(token)
	if err != nil {
		return nil, domainerrors.Unauthorized("invalid or expired access token").WithCause(err)
	}
	return claims, nil
}

// GetCurrentUser loads the account behind a verified token.
func (s *AuthService) GetCurrentUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("user not found")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	user.PasswordHash = ""
	return user, nil
}
