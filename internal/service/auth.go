package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/promptline/promptline-api/internal/apperrors"
	"github.com/promptline/promptline-api/internal/core"
	"github.com/promptline/promptline-api/internal/domain/model"
)

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Users     core.UserRepository // Required: user storage
	JWTSecret []byte              // Required: HS256 signing key
	TokenTTL  time.Duration       // Optional: defaults to 30 minutes
	Logger    *slog.Logger        // Optional: structured logger
	// Now is injectable for deterministic token expiry in tests.
	Now func() time.Time
}

// AuthService handles registration, login and bearer-token verification.
type AuthService struct {
	users     core.UserRepository
	jwtSecret []byte
	tokenTTL  time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

// Claims is the JWT payload issued at login.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) (*AuthService, error) {
	if opts.Users == nil {
		return nil, errors.New("UserRepository is required")
	}
	if len(opts.JWTSecret) == 0 {
		return nil, errors.New("JWT secret is required")
	}

	tokenTTL := opts.TokenTTL
	if tokenTTL <= 0 {
		tokenTTL = 30 * time.Minute
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "auth_service")
	}

	return &AuthService{
		users:     opts.Users,
		jwtSecret: opts.JWTSecret,
		tokenTTL:  tokenTTL,
		logger:    logger,
		now:       now,
	}, nil
}

// MustNewAuthService constructs a new AuthService and panics on error.
func MustNewAuthService(opts AuthServiceOptions) *AuthService {
	svc, err := NewAuthService(opts)
	if err != nil {
		//nolint:forbidigo // Must constructor fails fast when dependencies are invalid during startup
		panic(fmt.Sprintf("failed to create AuthService: %v", err))
	}
	return svc
}

// Register creates a new user account with a bcrypt password hash.
func (s *AuthService) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	if req == nil {
		return nil, apperrors.Validation("register request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeValidation, "invalid registration")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, core.CreateUserParams{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
	})
	if err != nil {
		if errors.Is(err, core.ErrDuplicateUser) {
			return nil, apperrors.Conflict("username or email already registered")
		}
		return nil, apperrors.Wrap(err, apperrors.CodeStoreUnavailable, "create user")
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "user registered", "user_id", user.ID, "username", user.Username)
	}
	return user, nil
}

// Login verifies credentials and issues a signed bearer token. A bad username
// and a bad password produce the same error so accounts cannot be enumerated.
func (s *AuthService) Login(ctx context.Context, req *model.LoginRequest) (*model.Token, error) {
	if req == nil || req.Username == "" || req.Password == "" {
		return nil, apperrors.Validation("username and password are required")
	}

	user, err := s.users.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, core.ErrUserNotFound) {
			return nil, apperrors.Unauthorized("invalid credentials")
		}
		return nil, apperrors.Wrap(err, apperrors.CodeStoreUnavailable, "load user")
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return nil, apperrors.Unauthorized("invalid credentials")
	}

	token, expiresAt, err := s.issueToken(user)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "user logged in", "user_id", user.ID)
	}
	return &model.Token{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresAt:   expiresAt,
	}, nil
}

// VerifyToken parses and validates a bearer token, returning the user it
// identifies. The user is re-read so a deleted account is rejected even with
// a token that has not expired.
func (s *AuthService) VerifyToken(ctx context.Context, token string) (*model.User, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid {
		return nil, apperrors.Unauthorized("invalid or expired token")
	}

	user, err := s.users.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, core.ErrUserNotFound) {
			return nil, apperrors.Unauthorized("invalid or expired token")
		}
		return nil, apperrors.Wrap(err, apperrors.CodeStoreUnavailable, "load user")
	}
	return user, nil
}

func (s *AuthService) issueToken(user *model.User) (string, time.Time, error) {
	now := s.now().UTC()
	expiresAt := now.Add(s.tokenTTL)

	claims := &Claims{
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}
