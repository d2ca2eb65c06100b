package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aawaaz/complaint-desk/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Claims is the payload of an access token
type Claims struct {
	Role string `json:"role"`
	Name string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// AuthService issues and checks access tokens and manages accounts
type AuthService struct {
	users      UserStore
	denylist   TokenDenylist
	secret     []byte
	ttl        time.Duration
	bcryptCost int
	logger     *zap.SugaredLogger
	now        func() time.Time
}

// AuthOptions configures token signing and password hashing
type AuthOptions struct {
	Secret     string
	TokenTTL   time.Duration
	BcryptCost int
}

// NewAuthService creates a new auth service
func NewAuthService(users UserStore, denylist TokenDenylist, opts AuthOptions, logger *zap.SugaredLogger) *AuthService {
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	if opts.TokenTTL == 0 {
		opts.TokenTTL = 24 * time.Hour
	}
	return &AuthService{
		users:      users,
		denylist:   denylist,
		secret:     []byte(opts.Secret),
		ttl:        opts.TokenTTL,
		bcryptCost: opts.BcryptCost,
		logger:     logger,
		now:        time.Now,
	}
}

// Register creates a student account
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = normalizeEmail(req.Email)
	if err := Validate(req); err != nil {
		return nil, err
	}

	u, err := s.createUser(ctx, req.Name, req.Email, req.Password, models.RoleStudent)
	if err != nil {
		return nil, err
	}

	s.logger.Infow("Student registered", "id", u.ID)
	return u, nil
}

// CreateAdmin creates an administrator account. When the e-mail is already
// taken the existing user is returned with created == false.
func (s *AuthService) CreateAdmin(ctx context.Context, name, email, password string) (*models.User, bool, error) {
	req := models.RegisterRequest{Name: strings.TrimSpace(name), Email: normalizeEmail(email), Password: password}
	if err := Validate(req); err != nil {
		return nil, false, err
	}

	existing, err := s.users.FindUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, false, internal("find user", err)
	}
	if existing != nil {
		return existing, false, nil
	}

	u, err := s.createUser(ctx, req.Name, req.Email, req.Password, models.RoleAdmin)
	if err != nil {
		return nil, false, err
	}

	s.logger.Infow("Administrator created", "id", u.ID)
	return u, true, nil
}

func (s *AuthService) createUser(ctx context.Context, name, email, password string, role models.Role) (*models.User, error) {
	existing, err := s.users.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, internal("find user", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("user with email %s: %w", email, ErrConflict)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &models.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		if errors.Is(err, ErrConflict) {
			return nil, err
		}
		return nil, internal("create user", err)
	}
	return u, nil
}

// Login checks credentials and returns a signed access token
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	req.Email = normalizeEmail(req.Email)
	if err := Validate(req); err != nil {
		return nil, err
	}

	u, err := s.users.FindUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, internal("find user", err)
	}
	if u == nil {
		return nil, fmt.Errorf("invalid credentials: %w", ErrUnauthenticated)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("invalid credentials: %w", ErrUnauthenticated)
	}

	token, expires, err := s.issue(u)
	if err != nil {
		return nil, err
	}

	s.logger.Infow("User logged in", "id", u.ID, "role", u.Role)
	return &models.AuthResponse{Token: token, ExpiresAt: expires, User: u}, nil
}

func (s *AuthService) issue(u *models.User) (string, time.Time, error) {
	now := s.now()
	expires := now.Add(s.ttl)

	claims := Claims{
		Role: string(u.Role),
		Name: u.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   u.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expires, nil
}

// ParseToken verifies a bearer token and returns the principal it carries
func (s *AuthService) ParseToken(ctx context.Context, raw string) (*models.Principal, *Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid token: %w", ErrUnauthenticated)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid token subject: %w", ErrUnauthenticated)
	}
	role, err := models.ParseRole(claims.Role)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid token role: %w", ErrUnauthenticated)
	}

	if s.denylist != nil && claims.ID != "" {
		revoked, err := s.denylist.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, nil, internal("check token revocation", err)
		}
		if revoked {
			return nil, nil, fmt.Errorf("token revoked: %w", ErrUnauthenticated)
		}
	}

	return &models.Principal{UserID: userID, Role: role, Name: claims.Name}, claims, nil
}

// Logout revokes the token until it would have expired
func (s *AuthService) Logout(ctx context.Context, claims *Claims) error {
	if claims == nil || claims.ID == "" || claims.ExpiresAt == nil {
		return ErrUnauthenticated
	}
	if s.denylist == nil {
		return nil
	}

	ttl := claims.ExpiresAt.Time.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.denylist.Revoke(ctx, claims.ID, ttl); err != nil {
		return internal("revoke token", err)
	}

	s.logger.Infow("User logged out", "id", claims.Subject)
	return nil
}

// Me returns the account behind the principal
func (s *AuthService) Me(ctx context.Context, p *models.Principal) (*models.User, error) {
	if p == nil {
		return nil, ErrUnauthenticated
	}
	u, err := s.users.FindUserByID(ctx, p.UserID)
	if err != nil {
		return nil, internal("find user", err)
	}
	if u == nil {
		return nil, fmt.Errorf("account no longer exists: %w", ErrUnauthenticated)
	}
	return u, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
