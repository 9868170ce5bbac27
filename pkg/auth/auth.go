// Package auth implements sign-up, sign-in and session handling over the
// profile/identity store, including the demo-mode credential bypass.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/safepassage/safepassage/pkg/domain"
	"github.com/safepassage/safepassage/pkg/store"
)

// Store is the subset of the profile/identity store auth needs
type Store interface {
	CreateUser(ctx context.Context, email, passwordHash string) (*store.User, error)
	GetUserByEmail(ctx context.Context, email string) (*store.User, error)
	GetProfile(ctx context.Context, userID string) (*domain.UserProfile, error)
	InsertProfile(ctx context.Context, profile *domain.UserProfile) (*domain.UserProfile, error)
}

// demoSecret signs sessions when no secret is configured, which only happens
// in demo mode where the directory is fixed and public anyway
const demoSecret = "safepassage-demo-mode"

// Session is an authenticated session handed to the client
type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Demo      bool      `json:"demo,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Config holds auth service settings
type Config struct {
	Secret         string
	TokenTTL       time.Duration
	MinPasswordLen int
	DemoMode       bool
}

// Service implements the authentication flows
type Service struct {
	store Store
	demo  *store.DemoStore // serves the fixed profile behind the demo credentials
	cfg   Config
}

// NewService creates an auth service over the given store
func NewService(st Store, cfg Config) *Service {
	if cfg.Secret == "" {
		cfg.Secret = demoSecret
	}
	if cfg.TokenTTL == 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	if cfg.MinPasswordLen == 0 {
		cfg.MinPasswordLen = 6
	}
	return &Service{store: st, demo: store.NewDemoStore(), cfg: cfg}
}

// SignUp validates input, creates the identity and profile records and
// returns a fresh session. All validation happens before any store call.
// A profile unique-constraint conflict is recoverable: the existing record
// is re-read instead of failing the whole sign-up.
func (s *Service) SignUp(ctx context.Context, email, password string, profile *domain.UserProfile) (*Session, *domain.UserProfile, error) {
	if s.cfg.DemoMode {
		return nil, nil, domain.NewError(domain.KindAuth, "sign up is not available in demo mode")
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, nil, domain.NewError(domain.KindValidation, "please enter a valid email address")
	}
	if len(password) < s.cfg.MinPasswordLen {
		return nil, nil, domain.NewError(domain.KindValidation, "password must be at least %d characters long", s.cfg.MinPasswordLen)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, domain.WrapError(domain.KindAuth, err, "failed to process password")
	}

	user, err := s.store.CreateUser(ctx, email, string(hash))
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, nil, domain.NewError(domain.KindAuth, "an account with this email already exists, please sign in instead")
		}
		return nil, nil, domain.WrapError(domain.KindStore, err, "failed to create account")
	}

	if profile == nil {
		profile = &domain.UserProfile{}
	}
	profile.ID = user.ID
	profile.UserID = user.ID
	profile.Email = user.Email
	if profile.Name == "" {
		profile.Name = "New Traveler"
	}
	if profile.Style == "" {
		profile.Style = domain.StyleQuietObserver
	}

	created, err := s.store.InsertProfile(ctx, profile)
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			// profile already there, fetch it instead of failing the sign-up
			log.Printf("[WARN] profile for %s already exists, re-reading", user.ID)
			created, err = s.store.GetProfile(ctx, user.ID)
		}
		if err != nil {
			return nil, nil, domain.WrapError(domain.KindStore, err, "failed to create user profile")
		}
	}

	session, err := s.issueSession(user.ID, user.Email, false)
	if err != nil {
		return nil, nil, err
	}
	return session, created, nil
}

// SignIn authenticates a user. The fixed demo credential pair always
// succeeds, even when no backend is configured, and yields the seeded demo
// profile. Known failure causes map to specific user-facing messages.
func (s *Service) SignIn(ctx context.Context, email, password string) (*Session, *domain.UserProfile, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, nil, domain.NewError(domain.KindValidation, "email and password are required")
	}

	if email == store.DemoEmail && password == store.DemoPassword {
		profile := s.demo.DemoProfile()
		session, err := s.issueSession(profile.UserID, profile.Email, true)
		if err != nil {
			return nil, nil, err
		}
		return session, profile, nil
	}

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, domain.NewError(domain.KindAuth, "no account found with this email, please sign up first")
		}
		return nil, nil, domain.WrapError(domain.KindStore, err, "sign in failed, please try again")
	}

	if user.PasswordHash == "" ||
		bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, nil, domain.NewError(domain.KindAuth, "invalid email or password, please check your credentials and try again")
	}

	profile, err := s.store.GetProfile(ctx, user.ID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return nil, nil, domain.WrapError(domain.KindStore, err, "failed to load profile")
		}
		// account without a profile record still signs in with defaults
		profile = &domain.UserProfile{
			ID:     user.ID,
			UserID: user.ID,
			Email:  user.Email,
			Name:   "New Traveler",
			Style:  domain.StyleQuietObserver,
		}
	}

	session, err := s.issueSession(user.ID, user.Email, false)
	if err != nil {
		return nil, nil, err
	}
	return session, profile, nil
}

// SignOut ends a session. Tokens are stateless, so there is nothing to
// revoke server-side; the client drops the token.
func (s *Service) SignOut(_ context.Context, _ string) error {
	return nil
}

// Session validates a token and returns the user it belongs to.
func (s *Service) Session(token string) (userID string, demo bool, err error) {
	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.cfg.Secret), nil
	})
	if err != nil || !parsed.Valid {
		return "", false, domain.NewError(domain.KindAuth, "invalid or expired session")
	}
	return claims.Subject, claims.Demo, nil
}

type sessionClaims struct {
	Demo bool `json:"demo,omitempty"`
	jwt.RegisteredClaims
}

func (s *Service) issueSession(userID, email string, demo bool) (*Session, error) {
	expires := time.Now().Add(s.cfg.TokenTTL)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		Demo: demo,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	})

	signed, err := token.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return nil, domain.WrapError(domain.KindAuth, err, "failed to create session token")
	}

	return &Session{Token: signed, UserID: userID, Email: email, Demo: demo, ExpiresAt: expires}, nil
}
