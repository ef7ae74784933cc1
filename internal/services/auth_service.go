package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"recipebox/internal/models"
	"recipebox/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"go.uber.org/zap"
)

// RegisterInput carries the fields of a new account.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// AuthService handles business logic for authentication and authorization.
type AuthService struct {
	store      repositories.Store
	hasher     PasswordHasher
	log        *zap.Logger
	jwtSecret  []byte
	tokenDurat time.Duration // Duration for which JWT is valid
	dummyHash  string        // Verified against when the email is unknown
}

// NewAuthService creates a new AuthService.
func NewAuthService(store repositories.Store, hasher PasswordHasher, log *zap.Logger, jwtSecret string, tokenTTL time.Duration) *AuthService {
	s := &AuthService{
		store:      store,
		hasher:     hasher,
		log:        log,
		jwtSecret:  []byte(jwtSecret),
		tokenDurat: tokenTTL,
	}
	if digest, err := hasher.Hash("recipebox-timing-equalizer"); err == nil {
		s.dummyHash = digest
	}
	return s
}

// Register creates a user with a hashed password and binds sess to it.
func (s *AuthService) Register(ctx context.Context, sess Session, in RegisterInput) (*models.Principal, error) {
	digest, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:   in.Name,
		Email:  in.Email,
		PwHash: digest,
		Role:   models.RoleUser,
	}
	err = s.store.Atomic(ctx, func(tx repositories.Store) error {
		_, err := tx.Users().GetByEmail(ctx, in.Email)
		switch {
		case err == nil:
			return ErrDuplicateEmail
		case !errors.Is(err, repositories.ErrNotFound):
			return err
		}
		if err := tx.Users().Create(ctx, user); err != nil {
			if errors.Is(err, repositories.ErrDuplicate) {
				return ErrDuplicateEmail
			}
			return err
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrDuplicateEmail) {
			return nil, fmt.Errorf("failed to register user: %w", err)
		}
		return nil, err
	}

	if err := sess.Bind(user.ID); err != nil {
		return nil, fmt.Errorf("failed to bind session: %w", err)
	}
	s.log.Info("user registered", zap.Uint("user_id", user.ID))
	return user.Principal(), nil
}

// Login verifies the credentials and binds sess to the matching user.
func (s *AuthService) Login(ctx context.Context, sess Session, email, password string) (*models.Principal, error) {
	user, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if err := sess.Bind(user.ID); err != nil {
		return nil, fmt.Errorf("failed to bind session: %w", err)
	}
	return user.Principal(), nil
}

// Authenticate checks credentials without touching any session. An unknown
// email and a wrong password both return ErrInvalidCredentials.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.store.Users().GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("failed to look up user: %w", err)
		}
		s.hasher.Verify(password, s.dummyHash)
		return nil, ErrInvalidCredentials
	}
	if !s.hasher.Verify(password, user.PwHash) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// Logout clears the session binding.
func (s *AuthService) Logout(sess Session) error {
	if err := sess.Unbind(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// CurrentPrincipal resolves the identity bound to sess. It returns nil
// without error for anonymous sessions and for sessions whose user is gone.
func (s *AuthService) CurrentPrincipal(ctx context.Context, sess Session) (*models.Principal, error) {
	userID, ok := sess.UserID()
	if !ok {
		return nil, nil
	}
	user, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			s.log.Warn("session bound to unknown user", zap.Uint("user_id", userID))
			return nil, sess.Unbind()
		}
		return nil, fmt.Errorf("failed to resolve session user: %w", err)
	}
	return user.Principal(), nil
}

// IssueToken signs a bearer token for the principal.
func (s *AuthService) IssueToken(p *models.Principal) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": p.ID,
		"email":   p.Email,
		"exp":     now.Add(s.tokenDurat).Unix(),
		"iat":     now.Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// AuthenticateToken validates a bearer token and loads its principal.
func (s *AuthService) AuthenticateToken(ctx context.Context, tokenString string) (*models.Principal, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		s.log.Debug("token rejected", zap.Error(err))
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	rawID, ok := claims["user_id"].(float64) // JSON numbers decode as float64
	if !ok || rawID <= 0 {
		return nil, ErrInvalidToken
	}

	user, err := s.store.Users().GetByID(ctx, uint(rawID))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to resolve token user: %w", err)
	}
	return user.Principal(), nil
}
