package tokenmanager

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/nkiryanov/fideliza/internal/apperrors"
	"github.com/nkiryanov/fideliza/internal/models"
)

const (
	defaultAccessTokenTTL = 15 * time.Minute
	defaultSigningMethod  = "HS256"
)

// Access token payload
// Role and company are trusted as is, the identity service is the only issuer
type AccessTokenClaims struct {
	jwt.RegisteredClaims
	UserID    uuid.UUID  `json:"uid"`
	Role      string     `json:"role"`
	CompanyID *uuid.UUID `json:"cid,omitempty"`
}

// Token manager with sensible default
type Config struct {
	// Secret key to sign access token
	// Required to be set
	SecretKey string

	// JWT MAC (Message Authentication Code) algorithm
	// If not set than default is used
	Alg string

	// Access token lifetime
	// If not set than default is used
	AccessTTL time.Duration
}

type TokenManager struct {
	// Secret key to sign access token
	key string

	// JWT MAC (Message Authentication Code) algorithm
	alg jwt.SigningMethod

	accessTTL time.Duration
}

func New(cfg Config) (*TokenManager, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("secret key must not be empty")
	}

	if cfg.Alg == "" {
		cfg.Alg = defaultSigningMethod
	}
	alg := jwt.GetSigningMethod(cfg.Alg)
	if alg == nil {
		return nil, fmt.Errorf("unknown signing method %q", cfg.Alg)
	}

	if cfg.AccessTTL == 0 {
		cfg.AccessTTL = defaultAccessTokenTTL
	}

	return &TokenManager{
		key:       cfg.SecretKey,
		alg:       alg,
		accessTTL: cfg.AccessTTL,
	}, nil
}

// Sign access token for the principal
func (m *TokenManager) Generate(p models.Principal) (models.IssuedToken, error) {
	var issued models.IssuedToken
	if err := validatePrincipal(p); err != nil {
		return issued, err
	}

	now := time.Now().Truncate(time.Second)
	expiresAt := now.Add(m.accessTTL)

	token := jwt.NewWithClaims(
		m.alg,
		AccessTokenClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				ID:        uuid.NewString(),
				Subject:   p.UserID.String(),
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(expiresAt),
			},
			UserID:    p.UserID,
			Role:      p.Role.String(),
			CompanyID: p.CompanyID,
		},
	)
	access, err := token.SignedString([]byte(m.key))
	if err != nil {
		return issued, fmt.Errorf("error while signing access token. Err: %w", err)
	}

	return models.IssuedToken{Value: access, ExpiresAt: expiresAt}, nil
}

// Parse and validate access token
func (m *TokenManager) ParseAccess(access string) (models.Principal, error) {
	claims := &AccessTokenClaims{}

	_, err := jwt.ParseWithClaims(
		access,
		claims,
		func(t *jwt.Token) (any, error) {
			return []byte(m.key), nil
		},
		jwt.WithValidMethods([]string{m.alg.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return models.Principal{}, fmt.Errorf("%w: error while parsing or validating token. Err: %w", apperrors.ErrUnauthorized, err)
	}

	role, err := models.ParseRole(claims.Role)
	if err != nil {
		return models.Principal{}, fmt.Errorf("%w: %w", apperrors.ErrUnauthorized, err)
	}

	p := models.Principal{UserID: claims.UserID, Role: role, CompanyID: claims.CompanyID}
	if err := validatePrincipal(p); err != nil {
		return models.Principal{}, err
	}

	return p, nil
}

// Staff act for exactly one company, clients for none
func validatePrincipal(p models.Principal) error {
	if _, err := models.ParseRole(p.Role.String()); err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrUnauthorized, err)
	}

	switch {
	case p.UserID == uuid.Nil:
		return fmt.Errorf("%w: token has no user", apperrors.ErrUnauthorized)
	case p.Role.IsStaff() && p.CompanyID == nil:
		return fmt.Errorf("%w: %s token has no company", apperrors.ErrUnauthorized, p.Role)
	case !p.Role.IsStaff() && p.CompanyID != nil:
		return fmt.Errorf("%w: %s token must not carry company", apperrors.ErrUnauthorized, p.Role)
	}
	return nil
}
