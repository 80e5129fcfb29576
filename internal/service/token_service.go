package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/noah-isme/lms-admin-api/internal/models"
	appErrors "github.com/noah-isme/lms-admin-api/pkg/errors"
)

// TokenConfig defines signing parameters for issued tokens.
type TokenConfig struct {
	Secret    string
	Issuer    string
	AccessTTL time.Duration
	ResetTTL  time.Duration
}

// TokenService signs and verifies HS256 tokens carrying a TokenPayload.
type TokenService struct {
	config TokenConfig
	now    func() time.Time
}

// NewTokenService constructs a TokenService.
func NewTokenService(config TokenConfig) *TokenService {
	if config.AccessTTL <= 0 {
		config.AccessTTL = 24 * time.Hour
	}
	if config.ResetTTL <= 0 {
		config.ResetTTL = 5 * time.Minute
	}
	return &TokenService{config: config, now: time.Now}
}

// TTL returns the default lifetime for tokens of the given purpose.
func (s *TokenService) TTL(purpose models.TokenPurpose) time.Duration {
	if purpose == models.PurposePasswordReset {
		return s.config.ResetTTL
	}
	return s.config.AccessTTL
}

// Issue signs payload. A non-positive ttl selects the default for the payload's purpose.
func (s *TokenService) Issue(payload models.TokenPayload, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = s.TTL(payload.Purpose())
	}
	issuedAt := s.now().UTC()
	claims := &models.JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
		},
	}

	if access, ok := payload.AsAccess(); ok {
		claims.Purpose = models.PurposeAccess
		claims.ID = access.ID
		claims.Email = access.Email
		claims.Role = access.Role
		claims.Permissions = access.Permissions
		claims.Type = access.Type
		claims.Subject = access.ID
	} else if reset, ok := payload.AsReset(); ok {
		claims.Purpose = models.PurposePasswordReset
		claims.Email = reset.Email
		claims.Type = reset.Type
		claims.Subject = reset.Email
	} else {
		return "", fmt.Errorf("issue token: payload has no purpose")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature, algorithm, issuer and expiry and decodes the payload.
func (s *TokenService) Verify(tokenString string) (models.TokenPayload, error) {
	claims := &models.JWTClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(s.config.Secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.config.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return models.TokenPayload{}, appErrors.Wrap(err, appErrors.ErrTokenExpired.Code, appErrors.ErrTokenExpired.Status, appErrors.ErrTokenExpired.Message)
		}
		return models.TokenPayload{}, appErrors.Wrap(err, appErrors.ErrInvalidToken.Code, appErrors.ErrInvalidToken.Status, appErrors.ErrInvalidToken.Message)
	}

	if !claims.Type.Valid() || claims.Email == "" {
		return models.TokenPayload{}, appErrors.ErrInvalidToken
	}
	switch claims.Purpose {
	case models.PurposeAccess:
		if claims.ID == "" {
			return models.TokenPayload{}, appErrors.ErrInvalidToken
		}
		return models.NewAccessPayload(models.AccessClaims{
			ID:          claims.ID,
			Email:       claims.Email,
			Role:        claims.Role,
			Permissions: claims.Permissions,
			Type:        claims.Type,
		}), nil
	case models.PurposePasswordReset:
		return models.NewResetPayload(models.ResetClaims{Email: claims.Email, Type: claims.Type}), nil
	default:
		return models.TokenPayload{}, appErrors.ErrInvalidToken
	}
}
