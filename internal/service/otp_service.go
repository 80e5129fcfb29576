package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/lms-admin-api/internal/models"
	"github.com/noah-isme/lms-admin-api/internal/repository"
	appErrors "github.com/noah-isme/lms-admin-api/pkg/errors"
)

type otpStore interface {
	Get(ctx context.Context, email string, userType models.UserType) (*models.OTP, error)
	Mutate(ctx context.Context, email string, userType models.UserType, ttl time.Duration, fn repository.OTPMutation) (*models.OTP, error)
	Delete(ctx context.Context, email string, userType models.UserType) error
}

var (
	errOTPExists      = appErrors.Clone(appErrors.ErrBadRequest, "otp already exists")
	errOTPNotFound    = appErrors.Clone(appErrors.ErrNotFound, "otp not found")
	errOTPVerified    = appErrors.Clone(appErrors.ErrBadRequest, "otp already verified")
	errOTPNotVerified = appErrors.Clone(appErrors.ErrBadRequest, "otp not verified")
)

// OTPConfig controls code shape and lifetime.
type OTPConfig struct {
	TTL    time.Duration
	Length int
}

// OTPService issues and checks password recovery codes.
type OTPService struct {
	store  otpStore
	config OTPConfig
	logger *zap.Logger
	now    func() time.Time
}

// NewOTPService constructs an OTPService.
func NewOTPService(store otpStore, config OTPConfig, logger *zap.Logger) *OTPService {
	if config.TTL <= 0 {
		config.TTL = 5 * time.Minute
	}
	if config.Length <= 0 {
		config.Length = 6
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OTPService{store: store, config: config, logger: logger, now: time.Now}
}

// TTL returns the lifetime of a freshly issued code.
func (s *OTPService) TTL() time.Duration {
	return s.config.TTL
}

// Request stores a new code for the account. A pending unverified code blocks a new one;
// a verified or expired record is replaced.
func (s *OTPService) Request(ctx context.Context, email string, userType models.UserType) (*models.OTP, error) {
	code, err := GenerateOTP(s.config.Length)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate otp")
	}
	now := s.now().UTC()
	email = strings.ToLower(strings.TrimSpace(email))

	stored, err := s.store.Mutate(ctx, email, userType, s.config.TTL, func(current *models.OTP) (*models.OTP, error) {
		if current.Pending(now) {
			return nil, errOTPExists
		}
		return &models.OTP{
			Email:      email,
			TargetType: userType,
			Code:       code,
			ExpiresAt:  now.Add(s.config.TTL),
			CreatedAt:  now,
		}, nil
	})
	if err != nil {
		return nil, s.mapStoreError(err, "failed to store otp")
	}
	return stored, nil
}

// Verify marks the matching pending code as verified without extending its lifetime.
func (s *OTPService) Verify(ctx context.Context, email, code string, userType models.UserType) (*models.OTP, error) {
	now := s.now().UTC()
	stored, err := s.store.Mutate(ctx, email, userType, 0, func(current *models.OTP) (*models.OTP, error) {
		if current == nil || !now.Before(current.ExpiresAt) {
			return nil, errOTPNotFound
		}
		if current.Verified {
			return nil, errOTPVerified
		}
		if subtle.ConstantTimeCompare([]byte(current.Code), []byte(code)) != 1 {
			return nil, errOTPNotFound
		}
		next := *current
		next.Verified = true
		return &next, nil
	})
	if err != nil {
		return nil, s.mapStoreError(err, "failed to verify otp")
	}
	return stored, nil
}

// ConsumeForReset confirms a verified code exists for the account.
func (s *OTPService) ConsumeForReset(ctx context.Context, email string, userType models.UserType) error {
	current, err := s.store.Get(ctx, email, userType)
	if err != nil {
		return s.mapStoreError(err, "failed to load otp")
	}
	if !current.Verified {
		return errOTPNotVerified
	}
	return nil
}

// Discard removes the account's code after a completed reset. Failures are logged only.
func (s *OTPService) Discard(ctx context.Context, email string, userType models.UserType) {
	if err := s.store.Delete(ctx, email, userType); err != nil {
		s.logger.Warn("failed to discard otp", zap.String("user_type", string(userType)), zap.Error(err))
	}
}

func (s *OTPService) mapStoreError(err error, message string) error {
	var appErr *appErrors.Error
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, repository.ErrOTPNotFound):
		return errOTPNotFound
	default:
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
	}
}

// GenerateOTP returns a uniformly random numeric code of the given length, zero padded.
func GenerateOTP(length int) (string, error) {
	if length <= 0 || length > 18 {
		return "", fmt.Errorf("otp length %d out of range", length)
	}
	max := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(length)), nil)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", length, n.Int64()), nil
}
