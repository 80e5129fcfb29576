package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/lms-admin-api/internal/models"
)

const otpMaxAttempts = 3

// ErrOTPNotFound is returned when no live challenge exists for the key.
var ErrOTPNotFound = errors.New("otp not found")

// OTPMutation inspects the current challenge (nil when absent) and returns the record to
// store. Returning nil leaves the key untouched; returning an error aborts the transaction.
type OTPMutation func(current *models.OTP) (*models.OTP, error)

// OTPRepository keeps one challenge per (account type, email) in Redis. Key expiry purges
// challenges that are never completed.
type OTPRepository struct {
	client *redis.Client
}

// NewOTPRepository constructs an OTPRepository.
func NewOTPRepository(client *redis.Client) *OTPRepository {
	return &OTPRepository{client: client}
}

// Get returns the stored challenge or ErrOTPNotFound.
func (r *OTPRepository) Get(ctx context.Context, email string, userType models.UserType) (*models.OTP, error) {
	raw, err := r.client.Get(ctx, otpKey(email, userType)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrOTPNotFound
		}
		return nil, fmt.Errorf("redis get otp: %w", err)
	}
	return decodeOTP(raw)
}

// Mutate applies fn atomically under WATCH. A positive ttl resets the key expiry; zero keeps it.
func (r *OTPRepository) Mutate(ctx context.Context, email string, userType models.UserType, ttl time.Duration, fn OTPMutation) (*models.OTP, error) {
	key := otpKey(email, userType)
	var stored *models.OTP

	txf := func(tx *redis.Tx) error {
		var current *models.OTP
		raw, err := tx.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
		case err != nil:
			return fmt.Errorf("redis get otp: %w", err)
		default:
			if current, err = decodeOTP(raw); err != nil {
				return err
			}
		}

		next, err := fn(current)
		if err != nil {
			return err
		}
		if next == nil {
			stored = current
			return nil
		}
		payload, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("marshal otp: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if ttl > 0 {
				pipe.Set(ctx, key, payload, ttl)
			} else {
				pipe.SetArgs(ctx, key, payload, redis.SetArgs{KeepTTL: true})
			}
			return nil
		})
		if err == nil {
			stored = next
		}
		return err
	}

	for attempt := 0; attempt < otpMaxAttempts; attempt++ {
		err := r.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return stored, err
	}
	return nil, fmt.Errorf("otp %s: %w", key, redis.TxFailedErr)
}

// Delete removes the challenge. Missing keys are not an error.
func (r *OTPRepository) Delete(ctx context.Context, email string, userType models.UserType) error {
	if err := r.client.Del(ctx, otpKey(email, userType)).Err(); err != nil {
		return fmt.Errorf("redis del otp: %w", err)
	}
	return nil
}

func otpKey(email string, userType models.UserType) string {
	return fmt.Sprintf("otp:%s:%s", userType, strings.ToLower(strings.TrimSpace(email)))
}

func decodeOTP(raw []byte) (*models.OTP, error) {
	var otp models.OTP
	if err := json.Unmarshal(raw, &otp); err != nil {
		return nil, fmt.Errorf("unmarshal otp: %w", err)
	}
	return &otp, nil
}
