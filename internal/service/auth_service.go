package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/lms-admin-api/internal/dto"
	"github.com/noah-isme/lms-admin-api/internal/models"
	appErrors "github.com/noah-isme/lms-admin-api/pkg/errors"
)

type authAdminRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.Admin, error)
	FindByID(ctx context.Context, id string) (*models.Admin, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

type authStudentRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.Student, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

type roleResolver interface {
	Resolve(ctx context.Context, admin *models.Admin) (ResolvedRole, error)
}

type tokenIssuer interface {
	Issue(payload models.TokenPayload, ttl time.Duration) (string, error)
	Verify(token string) (models.TokenPayload, error)
	TTL(purpose models.TokenPurpose) time.Duration
}

type otpManager interface {
	Request(ctx context.Context, email string, userType models.UserType) (*models.OTP, error)
	Verify(ctx context.Context, email, code string, userType models.UserType) (*models.OTP, error)
	ConsumeForReset(ctx context.Context, email string, userType models.UserType) error
	Discard(ctx context.Context, email string, userType models.UserType)
	TTL() time.Duration
}

type loginRecorder interface {
	RecordLogin(entry models.UserLog)
}

type otpNotifier interface {
	SendOTP(email, code string, ttl time.Duration)
}

// ClientInfo describes the caller of an unauthenticated request.
type ClientInfo struct {
	IP        string
	UserAgent string
}

// AuthDeps groups the collaborators of AuthService.
type AuthDeps struct {
	Admins     authAdminRepository
	Students   authStudentRepository
	Resolver   roleResolver
	Tokens     tokenIssuer
	OTPs       otpManager
	Recorder   loginRecorder
	Notifier   otpNotifier
	Metrics    *MetricsService
	Validator  *validator.Validate
	Logger     *zap.Logger
	SaltRounds int
}

// AuthService provides login, identity and password recovery use cases.
type AuthService struct {
	AuthDeps
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(deps AuthDeps) *AuthService {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Validator == nil {
		deps.Validator = validator.New()
	}
	if deps.SaltRounds == 0 {
		deps.SaltRounds = bcrypt.DefaultCost
	}
	return &AuthService{AuthDeps: deps}
}

var errBadCredentials = appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid email or password")

// LoginAdmin authenticates an admin and issues an access token carrying the role's permissions.
func (s *AuthService) LoginAdmin(ctx context.Context, req dto.LoginRequest, client ClientInfo) (*models.LoginResponse, error) {
	if err := s.Validator.Struct(req); err != nil {
		return nil, appErrors.FromValidator(err, "")
	}

	admin, err := s.Admins.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, s.loginLookupError(err, models.UserTypeAdmin)
	}
	if err := s.checkAccount(admin.IsActive, admin.PasswordHash, req.Password, models.UserTypeAdmin); err != nil {
		return nil, err
	}

	resolved, err := s.Resolver.Resolve(ctx, admin)
	if err != nil {
		return nil, err
	}
	identity := models.IdentityResponse{
		ID:          admin.ID,
		Email:       admin.Email,
		Name:        admin.Name,
		Type:        models.UserTypeAdmin,
		Role:        resolved.RoleName,
		Permissions: resolved.Permissions,
	}
	return s.completeLogin(identity, client)
}

// LoginStudent authenticates a student. Students never carry a role or permissions.
func (s *AuthService) LoginStudent(ctx context.Context, req dto.LoginRequest, client ClientInfo) (*models.LoginResponse, error) {
	if err := s.Validator.Struct(req); err != nil {
		return nil, appErrors.FromValidator(err, "")
	}

	student, err := s.Students.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, s.loginLookupError(err, models.UserTypeStudent)
	}
	if err := s.checkAccount(student.IsActive, student.PasswordHash, req.Password, models.UserTypeStudent); err != nil {
		return nil, err
	}

	identity := models.IdentityResponse{
		ID:          student.ID,
		Email:       student.Email,
		Name:        strings.TrimSpace(student.FirstName + " " + student.LastName),
		FirstName:   student.FirstName,
		LastName:    student.LastName,
		Type:        models.UserTypeStudent,
		Permissions: []string{},
	}
	return s.completeLogin(identity, client)
}

// Me reloads the caller's account so role and permission changes are reflected.
func (s *AuthService) Me(ctx context.Context, claims models.AccessClaims) (*models.IdentityResponse, error) {
	switch claims.Type {
	case models.UserTypeAdmin:
		admin, err := s.Admins.FindByID(ctx, claims.ID)
		if err != nil {
			return nil, s.identityLookupError(err)
		}
		resolved, err := s.Resolver.Resolve(ctx, admin)
		if err != nil {
			return nil, err
		}
		return &models.IdentityResponse{
			ID:          admin.ID,
			Email:       admin.Email,
			Name:        admin.Name,
			Type:        models.UserTypeAdmin,
			Role:        resolved.RoleName,
			Permissions: resolved.Permissions,
		}, nil
	case models.UserTypeStudent:
		student, err := s.Students.FindByID(ctx, claims.ID)
		if err != nil {
			return nil, s.identityLookupError(err)
		}
		return &models.IdentityResponse{
			ID:          student.ID,
			Email:       student.Email,
			Name:        strings.TrimSpace(student.FirstName + " " + student.LastName),
			FirstName:   student.FirstName,
			LastName:    student.LastName,
			Type:        models.UserTypeStudent,
			Permissions: []string{},
		}, nil
	default:
		return nil, appErrors.ErrInvalidToken
	}
}

// RequestOTP issues a recovery code for an existing account and schedules its delivery.
func (s *AuthService) RequestOTP(ctx context.Context, req dto.OTPRequest) (*models.OTP, error) {
	if err := s.Validator.Struct(req); err != nil {
		return nil, appErrors.FromValidator(err, "")
	}
	userType := models.UserType(req.Source)
	if _, err := s.findAccount(ctx, req.Email, userType); err != nil {
		return nil, err
	}

	otp, err := s.OTPs.Request(ctx, req.Email, userType)
	if err != nil {
		return nil, err
	}
	if s.Notifier != nil {
		s.Notifier.SendOTP(otp.Email, otp.Code, s.OTPs.TTL())
	}
	return otp, nil
}

// VerifyOTP confirms a recovery code and mints a single-purpose reset token.
func (s *AuthService) VerifyOTP(ctx context.Context, req dto.OTPVerifyRequest) (*models.ResetTokenResponse, error) {
	if err := s.Validator.Struct(req); err != nil {
		return nil, appErrors.FromValidator(err, "")
	}
	userType := models.UserType(req.Source)
	otp, err := s.OTPs.Verify(ctx, req.Email, req.OTP, userType)
	if err != nil {
		return nil, err
	}

	token, err := s.Tokens.Issue(models.NewResetPayload(models.ResetClaims{Email: otp.Email, Type: userType}), 0)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to issue reset token")
	}
	return &models.ResetTokenResponse{
		ResetToken: token,
		ExpiresIn:  int64(s.Tokens.TTL(models.PurposePasswordReset).Seconds()),
	}, nil
}

// ResetPassword completes recovery. The reset token must carry the password_reset purpose and
// the recovery code must still be verified in the store; the code is discarded afterwards.
func (s *AuthService) ResetPassword(ctx context.Context, req dto.ResetPasswordRequest) error {
	if err := s.Validator.Struct(req); err != nil {
		return appErrors.FromValidator(err, "")
	}
	payload, err := s.Tokens.Verify(req.ResetToken)
	if err != nil {
		return err
	}
	claims, ok := payload.AsReset()
	if !ok {
		return appErrors.ErrInvalidToken
	}

	if err := s.OTPs.ConsumeForReset(ctx, claims.Email, claims.Type); err != nil {
		return err
	}
	accountID, err := s.findAccount(ctx, claims.Email, claims.Type)
	if err != nil {
		return err
	}

	hash, err := hashPassword(req.NewPassword, s.SaltRounds)
	if err != nil {
		return err
	}
	switch claims.Type {
	case models.UserTypeAdmin:
		err = s.Admins.UpdatePassword(ctx, accountID, hash)
	default:
		err = s.Students.UpdatePassword(ctx, accountID, hash)
	}
	if err != nil {
		return appErrors.FromDatabase(err, "failed to update password")
	}

	s.OTPs.Discard(ctx, claims.Email, claims.Type)
	s.Logger.Info("password reset completed", zap.String("user_type", string(claims.Type)), zap.String("user_id", accountID))
	return nil
}

func (s *AuthService) completeLogin(identity models.IdentityResponse, client ClientInfo) (*models.LoginResponse, error) {
	token, err := s.Tokens.Issue(models.NewAccessPayload(models.AccessClaims{
		ID:          identity.ID,
		Email:       identity.Email,
		Role:        identity.Role,
		Permissions: identity.Permissions,
		Type:        identity.Type,
	}), 0)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create access token")
	}

	s.Metrics.RecordLogin(string(identity.Type), OutcomeSuccess)
	if s.Recorder != nil {
		s.Recorder.RecordLogin(models.UserLog{
			UserID:    identity.ID,
			UserType:  identity.Type,
			Email:     identity.Email,
			IP:        optionalString(client.IP),
			UserAgent: optionalString(client.UserAgent),
			LoginTime: time.Now().UTC(),
		})
	}

	return &models.LoginResponse{
		Token:     token,
		ExpiresIn: int64(s.Tokens.TTL(models.PurposeAccess).Seconds()),
		User:      identity,
	}, nil
}

func (s *AuthService) checkAccount(active bool, hash, password string, userType models.UserType) error {
	if !active {
		s.Metrics.RecordLogin(string(userType), OutcomeRejected)
		return appErrors.ErrInactiveAccount
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		s.Metrics.RecordLogin(string(userType), OutcomeRejected)
		return errBadCredentials
	}
	return nil
}

func (s *AuthService) loginLookupError(err error, userType models.UserType) error {
	if errors.Is(err, sql.ErrNoRows) {
		s.Metrics.RecordLogin(string(userType), OutcomeRejected)
		return errBadCredentials
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch account")
}

func (s *AuthService) identityLookupError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrUnauthorized, "user not found")
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch account")
}

func (s *AuthService) findAccount(ctx context.Context, email string, userType models.UserType) (string, error) {
	var (
		id  string
		err error
	)
	switch userType {
	case models.UserTypeAdmin:
		var admin *models.Admin
		if admin, err = s.Admins.FindByEmail(ctx, email); err == nil {
			id = admin.ID
		}
	case models.UserTypeStudent:
		var student *models.Student
		if student, err = s.Students.FindByEmail(ctx, email); err == nil {
			id = student.ID
		}
	default:
		return "", appErrors.Clone(appErrors.ErrBadRequest, "unknown account type")
	}
	if err != nil {
		return "", appErrors.FromDatabase(err, "account not found")
	}
	return id, nil
}
