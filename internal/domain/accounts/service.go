package accounts

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/curaflow/curaflow/internal/platform/auth"
	"github.com/curaflow/curaflow/internal/platform/mail"
)

const resetTokenTTL = 2 * time.Hour

// PatientRegistrar creates the patient record that backs a self-service
// patient account. The record shares the account's id.
type PatientRegistrar interface {
	RegisterFromSignup(ctx context.Context, userID uuid.UUID, fullName, email, phone string) error
}

// Mailer sends templated account mail (verification, password reset).
// Satisfied by mail.Manager.
type Mailer interface {
	SendFromTemplate(ctx context.Context, templateID string, data map[string]string, recipient string) (*mail.Message, error)
}

type Options struct {
	OrgKey              string
	BaseURL             string
	VerificationEnabled bool
}

type Service struct {
	repo      Repository
	issuer    *auth.TokenIssuer
	registrar PatientRegistrar
	mailer    Mailer
	opts      Options
}

func NewService(repo Repository, issuer *auth.TokenIssuer, registrar PatientRegistrar, mailer Mailer, opts Options) *Service {
	return &Service{repo: repo, issuer: issuer, registrar: registrar, mailer: mailer, opts: opts}
}

func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func (s *Service) validateSignup(in SignupInput) error {
	if strings.TrimSpace(in.Email) == "" {
		return fmt.Errorf("email is required")
	}
	if !strings.Contains(in.Email, "@") {
		return fmt.Errorf("email is invalid")
	}
	if len(in.Password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}
	if strings.TrimSpace(in.FullName) == "" {
		return fmt.Errorf("full_name is required")
	}
	return nil
}

func (s *Service) signup(ctx context.Context, in SignupInput, role string) (*User, error) {
	if err := s.validateSignup(in); err != nil {
		return nil, err
	}
	if existing, _ := s.repo.GetByEmail(ctx, in.Email); existing != nil {
		return nil, fmt.Errorf("email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	u := &User{
		ID:           uuid.New(),
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		PasswordHash: string(hash),
		FullName:     strings.TrimSpace(in.FullName),
		Role:         role,
		Verified:     !s.opts.VerificationEnabled,
	}
	if s.opts.VerificationEnabled {
		token, err := randomToken()
		if err != nil {
			return nil, err
		}
		u.VerifyToken = &token
	}

	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	if s.opts.VerificationEnabled && s.mailer != nil {
		// Mail failures do not fail the signup; the user can request a resend.
		_, _ = s.mailer.SendFromTemplate(ctx, "verify-email", map[string]string{
			"full_name":   u.FullName,
			"verify_link": fmt.Sprintf("%s/api/v1/accounts/verify?token=%s", s.opts.BaseURL, *u.VerifyToken),
		}, u.Email)
	}
	return u, nil
}

// SignupStaff registers a staff account. The caller must present the
// organization key configured for the deployment.
func (s *Service) SignupStaff(ctx context.Context, in SignupInput) (*User, error) {
	if s.opts.OrgKey == "" {
		return nil, fmt.Errorf("staff signup is not enabled")
	}
	if subtle.ConstantTimeCompare([]byte(in.OrgKey), []byte(s.opts.OrgKey)) != 1 {
		return nil, fmt.Errorf("invalid organization key")
	}
	return s.signup(ctx, in, auth.RoleStaff)
}

// SignupPatient registers a patient account and its backing patient record.
func (s *Service) SignupPatient(ctx context.Context, in SignupInput) (*User, error) {
	u, err := s.signup(ctx, in, auth.RolePatient)
	if err != nil {
		return nil, err
	}
	if s.registrar != nil {
		if err := s.registrar.RegisterFromSignup(ctx, u.ID, u.FullName, u.Email, in.Phone); err != nil {
			// The account exists but the patient record does not; undo.
			_ = s.repo.Delete(ctx, u.ID)
			return nil, fmt.Errorf("creating patient record: %w", err)
		}
	}
	return u, nil
}

func (s *Service) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	if in.Email == "" || in.Password == "" {
		return nil, fmt.Errorf("email and password are required")
	}
	u, err := s.repo.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)); err != nil {
		u.FailedLogins++
		_ = s.repo.Update(ctx, u)
		return nil, fmt.Errorf("invalid credentials")
	}
	// Unverified accounts may still log in; the verified flag rides on the
	// response so clients can prompt for verification.
	if u.FailedLogins > 0 {
		u.FailedLogins = 0
		_ = s.repo.Update(ctx, u)
	}
	token, err := s.issuer.Issue(u.ID, u.Role, u.FullName)
	if err != nil {
		return nil, fmt.Errorf("issuing token: %w", err)
	}
	return &LoginResult{Token: token, User: u}, nil
}

// ListStaff returns staff accounts for appointment assignment.
func (s *Service) ListStaff(ctx context.Context, limit, offset int) ([]*User, int, error) {
	return s.repo.ListByRole(ctx, auth.RoleStaff, limit, offset)
}

func (s *Service) VerifyEmail(ctx context.Context, token string) error {
	if token == "" {
		return fmt.Errorf("token is required")
	}
	u, err := s.repo.GetByVerifyToken(ctx, token)
	if err != nil {
		return fmt.Errorf("invalid verification token")
	}
	u.Verified = true
	u.VerifyToken = nil
	return s.repo.Update(ctx, u)
}

// RequestPasswordReset issues a reset token and mails it. It reports success
// even when the email is unknown so the endpoint does not leak registrations.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	if email == "" {
		return fmt.Errorf("email is required")
	}
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil
	}
	token, err := randomToken()
	if err != nil {
		return err
	}
	expires := time.Now().Add(resetTokenTTL)
	u.ResetToken = &token
	u.ResetExpires = &expires
	if err := s.repo.Update(ctx, u); err != nil {
		return err
	}
	if s.mailer != nil {
		_, _ = s.mailer.SendFromTemplate(ctx, "password-reset", map[string]string{
			"reset_link": fmt.Sprintf("%s/reset-password?token=%s", s.opts.BaseURL, token),
		}, u.Email)
	}
	return nil
}

func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	if token == "" {
		return fmt.Errorf("token is required")
	}
	if len(newPassword) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}
	u, err := s.repo.GetByResetToken(ctx, token)
	if err != nil {
		return fmt.Errorf("invalid reset token")
	}
	if u.ResetExpires == nil || time.Now().After(*u.ResetExpires) {
		return fmt.Errorf("reset token expired")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	u.PasswordHash = string(hash)
	u.ResetToken = nil
	u.ResetExpires = nil
	return s.repo.Update(ctx, u)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.GetByID(ctx, id)
}
