package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ArbeitTechnology/cid-visitor-backend/internal/config"
	"github.com/ArbeitTechnology/cid-visitor-backend/internal/ids"
	"github.com/ArbeitTechnology/cid-visitor-backend/internal/models"
	"github.com/ArbeitTechnology/cid-visitor-backend/internal/repository"
	"github.com/ArbeitTechnology/cid-visitor-backend/internal/security"
)

type AuthService struct {
	accounts *repository.AccountRepository
	officers *repository.OfficerRepository
	sessions *repository.SessionRepository
	cfg      *config.AppConfig
	log      zerolog.Logger
}

func NewAuthService(
	accounts *repository.AccountRepository,
	officers *repository.OfficerRepository,
	sessions *repository.SessionRepository,
	cfg *config.AppConfig,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		accounts: accounts,
		officers: officers,
		sessions: sessions,
		cfg:      cfg,
		log:      log,
	}
}

type RegisterInput struct {
	Name     string
	Email    string
	Phone    string
	Password string
}

type AuthResult struct {
	AccessToken  string
	RefreshToken string
	SessionID    string
	Kind         models.PrincipalKind
	Account      *models.Account
	Officer      *models.Officer
}

// RegisterAccount creates a receptionist-class account. The very first
// account in the system becomes super_admin; everyone after that is a plain
// user.
func (s *AuthService) RegisterAccount(ctx context.Context, input RegisterInput) (AuthResult, error) {
	input.Email = strings.TrimSpace(strings.ToLower(input.Email))
	input.Phone = strings.TrimSpace(input.Phone)
	if input.Email == "" && input.Phone == "" {
		return AuthResult{}, fmt.Errorf("%w: email or phone required", ErrValidation)
	}
	if input.Password == "" || input.Name == "" {
		return AuthResult{}, fmt.Errorf("%w: name and password required", ErrValidation)
	}

	// Fast-path duplicate check; the unique index has the final word.
	if input.Email != "" {
		if _, err := s.accounts.FindByEmail(ctx, input.Email); err == nil {
			return AuthResult{}, repository.ErrEmailConflict
		} else if !errors.Is(err, repository.ErrAccountNotFound) {
			return AuthResult{}, err
		}
	}

	passwordHash, err := security.HashPassword(input.Password)
	if err != nil {
		return AuthResult{}, err
	}

	class := models.AccountClassUser
	count, err := s.accounts.Count(ctx)
	if err != nil {
		return AuthResult{}, err
	}
	if count == 0 {
		class = models.AccountClassSuperAdmin
	}

	account := models.Account{
		ID:           ids.New(),
		Name:         input.Name,
		Email:        input.Email,
		Phone:        input.Phone,
		PasswordHash: passwordHash,
		Class:        class,
		Status:       models.StatusActive,
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		return AuthResult{}, err
	}

	return s.issueSession(ctx, models.PrincipalAccount, account.ID, nil, &account, nil, "", "")
}

type LoginInput struct {
	Email     string
	Password  string
	IPAddress string
	UserAgent string
}

func (s *AuthService) LoginAccount(ctx context.Context, input LoginInput) (AuthResult, error) {
	input.Email = strings.TrimSpace(strings.ToLower(input.Email))
	account, err := s.accounts.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, err
	}

	if account.Status != models.StatusActive {
		return AuthResult{}, ErrAccountInactive
	}

	ok, err := security.VerifyPassword(input.Password, account.PasswordHash)
	if err != nil || !ok {
		return AuthResult{}, ErrInvalidCredentials
	}

	if err := s.accounts.TouchLastLogin(ctx, account.ID); err != nil {
		s.log.Warn().Err(err).Str("account_id", account.ID).Msg("touch last login failed")
	}

	return s.issueSession(ctx, models.PrincipalAccount, account.ID, nil, &account, nil, input.IPAddress, input.UserAgent)
}

type OfficerLoginInput struct {
	Phone     string
	Password  string
	IPAddress string
	UserAgent string
}

// LoginOfficer authenticates an officer by phone number. The roles the
// officer holds right now are embedded in the access token; role resolution
// later unions them with the live record.
func (s *AuthService) LoginOfficer(ctx context.Context, input OfficerLoginInput) (AuthResult, error) {
	officer, err := s.officers.FindByPhone(ctx, strings.TrimSpace(input.Phone))
	if err != nil {
		if errors.Is(err, repository.ErrOfficerNotFound) {
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, err
	}

	if officer.Status != models.StatusActive {
		return AuthResult{}, ErrAccountInactive
	}

	ok, err := security.VerifyPassword(input.Password, officer.PasswordHash)
	if err != nil || !ok {
		return AuthResult{}, ErrInvalidCredentials
	}

	return s.issueSession(ctx, models.PrincipalOfficer, officer.ID, officer.Roles, nil, &officer, input.IPAddress, input.UserAgent)
}

func (s *AuthService) issueSession(
	ctx context.Context,
	kind models.PrincipalKind,
	principalID string,
	roles []models.Role,
	account *models.Account,
	officer *models.Officer,
	ipAddress string,
	userAgent string,
) (AuthResult, error) {
	refreshToken, refreshHash, err := security.GenerateRefreshToken(64)
	if err != nil {
		return AuthResult{}, err
	}

	session := models.Session{
		ID:               ids.New(),
		PrincipalKind:    kind,
		PrincipalID:      principalID,
		RefreshTokenHash: refreshHash,
		IPAddress:        ipAddress,
		UserAgent:        userAgent,
		ExpiresAt:        time.Now().Add(s.cfg.Security.JWTRefreshTTL),
	}

	roleStrings := make([]string, 0, len(roles))
	for _, r := range roles {
		roleStrings = append(roleStrings, string(r))
	}

	accessToken, err := security.GenerateAccessToken(
		s.cfg.Security.JWTAccessSecret,
		string(kind),
		principalID,
		session.ID,
		roleStrings,
		s.cfg.Security.JWTAccessTTL,
	)
	if err != nil {
		return AuthResult{}, err
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return AuthResult{}, err
	}

	return AuthResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		SessionID:    session.ID,
		Kind:         kind,
		Account:      account,
		Officer:      officer,
	}, nil
}

type RefreshInput struct {
	Kind         models.PrincipalKind
	PrincipalID  string
	RefreshToken string
}

// Refresh rotates the refresh token and mints a fresh access token. Roles in
// the new token come from the live officer record, so a refreshed session
// reflects grants and revokes since the last issuance.
func (s *AuthService) Refresh(ctx context.Context, input RefreshInput) (AuthResult, error) {
	var (
		account *models.Account
		officer *models.Officer
		roles   []models.Role
	)

	switch input.Kind {
	case models.PrincipalAccount:
		a, err := s.accounts.GetByID(ctx, input.PrincipalID)
		if err != nil {
			return AuthResult{}, ErrInvalidCredentials
		}
		if a.Status != models.StatusActive {
			return AuthResult{}, ErrAccountInactive
		}
		account = &a
	case models.PrincipalOfficer:
		o, err := s.officers.GetByID(ctx, input.PrincipalID)
		if err != nil {
			return AuthResult{}, ErrInvalidCredentials
		}
		if o.Status != models.StatusActive {
			return AuthResult{}, ErrAccountInactive
		}
		officer = &o
		roles = o.Roles
	default:
		return AuthResult{}, ErrInvalidCredentials
	}

	refreshHash := security.HashRefreshToken(input.RefreshToken)
	session, err := s.sessions.FindByRefreshHash(ctx, input.Kind, input.PrincipalID, refreshHash)
	if err != nil {
		return AuthResult{}, ErrInvalidCredentials
	}

	if session.ExpiresAt.Before(time.Now()) {
		_ = s.sessions.DeleteByID(ctx, session.ID)
		return AuthResult{}, ErrInvalidCredentials
	}

	refreshToken, newHash, err := security.GenerateRefreshToken(64)
	if err != nil {
		return AuthResult{}, err
	}

	expiresAt := time.Now().Add(s.cfg.Security.JWTRefreshTTL)
	if err := s.sessions.RotateRefreshToken(ctx, session.ID, newHash, expiresAt); err != nil {
		return AuthResult{}, err
	}

	roleStrings := make([]string, 0, len(roles))
	for _, r := range roles {
		roleStrings = append(roleStrings, string(r))
	}

	accessToken, err := security.GenerateAccessToken(
		s.cfg.Security.JWTAccessSecret,
		string(input.Kind),
		input.PrincipalID,
		session.ID,
		roleStrings,
		s.cfg.Security.JWTAccessTTL,
	)
	if err != nil {
		return AuthResult{}, err
	}

	return AuthResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		SessionID:    session.ID,
		Kind:         input.Kind,
		Account:      account,
		Officer:      officer,
	}, nil
}

func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	err := s.sessions.DeleteByID(ctx, sessionID)
	if errors.Is(err, repository.ErrSessionNotFound) {
		return nil
	}
	return err
}
