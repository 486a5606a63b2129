// Package identity owns accounts, profiles and sign-in sessions. The admin
// flag on the profile is the only authorization signal in the storefront.
package identity

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MikeMC777/storefront/internal/apperr"
)

type Service struct {
	repo   Repository
	signer *Signer
	ttl    time.Duration
	now    func() time.Time
}

func NewService(repo Repository, signer *Signer, sessionTTL time.Duration) *Service {
	if sessionTTL <= 0 {
		sessionTTL = 72 * time.Hour
	}
	return &Service{repo: repo, signer: signer, ttl: sessionTTL, now: time.Now}
}

// SignUp creates an account with an empty, non-admin profile.
func (s *Service) SignUp(ctx context.Context, in SignUpRequest) (*User, error) {
	email := normalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return nil, apperr.Validation(apperr.CodeMissingField, "email and password are required")
	}
	if in.Password != in.ConfirmPassword {
		return nil, apperr.Validation(apperr.CodePasswordMismatch, "")
	}
	if len([]rune(in.Password)) < MinPasswordLen {
		return nil, apperr.Validation(apperr.CodePasswordTooShort, "")
	}
	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, apperr.Internal("identity.hash", err)
	}

	u := &User{ID: uuid.NewString(), Email: email, PasswordHash: hash}
	p := &Profile{ID: u.ID}
	if name := strings.TrimSpace(in.FullName); name != "" {
		p.FullName = &name
	}
	if err := s.repo.CreateUser(ctx, u, p); err != nil {
		if errors.Is(err, ErrAlreadyExist) {
			return nil, apperr.Conflict(apperr.CodeEmailTaken, "")
		}
		return nil, apperr.Internal("identity.create_user", err)
	}
	log.Printf("[identity] signed up user=%s", u.ID)
	return u, nil
}

// SignIn checks credentials and opens a session.
func (s *Service) SignIn(ctx context.Context, email, password string) (*SignInResponse, error) {
	u, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, ErrNotFound) {
		return nil, apperr.Unauthenticated(apperr.CodeInvalidCredentials)
	}
	if err != nil {
		return nil, apperr.Internal("identity.get_by_email", err)
	}
	if !CheckPassword(u.PasswordHash, password) {
		return nil, apperr.Unauthenticated(apperr.CodeInvalidCredentials)
	}

	sess := &Session{ID: uuid.NewString(), UserID: u.ID, ExpiresAt: s.now().Add(s.ttl)}
	if err := s.repo.CreateSession(ctx, sess); err != nil {
		return nil, apperr.Internal("identity.create_session", err)
	}
	token, err := s.signer.Issue(u.ID, sess.ID, sess.ExpiresAt)
	if err != nil {
		return nil, apperr.Internal("identity.sign", err)
	}
	id, err := s.identity(ctx, u, sess.ID)
	if err != nil {
		return nil, err
	}
	return &SignInResponse{Token: token, ExpiresAt: sess.ExpiresAt, Identity: *id}, nil
}

// SignOut revokes the session; the token stops resolving immediately.
func (s *Service) SignOut(ctx context.Context, sessionID string) error {
	if err := s.repo.RevokeSession(ctx, sessionID, s.now()); err != nil {
		return apperr.Internal("identity.revoke_session", err)
	}
	return nil
}

// CurrentSession resolves a bearer token to the signed-in identity.
func (s *Service) CurrentSession(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, apperr.Unauthenticated(apperr.CodeSignInRequired)
	}
	userID, sessionID, err := s.signer.Parse(token)
	if err != nil {
		return nil, apperr.Unauthenticated(apperr.CodeSessionExpired)
	}
	sess, err := s.repo.GetSession(ctx, sessionID)
	if errors.Is(err, ErrNotFound) {
		return nil, apperr.Unauthenticated(apperr.CodeSessionExpired)
	}
	if err != nil {
		return nil, apperr.Internal("identity.get_session", err)
	}
	if sess.UserID != userID || sess.RevokedAt != nil || !s.now().Before(sess.ExpiresAt) {
		return nil, apperr.Unauthenticated(apperr.CodeSessionExpired)
	}
	u, err := s.repo.GetByID(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return nil, apperr.Unauthenticated(apperr.CodeSessionExpired)
	}
	if err != nil {
		return nil, apperr.Internal("identity.get_user", err)
	}
	return s.identity(ctx, u, sessionID)
}

func (s *Service) identity(ctx context.Context, u *User, sessionID string) (*Identity, error) {
	p, err := s.repo.GetProfile(ctx, u.ID)
	if errors.Is(err, ErrNotFound) {
		// accounts created outside SignUp may lack a profile row
		p = &Profile{ID: u.ID}
	} else if err != nil {
		return nil, apperr.Internal("identity.get_profile", err)
	}
	return &Identity{UserID: u.ID, Email: u.Email, SessionID: sessionID, Profile: *p}, nil
}

func (s *Service) Profile(ctx context.Context, userID string) (*Profile, error) {
	p, err := s.repo.GetProfile(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return nil, apperr.NotFound(apperr.CodeSignInRequired)
	}
	if err != nil {
		return nil, apperr.Internal("identity.get_profile", err)
	}
	return p, nil
}

// UpdateProfile changes the non-empty fields and returns the stored profile.
func (s *Service) UpdateProfile(ctx context.Context, userID string, in UpdateProfileRequest) (*Profile, error) {
	p := &Profile{ID: userID, Address: in.Address}
	if v := strings.TrimSpace(in.FullName); v != "" {
		p.FullName = &v
	}
	if v := strings.TrimSpace(in.Phone); v != "" {
		p.Phone = &v
	}
	if err := s.repo.UpdateProfile(ctx, p); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperr.NotFound(apperr.CodeSignInRequired)
		}
		return nil, apperr.Internal("identity.update_profile", err)
	}
	return s.Profile(ctx, userID)
}

// ValidateUser reports whether the account exists.
func (s *Service) ValidateUser(ctx context.Context, id string) (bool, error) {
	if _, err := uuid.Parse(id); err != nil {
		return false, nil
	}
	_, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, apperr.Internal("identity.validate", err)
	}
	return true, nil
}

func (s *Service) IsAdmin(ctx context.Context, id string) (bool, error) {
	if _, err := uuid.Parse(id); err != nil {
		return false, nil
	}
	p, err := s.repo.GetProfile(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, apperr.Internal("identity.is_admin", err)
	}
	return p.IsAdmin, nil
}

// GrantAdmin flips the admin flag of the account with the given email.
func (s *Service) GrantAdmin(ctx context.Context, email string, admin bool) error {
	if err := s.repo.SetAdmin(ctx, normalizeEmail(email), admin); err != nil {
		if errors.Is(err, ErrNotFound) {
			return apperr.Errorf(apperr.KindNotFound, apperr.CodeInvalidInput, "no account for %s", email)
		}
		return apperr.Internal("identity.set_admin", err)
	}
	log.Printf("[identity] admin=%t email=%s", admin, email)
	return nil
}

func (s *Service) CountCustomers(ctx context.Context) (int, error) {
	n, err := s.repo.CountProfiles(ctx)
	if err != nil {
		return 0, apperr.Internal("identity.count", err)
	}
	return n, nil
}

// Emails are stored lower-cased; users.email is unique on lower(email).
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
