package identity

import (
	"context"
	"io"
	"log"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"

	"github.com/MikeMC777/storefront/internal/apperr"
)

// stubRepo implements Repository in memory.
type stubRepo struct {
	mu       sync.Mutex
	users    map[string]*User
	profiles map[string]*Profile
	sessions map[string]*Session
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		users:    map[string]*User{},
		profiles: map[string]*Profile{},
		sessions: map[string]*Session{},
	}
}

func (s *stubRepo) CreateUser(ctx context.Context, u *User, p *Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, x := range s.users {
		if strings.EqualFold(x.Email, u.Email) {
			return ErrAlreadyExist
		}
	}
	cu, cp := *u, *p
	s.users[u.ID] = &cu
	s.profiles[p.ID] = &cp
	return nil
}

func (s *stubRepo) GetByID(ctx context.Context, id string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, ErrNotFound
}

func (s *stubRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *stubRepo) GetProfile(ctx context.Context, id string) (*Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.profiles[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, ErrNotFound
}

func (s *stubRepo) UpdateProfile(ctx context.Context, p *Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.profiles[p.ID]
	if !ok {
		return ErrNotFound
	}
	if p.FullName != nil {
		cur.FullName = p.FullName
	}
	if p.Phone != nil {
		cur.Phone = p.Phone
	}
	if p.Address != nil {
		cur.Address = p.Address
	}
	return nil
}

func (s *stubRepo) SetAdmin(ctx context.Context, email string, admin bool) error {
	u, err := s.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[u.ID].IsAdmin = admin
	return nil
}

func (s *stubRepo) CountProfiles(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.profiles), nil
}

func (s *stubRepo) CreateSession(ctx context.Context, sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *sess
	s.sessions[sess.ID] = &cp
	return nil
}

func (s *stubRepo) GetSession(ctx context.Context, id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok {
		cp := *sess
		return &cp, nil
	}
	return nil, ErrNotFound
}

func (s *stubRepo) RevokeSession(ctx context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok && sess.RevokedAt == nil {
		sess.RevokedAt = &at
	}
	return nil
}

func newService(repo Repository) *Service {
	return NewService(repo, NewSigner("test-secret"), time.Hour)
}

func signUp(t *testing.T, svc *Service, email string) *User {
	t.Helper()
	u, err := svc.SignUp(context.Background(), SignUpRequest{
		Email: email, Password: "secret1", ConfirmPassword: "secret1", FullName: "Abebe Kebede",
	})
	require.NoError(t, err)
	return u
}

func TestSignUp_Validation(t *testing.T) {
	svc := newService(newStubRepo())
	ctx := context.Background()

	_, err := svc.SignUp(ctx, SignUpRequest{Email: "a@b.et", Password: "secret1", ConfirmPassword: "secret2"})
	require.ErrorIs(t, err, apperr.Validation(apperr.CodePasswordMismatch, ""))

	_, err = svc.SignUp(ctx, SignUpRequest{Email: "a@b.et", Password: "abc", ConfirmPassword: "abc"})
	require.ErrorIs(t, err, apperr.Validation(apperr.CodePasswordTooShort, ""))

	_, err = svc.SignUp(ctx, SignUpRequest{Password: "secret1", ConfirmPassword: "secret1"})
	require.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestSignUp_DuplicateEmail(t *testing.T) {
	svc := newService(newStubRepo())
	signUp(t, svc, "abebe@example.com")

	_, err := svc.SignUp(context.Background(), SignUpRequest{
		Email: "ABEBE@example.com", Password: "secret1", ConfirmPassword: "secret1",
	})
	require.ErrorIs(t, err, apperr.Conflict(apperr.CodeEmailTaken, ""))
}

func TestSignUp_StoresLowerCaseEmail(t *testing.T) {
	repo := newStubRepo()
	svc := newService(repo)
	ctx := context.Background()

	u := signUp(t, svc, "  Abe@Example.COM ")
	require.Equal(t, "abe@example.com", u.Email)
	stored, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "abe@example.com", stored.Email)

	_, err = svc.SignUp(ctx, SignUpRequest{Email: "abe@example.com", Password: "secret1", ConfirmPassword: "secret1"})
	require.ErrorIs(t, err, apperr.Conflict(apperr.CodeEmailTaken, ""))

	res, err := svc.SignIn(ctx, "ABE@example.com", "secret1")
	require.NoError(t, err)
	require.Equal(t, u.ID, res.Identity.UserID)

	require.NoError(t, svc.GrantAdmin(ctx, "Abe@example.com", true))
	admin, err := svc.IsAdmin(ctx, u.ID)
	require.NoError(t, err)
	require.True(t, admin)
}

func TestSignInSessionSignOut(t *testing.T) {
	repo := newStubRepo()
	svc := newService(repo)
	u := signUp(t, svc, "abebe@example.com")
	ctx := context.Background()

	_, err := svc.SignIn(ctx, "abebe@example.com", "wrong-pass")
	require.ErrorIs(t, err, apperr.Unauthenticated(apperr.CodeInvalidCredentials))

	res, err := svc.SignIn(ctx, "abebe@example.com", "secret1")
	require.NoError(t, err)
	require.NotEmpty(t, res.Token)
	require.Equal(t, u.ID, res.Identity.UserID)
	require.False(t, res.Identity.IsAdmin())
	require.Equal(t, "Abebe Kebede", *res.Identity.Profile.FullName)

	id, err := svc.CurrentSession(ctx, res.Token)
	require.NoError(t, err)
	require.Equal(t, u.ID, id.UserID)

	require.NoError(t, svc.SignOut(ctx, id.SessionID))
	_, err = svc.CurrentSession(ctx, res.Token)
	require.ErrorIs(t, err, apperr.Unauthenticated(apperr.CodeSessionExpired))
}

func TestCurrentSession_RejectsBadTokens(t *testing.T) {
	svc := newService(newStubRepo())
	signUp(t, svc, "abebe@example.com")
	ctx := context.Background()

	_, err := svc.CurrentSession(ctx, "")
	require.ErrorIs(t, err, apperr.Unauthenticated(apperr.CodeSignInRequired))

	_, err = svc.CurrentSession(ctx, "not.a.jwt")
	require.Equal(t, apperr.KindUnauthenticated, apperr.KindOf(err))

	res, err := svc.SignIn(ctx, "abebe@example.com", "secret1")
	require.NoError(t, err)

	other := NewService(newStubRepo(), NewSigner("another-secret"), time.Hour)
	_, err = other.CurrentSession(ctx, res.Token)
	require.Equal(t, apperr.KindUnauthenticated, apperr.KindOf(err))

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = svc.CurrentSession(ctx, res.Token)
	require.ErrorIs(t, err, apperr.Unauthenticated(apperr.CodeSessionExpired))
}

func TestProfileAndAdminFlag(t *testing.T) {
	svc := newService(newStubRepo())
	u := signUp(t, svc, "abebe@example.com")
	ctx := context.Background()

	p, err := svc.UpdateProfile(ctx, u.ID, UpdateProfileRequest{
		Phone:   "+251911000000",
		Address: &Address{Address: "Bole Road 12", City: "Addis Ababa"},
	})
	require.NoError(t, err)
	require.Equal(t, "+251911000000", *p.Phone)
	require.Equal(t, "Abebe Kebede", *p.FullName)
	require.Equal(t, "Addis Ababa", p.Address.City)

	admin, err := svc.IsAdmin(ctx, u.ID)
	require.NoError(t, err)
	require.False(t, admin)

	require.NoError(t, svc.GrantAdmin(ctx, "abebe@example.com", true))
	admin, err = svc.IsAdmin(ctx, u.ID)
	require.NoError(t, err)
	require.True(t, admin)

	err = svc.GrantAdmin(ctx, "nobody@example.com", true)
	require.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	n, err := svc.CountCustomers(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestGRPC_ValidateUserAndIsAdmin(t *testing.T) {
	svc := newService(newStubRepo())
	u := signUp(t, svc, "abebe@example.com")
	require.NoError(t, svc.GrantAdmin(context.Background(), "abebe@example.com", true))

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	Register(srv, svc)
	go func() { _ = srv.Serve(lis) }()
	defer srv.Stop()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	defer conn.Close()

	client := NewClient(conn)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ok, err := client.ValidateUser(ctx, u.ID)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = client.ValidateUser(ctx, "b2f5ff47-2b1e-4f22-8a96-5f3c1f2f2e7b")
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = client.ValidateUser(ctx, "garbage")
	require.NoError(t, err)
	require.False(t, ok)

	admin, err := client.IsAdmin(ctx, u.ID)
	require.NoError(t, err)
	require.True(t, admin)
}

func init() {
	log.SetOutput(io.Discard)
}
