package auth

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/pos-backend/internal/users"
	pkgAuth "github.com/angelmondragon/pos-backend/pkg/auth"
	"github.com/angelmondragon/pos-backend/pkg/config"
	"github.com/angelmondragon/pos-backend/pkg/db/dbtest"
	"github.com/angelmondragon/pos-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/pos-backend/pkg/errors"
	"github.com/angelmondragon/pos-backend/pkg/logger"
	"github.com/angelmondragon/pos-backend/pkg/security"
)

type stubSessionManager struct {
	started map[string]uuid.UUID
	revoked []string
	err     error
}

func (s *stubSessionManager) Start(_ context.Context, accessID string, userID uuid.UUID) error {
	if s.err != nil {
		return s.err
	}
	s.started[accessID] = userID
	return nil
}

func (s *stubSessionManager) Revoke(_ context.Context, accessID string) error {
	s.revoked = append(s.revoked, accessID)
	return s.err
}

var (
	testJWTConfig = config.JWTConfig{Secret: "secret", Issuer: "pos-backend", ExpirationMinutes: 60}
	testPwConfig  = config.PasswordConfig{ArgonMemoryKB: 8, ArgonTime: 1, ArgonParallelism: 1, ArgonSaltLen: 16, ArgonKeyLen: 32}
	testAccounts  = config.AccountsConfig{AdminEmailDomain: "@pos.io", TempPasswordTTL: 5 * time.Minute, TempPasswordLength: 10}
)

type fixture struct {
	svc      Service
	repo     *users.Repository
	sessions *stubSessionManager
	logs     *bytes.Buffer
	clock    *time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Second)
	f := &fixture{
		repo:     users.NewRepository(dbtest.Open(t)),
		sessions: &stubSessionManager{started: map[string]uuid.UUID{}},
		logs:     &bytes.Buffer{},
		clock:    &now,
	}
	svc, err := NewService(ServiceParams{
		UserRepo:       f.repo,
		SessionManager: f.sessions,
		JWTConfig:      testJWTConfig,
		PasswordConfig: testPwConfig,
		AccountsConfig: testAccounts,
		Logger:         logger.New(logger.Options{Output: f.logs}),
		Now:            func() time.Time { return *f.clock },
	})
	require.NoError(t, err)
	f.svc = svc
	return f
}

func (f *fixture) advance(d time.Duration) {
	next := f.clock.Add(d)
	*f.clock = next
}

func TestRegisterAssignsRoleByEmailDomain(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp, err := f.svc.Register(ctx, RegisterRequest{Name: "Boss", Email: "Boss@POS.io", Password: "Secret1!"})
	require.NoError(t, err)
	assert.Equal(t, enums.UserRoleAdmin, resp.Role)

	resp, err = f.svc.Register(ctx, RegisterRequest{Name: "Sam", Email: "sam@shop.com", Password: "Secret1!"})
	require.NoError(t, err)
	assert.Equal(t, enums.UserRoleSeller, resp.Role)

	_, err = f.svc.Register(ctx, RegisterRequest{Name: "Sam", Email: "SAM@shop.com", Password: "Secret1!"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))
}

func TestRegisterEnforcesPasswordPolicy(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Register(context.Background(), RegisterRequest{Name: "Weak", Email: "weak@shop.com", Password: "weakpass"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestLoginMintsTokenAndSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Register(ctx, RegisterRequest{Name: "Sam", Email: "sam@shop.com", Password: "Secret1!"})
	require.NoError(t, err)

	resp, err := f.svc.Login(ctx, LoginRequest{Email: " SAM@shop.com", Password: "Secret1!"})
	require.NoError(t, err)
	assert.Equal(t, "Sam", resp.Name)
	assert.Equal(t, enums.UserRoleSeller, resp.Role)
	assert.Equal(t, f.clock.Add(time.Hour), resp.ExpiresAt.UTC())

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, enums.UserRoleSeller, claims.Role)
	require.Len(t, f.sessions.started, 1)
	assert.Equal(t, claims.UserID, f.sessions.started[claims.ID])

	user, err := f.repo.FindByEmail(ctx, "sam@shop.com")
	require.NoError(t, err)
	require.NotNil(t, user.LastLoginAt)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Register(ctx, RegisterRequest{Name: "Sam", Email: "sam@shop.com", Password: "Secret1!"})
	require.NoError(t, err)

	_, err = f.svc.Login(ctx, LoginRequest{Email: "sam@shop.com", Password: "Wrong1!!"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))

	_, err = f.svc.Login(ctx, LoginRequest{Email: "ghost@shop.com", Password: "Secret1!"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))
	assert.Empty(t, f.sessions.started)
}

func TestTempPasswordForAdminIsReturnedAndSingleUse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Register(ctx, RegisterRequest{Name: "Boss", Email: "boss@pos.io", Password: "Secret1!"})
	require.NoError(t, err)

	resp, err := f.svc.IssueTempPassword(ctx, enums.UserRoleAdmin, TempPasswordRequest{Email: "boss@pos.io"})
	require.NoError(t, err)
	require.Len(t, resp.TempPassword, 10)
	assert.NotEmpty(t, resp.Note)

	f.advance(2 * time.Minute)
	_, err = f.svc.Login(ctx, LoginRequest{Email: "boss@pos.io", Password: resp.TempPassword})
	require.NoError(t, err)

	user, err := f.repo.FindByEmail(ctx, "boss@pos.io")
	require.NoError(t, err)
	assert.Nil(t, user.TempPasswordHash)

	_, err = f.svc.Login(ctx, LoginRequest{Email: "boss@pos.io", Password: resp.TempPassword})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))
}

func TestExpiredTempPasswordIsClearedOnLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Register(ctx, RegisterRequest{Name: "Boss", Email: "boss@pos.io", Password: "Secret1!"})
	require.NoError(t, err)

	resp, err := f.svc.IssueTempPassword(ctx, enums.UserRoleAdmin, TempPasswordRequest{Email: "boss@pos.io"})
	require.NoError(t, err)

	f.advance(6 * time.Minute)
	_, err = f.svc.Login(ctx, LoginRequest{Email: "boss@pos.io", Password: resp.TempPassword})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))

	user, err := f.repo.FindByEmail(ctx, "boss@pos.io")
	require.NoError(t, err)
	assert.Nil(t, user.TempPasswordHash)
	assert.Nil(t, user.TempPasswordExpiresAt)
}

func TestTempPasswordForSellerIsWithheld(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Register(ctx, RegisterRequest{Name: "Sam", Email: "sam@shop.com", Password: "Secret1!"})
	require.NoError(t, err)

	resp, err := f.svc.IssueTempPassword(ctx, "", TempPasswordRequest{Email: "sam@shop.com"})
	require.NoError(t, err)
	assert.Empty(t, resp.TempPassword)
	assert.True(t, strings.Contains(f.logs.String(), "temporary password issued"))

	user, err := f.repo.FindByEmail(ctx, "sam@shop.com")
	require.NoError(t, err)
	require.NotNil(t, user.TempPasswordExpiresAt)
	assert.True(t, user.TempPasswordExpiresAt.Equal(f.clock.Add(5*time.Minute)))

	ok, err := security.VerifyPassword("Secret1!", user.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok, "main password must remain valid")

	_, err = f.svc.IssueTempPassword(ctx, "", TempPasswordRequest{Email: "nobody@shop.com"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestTempPasswordForAdminRequiresAdminCaller(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Register(ctx, RegisterRequest{Name: "Boss", Email: "boss@pos.io", Password: "Secret1!"})
	require.NoError(t, err)

	for _, role := range []enums.UserRole{"", enums.UserRoleSeller} {
		resp, err := f.svc.IssueTempPassword(ctx, role, TempPasswordRequest{Email: "boss@pos.io"})
		assert.Nil(t, resp)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden), "role %q", role)
	}

	user, err := f.repo.FindByEmail(ctx, "boss@pos.io")
	require.NoError(t, err)
	assert.Nil(t, user.TempPasswordHash)
	assert.Contains(t, f.logs.String(), "without admin session")
}

func TestLogoutRevokesSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.Logout(ctx, ""))
	assert.Empty(t, f.sessions.revoked)

	require.NoError(t, f.svc.Logout(ctx, "access-1"))
	assert.Equal(t, []string{"access-1"}, f.sessions.revoked)

	f.sessions.err = errors.New("redis down")
	err := f.svc.Logout(ctx, "access-2")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
}
