package impl

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gatekeeper/config"
	domainerrors "gatekeeper/internal/domain/errors"
	"gatekeeper/internal/domain/repository"
	infraauth "gatekeeper/internal/infra/auth"
	"gatekeeper/internal/usecase"
)

type authFixture struct {
	svc    usecase.AuthUsecase
	store  *memStore
	tx     *memTxManager
	mailer *captureMailer
	cfg    *config.Config
}

func newAuthFixture(t *testing.T, cfg *config.Config) *authFixture {
	t.Helper()

	store := newMemStore()
	tx := &memTxManager{store: store}
	mailer := newCaptureMailer()
	logger := discardLogger()

	tokens, err := infraauth.NewJWTService(cfg)
	require.NoError(t, err)
	hasher := infraauth.NewBcryptHasher(cfg)

	recovery := NewRecoveryManager(RecoveryManagerParams{
		TxManager: tx,
		Tokens:    tokens,
		Logger:    logger,
	})
	svc, err := NewAuthService(AuthServiceParams{
		TxManager: tx,
		Hasher:    hasher,
		Tokens:    tokens,
		Recovery:  recovery,
		Mailer:    mailer,
		Logger:    logger,
	})
	require.NoError(t, err)

	return &authFixture{svc: svc, store: store, tx: tx, mailer: mailer, cfg: cfg}
}

func (f *authFixture) register(t *testing.T, email, password string) *usecase.RegisterOutput {
	t.Helper()

	out, err := f.svc.Register(context.Background(), &usecase.RegisterInput{
		Email:    email,
		Password: password,
	})
	require.NoError(t, err)

	return out
}

func TestRegister_NormalizesEmail(t *testing.T) {
	fixture := newAuthFixture(t, newTestAuthConfig(time.Hour, 30*time.Minute))

	out := fixture.register(t, "  Alice@Example.COM ", "correct horse battery")

	assert.Equal(t, "alice@example.com", out.Email)
	assert.NotEqual(t, uuid.Nil, out.ID)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	fixture := newAuthFixture(t, newTestAuthConfig(time.Hour, 30*time.Minute))
	fixture.register(t, "alice@example.com", "correct horse battery")

	_, err := fixture.svc.Register(context.Background(), &usecase.RegisterInput{
		Email:    "ALICE@example.com",
		Password: "another long password",
	})

	assert.ErrorIs(t, err, domainerrors.ErrEmailAlreadyRegistered)
}

func TestRegister_WeakPassword(t *testing.T) {
	fixture := newAuthFixture(t, newTestAuthConfig(time.Hour, 30*time.Minute))

	_, err := fixture.svc.Register(context.Background(), &usecase.RegisterInput{
		Email:    "alice@example.com",
		Password: "short",
	})

	require.Error(t, err)
	var appErr domainerrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, domainerrors.ErrWeakPassword.ErrorCode(), appErr.ErrorCode())
}

func TestLogin_Success(t *testing.T) {
	fixture := newAuthFixture(t, newTestAuthConfig(time.Hour, 30*time.Minute))
	created := fixture.register(t, "alice@example.com", "correct horse battery")

	out, err := fixture.svc.Login(context.Background(), &usecase.LoginInput{
		Email:    "Alice@Example.com",
		Password: "correct horse battery",
	})

	require.NoError(t, err)
	assert.Equal(t, "Bearer", out.TokenType)
	assert.True(t, out.ExpiresAt.After(time.Now()))

	userID, err := fixture.svc.Authorize(context.Background(), out.SessionToken)
	require.NoError(t, err)
	assert.Equal(t, created.ID, userID)
}

func TestLogin_FailuresAreUniform(t *testing.T) {
	fixture := newAuthFixture(t, newTestAuthConfig(time.Hour, 30*time.Minute))
	fixture.register(t, "alice@example.com", "correct horse battery")

	_, wrongPassword := fixture.svc.Login(context.Background(), &usecase.LoginInput{
		Email:    "alice@example.com",
		Password: "not the password",
	})
	_, unknownEmail := fixture.svc.Login(context.Background(), &usecase.LoginInput{
		Email:    "nobody@example.com",
		Password: "correct horse battery",
	})

	// Wrong password and unknown account must be the same error value.
	assert.ErrorIs(t, wrongPassword, domainerrors.ErrAuthenticationFailed)
	assert.ErrorIs(t, unknownEmail, domainerrors.ErrAuthenticationFailed)
}

func TestLogin_DisabledAccount(t *testing.T) {
	fixture := newAuthFixture(t, newTestAuthConfig(time.Hour, 30*time.Minute))
	created := fixture.register(t, "alice@example.com", "correct horse battery")

	fixture.store.mu.Lock()
	fixture.store.credentials[created.ID].IsActive = false
	fixture.store.mu.Unlock()

	// The disabled state must stay hidden behind the uniform failure,
	// with either the right or the wrong password.
	_, err := fixture.svc.Login(context.Background(), &usecase.LoginInput{
		Email:    "alice@example.com",
		Password: "correct horse battery",
	})
	assert.ErrorIs(t, err, domainerrors.ErrAuthenticationFailed)

	_, err = fixture.svc.Login(context.Background(), &usecase.LoginInput{
		Email:    "alice@example.com",
		Password: "not the password",
	})
	assert.ErrorIs(t, err, domainerrors.ErrAuthenticationFailed)
}

func TestLogin_StoreUnavailable(t *testing.T) {
	fixture := newAuthFixture(t, newTestAuthConfig(time.Hour, 30*time.Minute))
	fixture.tx.failWith = repository.ErrStoreTimeout

	_, err := fixture.svc.Login(context.Background(), &usecase.LoginInput{
		Email:    "alice@example.com",
		Password: "correct horse battery",
	})

	assert.ErrorIs(t, err, domainerrors.ErrStoreUnavailable)
}

func TestAuthorize_RejectsGarbage(t *testing.T) {
	fixture := newAuthFixture(t, newTestAuthConfig(time.Hour, 30*time.Minute))

	for _, token := range []string{"", "not-a-jwt", "aaa.bbb.ccc"} {
		_, err := fixture.svc.Authorize(context.Background(), token)
		assert.ErrorIs(t, err, domainerrors.ErrAuthenticationFailed)
	}
}

func TestAuthorize_TamperedTokenFailsAsAuthentication(t *testing.T) {
	fixture := newAuthFixture(t, newTestAuthConfig(time.Hour, 30*time.Minute))
	fixture.register(t, "alice@example.com", "correct horse battery")

	out, err := fixture.svc.Login(context.Background(), &usecase.LoginInput{
		Email:    "alice@example.com",
		Password: "correct horse battery",
	})
	require.NoError(t, err)

	// Flip the last signature byte; a forged session token must fail with
	// the same undifferentiated kind as any other authentication failure.
	tampered := out.SessionToken[:len(out.SessionToken)-1]
	if strings.HasSuffix(out.SessionToken, "A") {
		tampered += "B"
	} else {
		tampered += "A"
	}

	_, err = fixture.svc.Authorize(context.Background(), tampered)
	assert.ErrorIs(t, err, domainerrors.ErrAuthenticationFailed)
}

func TestAuthorize_RejectsRecoveryToken(t *testing.T) {
	fixture := newAuthFixture(t, newTestAuthConfig(time.Hour, 30*time.Minute))
	fixture.register(t, "alice@example.com", "correct horse battery")

	require.NoError(t, fixture.svc.RequestPasswordReset(context.Background(), "alice@example.com"))
	sent, ok := fixture.mailer.waitForSend(2 * time.Second)
	require.True(t, ok, "expected a reset email")

	_, err := fixture.svc.Authorize(context.Background(), sent.token)
	assert.ErrorIs(t, err, domainerrors.ErrAuthenticationFailed)
}

func TestProfile_ReturnsOwnAccount(t *testing.T) {
	fixture := newAuthFixture(t, newTestAuthConfig(time.Hour, 30*time.Minute))
	registered := fixture.register(t, "Alice@Example.com", "correct horse battery")

	profile, err := fixture.svc.Profile(context.Background(), registered.ID)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, profile.ID)
	assert.Equal(t, "alice@example.com", profile.Email)
	assert.True(t, profile.IsActive)
	assert.False(t, profile.IsSuperuser)
}

func TestProfile_UnknownSubjectFailsAsAuthentication(t *testing.T) {
	fixture := newAuthFixture(t, newTestAuthConfig(time.Hour, 30*time.Minute))

	_, err := fixture.svc.Profile(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domainerrors.ErrAuthenticationFailed)
}

func TestRequestPasswordReset_UnknownEmailIsSilent(t *testing.T) {
	fixture := newAuthFixture(t, newTestAuthConfig(time.Hour, 30*time.Minute))

	err := fixture.svc.RequestPasswordReset(context.Background(), "nobody@example.com")

	require.NoError(t, err)
	_, sent := fixture.mailer.waitForSend(100 * time.Millisecond)
	assert.False(t, sent, "no email may be dispatched for an unknown account")
}

func TestResetPassword_FullFlow(t *testing.T) {
	fixture := newAuthFixture(t, newTestAuthConfig(time.Hour, 30*time.Minute))
	fixture.register(t, "alice@example.com", "correct horse battery")

	require.NoError(t, fixture.svc.RequestPasswordReset(context.Background(), "alice@example.com"))
	sent, ok := fixture.mailer.waitForSend(2 * time.Second)
	require.True(t, ok, "expected a reset email")
	assert.Equal(t, "alice@example.com", sent.email)

	err := fixture.svc.ResetPassword(context.Background(), &usecase.ResetPasswordInput{
		RecoveryToken: sent.token,
		NewPassword:   "an entirely new secret",
	})
	require.NoError(t, err)

	// Old password no longer works, new one does.
	_, err = fixture.svc.Login(context.Background(), &usecase.LoginInput{
		Email:    "alice@example.com",
		Password: "correct horse battery",
	})
	assert.ErrorIs(t, err, domainerrors.ErrAuthenticationFailed)

	_, err = fixture.svc.Login(context.Background(), &usecase.LoginInput{
		Email:    "alice@example.com",
		Password: "an entirely new secret",
	})
	assert.NoError(t, err)

	// The token is single-use: replaying it fails.
	err = fixture.svc.ResetPassword(context.Background(), &usecase.ResetPasswordInput{
		RecoveryToken: sent.token,
		NewPassword:   "yet another new secret",
	})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidOrExpiredToken)
}

func TestResetPassword_WeakPasswordDoesNotBurnToken(t *testing.T) {
	fixture := newAuthFixture(t, newTestAuthConfig(time.Hour, 30*time.Minute))
	fixture.register(t, "alice@example.com", "correct horse battery")

	require.NoError(t, fixture.svc.RequestPasswordReset(context.Background(), "alice@example.com"))
	sent, ok := fixture.mailer.waitForSend(2 * time.Second)
	require.True(t, ok, "expected a reset email")

	err := fixture.svc.ResetPassword(context.Background(), &usecase.ResetPasswordInput{
		RecoveryToken: sent.token,
		NewPassword:   "short",
	})
	var appErr domainerrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, domainerrors.ErrWeakPassword.ErrorCode(), appErr.ErrorCode())

	// The policy rejection must not have consumed the token.
	err = fixture.svc.ResetPassword(context.Background(), &usecase.ResetPasswordInput{
		RecoveryToken: sent.token,
		NewPassword:   "an entirely new secret",
	})
	assert.NoError(t, err)
}

func TestResetPassword_ExpiredToken(t *testing.T) {
	// Recovery tokens expire immediately with a negative lifetime.
	fixture := newAuthFixture(t, newTestAuthConfig(time.Hour, -time.Minute))
	fixture.register(t, "alice@example.com", "correct horse battery")

	require.NoError(t, fixture.svc.RequestPasswordReset(context.Background(), "alice@example.com"))
	sent, ok := fixture.mailer.waitForSend(2 * time.Second)
	require.True(t, ok, "expected a reset email")

	err := fixture.svc.ResetPassword(context.Background(), &usecase.ResetPasswordInput{
		RecoveryToken: sent.token,
		NewPassword:   "an entirely new secret",
	})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidOrExpiredToken)
}

func TestResetPassword_GarbageToken(t *testing.T) {
	fixture := newAuthFixture(t, newTestAuthConfig(time.Hour, 30*time.Minute))

	err := fixture.svc.ResetPassword(context.Background(), &usecase.ResetPasswordInput{
		RecoveryToken: "definitely-not-a-token",
		NewPassword:   "an entirely new secret",
	})

	assert.ErrorIs(t, err, domainerrors.ErrInvalidOrExpiredToken)
}
