package impl

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.uber.org/fx"

	"gatekeeper/internal/domain/entity"
	domainerrors "gatekeeper/internal/domain/errors"
	"gatekeeper/internal/domain/repository"
	"gatekeeper/internal/domain/service"
	"gatekeeper/internal/errors"
	"gatekeeper/internal/usecase"
)

// dummyPassword feeds the pre-hashed comparison target used to keep the
// unknown-account login path as expensive as the real one.
const dummyPassword = "gatekeeper-timing-pad"

type authService struct {
	txManager repository.TransactionManager
	hasher    service.PasswordHasher
	tokens    service.TokenService
	recovery  usecase.RecoveryTokenManager
	mailer    service.Mailer
	logger    *slog.Logger

	// dummyHash is compared against when no credential matches the login
	// email, so both outcomes perform one full-cost hash check.
	dummyHash string
}

// AuthServiceParams defines the dependencies for the authentication service.
type AuthServiceParams struct {
	fx.In

	TxManager repository.TransactionManager
	Hasher    service.PasswordHasher
	Tokens    service.TokenService
	Recovery  usecase.RecoveryTokenManager
	Mailer    service.Mailer
	Logger    *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(params AuthServiceParams) (usecase.AuthUsecase, error) {
	dummyHash, err := params.Hasher.Hash(dummyPassword)
	if err != nil {
		return nil, errors.Wrap(err, "precompute dummy hash")
	}
	return &authService{
		txManager: params.TxManager,
		hasher:    params.Hasher,
		tokens:    params.Tokens,
		recovery:  params.Recovery,
		mailer:    params.Mailer,
		logger:    params.Logger,
		dummyHash: dummyHash,
	}, nil
}

// Register creates a credential record for a new account.
func (s *authService) Register(ctx context.Context, input *usecase.RegisterInput) (*usecase.RegisterOutput, error) {
	if err := s.hasher.ValidateStrength(input.Password); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, domainerrors.ErrInternalError.WrapMessage("failed to hash password")
	}

	cred := &entity.Credential{
		Email:        entity.NormalizeEmail(input.Email),
		PasswordHash: hash,
		IsActive:     true,
		IsSuperuser:  input.IsSuperuser,
	}
	err = s.txManager.Execute(ctx, func(factory repository.RepositoryFactory) error {
		return factory.CredentialRepo().Create(ctx, cred)
	})
	if err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, domainerrors.ErrEmailAlreadyRegistered
		}
		return nil, s.storeFailure(ctx, err, "create credential")
	}

	s.logger.InfoContext(ctx, "account registered", slog.String("user_id", cred.ID.String()))
	return &usecase.RegisterOutput{ID: cred.ID, Email: cred.Email}, nil
}

// Login verifies the password and issues a session token. The caller learns
// only that authentication failed, never which part of it did, and the
// missing-account path runs the same hash comparison as the real one.
func (s *authService) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.LoginOutput, error) {
	normalized := entity.NormalizeEmail(input.Email)

	var cred *entity.Credential
	err := s.txManager.Execute(ctx, func(factory repository.RepositoryFactory) error {
		found, findErr := factory.CredentialRepo().FindByEmail(ctx, normalized)
		if findErr != nil {
			return findErr
		}
		cred = found
		return nil
	})
	if err != nil && !errors.Is(err, repository.ErrCredentialNotFound) {
		return nil, s.storeFailure(ctx, err, "find credential for login")
	}

	if cred == nil {
		// Burn the same hashing cost as a real comparison before refusing.
		s.hasher.Check(input.Password, s.dummyHash)
		return nil, domainerrors.ErrAuthenticationFailed
	}

	if !s.hasher.Check(input.Password, cred.PasswordHash) {
		s.logger.WarnContext(ctx, "login rejected", slog.String("user_id", cred.ID.String()))
		return nil, domainerrors.ErrAuthenticationFailed
	}

	// Disabled accounts are rejected only after the full-cost password
	// check, and with the same error as any other login failure; the
	// distinction exists in the logs only.
	if !cred.IsActive {
		s.logger.WarnContext(ctx, "login rejected",
			slog.String("user_id", cred.ID.String()),
			slog.Any("error", domainerrors.ErrAccountDisabled),
		)

		return nil, domainerrors.ErrAuthenticationFailed
	}

	token, expiresAt, err := s.tokens.IssueSession(cred.ID)
	if err != nil {
		s.logger.ErrorContext(ctx, "session issuance failed", slog.Any("error", err))
		return nil, domainerrors.ErrInternalError.WrapMessage("failed to issue session token")
	}

	s.logger.InfoContext(ctx, "login succeeded", slog.String("user_id", cred.ID.String()))
	return &usecase.LoginOutput{
		SessionToken: token,
		TokenType:    "Bearer",
		ExpiresAt:    expiresAt.UTC(),
	}, nil
}

// Authorize validates a session token and returns its subject. Malformed,
// forged, expired and wrong-purpose tokens are indistinguishable to the
// caller: they all fail with the same authentication error a missing
// header produces.
func (s *authService) Authorize(ctx context.Context, token string) (uuid.UUID, error) {
	userID, err := s.tokens.ValidateSession(token)
	if err != nil {
		return uuid.Nil, domainerrors.ErrAuthenticationFailed
	}
	return userID, nil
}

// Profile loads the credential behind an authorized subject. A subject id
// whose record is gone is treated as no longer authenticated.
func (s *authService) Profile(ctx context.Context, userID uuid.UUID) (*usecase.ProfileOutput, error) {
	var cred *entity.Credential
	err := s.txManager.Execute(ctx, func(factory repository.RepositoryFactory) error {
		found, findErr := factory.CredentialRepo().FindByID(ctx, userID)
		if findErr != nil {
			return findErr
		}
		cred = found
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrCredentialNotFound) {
			return nil, domainerrors.ErrAuthenticationFailed
		}
		return nil, s.storeFailure(ctx, err, "load profile")
	}

	return &usecase.ProfileOutput{
		ID:          cred.ID,
		Email:       cred.Email,
		IsActive:    cred.IsActive,
		IsSuperuser: cred.IsSuperuser,
		CreatedAt:   cred.CreatedAt,
	}, nil
}

// RequestPasswordReset issues a recovery token and dispatches the reset
// email. Unknown emails follow the same code path minus the send, and the
// response never distinguishes the two.
func (s *authService) RequestPasswordReset(ctx context.Context, email string) error {
	token, userID, err := s.recovery.IssueForEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrCredentialNotFound) {
			s.logger.InfoContext(ctx, "password reset requested for unknown email")
			return nil
		}
		return s.storeFailure(ctx, err, "issue recovery token")
	}

	// Delivery happens off the request path. A send failure is logged, not
	// surfaced, because surfacing it would leak account existence.
	go func() {
		sendCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if sendErr := s.mailer.SendPasswordReset(sendCtx, entity.NormalizeEmail(email), token); sendErr != nil {
			s.logger.ErrorContext(sendCtx, "password reset email failed",
				slog.String("user_id", userID.String()),
				slog.Any("error", sendErr),
			)
		}
	}()

	return nil
}

// ResetPassword redeems a recovery token and overwrites the password hash.
// The password policy runs before redemption so a weak password does not
// burn the token; the redemption and the hash update are deliberately not
// one transaction, so a consumed token stays consumed even when the update
// fails.
func (s *authService) ResetPassword(ctx context.Context, input *usecase.ResetPasswordInput) error {
	if err := s.hasher.ValidateStrength(input.NewPassword); err != nil {
		return err
	}

	userID, err := s.recovery.Consume(ctx, input.RecoveryToken)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNonceAlreadyConsumed),
			errors.Is(err, service.ErrTokenMalformed),
			errors.Is(err, service.ErrTokenSignature),
			errors.Is(err, service.ErrTokenExpired),
			errors.Is(err, service.ErrTokenPurpose):
			return domainerrors.ErrInvalidOrExpiredToken
		default:
			return s.storeFailure(ctx, err, "consume recovery token")
		}
	}

	hash, err := s.hasher.Hash(input.NewPassword)
	if err != nil {
		return domainerrors.ErrInternalError.WrapMessage("failed to hash password")
	}

	err = s.txManager.Execute(ctx, func(factory repository.RepositoryFactory) error {
		return factory.CredentialRepo().UpdatePasswordHash(ctx, userID, hash)
	})
	if err != nil {
		if errors.Is(err, repository.ErrCredentialNotFound) {
			// Token was valid but the account is gone.
			return domainerrors.ErrInvalidOrExpiredToken
		}
		return s.storeFailure(ctx, err, "update password hash")
	}

	s.logger.InfoContext(ctx, "password reset completed", slog.String("user_id", userID.String()))
	return nil
}

// storeFailure logs the underlying store error and collapses it to the
// externally visible taxonomy: timeouts and connectivity loss become a
// retryable unavailability error, anything else an internal error.
func (s *authService) storeFailure(ctx context.Context, err error, op string) error {
	s.logger.ErrorContext(ctx, "store operation failed",
		slog.String("operation", op),
		slog.Any("error", err),
	)
	if errors.Is(err, repository.ErrStoreTimeout) {
		return domainerrors.ErrStoreUnavailable
	}
	return domainerrors.ErrInternalError
}
