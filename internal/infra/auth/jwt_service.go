// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"gatekeeper/config"
	"gatekeeper/internal/domain/service"
)

// jwtService is a concrete implementation of the TokenService interface using the JWT standard.
// Tokens are self-contained HS256 JWTs; nothing is persisted per token, so
// issuance and validation are free of shared mutable state.
type jwtService struct {
	keys        map[string]string // kid -> HMAC secret, for validation of any configured key.
	activeKID   string            // Key used for issuance; rotate by adding a key and moving this.
	sessionTTL  time.Duration
	recoveryTTL time.Duration
}

// NewJWTService is the constructor for jwtService. The signing keys come
// from configuration and are never derived from user input.
func NewJWTService(cfg *config.Config) (service.TokenService, error) {
	if cfg.Auth == nil || len(cfg.Auth.SigningKeys) == 0 {
		return nil, errors.New("jwt signing keys must be provided")
	}

	keys := make(map[string]string, len(cfg.Auth.SigningKeys))
	for _, key := range cfg.Auth.SigningKeys {
		keys[key.KID] = key.Secret
	}
	if _, ok := keys[cfg.Auth.ActiveKID]; !ok {
		return nil, errors.Errorf("active signing key %q not configured", cfg.Auth.ActiveKID)
	}

	return &jwtService{
		keys:        keys,
		activeKID:   cfg.Auth.ActiveKID,
		sessionTTL:  cfg.Auth.SessionLifetime,
		recoveryTTL: cfg.Auth.RecoveryLifetime,
	}, nil
}

// IssueSession creates a signed session token for the subject. The returned
// expiry is the same instant embedded in the token's exp claim.
func (s *jwtService) IssueSession(subjectID uuid.UUID) (string, time.Time, error) {
	return s.sign(subjectID, service.PurposeSession, s.sessionTTL, "")
}

// ValidateSession verifies a session token and returns the subject id.
func (s *jwtService) ValidateSession(token string) (uuid.UUID, error) {
	claims, err := s.parse(token, service.PurposeSession)
	if err != nil {
		return uuid.Nil, err
	}

	subjectID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, service.ErrTokenMalformed
	}

	return subjectID, nil
}

// IssueRecovery creates a signed recovery token carrying a fresh random
// nonce in the jti claim. The nonce keys the single-use consumption record.
func (s *jwtService) IssueRecovery(subjectID uuid.UUID) (string, uuid.UUID, error) {
	nonce := uuid.New()

	token, _, err := s.sign(subjectID, service.PurposeRecovery, s.recoveryTTL, nonce.String())
	if err != nil {
		return "", uuid.Nil, err
	}

	return token, nonce, nil
}

// ParseRecovery verifies a recovery token's signature, expiry and purpose.
// Single-use state is checked elsewhere, against the consumption store.
func (s *jwtService) ParseRecovery(token string) (*service.Claims, error) {
	return s.parse(token, service.PurposeRecovery)
}

// SessionLifetime returns the configured session token lifetime.
func (s *jwtService) SessionLifetime() time.Duration {
	return s.sessionTTL
}

// RecoveryLifetime returns the configured recovery token lifetime.
func (s *jwtService) RecoveryLifetime() time.Duration {
	return s.recoveryTTL
}

// sign mints a token with the active key, stamping the key id into the
// header so validation survives key rotation. Issued-at and expiry derive
// from one timestamp, which is also returned.
func (s *jwtService) sign(subjectID uuid.UUID, purpose string, ttl time.Duration, nonce string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(ttl)
	claims := &service.Claims{
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        nonce,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token.Header["kid"] = s.activeKID

	signed, err := token.SignedString([]byte(s.keys[s.activeKID]))
	if err != nil {
		return "", time.Time{}, errors.Wrap(err, "failed to sign token")
	}

	return signed, expiresAt, nil
}

// parse verifies signature and expiry, then the purpose tag, translating
// jwt library errors into the domain's sentinel token errors.
func (s *jwtService) parse(tokenString, wantPurpose string) (*service.Claims, error) {
	claims := &service.Claims{}

	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		kid, _ := token.Header["kid"].(string)
		secret, ok := s.keys[kid]
		if !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}

		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, translateJWTError(err)
	}

	if claims.Purpose != wantPurpose {
		return nil, service.ErrTokenPurpose
	}

	return claims, nil
}

func translateJWTError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return service.ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return service.ErrTokenSignature
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		// Unknown kid or an unacceptable signing method; from the caller's
		// side this is a signature that cannot be verified.
		return service.ErrTokenSignature
	case errors.Is(err, jwt.ErrTokenMalformed):
		return service.ErrTokenMalformed
	default:
		return service.ErrTokenMalformed
	}
}
