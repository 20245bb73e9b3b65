package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/salesdesk/crm-api/internal/core/domain"
)

// Revoker records and queries token revocations by subject. A token is
// rejected when it was issued before the subject's last revocation mark.
type Revoker interface {
	// Revoke marks all tokens of subject issued before now as invalid.
	// The mark may expire after ttl since no token outlives its own exp.
	Revoke(ctx context.Context, subject string, ttl time.Duration) error
	// RevokedAt returns the most recent revocation mark for subject,
	// or ok=false when none exists.
	RevokedAt(ctx context.Context, subject string) (time.Time, bool, error)
}

// Claims is the decoded payload of a verified token.
type Claims struct {
	Subject   string
	Role      domain.Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenService issues and validates signed bearer tokens. Tokens are
// stateless: validity is a function of signature and expiry alone, except
// when a Revoker is attached, which adds a server-side revocation check.
type TokenService struct {
	secret  []byte
	ttl     time.Duration
	revoker Revoker
}

// NewTokenService builds a TokenService signing with secret and issuing
// tokens valid for ttl. revoker may be nil to disable revocation checks.
func NewTokenService(secret string, ttl time.Duration, revoker Revoker) *TokenService {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &TokenService{secret: []byte(secret), ttl: ttl, revoker: revoker}
}

// TTL returns the configured token lifetime.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Issue signs a token carrying the subject's identity and role at issuance
// time. A later role change does not touch already-issued tokens; that
// staleness window is bounded by the TTL.
func (s *TokenService) Issue(subject string, role domain.Role) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub":  subject,
		"role": string(role),
		"iat":  now.Unix(),
		"exp":  now.Add(s.ttl).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.secret)
}

// Verify checks signature, algorithm and expiry and returns the decoded
// claims. The exp claim is re-checked here even though the jwt library
// already validates it: a token without an exp claim must fail, and the
// contract does not lean on library defaults for that.
func (s *TokenService) Verify(ctx context.Context, token string) (*Claims, error) {
	mc := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, mc, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, domain.ErrInvalidToken
	}

	exp, err := mc.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, domain.ErrInvalidToken
	}
	if exp.Time.Before(time.Now()) {
		return nil, domain.ErrInvalidToken
	}

	sub, _ := mc["sub"].(string)
	role, _ := mc["role"].(string)
	if sub == "" || role == "" {
		return nil, domain.ErrInvalidToken
	}

	claims := &Claims{
		Subject:   sub,
		Role:      domain.Role(role),
		ExpiresAt: exp.Time,
	}
	if iat, err := mc.GetIssuedAt(); err == nil && iat != nil {
		claims.IssuedAt = iat.Time
	}

	if s.revoker != nil {
		mark, ok, err := s.revoker.RevokedAt(ctx, claims.Subject)
		if err != nil {
			return nil, err
		}
		if ok && !claims.IssuedAt.After(mark) {
			return nil, domain.ErrInvalidToken
		}
	}

	return claims, nil
}

// RevokeSubject invalidates every token of subject issued up to now.
// No-op when no Revoker is configured.
func (s *TokenService) RevokeSubject(ctx context.Context, subject string) error {
	if s.revoker == nil {
		return nil
	}
	return s.revoker.Revoke(ctx, subject, s.ttl)
}
