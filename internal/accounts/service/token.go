package service

import (
	"time"

	"github.com/minhkq1998/SampleJWT/internal/accounts/domain"
	"github.com/minhkq1998/SampleJWT/pkg/jwtx"
)

// TokenService issues and validates the stateless bearer tokens. A token's
// validity is determined entirely by its signature and expiry; nothing is
// persisted and nothing can be revoked early.
type TokenService struct {
	Signer   jwtx.Signer
	Verifier jwtx.Verifier
	Issuer   string
	TTL      time.Duration
}

// Issue signs a fresh token for the user with subject=username.
func (s *TokenService) Issue(u domain.User) (string, error) {
	ttl := s.TTL
	if ttl <= 0 {
		ttl = jwtx.DefaultTokenTTL
	}
	claims := jwtx.NewAccessClaims(u.Username, u.ID, u.Email, ttl, s.Issuer, time.Now())
	return s.Signer.Sign(claims)
}

// Validate reports whether the token carries a good signature and is inside
// its validity window. Every failure mode collapses to false; callers get no
// detail about why a token was rejected.
func (s *TokenService) Validate(token string) bool {
	_, err := s.Verifier.Verify(token)
	return err == nil
}
