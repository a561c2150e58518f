package auth

import (
	"github.com/go-json-experiment/json"
	"errors"
	"fmt"
	"time"

	"aidanwoods.dev/go-paseto"

	"github.com/inkwellapp/inkwell-server/internal/domain"
	"github.com/inkwellapp/inkwell-server/internal/id"
)

const (
	tokenIssuer   = "inkwell-server"
	tokenAudience = "inkwell-client"

	// PASETO v4 symmetric key size.
	keyBytesSize = 32 // 256 bits
)

// Token verification failures. Callers map these onto the API error
// taxonomy; expiry is deliberately distinguishable from everything else.
var (
	// ErrTokenInvalid covers malformed, unparseable, or
	// signature-mismatched tokens.
	ErrTokenInvalid = errors.New("token invalid")
	// ErrTokenExpired means the token parsed and verified but its
	// expiry has passed.
	ErrTokenExpired = errors.New("token expired")
)

// TokenService handles PASETO token generation and verification.
//
// It carries no default token lifetime: every issue call supplies the
// intended ttl explicitly, so the advertised session length and the
// actual expiry can never drift apart.
type TokenService struct {
	symmetricKey paseto.V4SymmetricKey
}

// NewTokenService creates a new token service from a 32-byte symmetric key.
func NewTokenService(key []byte) (*TokenService, error) {
	if len(key) != keyBytesSize {
		return nil, fmt.Errorf("PASETO v4 key must be exactly %d bytes, got %d", keyBytesSize, len(key))
	}

	symmetricKey, err := paseto.V4SymmetricKeyFromBytes(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create PASETO symmetric key: %w", err)
	}

	return &TokenService{symmetricKey: symmetricKey}, nil
}

// GenerateAccessToken creates a new PASETO v4.local access token for the
// user, expiring ttl from now. The token is encrypted and carries the
// user's identity claims only; permissions are re-resolved from the
// credential store at validation time.
func (s *TokenService) GenerateAccessToken(user *domain.User, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		return "", fmt.Errorf("token ttl must be positive, got %s", ttl)
	}

	now := time.Now()

	token := paseto.NewToken()
	token.SetIssuer(tokenIssuer)
	token.SetSubject(user.ID)
	token.SetAudience(tokenAudience)
	token.SetIssuedAt(now)
	token.SetNotBefore(now)
	token.SetExpiration(now.Add(ttl))

	tokenID, err := id.Generate("token")
	if err != nil {
		return "", fmt.Errorf("generate token ID: %w", err)
	}
	token.SetJti(tokenID)

	// Identity claims.
	//nolint:errcheck // Token.Set only errors on invalid types, which we control
	_ = token.Set("user_id", user.ID)
	//nolint:errcheck // Token.Set only errors on invalid types, which we control
	_ = token.Set("email", user.Email)

	return token.V4Encrypt(s.symmetricKey, nil), nil
}

// VerifyAccessToken verifies and parses a PASETO access token.
// Returns the claims if valid, ErrTokenExpired if the token verified
// but has expired, or ErrTokenInvalid for anything else.
func (s *TokenService) VerifyAccessToken(tokenString string) (*AccessClaims, error) {
	// Parse with signature and issuer/audience rules only; expiry is
	// checked separately so callers can tell the two failures apart.
	// NewParser would fold expiry into the generic parse error.
	parser := paseto.NewParserWithoutExpiryCheck()
	parser.AddRule(paseto.ForAudience(tokenAudience))
	parser.AddRule(paseto.IssuedBy(tokenIssuer))

	token, err := parser.ParseV4Local(s.symmetricKey, tokenString, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	var claims AccessClaims
	if err := json.Unmarshal(token.ClaimsJSON(), &claims); err != nil {
		return nil, fmt.Errorf("%w: parse claims: %v", ErrTokenInvalid, err)
	}

	if claims.Email == "" {
		return nil, fmt.Errorf("%w: missing email claim", ErrTokenInvalid)
	}

	if time.Now().After(claims.Expiration) {
		return nil, ErrTokenExpired
	}

	return &claims, nil
}
