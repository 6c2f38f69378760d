package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
)

const DefaultTokenTTL = 24 * time.Hour

var (
	ErrNoSecret = errors.New("token secret is not configured")

	// Unauthenticated kinds
	ErrUnauthenticated = errors.New("unauthorized access")
	ErrMalformed       = errors.New("malformed token")

	// Forbidden kinds
	ErrExpired          = errors.New("token expired")
	ErrInvalidSignature = errors.New("invalid token signature")
)

// Identity holds the claims the API reads from a verified payload
type Identity struct {
	Email string `mapstructure:"email"`
}

// TokenService issues and verifies HS256 bearer tokens carrying an
// arbitrary payload.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenService(secret string, ttl time.Duration) *TokenService {
	if ttl == 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// TTL returns the validity window of issued tokens
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Issue signs payload; exp and iat are always set by the server.
func (s *TokenService) Issue(payload map[string]interface{}) (string, error) {
	if len(s.secret) == 0 {
		return "", ErrNoSecret
	}
	now := s.now()
	claims := jwt.MapClaims{}
	for k, v := range payload {
		claims[k] = v
	}
	claims["iat"] = now.Unix()
	claims["exp"] = now.Add(s.ttl).Unix()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", errors.Wrap(err, "sign token")
	}
	return token, nil
}

// Verify checks the signature and expiry and returns the decoded payload.
func (s *TokenService) Verify(token string) (map[string]interface{}, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}
	if len(s.secret) == 0 {
		return nil, ErrNoSecret
	}

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	switch {
	case err == nil:
		return claims, nil
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, errors.Wrap(ErrExpired, err.Error())
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return nil, errors.Wrap(ErrInvalidSignature, err.Error())
	default:
		return nil, errors.Wrap(ErrMalformed, err.Error())
	}
}

// IsForbidden reports errors for a presented but rejected token
func IsForbidden(err error) bool {
	return errors.Is(err, ErrExpired) || errors.Is(err, ErrInvalidSignature)
}

// IsUnauthenticated reports errors for an absent or unreadable token
func IsUnauthenticated(err error) bool {
	return errors.Is(err, ErrUnauthenticated) || errors.Is(err, ErrMalformed)
}

// DecodeIdentity maps a verified payload onto Identity
func DecodeIdentity(payload map[string]interface{}) (Identity, error) {
	var id Identity
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &id,
	})
	if err != nil {
		return id, err
	}
	if err := decoder.Decode(payload); err != nil {
		return id, errors.Wrap(err, "decode identity")
	}
	return id, nil
}
