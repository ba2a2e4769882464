// Package tokens issues and verifies the HS256 access and refresh tokens.
package tokens

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	AccessTokenTTL  = 10 * time.Minute
	RefreshTokenTTL = 48 * time.Hour

	// MinSecretLen is the HS256 key size in bytes.
	MinSecretLen = 32
)

// Claim names written into every token. They are part of the wire contract
// with clients and never change at runtime.
const (
	ClaimSubject = "sub"
	ClaimName    = "name"
	ClaimTokenID = "jti"
	ClaimRole    = "role"
)

var (
	ErrMissingConfig = errors.New("tokens: secret, issuer and audience are required")
	ErrWeakSecret    = fmt.Errorf("tokens: secret must be at least %d bytes", MinSecretLen)
	ErrInvalidToken  = errors.New("tokens: invalid token")
)

type Config struct {
	Secret   []byte
	Issuer   string
	Audience string
}

// Roles decodes the role claim from either a single string or an array.
type Roles []string

func (r *Roles) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*r = nil
		return nil
	}
	var one string
	if err := json.Unmarshal(b, &one); err == nil {
		*r = Roles{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(b, &many); err != nil {
		return err
	}
	*r = many
	return nil
}

type AccessClaims struct {
	Name  string `json:"name"`
	Roles Roles  `json:"role"`
	jwt.RegisteredClaims
}

type RefreshClaims struct {
	jwt.RegisteredClaims
}

// parsedClaims is the union of both token shapes; it lets each parser reject
// the other kind of token.
type parsedClaims struct {
	Name  string `json:"name,omitempty"`
	Roles Roles  `json:"role,omitempty"`
	jwt.RegisteredClaims
}

type Service struct {
	secret   []byte
	issuer   string
	audience string
	now      func() time.Time
	parser   *jwt.Parser
}

type Option func(*Service)

// WithClock replaces time.Now for issuing and for lifetime checks.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func New(cfg Config, opts ...Option) (*Service, error) {
	if len(cfg.Secret) == 0 || cfg.Issuer == "" || cfg.Audience == "" {
		return nil, ErrMissingConfig
	}
	if len(cfg.Secret) < MinSecretLen {
		return nil, ErrWeakSecret
	}

	s := &Service{
		secret:   append([]byte(nil), cfg.Secret...),
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(func() time.Time { return s.now() }),
	)
	return s, nil
}

func (s *Service) registered(subject string, ttl time.Duration) jwt.RegisteredClaims {
	now := s.now()
	return jwt.RegisteredClaims{
		Subject:   subject,
		ID:        uuid.NewString(),
		Issuer:    s.issuer,
		Audience:  jwt.ClaimStrings{s.audience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}

func (s *Service) sign(claims jwt.Claims) (string, error) {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// CreateAccessToken issues a short-lived token carrying the caller's roles.
func (s *Service) CreateAccessToken(username, userID string, roles []string) (string, error) {
	if userID == "" || username == "" {
		return "", fmt.Errorf("%w: empty subject or name", ErrInvalidToken)
	}
	claims := AccessClaims{
		Name:             username,
		Roles:            append(Roles{}, roles...),
		RegisteredClaims: s.registered(userID, AccessTokenTTL),
	}
	return s.sign(claims)
}

// CreateRefreshToken issues a long-lived token carrying only the subject.
func (s *Service) CreateRefreshToken(userID string) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("%w: empty subject", ErrInvalidToken)
	}
	return s.sign(RefreshClaims{RegisteredClaims: s.registered(userID, RefreshTokenTTL)})
}

func (s *Service) parse(raw string) (*parsedClaims, error) {
	var claims parsedClaims
	tkn, err := s.parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !tkn.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" || claims.ID == "" {
		return nil, fmt.Errorf("%w: missing %s or %s", ErrInvalidToken, ClaimSubject, ClaimTokenID)
	}
	return &claims, nil
}

// ParseAccessToken verifies signature, issuer, audience and expiry of an
// access token. Refresh tokens are rejected.
func (s *Service) ParseAccessToken(raw string) (*AccessClaims, error) {
	claims, err := s.parse(raw)
	if err != nil {
		return nil, err
	}
	if claims.Name == "" {
		return nil, fmt.Errorf("%w: missing %s", ErrInvalidToken, ClaimName)
	}
	return &AccessClaims{
		Name:             claims.Name,
		Roles:            claims.Roles,
		RegisteredClaims: claims.RegisteredClaims,
	}, nil
}

// TryParseRefreshToken reports whether raw is a valid refresh token issued
// by this service. It never panics and never returns an error value: every
// failure is (nil, false).
func (s *Service) TryParseRefreshToken(raw string) (claims *RefreshClaims, ok bool) {
	defer func() {
		if recover() != nil {
			claims, ok = nil, false
		}
	}()

	parsed, err := s.parse(raw)
	if err != nil {
		return nil, false
	}
	if parsed.Name != "" || len(parsed.Roles) > 0 {
		return nil, false
	}
	return &RefreshClaims{RegisteredClaims: parsed.RegisteredClaims}, true
}
