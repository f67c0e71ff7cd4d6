// Package token issues and verifies the signed session tokens that carry
// identity and role claims. The codec is pure: the signing key and clock are
// injected at construction and no I/O happens here.
package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"ordena.org/internal/rbac"
)

var (
	// ErrMissing indicates no bearer token was presented.
	ErrMissing = errors.New("token: missing")
	// ErrMalformed indicates the token string is not structurally a JWT.
	ErrMalformed = errors.New("token: malformed")
	// ErrSignatureInvalid indicates the signature check failed.
	ErrSignatureInvalid = errors.New("token: invalid signature")
	// ErrExpired indicates the token expiry is in the past.
	ErrExpired = errors.New("token: expired")
	// ErrClaimsFormat indicates a required claim is absent or malformed.
	ErrClaimsFormat = errors.New("token: invalid claims format")
)

// Claims is the decoded key/value payload of a verified token.
type Claims map[string]any

// reserved claims are managed by the codec and cannot be overridden through
// the extra-claims map.
var reservedClaims = map[string]struct{}{
	"sub":   {},
	"iss":   {},
	"iat":   {},
	"exp":   {},
	"jti":   {},
	"roles": {},
}

// Codec signs and verifies compact HS256 tokens with a single shared key.
type Codec struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// Option configures a Codec.
type Option func(*Codec)

// WithIssuer sets the issuer claim stamped into and checked on tokens.
func WithIssuer(issuer string) Option {
	return func(c *Codec) { c.issuer = strings.TrimSpace(issuer) }
}

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) Option {
	return func(c *Codec) {
		if fn != nil {
			c.now = fn
		}
	}
}

// NewCodec constructs a codec around the injected signing key.
func NewCodec(secret []byte, opts ...Option) (*Codec, error) {
	if len(secret) == 0 {
		return nil, errors.New("token: signing key is required")
	}
	c := &Codec{secret: secret, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Issue signs a token for the subject whose roles claim is the stable
// authority list for each role, plus any extra claims such as firstname.
func (c *Codec) Issue(subject string, roles []rbac.Role, extra map[string]any, ttl time.Duration) (string, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return "", errors.New("token: subject is required")
	}
	if ttl <= 0 {
		return "", errors.New("token: ttl must be greater than zero")
	}

	authorities, err := mergeAuthorities(roles)
	if err != nil {
		return "", err
	}

	now := c.now().UTC()
	claims := jwt.MapClaims{
		"sub":   subject,
		"iat":   jwt.NewNumericDate(now),
		"exp":   jwt.NewNumericDate(now.Add(ttl)),
		"jti":   uuid.NewString(),
		"roles": authorities,
	}
	if c.issuer != "" {
		claims["iss"] = c.issuer
	}
	for k, v := range extra {
		if _, reserved := reservedClaims[k]; reserved {
			continue
		}
		claims[k] = v
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("token: sign: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and expiry and returns the decoded claims.
func (c *Codec) Verify(tokenString string) (Claims, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return nil, ErrMissing
	}
	if !strings.Contains(tokenString, ".") {
		return nil, ErrMalformed
	}

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
	}
	if c.issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(c.issuer))
	}

	parsed, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	}, parserOpts...)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrMalformed
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpired
		default:
			return nil, ErrSignatureInvalid
		}
	}

	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return nil, ErrSignatureInvalid
	}
	out := make(Claims, len(mapClaims))
	for k, v := range mapClaims {
		out[k] = v
	}
	return out, nil
}

func mergeAuthorities(roles []rbac.Role) ([]string, error) {
	seen := make(map[string]struct{})
	var out []string
	for _, role := range roles {
		authorities, err := rbac.AuthoritiesFor(role)
		if err != nil {
			return nil, err
		}
		for _, a := range authorities {
			if _, dup := seen[a]; dup {
				continue
			}
			seen[a] = struct{}{}
			out = append(out, a)
		}
	}
	if len(out) == 0 {
		return nil, errors.New("token: at least one role is required")
	}
	return out, nil
}
