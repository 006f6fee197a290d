// Package identity verifies bearer tokens issued by the external identity
// provider and turns them into an Identity.
//
// The provider is treated as an oracle: it signs tokens, this package only
// checks them. Sign exists for local development and tests, where a shared
// HS256 secret stands in for the provider.
//
// Usage:
//
//	v, err := identity.NewJWTVerifier(opts)
//	if err != nil {
//	    return err
//	}
//	id, err := v.Verify(ctx, token)
package identity

import (
	"context"
	"crypto/x509"
	"encoding/pem"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/kart-io/datasphere/pkg/utils/errors"
)

// Identity is the verified subject of a token. It carries no role.
type Identity struct {
	UID     string `json:"uid"`
	Email   string `json:"email"`
	Name    string `json:"name,omitempty"`
	Picture string `json:"picture,omitempty"`
}

// Verifier verifies an identity token.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

// claims is the provider's token payload.
type claims struct {
	jwt.RegisteredClaims
	Email   string `json:"email,omitempty"`
	Name    string `json:"name,omitempty"`
	Picture string `json:"picture,omitempty"`
}

// JWTVerifier implements Verifier with golang-jwt.
type JWTVerifier struct {
	opts   *Options
	method jwt.SigningMethod
	key    interface{}
}

var _ Verifier = (*JWTVerifier)(nil)

// NewJWTVerifier creates a verifier from opts.
func NewJWTVerifier(opts *Options) (*JWTVerifier, error) {
	if opts == nil {
		opts = NewOptions()
	}
	if err := opts.Complete(); err != nil {
		return nil, fmt.Errorf("complete identity options: %w", err)
	}
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("validate identity options: %w", err)
	}

	method := jwt.GetSigningMethod(opts.SigningMethod)
	if method == nil {
		return nil, fmt.Errorf("unsupported signing method: %s", opts.SigningMethod)
	}

	key, err := verifyingKey(opts)
	if err != nil {
		return nil, err
	}

	return &JWTVerifier{opts: opts, method: method, key: key}, nil
}

// Verify parses and validates token. Every failure maps to ErrInvalidToken.
func (v *JWTVerifier) Verify(_ context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, errors.ErrMissingToken
	}

	parsed, err := jwt.ParseWithClaims(token, &claims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != v.method.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.key, nil
	})
	if err != nil && !v.withinLeeway(err, parsed) {
		return nil, errors.ErrInvalidToken.WithCause(err)
	}

	c, ok := parsed.Claims.(*claims)
	if !ok {
		return nil, errors.ErrInvalidToken
	}
	if c.Subject == "" {
		return nil, errors.ErrInvalidToken.WithCause(stderrors.New("missing sub claim"))
	}
	if v.opts.Issuer != "" && c.Issuer != v.opts.Issuer {
		return nil, errors.ErrInvalidToken.WithCause(fmt.Errorf("unexpected issuer %q", c.Issuer))
	}
	if len(v.opts.Audience) > 0 && !audienceMatches(c.Audience, v.opts.Audience) {
		return nil, errors.ErrInvalidToken.WithCause(fmt.Errorf("unexpected audience %v", c.Audience))
	}

	return &Identity{
		UID:     c.Subject,
		Email:   c.Email,
		Name:    c.Name,
		Picture: c.Picture,
	}, nil
}

// withinLeeway accepts a token whose only problem is a time claim that is off
// by less than the configured leeway.
func (v *JWTVerifier) withinLeeway(err error, parsed *jwt.Token) bool {
	var ve *jwt.ValidationError
	if v.opts.Leeway == 0 || parsed == nil || !stderrors.As(err, &ve) {
		return false
	}
	timeErrors := uint32(jwt.ValidationErrorExpired | jwt.ValidationErrorNotValidYet | jwt.ValidationErrorIssuedAt)
	if ve.Errors&^timeErrors != 0 {
		return false
	}

	c, ok := parsed.Claims.(*claims)
	if !ok {
		return false
	}
	now := time.Now()
	if c.ExpiresAt != nil && now.Sub(c.ExpiresAt.Time) > v.opts.Leeway {
		return false
	}
	if c.NotBefore != nil && c.NotBefore.Time.Sub(now) > v.opts.Leeway {
		return false
	}
	if c.IssuedAt != nil && c.IssuedAt.Time.Sub(now) > v.opts.Leeway {
		return false
	}
	return true
}

func audienceMatches(got jwt.ClaimStrings, accepted []string) bool {
	for _, a := range got {
		for _, b := range accepted {
			if a == b {
				return true
			}
		}
	}
	return false
}

func verifyingKey(opts *Options) (interface{}, error) {
	if opts.IsHMAC() {
		return []byte(opts.Key), nil
	}

	block, _ := pem.Decode([]byte(opts.PublicKey))
	if block == nil {
		return nil, errors.ErrBadRequest.WithMessage("invalid identity public key PEM format")
	}

	if strings.Contains(block.Type, "CERTIFICATE") {
		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, errors.ErrBadRequest.WithCause(err).WithMessage("failed to parse identity certificate")
		}
		return cert.PublicKey, nil
	}

	key, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, errors.ErrBadRequest.WithCause(err).WithMessage("failed to parse identity public key")
	}
	return key, nil
}

// Sign issues an HS* token for id. It only works with a shared secret and
// exists for development and tests.
func Sign(opts *Options, id *Identity, ttl time.Duration) (string, error) {
	if !opts.IsHMAC() {
		return "", fmt.Errorf("sign requires an HMAC signing method, got %s", opts.SigningMethod)
	}

	now := time.Now()
	c := &claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UID,
			Issuer:    opts.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email:   id.Email,
		Name:    id.Name,
		Picture: id.Picture,
	}
	if len(opts.Audience) > 0 {
		c.Audience = opts.Audience
	}

	return jwt.NewWithClaims(jwt.GetSigningMethod(opts.SigningMethod), c).SignedString([]byte(opts.Key))
}
