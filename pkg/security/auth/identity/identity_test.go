package identity

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/datasphere/pkg/utils/errors"
)

const testKey = "datasphere-test-secret-0123456789abcdef"

func hmacOptions() *Options {
	opts := NewOptions()
	opts.SigningMethod = "HS256"
	opts.Key = testKey
	opts.Issuer = "datasphere-test"
	opts.Leeway = 0
	return opts
}

func TestOptions_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(o *Options)
		wantErr bool
	}{
		{"hmac with long key", func(o *Options) { o.SigningMethod = "HS256"; o.Key = testKey }, false},
		{"hmac with short key", func(o *Options) { o.SigningMethod = "HS256"; o.Key = "short" }, true},
		{"rsa without public key", func(o *Options) { o.SigningMethod = "RS256" }, true},
		{"rsa with public key", func(o *Options) { o.SigningMethod = "RS256"; o.PublicKey = "pem" }, false},
		{"unsupported method", func(o *Options) { o.SigningMethod = "none" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := NewOptions()
			tt.mutate(o)
			err := o.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestJWTVerifier_HMAC(t *testing.T) {
	opts := hmacOptions()
	v, err := NewJWTVerifier(opts)
	require.NoError(t, err)

	ctx := context.Background()
	want := &Identity{UID: "uid-1", Email: "a@example.com", Name: "Ada"}

	valid, err := Sign(opts, want, time.Hour)
	require.NoError(t, err)

	expired, err := Sign(opts, want, -time.Hour)
	require.NoError(t, err)

	otherOpts := hmacOptions()
	otherOpts.Key = "another-secret-another-secret-another"
	forged, err := Sign(otherOpts, want, time.Hour)
	require.NoError(t, err)

	wrongIssuerOpts := hmacOptions()
	wrongIssuerOpts.Issuer = "somebody-else"
	wrongIssuer, err := Sign(wrongIssuerOpts, want, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name     string
		token    string
		wantCode int
	}{
		{"valid", valid, 0},
		{"empty", "", errors.ErrMissingToken.Code},
		{"garbage", "not-a-token", errors.ErrInvalidToken.Code},
		{"expired", expired, errors.ErrInvalidToken.Code},
		{"forged signature", forged, errors.ErrInvalidToken.Code},
		{"wrong issuer", wrongIssuer, errors.ErrInvalidToken.Code},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := v.Verify(ctx, tt.token)
			if tt.wantCode == 0 {
				require.NoError(t, err)
				assert.Equal(t, want, got)
				return
			}
			assert.Nil(t, got)
			assert.True(t, errors.IsCode(err, tt.wantCode), "got %v", err)
		})
	}
}

func TestJWTVerifier_Leeway(t *testing.T) {
	opts := hmacOptions()
	opts.Leeway = time.Minute
	v, err := NewJWTVerifier(opts)
	require.NoError(t, err)

	recent, err := Sign(opts, &Identity{UID: "uid-1"}, -10*time.Second)
	require.NoError(t, err)
	_, err = v.Verify(context.Background(), recent)
	assert.NoError(t, err)

	old, err := Sign(opts, &Identity{UID: "uid-1"}, -time.Hour)
	require.NoError(t, err)
	_, err = v.Verify(context.Background(), old)
	assert.Error(t, err)
}

func TestJWTVerifier_RSA(t *testing.T) {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	require.NoError(t, err)

	opts := NewOptions()
	opts.PublicKey = string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}))
	opts.Audience = []string{"datasphere"}
	v, err := NewJWTVerifier(opts)
	require.NoError(t, err)

	sign := func(aud string, method jwt.SigningMethod, key interface{}) string {
		c := &claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "uid-rsa",
				Audience:  jwt.ClaimStrings{aud},
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
			Email: "r@example.com",
		}
		s, err := jwt.NewWithClaims(method, c).SignedString(key)
		require.NoError(t, err)
		return s
	}

	got, err := v.Verify(context.Background(), sign("datasphere", jwt.SigningMethodRS256, priv))
	require.NoError(t, err)
	assert.Equal(t, "uid-rsa", got.UID)
	assert.Equal(t, "r@example.com", got.Email)

	_, err = v.Verify(context.Background(), sign("other", jwt.SigningMethodRS256, priv))
	assert.True(t, errors.IsCode(err, errors.ErrInvalidToken.Code))

	// An HS256 token signed with the public key bytes must not pass as RS256.
	_, err = v.Verify(context.Background(), sign("datasphere", jwt.SigningMethodHS256, []byte(opts.PublicKey)))
	assert.True(t, errors.IsCode(err, errors.ErrInvalidToken.Code))
}

func TestSign_RequiresHMAC(t *testing.T) {
	_, err := Sign(NewOptions(), &Identity{UID: "x"}, time.Hour)
	assert.Error(t, err)
}
