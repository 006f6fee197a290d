package identity

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"
)

const (
	// DefaultSigningMethod is the algorithm used by the production identity provider.
	DefaultSigningMethod = "RS256"

	// MinHMACKeyLength is the minimum shared secret length for HS* algorithms.
	MinHMACKeyLength = 32

	// DefaultLeeway tolerates small clock skew between the provider and this service.
	DefaultLeeway = 30 * time.Second
)

var supportedSigningMethods = map[string]bool{
	"HS256": true,
	"HS384": true,
	"HS512": true,
	"RS256": true,
	"RS384": true,
	"RS512": true,
	"ES256": true,
}

// Options configures identity token verification.
//
// Configuration Example (YAML):
//
//	identity:
//	  signing-method: "RS256"
//	  public-key: |
//	    -----BEGIN PUBLIC KEY-----
//	    ...
//	  issuer: "https://securetoken.google.com/datasphere"
//	  audience: ["datasphere"]
type Options struct {
	// SigningMethod is the expected JWT alg header.
	SigningMethod string `json:"signing-method" mapstructure:"signing-method"`

	// Key is the shared secret for HS* algorithms. Read from IDENTITY_KEY when empty.
	Key string `json:"-" mapstructure:"key"`

	// PublicKey is the PEM encoded public key for RS*/ES* algorithms.
	PublicKey string `json:"public-key" mapstructure:"public-key"`

	// Issuer, when set, must equal the iss claim.
	Issuer string `json:"issuer" mapstructure:"issuer"`

	// Audience, when set, must contain the aud claim.
	Audience []string `json:"audience" mapstructure:"audience"`

	// Leeway is the allowed clock skew for exp/nbf/iat checks.
	Leeway time.Duration `json:"leeway" mapstructure:"leeway"`
}

// NewOptions creates Options with default values.
func NewOptions() *Options {
	return &Options{
		SigningMethod: DefaultSigningMethod,
		Audience:      []string{},
		Leeway:        DefaultLeeway,
	}
}

// IsHMAC reports whether the configured algorithm uses a shared secret.
func (o *Options) IsHMAC() bool {
	return len(o.SigningMethod) > 2 && o.SigningMethod[:2] == "HS"
}

// Complete fills values that were not set.
func (o *Options) Complete() error {
	if o.SigningMethod == "" {
		o.SigningMethod = DefaultSigningMethod
	}
	if o.Key == "" {
		o.Key = os.Getenv("IDENTITY_KEY")
	}
	if o.Leeway < 0 {
		o.Leeway = 0
	}
	return nil
}

// Validate checks the options.
func (o *Options) Validate() error {
	if !supportedSigningMethods[o.SigningMethod] {
		return fmt.Errorf("unsupported identity signing method: %s", o.SigningMethod)
	}

	if o.IsHMAC() {
		if len(o.Key) < MinHMACKeyLength {
			return fmt.Errorf("identity key must be at least %d characters for %s, got: %d",
				MinHMACKeyLength, o.SigningMethod, len(o.Key))
		}
		return nil
	}

	if o.PublicKey == "" {
		return fmt.Errorf("identity public key is required for %s", o.SigningMethod)
	}
	return nil
}

// AddFlags adds flags for identity options to the specified FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.SigningMethod, "identity.signing-method", o.SigningMethod,
		"Expected identity token algorithm (HS256, HS384, HS512, RS256, RS384, RS512, ES256)")
	fs.StringVar(&o.Key, "identity.key", o.Key,
		"Shared secret for HS* algorithms (prefer IDENTITY_KEY env var)")
	fs.StringVar(&o.PublicKey, "identity.public-key", o.PublicKey,
		"PEM public key of the identity provider for RS*/ES* algorithms")
	fs.StringVar(&o.Issuer, "identity.issuer", o.Issuer,
		"Required iss claim")
	fs.StringSliceVar(&o.Audience, "identity.audience", o.Audience,
		"Accepted aud claim values")
	fs.DurationVar(&o.Leeway, "identity.leeway", o.Leeway,
		"Allowed clock skew when validating token times")
}
