// Package jwt provides JWT configuration options for Aegis.
//
// Configuration Example (YAML):
//
//	jwt:
//	  key: "your-secret-key-min-32-chars-long"
//	  expired: "2h"
//	  issuer: "aegis"
package jwt

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"
)

const (
	// DefaultExpired is the default token expiration time.
	DefaultExpired = 2 * time.Hour

	// DefaultIssuer is the default token issuer.
	DefaultIssuer = "aegis"

	// MinKeyLength is the minimum required key length for HMAC signing.
	MinKeyLength = 32
)

// Options contains JWT configuration.
type Options struct {
	// Key is the HMAC secret used to sign tokens.
	Key string `json:"-" mapstructure:"key"`

	// Expired is the token (and role-cache entry) lifetime.
	Expired time.Duration `json:"expired" mapstructure:"expired"`

	// Issuer is the "iss" claim.
	Issuer string `json:"issuer" mapstructure:"issuer"`
}

// NewOptions creates a new Options object with default values.
func NewOptions() *Options {
	return &Options{
		Expired: DefaultExpired,
		Issuer:  DefaultIssuer,
	}
}

// Validate checks if the options are valid.
func (o *Options) Validate() error {
	if o.Key == "" {
		o.Key = os.Getenv("AEGIS_JWT_KEY")
	}
	if len(o.Key) < MinKeyLength {
		return fmt.Errorf("jwt key must be at least %d characters", MinKeyLength)
	}
	if o.Expired <= 0 {
		return fmt.Errorf("jwt expired must be positive")
	}
	return nil
}

// AddFlags adds flags for JWT options to the specified FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Key, "jwt.key", o.Key, "JWT signing key (prefer AEGIS_JWT_KEY env var)")
	fs.DurationVar(&o.Expired, "jwt.expired", o.Expired, "JWT token expiration duration")
	fs.StringVar(&o.Issuer, "jwt.issuer", o.Issuer, "JWT token issuer")
}
