// Package auth provides authentication configuration options.
package auth

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/bookrag-io/bookrag/pkg/options"
)

var _ options.IOptions = (*Options)(nil)

// Options contains JWT authentication configuration.
type Options struct {
	// Enabled toggles authentication on the API.
	Enabled bool `json:"enabled" mapstructure:"enabled"`

	// Key is the HMAC signing key. At least 32 bytes.
	Key string `json:"key" mapstructure:"key"`

	// Expired is the token lifetime.
	Expired time.Duration `json:"expired" mapstructure:"expired"`

	// Issuer is the token issuer.
	Issuer string `json:"issuer" mapstructure:"issuer"`
}

// NewOptions creates new Options with defaults. Authentication is off by
// default so local development works without a key.
func NewOptions() *Options {
	return &Options{
		Enabled: false,
		Expired: 24 * time.Hour,
		Issuer:  "bookrag",
	}
}

// AddFlags adds flags to the flagset.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	p := options.Join(prefixes...)
	fs.BoolVar(&o.Enabled, p+"auth.enabled", o.Enabled, "Enable JWT authentication on the API.")
	fs.StringVar(&o.Key, p+"auth.key", o.Key, "JWT HMAC signing key (at least 32 bytes).")
	fs.DurationVar(&o.Expired, p+"auth.expired", o.Expired, "Token lifetime.")
	fs.StringVar(&o.Issuer, p+"auth.issuer", o.Issuer, "Token issuer.")
}

// Validate validates the options.
func (o *Options) Validate() []error {
	if o == nil || !o.Enabled {
		return nil
	}

	var errs []error
	if len(o.Key) < 32 {
		errs = append(errs, fmt.Errorf("auth.key must be at least 32 bytes when auth is enabled"))
	}
	if o.Expired <= 0 {
		errs = append(errs, fmt.Errorf("auth.expired must be positive"))
	}
	return errs
}
