// Package cache provides answer cache configuration options.
package cache

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/bookrag-io/bookrag/pkg/options"
)

var _ options.IOptions = (*Options)(nil)

// Options contains Redis answer cache configuration.
type Options struct {
	// Enabled toggles the answer cache.
	Enabled bool `json:"enabled" mapstructure:"enabled"`

	// TTL is the cached answer lifetime.
	TTL time.Duration `json:"ttl" mapstructure:"ttl"`

	// KeyPrefix namespaces cache keys.
	KeyPrefix string `json:"key-prefix" mapstructure:"key-prefix"`

	// Addr is the Redis address (host:port).
	Addr string `json:"addr" mapstructure:"addr"`

	// Password is the Redis password.
	Password string `json:"password" mapstructure:"password"`

	// Database is the Redis database number.
	Database int `json:"database" mapstructure:"database"`
}

// NewOptions creates new Options with defaults. The cache is off by
// default; answers are cheap to regenerate during development.
func NewOptions() *Options {
	return &Options{
		Enabled:   false,
		TTL:       1 * time.Hour,
		KeyPrefix: "bookrag:answer:",
		Addr:      "localhost:6379",
	}
}

// AddFlags adds flags to the flagset.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	p := options.Join(prefixes...)
	fs.BoolVar(&o.Enabled, p+"cache.enabled", o.Enabled, "Enable the Redis answer cache.")
	fs.DurationVar(&o.TTL, p+"cache.ttl", o.TTL, "Cached answer lifetime.")
	fs.StringVar(&o.KeyPrefix, p+"cache.key-prefix", o.KeyPrefix, "Cache key prefix.")
	fs.StringVar(&o.Addr, p+"cache.addr", o.Addr, "Redis address (host:port).")
	fs.StringVar(&o.Password, p+"cache.password", o.Password, "Redis password.")
	fs.IntVar(&o.Database, p+"cache.database", o.Database, "Redis database number.")
}

// Validate validates the options.
func (o *Options) Validate() []error {
	if o == nil || !o.Enabled {
		return nil
	}

	var errs []error
	if o.Addr == "" {
		errs = append(errs, fmt.Errorf("cache.addr is required when cache is enabled"))
	}
	if o.TTL <= 0 {
		errs = append(errs, fmt.Errorf("cache.ttl must be positive"))
	}
	return errs
}
