// Package database provides relational database configuration options.
package database

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/bookrag-io/bookrag/pkg/options"
)

var _ options.IOptions = (*Options)(nil)

// Options contains relational database configuration.
// Only sqlite is supported; the chapter catalog and query log are small.
type Options struct {
	// Path is the sqlite database file. ":memory:" runs fully in memory.
	Path string `json:"path" mapstructure:"path"`

	// AutoMigrate runs schema migration at startup.
	AutoMigrate bool `json:"auto-migrate" mapstructure:"auto-migrate"`
}

// NewOptions creates new Options with defaults.
func NewOptions() *Options {
	return &Options{
		Path:        "_output/bookrag.db",
		AutoMigrate: true,
	}
}

// AddFlags adds flags to the flagset.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.StringVar(&o.Path, options.Join(prefixes...)+"db.path", o.Path, "SQLite database file path.")
	fs.BoolVar(&o.AutoMigrate, options.Join(prefixes...)+"db.auto-migrate", o.AutoMigrate, "Run schema migration at startup.")
}

// Validate validates the options.
func (o *Options) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	if o.Path == "" {
		errs = append(errs, fmt.Errorf("db.path is required"))
	}
	return errs
}
