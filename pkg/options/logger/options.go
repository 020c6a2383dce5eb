// Package logger provides logger configuration options.
package logger

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/bookrag-io/bookrag/pkg/log"
	"github.com/bookrag-io/bookrag/pkg/options"
)

var _ options.IOptions = (*Options)(nil)

// Options contains logger configuration.
type Options struct {
	// Level is the minimum log level (debug|info|warn|error).
	Level string `json:"level" mapstructure:"level"`

	// Format is the log output format (json|console).
	Format string `json:"format" mapstructure:"format"`

	// Development enables development mode.
	Development bool `json:"development" mapstructure:"development"`

	// DisableCaller disables caller detection.
	DisableCaller bool `json:"disable-caller" mapstructure:"disable-caller"`

	// OutputPaths are output paths for logs.
	OutputPaths []string `json:"output-paths" mapstructure:"output-paths"`

	initialFields map[string]any
}

// NewOptions creates new Options with defaults.
func NewOptions() *Options {
	return &Options{
		Level:       "info",
		Format:      "console",
		OutputPaths: []string{"stdout"},
	}
}

// AddFlags adds flags for logger options to the specified FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.StringVar(&o.Level, options.Join(prefixes...)+"log.level", o.Level, "Log level (debug|info|warn|error).")
	fs.StringVar(&o.Format, options.Join(prefixes...)+"log.format", o.Format, "Log format (json|console).")
	fs.BoolVar(&o.Development, options.Join(prefixes...)+"log.development", o.Development, "Enable development mode.")
	fs.BoolVar(&o.DisableCaller, options.Join(prefixes...)+"log.disable-caller", o.DisableCaller, "Disable caller detection.")
	fs.StringSliceVar(&o.OutputPaths, options.Join(prefixes...)+"log.output-paths", o.OutputPaths, "Output paths for logs.")
}

// Validate validates the logger options.
func (o *Options) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	switch o.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("log.format must be json or console, got %q", o.Format))
	}
	switch o.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level must be one of debug|info|warn|error, got %q", o.Level))
	}
	return errs
}

// AddInitialField adds a field attached to every log entry.
func (o *Options) AddInitialField(key string, value any) {
	if o.initialFields == nil {
		o.initialFields = make(map[string]any)
	}
	o.initialFields[key] = value
}

// Init initializes the global logger with the options.
func (o *Options) Init() error {
	return log.Init(&log.Config{
		Level:         o.Level,
		Format:        o.Format,
		Development:   o.Development,
		DisableCaller: o.DisableCaller,
		OutputPaths:   o.OutputPaths,
		InitialFields: o.initialFields,
	})
}
