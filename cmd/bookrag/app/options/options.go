// Package options contains flags and options for initializing the
// bookrag server.
package options

import (
	"errors"
	"time"

	"github.com/spf13/pflag"

	"github.com/bookrag-io/bookrag/internal/bookrag"
	authopts "github.com/bookrag-io/bookrag/pkg/options/auth"
	cacheopts "github.com/bookrag-io/bookrag/pkg/options/cache"
	dbopts "github.com/bookrag-io/bookrag/pkg/options/database"
	llmopts "github.com/bookrag-io/bookrag/pkg/options/llm"
	logopts "github.com/bookrag-io/bookrag/pkg/options/logger"
	milvusopts "github.com/bookrag-io/bookrag/pkg/options/milvus"
	ragopts "github.com/bookrag-io/bookrag/pkg/options/rag"
	httpopts "github.com/bookrag-io/bookrag/pkg/options/server/http"
)

// ServerOptions contains the configuration options for the server.
type ServerOptions struct {
	// HTTPOptions contains HTTP server configuration.
	HTTPOptions *httpopts.Options `json:"http" mapstructure:"http"`

	// LogOptions contains logger configuration.
	LogOptions *logopts.Options `json:"log" mapstructure:"log"`

	// MilvusOptions contains Milvus configuration.
	MilvusOptions *milvusopts.Options `json:"milvus" mapstructure:"milvus"`

	// DatabaseOptions contains sqlite configuration.
	DatabaseOptions *dbopts.Options `json:"db" mapstructure:"db"`

	// EmbeddingOptions contains embedding provider configuration.
	EmbeddingOptions *llmopts.ProviderOptions `json:"embedding" mapstructure:"embedding"`

	// ChatOptions contains chat provider configuration.
	ChatOptions *llmopts.ProviderOptions `json:"chat" mapstructure:"chat"`

	// RAGOptions contains retrieval pipeline configuration.
	RAGOptions *ragopts.Options `json:"rag" mapstructure:"rag"`

	// AuthOptions contains authentication configuration.
	AuthOptions *authopts.Options `json:"auth" mapstructure:"auth"`

	// CacheOptions contains answer cache configuration.
	CacheOptions *cacheopts.Options `json:"cache" mapstructure:"cache"`

	// MemoryStore swaps Milvus for the in-process vector store.
	MemoryStore bool `json:"memory-store" mapstructure:"memory-store"`

	// ShutdownTimeout is the timeout for graceful shutdown.
	ShutdownTimeout time.Duration `json:"shutdown-timeout" mapstructure:"shutdown-timeout"`
}

// NewServerOptions creates a ServerOptions instance with default values.
func NewServerOptions() *ServerOptions {
	return &ServerOptions{
		HTTPOptions:      httpopts.NewOptions(),
		LogOptions:       logopts.NewOptions(),
		MilvusOptions:    milvusopts.NewOptions(),
		DatabaseOptions:  dbopts.NewOptions(),
		EmbeddingOptions: llmopts.NewEmbeddingOptions(),
		ChatOptions:      llmopts.NewChatOptions(),
		RAGOptions:       ragopts.NewOptions(),
		AuthOptions:      authopts.NewOptions(),
		CacheOptions:     cacheopts.NewOptions(),
		ShutdownTimeout:  30 * time.Second,
	}
}

// Flags adds all server flags to the flagset.
func (o *ServerOptions) Flags(fs *pflag.FlagSet) {
	o.HTTPOptions.AddFlags(fs)
	o.LogOptions.AddFlags(fs)
	o.MilvusOptions.AddFlags(fs)
	o.DatabaseOptions.AddFlags(fs)
	o.EmbeddingOptions.AddFlags(fs, "embedding.")
	o.ChatOptions.AddFlags(fs, "chat.")
	o.RAGOptions.AddFlags(fs, "rag.")
	o.AuthOptions.AddFlags(fs)
	o.CacheOptions.AddFlags(fs)

	fs.BoolVar(&o.MemoryStore, "memory-store", o.MemoryStore, "Use the in-process vector store instead of Milvus.")
	fs.DurationVar(&o.ShutdownTimeout, "shutdown-timeout", o.ShutdownTimeout, "Graceful shutdown timeout.")
}

// Complete completes all the required options.
func (o *ServerOptions) Complete() error {
	// The in-memory store does not need a reachable Milvus.
	if o.MemoryStore {
		o.MilvusOptions.Address = ""
	}
	return nil
}

// Validate checks whether the options in ServerOptions are valid.
func (o *ServerOptions) Validate() error {
	var errs []error

	errs = append(errs, o.HTTPOptions.Validate()...)
	errs = append(errs, o.LogOptions.Validate()...)
	if !o.MemoryStore {
		errs = append(errs, o.MilvusOptions.Validate()...)
	}
	errs = append(errs, o.DatabaseOptions.Validate()...)
	errs = append(errs, o.EmbeddingOptions.Validate()...)
	errs = append(errs, o.ChatOptions.Validate()...)
	errs = append(errs, o.RAGOptions.Validate()...)
	errs = append(errs, o.AuthOptions.Validate()...)
	errs = append(errs, o.CacheOptions.Validate()...)

	return errors.Join(errs...)
}

// Config builds a bookrag.Config based on ServerOptions.
func (o *ServerOptions) Config() (*bookrag.Config, error) {
	return &bookrag.Config{
		HTTPOptions:      o.HTTPOptions,
		LogOptions:       o.LogOptions,
		MilvusOptions:    o.MilvusOptions,
		DatabaseOptions:  o.DatabaseOptions,
		EmbeddingOptions: o.EmbeddingOptions,
		ChatOptions:      o.ChatOptions,
		RAGOptions:       o.RAGOptions,
		AuthOptions:      o.AuthOptions,
		CacheOptions:     o.CacheOptions,
		MemoryStore:      o.MemoryStore,
		ShutdownTimeout:  o.ShutdownTimeout,
	}, nil
}
