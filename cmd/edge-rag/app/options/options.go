// Package options contains flags and options for initializing the edge-rag
// server.
package options

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/kart-io/edge-rag/internal/edgerag"
	corsopts "github.com/kart-io/edge-rag/pkg/options/cors"
	logopts "github.com/kart-io/edge-rag/pkg/options/logger"
	milvusopts "github.com/kart-io/edge-rag/pkg/options/milvus"
	ollamaopts "github.com/kart-io/edge-rag/pkg/options/ollama"
	ratelimitopts "github.com/kart-io/edge-rag/pkg/options/ratelimit"
	redisopts "github.com/kart-io/edge-rag/pkg/options/redis"
)

// ServerOptions contains the configuration options for the server.
type ServerOptions struct {
	// Addr is the HTTP listen address.
	Addr string `json:"addr" mapstructure:"addr"`

	// ShutdownTimeout is the timeout for graceful shutdown.
	ShutdownTimeout time.Duration `json:"shutdown-timeout" mapstructure:"shutdown-timeout"`

	// NotesPath is the sqlite file for the notes store.
	NotesPath string `json:"notes-path" mapstructure:"notes-path"`

	// Log contains logger configuration.
	Log *logopts.Options `json:"log" mapstructure:"log"`

	// Milvus contains vector index configuration.
	Milvus *milvusopts.Options `json:"milvus" mapstructure:"milvus"`

	// Redis contains the shared counter and log store configuration.
	Redis *redisopts.Options `json:"redis" mapstructure:"redis"`

	// Ollama contains embedding and generation configuration.
	Ollama *ollamaopts.Options `json:"ollama" mapstructure:"ollama"`

	// RateLimit contains rate limiter configuration.
	RateLimit *ratelimitopts.Options `json:"ratelimit" mapstructure:"ratelimit"`

	// CORS contains the origin allow-list configuration.
	CORS *corsopts.Options `json:"cors" mapstructure:"cors"`
}

// NewServerOptions creates a ServerOptions instance with default values.
func NewServerOptions() *ServerOptions {
	return &ServerOptions{
		Addr:            ":8080",
		ShutdownTimeout: 30 * time.Second,
		NotesPath:       "edge-rag-notes.db",
		Log:             logopts.NewOptions(),
		Milvus:          milvusopts.NewOptions(),
		Redis:           redisopts.NewOptions(),
		Ollama:          ollamaopts.NewOptions(),
		RateLimit:       ratelimitopts.NewOptions(),
		CORS:            corsopts.NewOptions(),
	}
}

// AddFlags registers all flags.
func (o *ServerOptions) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Addr, "addr", o.Addr, "HTTP listen address")
	fs.DurationVar(&o.ShutdownTimeout, "shutdown-timeout", o.ShutdownTimeout, "Graceful shutdown timeout")
	fs.StringVar(&o.NotesPath, "notes-path", o.NotesPath, "Path to the sqlite notes database")

	o.Log.AddFlags(fs)
	o.Milvus.AddFlags(fs)
	o.Redis.AddFlags(fs)
	o.Ollama.AddFlags(fs)
	o.RateLimit.AddFlags(fs)
	o.CORS.AddFlags(fs)
}

// Complete completes all the required options.
func (o *ServerOptions) Complete() error {
	return nil
}

// Validate checks whether the options are valid.
func (o *ServerOptions) Validate() error {
	var errs []error

	if o.Addr == "" {
		errs = append(errs, fmt.Errorf("addr is required"))
	}
	if o.NotesPath == "" {
		errs = append(errs, fmt.Errorf("notes-path is required"))
	}

	if err := o.Log.Validate(); err != nil {
		errs = append(errs, err)
	}
	errs = append(errs, o.Milvus.Validate()...)
	if err := o.Redis.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := o.Ollama.Validate(); err != nil {
		errs = append(errs, err)
	}
	errs = append(errs, o.RateLimit.Validate()...)
	errs = append(errs, o.CORS.Validate()...)

	return errors.Join(errs...)
}

// Config builds an edgerag.Config from the options.
func (o *ServerOptions) Config() (*edgerag.Config, error) {
	return &edgerag.Config{
		Addr:             o.Addr,
		ShutdownTimeout:  o.ShutdownTimeout,
		NotesPath:        o.NotesPath,
		LogOptions:       o.Log,
		MilvusOptions:    o.Milvus,
		RedisOptions:     o.Redis,
		OllamaOptions:    o.Ollama,
		RateLimitOptions: o.RateLimit,
		CORSOptions:      o.CORS,
	}, nil
}
