// Package ratelimitopts provides options for the fixed-window rate limiter.
package ratelimitopts

import (
	"fmt"
	"time"

	"github.com/kart-io/edge-rag/pkg/options"
	"github.com/spf13/pflag"
)

var _ options.IOptions = (*Options)(nil)

// Options contains rate limiter configuration.
type Options struct {
	// Enabled toggles the limiter middleware.
	Enabled bool `json:"enabled" mapstructure:"enabled"`

	// MaxRequests is the number of requests admitted per window and key.
	MaxRequests int `json:"max-requests" mapstructure:"max-requests"`

	// Window is the fixed window length.
	Window time.Duration `json:"window" mapstructure:"window"`

	// KeyPrefix namespaces counter keys in the shared store.
	KeyPrefix string `json:"key-prefix" mapstructure:"key-prefix"`
}

// NewOptions creates new Options with defaults.
func NewOptions() *Options {
	return &Options{
		Enabled:     true,
		MaxRequests: 120,
		Window:      60 * time.Second,
		KeyPrefix:   "rate_limit",
	}
}

// AddFlags adds flags to the flagset.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.BoolVar(&o.Enabled, options.Join(prefixes...)+"ratelimit.enabled", o.Enabled, "Enable the rate limiter middleware")
	fs.IntVar(&o.MaxRequests, options.Join(prefixes...)+"ratelimit.max-requests", o.MaxRequests, "Requests admitted per window and key")
	fs.DurationVar(&o.Window, options.Join(prefixes...)+"ratelimit.window", o.Window, "Fixed window length")
	fs.StringVar(&o.KeyPrefix, options.Join(prefixes...)+"ratelimit.key-prefix", o.KeyPrefix, "Counter key prefix in the shared store")
}

// Validate validates the options.
func (o *Options) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	if o.MaxRequests <= 0 {
		errs = append(errs, fmt.Errorf("ratelimit max-requests must be positive"))
	}
	if o.Window < time.Second {
		errs = append(errs, fmt.Errorf("ratelimit window must be at least one second"))
	}
	if o.KeyPrefix == "" {
		errs = append(errs, fmt.Errorf("ratelimit key-prefix is required"))
	}
	return errs
}
