// Package corsopts provides options for the CORS allow-list middleware.
package corsopts

import (
	"fmt"
	"regexp"

	"github.com/kart-io/edge-rag/pkg/options"
	"github.com/spf13/pflag"
)

var _ options.IOptions = (*Options)(nil)

// Options contains CORS configuration. Origins are matched against regular
// expressions so a single pattern can admit every subdomain of a site.
type Options struct {
	// OriginPatterns is the list of anchored regexes an Origin header must
	// match for CORS headers to be emitted.
	OriginPatterns []string `json:"origin-patterns" mapstructure:"origin-patterns"`
}

// NewOptions creates new Options with defaults. The defaults admit any
// https subdomain of the configured site plus localhost on any port for
// development.
func NewOptions() *Options {
	return &Options{
		OriginPatterns: []string{
			`^https://([a-z0-9-]+\.)*example\.com$`,
			`^http://localhost(:[0-9]+)?$`,
		},
	}
}

// AddFlags adds flags to the flagset.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.StringSliceVar(&o.OriginPatterns, options.Join(prefixes...)+"cors.origin-patterns", o.OriginPatterns, "Anchored origin regexes admitted by CORS")
}

// Validate validates the options.
func (o *Options) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	for _, p := range o.OriginPatterns {
		if _, err := regexp.Compile(p); err != nil {
			errs = append(errs, fmt.Errorf("invalid cors origin pattern %q: %w", p, err))
		}
	}
	return errs
}

// Compile returns the compiled origin patterns.
func (o *Options) Compile() ([]*regexp.Regexp, error) {
	patterns := make([]*regexp.Regexp, 0, len(o.OriginPatterns))
	for _, p := range o.OriginPatterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid cors origin pattern %q: %w", p, err)
		}
		patterns = append(patterns, re)
	}
	return patterns, nil
}
