// Package ollamaopts provides options for Ollama client configuration.
package ollamaopts

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
)

// Options contains Ollama client configuration.
type Options struct {
	// BaseURL is the Ollama API base URL.
	BaseURL string `json:"base-url" mapstructure:"base-url"`

	// EmbedModel is the model for generating embeddings.
	EmbedModel string `json:"embed-model" mapstructure:"embed-model"`

	// PromptModel authors the second-stage prompt from the user query and
	// retrieved context.
	PromptModel string `json:"prompt-model" mapstructure:"prompt-model"`

	// AnswerModel produces the final answer from the authored prompt.
	AnswerModel string `json:"answer-model" mapstructure:"answer-model"`

	// Timeout for API requests.
	Timeout time.Duration `json:"timeout" mapstructure:"timeout"`
}

// NewOptions creates new Options with defaults.
func NewOptions() *Options {
	return &Options{
		BaseURL:     "http://localhost:11434",
		EmbedModel:  "nomic-embed-text",
		PromptModel: "llama3.1:8b",
		AnswerModel: "llama3.1:8b",
		Timeout:     120 * time.Second,
	}
}

// AddFlags adds flags to the flagset.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.BaseURL, "ollama.base-url", o.BaseURL, "Ollama API base URL")
	fs.StringVar(&o.EmbedModel, "ollama.embed-model", o.EmbedModel, "Model for embeddings")
	fs.StringVar(&o.PromptModel, "ollama.prompt-model", o.PromptModel, "Model that authors the answer prompt")
	fs.StringVar(&o.AnswerModel, "ollama.answer-model", o.AnswerModel, "Model that produces the final answer")
	fs.DurationVar(&o.Timeout, "ollama.timeout", o.Timeout, "Request timeout")
}

// Validate validates the options.
func (o *Options) Validate() error {
	if o.BaseURL == "" {
		return fmt.Errorf("ollama base-url is required")
	}
	if o.EmbedModel == "" {
		return fmt.Errorf("ollama embed-model is required")
	}
	if o.PromptModel == "" {
		return fmt.Errorf("ollama prompt-model is required")
	}
	if o.AnswerModel == "" {
		return fmt.Errorf("ollama answer-model is required")
	}
	if o.Timeout <= 0 {
		return fmt.Errorf("ollama timeout must be positive")
	}
	return nil
}
