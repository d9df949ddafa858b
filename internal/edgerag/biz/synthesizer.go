package biz

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kart-io/edge-rag/internal/edgerag/metrics"
	"github.com/kart-io/edge-rag/pkg/component/ollama"
)

// Generator is the generation surface the synthesizer needs.
type Generator interface {
	Generate(ctx context.Context, in ollama.GenerateInput) (string, error)
}

// Stage sampling parameters. The prompt author runs cold for stability,
// the answer model runs warmer for fluency.
const (
	promptTemperature = 0.3
	promptMaxTokens   = 4096

	answerTemperature = 0.7
	answerTopP        = 0.9
	answerMaxTokens   = 16384
)

// fallbackContext replaces the retrieved context when no source survived
// retrieval and reranking.
const fallbackContext = "No relevant documents were found. Author a suitable prompt from the user question alone."

const promptAuthorTemplate = `You are a prompt generator. Your task is to author a high-quality prompt that will let an AI answer the user's question.

**User question:**
%s

**Background knowledge:**
%s

**Rules:**
1. If background knowledge is available, build the prompt on it first.
2. If there is no background knowledge, author a high-quality prompt on your own.
3. Make the prompt clear and structured, and have the AI answer in detail.
4. Keep the AI from refusing; have it offer a reasonable guess when unsure.
5. The AI is a single-turn model and must not ask the user questions back.
6. Avoid phrasings like "I don't know" or "I cannot answer".
7. Avoid phrasings like "could you".
8. Do not prompt the user for further input.
9. Do not produce a multi-part list of prompts.
10. You are writing a prompt for an AI, not answering the question yourself.

**Final prompt:**
`

// SynthesizerConfig selects the models for the two stages.
type SynthesizerConfig struct {
	PromptModel string
	AnswerModel string
}

// Synthesizer produces answers in two stages: a prompt-author model turns
// the query and retrieved context into a purpose-built prompt, then the
// answer model completes that prompt verbatim.
type Synthesizer struct {
	gen     Generator
	cfg     SynthesizerConfig
	metrics *metrics.Metrics
}

// NewSynthesizer creates a Synthesizer.
func NewSynthesizer(gen Generator, cfg SynthesizerConfig, m *metrics.Metrics) *Synthesizer {
	return &Synthesizer{gen: gen, cfg: cfg, metrics: m}
}

// BuildContext renders the prompt context from the reranked sources.
func BuildContext(sources []string) string {
	if len(sources) == 0 {
		return fallbackContext
	}
	return strings.Join(sources, "\n\n")
}

// Synthesize runs both generation stages and returns the final answer.
func (s *Synthesizer) Synthesize(ctx context.Context, query string, sources []string) (string, error) {
	stagePrompt := fmt.Sprintf(promptAuthorTemplate, query, BuildContext(sources))

	start := time.Now()
	authored, err := s.gen.Generate(ctx, ollama.GenerateInput{
		Model:       s.cfg.PromptModel,
		Prompt:      stagePrompt,
		Temperature: promptTemperature,
		MaxTokens:   promptMaxTokens,
	})
	s.observe(start)
	if err != nil {
		return "", fmt.Errorf("prompt generation failed: %w", err)
	}

	start = time.Now()
	answer, err := s.gen.Generate(ctx, ollama.GenerateInput{
		Model:       s.cfg.AnswerModel,
		Prompt:      authored,
		Temperature: answerTemperature,
		TopP:        answerTopP,
		MaxTokens:   answerMaxTokens,
	})
	s.observe(start)
	if err != nil {
		return "", fmt.Errorf("answer generation failed: %w", err)
	}

	return answer, nil
}

func (s *Synthesizer) observe(start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveGenerate(time.Since(start))
	}
}
