package biz

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/edge-rag/pkg/component/ollama"
)

type fakeGenerator struct {
	calls     []ollama.GenerateInput
	responses []string
	errs      []error
}

func (f *fakeGenerator) Generate(_ context.Context, in ollama.GenerateInput) (string, error) {
	i := len(f.calls)
	f.calls = append(f.calls, in)
	if i < len(f.errs) && f.errs[i] != nil {
		return "", f.errs[i]
	}
	if i < len(f.responses) {
		return f.responses[i], nil
	}
	return "", nil
}

func newTestSynthesizer(gen Generator) *Synthesizer {
	return NewSynthesizer(gen, SynthesizerConfig{
		PromptModel: "prompt-model",
		AnswerModel: "answer-model",
	}, nil)
}

func TestSynthesizeTwoStages(t *testing.T) {
	gen := &fakeGenerator{responses: []string{"authored prompt", "final answer"}}
	s := newTestSynthesizer(gen)

	answer, err := s.Synthesize(context.Background(), "when does the office open?", []string{
		"topic: siteInfo, content: The office opens at 9am.",
	})
	require.NoError(t, err)
	assert.Equal(t, "final answer", answer)

	require.Len(t, gen.calls, 2)

	stage1 := gen.calls[0]
	assert.Equal(t, "prompt-model", stage1.Model)
	assert.Contains(t, stage1.Prompt, "when does the office open?")
	assert.Contains(t, stage1.Prompt, "The office opens at 9am.")
	assert.InDelta(t, 0.3, stage1.Temperature, 1e-9)
	assert.Equal(t, 4096, stage1.MaxTokens)

	stage2 := gen.calls[1]
	assert.Equal(t, "answer-model", stage2.Model)
	// The authored prompt is forwarded verbatim, with nothing wrapped around it.
	assert.Equal(t, "authored prompt", stage2.Prompt)
	assert.InDelta(t, 0.7, stage2.Temperature, 1e-9)
	assert.InDelta(t, 0.9, stage2.TopP, 1e-9)
	assert.Equal(t, 16384, stage2.MaxTokens)
}

func TestSynthesizeFallbackContext(t *testing.T) {
	gen := &fakeGenerator{responses: []string{"p", "a"}}
	s := newTestSynthesizer(gen)

	_, err := s.Synthesize(context.Background(), "q", nil)
	require.NoError(t, err)

	require.Len(t, gen.calls, 2)
	assert.Contains(t, gen.calls[0].Prompt, "No relevant documents were found")
}

func TestSynthesizeStageOneFailure(t *testing.T) {
	gen := &fakeGenerator{errs: []error{errors.New("model offline")}}
	s := newTestSynthesizer(gen)

	_, err := s.Synthesize(context.Background(), "q", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "prompt generation failed")
	assert.Len(t, gen.calls, 1)
}

func TestSynthesizeStageTwoFailure(t *testing.T) {
	gen := &fakeGenerator{responses: []string{"p"}, errs: []error{nil, errors.New("model offline")}}
	s := newTestSynthesizer(gen)

	_, err := s.Synthesize(context.Background(), "q", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "answer generation failed")
}

func TestBuildContextJoinsWithBlankLines(t *testing.T) {
	got := BuildContext([]string{"a", "b", "c"})
	assert.Equal(t, "a\n\nb\n\nc", got)
	assert.Equal(t, 2, strings.Count(got, "\n\n"))
}
