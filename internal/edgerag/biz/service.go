package biz

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kart-io/logger"

	"github.com/kart-io/edge-rag/internal/edgerag/metrics"
	"github.com/kart-io/edge-rag/internal/edgerag/store"
	"github.com/kart-io/edge-rag/internal/model"
	"github.com/kart-io/edge-rag/pkg/component/ollama"
)

// Pipeline constants from the deployed handler. The answer path demands
// closer matches than the raw retrieval path.
const (
	searchTopK         = 5
	answerScoreFloor   = 0.7
	retrieveScoreFloor = 0.5

	// siteInfoNamespace holds single facts injected through SetFact.
	siteInfoNamespace = "siteInfo"

	// defaultSubject means "search everywhere", same as an empty subject.
	defaultSubject = "default"
)

// ErrDimensionMismatch marks caller-supplied vectors whose dimension does
// not match the index. The whole batch is rejected before any write.
var ErrDimensionMismatch = errors.New("vector dimension mismatch")

// ErrEmptyAnswer is returned when the model produced no output.
var ErrEmptyAnswer = errors.New("empty answer from model")

// Embedder is the embedding surface of the pipeline.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedSingle(ctx context.Context, text string) ([]float32, error)
}

// ServiceConfig configures the pipeline service.
type ServiceConfig struct {
	// Dimension is the embedding dimension the index expects.
	Dimension int

	// AskModel answers the simple QA route.
	AskModel string
}

// Service orchestrates the answer pipeline and the ingestion operations.
type Service struct {
	embedder Embedder
	vectors  store.VectorStore
	notes    *store.NotesStore
	synth    *Synthesizer
	gen      Generator
	reqlog   *RequestLogger
	metrics  *metrics.Metrics
	cfg      ServiceConfig
}

// NewService creates the pipeline service.
func NewService(
	embedder Embedder,
	vectors store.VectorStore,
	notes *store.NotesStore,
	synth *Synthesizer,
	gen Generator,
	reqlog *RequestLogger,
	m *metrics.Metrics,
	cfg ServiceConfig,
) *Service {
	return &Service{
		embedder: embedder,
		vectors:  vectors,
		notes:    notes,
		synth:    synth,
		gen:      gen,
		reqlog:   reqlog,
		metrics:  m,
		cfg:      cfg,
	}
}

// Answer runs the full pipeline: embed the query, retrieve and rerank
// matching documents, synthesize an answer in two stages, and append the
// request log entry. Log failures never fail the request.
func (s *Service) Answer(ctx context.Context, query, subject string) (*model.PipelineResult, error) {
	s.metrics.IncRagRequest()
	startedAt := time.Now()

	vector, err := s.embedder.EmbedSingle(ctx, query)
	if err != nil {
		s.metrics.IncRagError()
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	namespace := subject
	if namespace == defaultSubject {
		namespace = ""
	}

	candidates, err := s.vectors.Search(ctx, vector, searchTopK, namespace)
	if err != nil {
		s.metrics.IncRagError()
		return nil, err
	}

	ranked := Rerank(query, candidates, answerScoreFloor, searchTopK)
	sources := make([]string, len(ranked))
	for i, r := range ranked {
		sources[i] = r.Render()
	}
	if len(ranked) == 0 {
		logger.Infow("no documents cleared the rerank, answering from model knowledge", "query", query)
	}

	answer, err := s.synth.Synthesize(ctx, query, sources)
	if err != nil {
		s.metrics.IncRagError()
		return nil, err
	}

	result := &model.PipelineResult{Answer: answer, Sources: sources}

	if err := s.reqlog.Log(ctx, model.LogEntry{
		Timestamp: startedAt.UTC(),
		Query:     query,
		Result:    result,
	}); err != nil {
		s.metrics.IncLogFailure()
		logger.Warnw("request log write failed", "error", err.Error())
	} else {
		s.metrics.IncLogWrite()
	}

	return result, nil
}

// Retrieve returns raw matches above the retrieval floor, without
// reranking or generation.
func (s *Service) Retrieve(ctx context.Context, query string) ([]model.Candidate, error) {
	s.metrics.IncRetrieveRequest()

	vector, err := s.embedder.EmbedSingle(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	candidates, err := s.vectors.Search(ctx, vector, searchTopK, "")
	if err != nil {
		return nil, err
	}

	kept := make([]model.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Score >= retrieveScoreFloor {
			kept = append(kept, c)
		}
	}
	return kept, nil
}

// InsertBatch upserts caller-supplied vectors in a single call and mirrors
// the texts into the notes store. Any dimension mismatch rejects the whole
// batch before anything is written.
func (s *Service) InsertBatch(ctx context.Context, items []model.VectorItem) (int, error) {
	s.metrics.IncInsertRequest()

	for _, item := range items {
		if len(item.Values) != s.cfg.Dimension {
			return 0, fmt.Errorf("%w: item %s has %d values, index expects %d",
				ErrDimensionMismatch, item.ID, len(item.Values), s.cfg.Dimension)
		}
	}

	if err := s.vectors.Upsert(ctx, items); err != nil {
		return 0, err
	}

	s.saveNotes(ctx, items)
	return len(items), nil
}

// SetFact embeds a single key/value fact into the site-info namespace.
func (s *Service) SetFact(ctx context.Context, key, value string) (int, error) {
	s.metrics.IncSetRequest()

	vector, err := s.embedder.EmbedSingle(ctx, value)
	if err != nil {
		return 0, fmt.Errorf("failed to embed value: %w", err)
	}

	items := []model.VectorItem{{
		ID:        key,
		Values:    vector,
		Text:      value,
		Namespace: siteInfoNamespace,
	}}

	if err := s.vectors.Upsert(ctx, items); err != nil {
		return 0, err
	}

	s.saveNotes(ctx, items)
	return len(items), nil
}

// saveNotes mirrors ingested texts to the relational store. Failures are
// logged and swallowed; the vector index stays the source of truth.
func (s *Service) saveNotes(ctx context.Context, items []model.VectorItem) {
	if s.notes == nil {
		return
	}
	notes := make([]model.Note, len(items))
	for i, item := range items {
		notes[i] = model.Note{ID: item.ID, Text: item.Text}
	}
	if err := s.notes.Save(ctx, notes); err != nil {
		logger.Warnw("failed to mirror texts to notes store", "error", err.Error())
	}
}

// Ask answers a single question against the top vector match, resolving
// the matched ID through the notes store for its full text. It returns the
// answer and the model that produced it.
func (s *Service) Ask(ctx context.Context, question string) (string, string, error) {
	s.metrics.IncAskRequest()

	vector, err := s.embedder.EmbedSingle(ctx, question)
	if err != nil {
		return "", "", fmt.Errorf("failed to embed question: %w", err)
	}

	matches, err := s.vectors.Search(ctx, vector, 1, "")
	if err != nil {
		return "", "", err
	}

	var contextMessage string
	if len(matches) > 0 && s.notes != nil {
		note, err := s.notes.GetByID(ctx, matches[0].ID)
		if err != nil {
			logger.Warnw("notes lookup failed", "id", matches[0].ID, "error", err.Error())
		} else if note != nil {
			contextMessage = "Context:\n- " + note.Text
		}
	}

	system := "When answering the question or responding, use the context provided, if it is provided and relevant."
	if contextMessage != "" {
		system = contextMessage + "\n\n" + system
	}

	answer, err := s.gen.Generate(ctx, ollama.GenerateInput{
		Model:  s.cfg.AskModel,
		Prompt: question,
		System: system,
	})
	if err != nil {
		return "", "", err
	}
	if answer == "" {
		return "", s.cfg.AskModel, ErrEmptyAnswer
	}

	return answer, s.cfg.AskModel, nil
}
