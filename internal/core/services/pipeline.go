package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/paperchat/internal/core/domain"
	"github.com/custodia-labs/paperchat/internal/core/ports/driven"
	"github.com/custodia-labs/paperchat/internal/core/ports/driving"
	"github.com/custodia-labs/paperchat/internal/logger"
)

// Ensure PipelineService implements the interface.
var _ driving.Pipeline = (*PipelineService)(nil)

// PipelineConfig holds the collaborators and limits of a PipelineService.
type PipelineConfig struct {
	Store     driven.IndexStore
	IndexPath string
	Embedder  driven.EmbeddingService
	LLM       driven.LLMService
	Prompts   driven.PromptStore

	// Metrics is optional.
	Metrics driven.Metrics

	TopK            int
	MinSimilarity   float64
	MaxHistoryTurns int
	AskTimeout      time.Duration
	MaxTokens       int
}

func (c *PipelineConfig) applyDefaults() {
	if c.TopK <= 0 {
		c.TopK = domain.DefaultTopK
	}
	if c.MaxHistoryTurns <= 0 {
		c.MaxHistoryTurns = domain.DefaultMaxHistoryTurns
	}
	if c.AskTimeout <= 0 {
		c.AskTimeout = domain.DefaultAskTimeout
	}
	if c.Metrics == nil {
		c.Metrics = noopMetrics{}
	}
}

// PipelineService answers questions over a loaded index and remembers the
// conversation. One instance is one conversation.
type PipelineService struct {
	cfg         PipelineConfig
	index       driven.VectorIndex
	info        domain.IndexInfo
	retriever   *Retriever
	synthesizer *Synthesizer
	formatter   *CitationFormatter

	mu         sync.Mutex
	history    []domain.Turn
	transcript []domain.Message
}

// OpenPipeline loads the index at cfg.IndexPath and builds a pipeline over it.
// Returns domain.ErrIndexNotFound when nothing has been ingested yet, and
// domain.ErrEmbeddingMismatch when the index was built with another model.
func OpenPipeline(ctx context.Context, cfg PipelineConfig) (*PipelineService, error) {
	if cfg.Store == nil || cfg.Embedder == nil || cfg.LLM == nil {
		return nil, fmt.Errorf("pipeline needs an index store, an embedder and a language model: %w", domain.ErrNotConfigured)
	}

	index, info, err := cfg.Store.Load(ctx, cfg.IndexPath)
	if err != nil {
		return nil, err
	}

	if err := checkEmbedder(info, cfg.Embedder); err != nil {
		index.Close()
		return nil, err
	}

	logger.Info("loaded %d records from %s (model %s)", info.Records, info.Path, info.EmbeddingModel)
	return NewPipeline(index, info, cfg), nil
}

// checkEmbedder verifies that queries will be embedded into the index's space.
func checkEmbedder(info domain.IndexInfo, embedder driven.EmbeddingService) error {
	if info.EmbeddingModel != "" && info.EmbeddingModel != embedder.ModelName() {
		return fmt.Errorf("index built with %q, configured model is %q: %w",
			info.EmbeddingModel, embedder.ModelName(), domain.ErrEmbeddingMismatch)
	}
	if dims := embedder.Dimensions(); dims > 0 && info.Dimensions > 0 && dims != info.Dimensions {
		return fmt.Errorf("index has %d dimensions, configured model produces %d: %w",
			info.Dimensions, dims, domain.ErrEmbeddingMismatch)
	}
	return nil
}

// NewPipeline builds a pipeline over an already loaded index.
func NewPipeline(index driven.VectorIndex, info domain.IndexInfo, cfg PipelineConfig) *PipelineService {
	cfg.applyDefaults()

	synth := NewSynthesizer(cfg.LLM, cfg.Prompts)
	synth.SetMaxTokens(cfg.MaxTokens)

	return &PipelineService{
		cfg:         cfg,
		index:       index,
		info:        info,
		retriever:   NewRetriever(cfg.Embedder, index, cfg.MinSimilarity),
		synthesizer: synth,
		formatter:   NewCitationFormatter(),
	}
}

// Ask retrieves, synthesizes and formats an answer to question.
// It never fails: any error or panic yields a degraded result.
func (p *PipelineService) Ask(ctx context.Context, question string) (result domain.AnswerResult) {
	start := time.Now()
	logger.Section("Ask")

	p.mu.Lock()
	defer p.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("internal error: %v", r)
			logger.Error(err, "ask panicked")
			result = degraded(err)
		}
		p.record(question, result, time.Since(start))
	}()

	question = strings.TrimSpace(question)
	if question == "" {
		return degraded(fmt.Errorf("empty question: %w", domain.ErrInvalidInput))
	}

	answer, citations, err := p.answer(ctx, question)
	if err != nil {
		logger.Error(err, "ask failed")
		return degraded(err)
	}

	p.remember(domain.Turn{Question: question, Answer: answer})
	return domain.AnswerResult{Answer: answer, Citations: citations}
}

func (p *PipelineService) answer(ctx context.Context, question string) (string, []string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.AskTimeout)
	defer cancel()

	retrieved, err := p.retriever.Retrieve(ctx, question, p.cfg.TopK)
	if err != nil {
		return "", nil, p.timeoutCause(ctx, err)
	}
	p.cfg.Metrics.ObserveRetrieved(len(retrieved))

	q := domain.Query{Text: question, History: p.historyLocked()}
	answer, used, err := p.synthesizer.Synthesize(ctx, q, retrieved)
	if err != nil {
		return "", nil, p.timeoutCause(ctx, err)
	}

	return answer, p.formatter.Format(used), nil
}

// timeoutCause reports an expired ask deadline as a provider timeout.
func (p *PipelineService) timeoutCause(ctx context.Context, err error) error {
	if errors.Is(err, domain.ErrProviderTimeout) {
		return err
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("no answer within %s: %w: %w", p.cfg.AskTimeout, domain.ErrProviderTimeout, err)
	}
	return err
}

// remember appends a turn, evicting the oldest beyond the cap.
func (p *PipelineService) remember(t domain.Turn) {
	p.history = append(p.history, t)
	if over := len(p.history) - p.cfg.MaxHistoryTurns; over > 0 {
		p.history = append([]domain.Turn(nil), p.history[over:]...)
	}
}

// record adds the exchange to the transcript and updates metrics.
// Blank questions are counted but never transcribed.
func (p *PipelineService) record(question string, result domain.AnswerResult, elapsed time.Duration) {
	if strings.TrimSpace(question) != "" {
		p.transcript = append(p.transcript,
			domain.Message{Role: domain.RoleUser, Content: question},
			domain.Message{Role: domain.RoleAssistant, Content: result.Answer, Citations: result.Citations},
		)
	}

	outcome := driven.OutcomeAnswered
	if result.Degraded() {
		outcome = driven.OutcomeDegraded
		var pe *domain.ProviderError
		if errors.As(result.Err, &pe) {
			p.cfg.Metrics.ObserveProviderError(providerErrorKind(pe))
		}
	}
	p.cfg.Metrics.ObserveAsk(outcome, elapsed)
	logger.Debug("ask %s in %s", outcome, elapsed.Round(time.Millisecond))
}

func providerErrorKind(pe *domain.ProviderError) string {
	if pe.Kind == nil {
		return "other"
	}
	return pe.Kind.Error()
}

func degraded(err error) domain.AnswerResult {
	return domain.AnswerResult{
		Answer:    domain.UserMessage(err),
		Citations: []string{},
		Err:       err,
	}
}

// Retrieve returns the k most similar chunks without calling the language model.
func (p *PipelineService) Retrieve(ctx context.Context, query string, k int) (domain.RetrievedSet, error) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.AskTimeout)
	defer cancel()

	set, err := p.retriever.Retrieve(ctx, query, k)
	if err != nil {
		return nil, p.timeoutCause(ctx, err)
	}
	p.cfg.Metrics.ObserveRetrieved(len(set))
	return set, nil
}

// History returns a copy of the remembered turns, oldest first.
func (p *PipelineService) History() []domain.Turn {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.historyLocked()
}

func (p *PipelineService) historyLocked() []domain.Turn {
	return append([]domain.Turn(nil), p.history...)
}

// Transcript returns a copy of the session transcript.
func (p *PipelineService) Transcript() []domain.Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.Message(nil), p.transcript...)
}

// Reset forgets the conversation history and transcript.
func (p *PipelineService) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.history = nil
	p.transcript = nil
	logger.Debug("conversation reset")
}

// Info describes the loaded index.
func (p *PipelineService) Info() domain.IndexInfo {
	return p.info
}

// Close releases the index.
func (p *PipelineService) Close() error {
	return p.index.Close()
}

type noopMetrics struct{}

func (noopMetrics) ObserveAsk(string, time.Duration) {}
func (noopMetrics) ObserveRetrieved(int)             {}
func (noopMetrics) ObserveProviderError(string)      {}
