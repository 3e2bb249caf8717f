package services

import (
	"context"
	"hash/fnv"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/custodia-labs/paperchat/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/paperchat/internal/core/domain"
	"github.com/custodia-labs/paperchat/internal/core/ports/driven"
)

// --- Mock implementations ---

// bowEmbedder is a deterministic bag-of-words embedder.
// Each lower-cased word is hashed into one of dims buckets.
type bowEmbedder struct {
	dims  int
	model string
	err   error
	calls int
}

func newBowEmbedder() *bowEmbedder {
	return &bowEmbedder{dims: 256, model: "bow"}
}

func (e *bowEmbedder) vector(text string) []float32 {
	vec := make([]float32, e.dims)
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		h := fnv.New32a()
		h.Write([]byte(w))
		vec[h.Sum32()%uint32(e.dims)]++
	}
	return vec
}

func (e *bowEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	return e.vector(text), nil
}

func (e *bowEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = e.vector(t)
	}
	return out, nil
}

func (e *bowEmbedder) Dimensions() int              { return e.dims }
func (e *bowEmbedder) ModelName() string            { return e.model }
func (e *bowEmbedder) Ping(_ context.Context) error { return nil }
func (e *bowEmbedder) Close() error                 { return nil }

// mockLLM implements driven.LLMService for testing.
type mockLLM struct {
	mu       sync.Mutex
	reply    string
	err      error
	panicMsg string
	delay    time.Duration
	calls    [][]driven.ChatMessage
	opts     []driven.ChatOptions
}

func (m *mockLLM) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, append([]driven.ChatMessage(nil), messages...))
	m.opts = append(m.opts, opts)
	m.mu.Unlock()

	if m.panicMsg != "" {
		panic(m.panicMsg)
	}
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if m.err != nil {
		return "", m.err
	}
	return m.reply, nil
}

func (m *mockLLM) lastMessages() []driven.ChatMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		return nil
	}
	return m.calls[len(m.calls)-1]
}

func (m *mockLLM) ModelName() string            { return "mock-llm" }
func (m *mockLLM) Ping(_ context.Context) error { return nil }
func (m *mockLLM) Close() error                 { return nil }

// mockPromptStore implements driven.PromptStore for testing.
type mockPromptStore struct {
	prompts map[string]string
	err     error
}

func (m *mockPromptStore) Load(name string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.prompts[name], nil
}

func (m *mockPromptStore) Reload() {}

// mockLoader implements driven.DocumentLoader for testing.
type mockLoader struct {
	docs []domain.Document
	err  error
	dir  string
}

func (m *mockLoader) Load(_ context.Context, dir string) ([]domain.Document, error) {
	m.dir = dir
	return m.docs, m.err
}

// mockChunker implements Chunker for testing.
type mockChunker struct {
	chunks []domain.Chunk
	err    error
}

func (m *mockChunker) ProcessAll(_ context.Context, _ []domain.Document) ([]domain.Chunk, error) {
	return m.chunks, m.err
}

// mockIndexStore implements driven.IndexStore backed by a memory index.
type mockIndexStore struct {
	records  []domain.EmbeddingRecord
	info     domain.IndexInfo
	path     string
	builds   int
	buildErr error
	loadErr  error
}

func (m *mockIndexStore) Build(_ context.Context, path string, records []domain.EmbeddingRecord, info domain.IndexInfo) error {
	if m.buildErr != nil {
		return m.buildErr
	}
	m.builds++
	m.path = path
	m.records = records
	m.info = info
	return nil
}

func (m *mockIndexStore) Load(ctx context.Context, path string) (driven.VectorIndex, domain.IndexInfo, error) {
	if m.loadErr != nil {
		return nil, domain.IndexInfo{Path: path}, m.loadErr
	}
	if m.builds == 0 {
		return nil, domain.IndexInfo{Path: path}, domain.ErrIndexNotFound
	}
	idx := memory.NewVectorIndex(0)
	if err := idx.Add(ctx, m.records...); err != nil {
		return nil, m.info, err
	}
	info := m.info
	info.Records = idx.Len()
	return idx, info, nil
}

// mockVectorIndex implements driven.VectorIndex with canned hits.
type mockVectorIndex struct {
	hits      []driven.VectorHit
	size      int
	searchErr error
	lastK     int
	closed    bool
}

func (m *mockVectorIndex) Add(_ context.Context, _ ...domain.EmbeddingRecord) error { return nil }

func (m *mockVectorIndex) Search(_ context.Context, _ []float32, k int) ([]driven.VectorHit, error) {
	m.lastK = k
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if k < len(m.hits) {
		return m.hits[:k], nil
	}
	return m.hits, nil
}

func (m *mockVectorIndex) Len() int { return m.size }

func (m *mockVectorIndex) Close() error {
	m.closed = true
	return nil
}

// mockMetrics implements driven.Metrics for testing.
type mockMetrics struct {
	mu             sync.Mutex
	outcomes       []string
	retrieved      []int
	providerErrors []string
}

func (m *mockMetrics) ObserveAsk(outcome string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes = append(m.outcomes, outcome)
}

func (m *mockMetrics) ObserveRetrieved(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.retrieved = append(m.retrieved, n)
}

func (m *mockMetrics) ObserveProviderError(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.providerErrors = append(m.providerErrors, kind)
}

// hit builds a vector hit for a chunk from source.
func hit(id, source, content string, score float64) driven.VectorHit {
	return driven.VectorHit{
		Record: domain.EmbeddingRecord{
			Chunk: domain.Chunk{
				ID:       id,
				Content:  content,
				Metadata: domain.ChunkMetadata{Source: source, Page: 1},
			},
			Embedding: []float32{1},
		},
		Similarity: score,
	}
}

// mockWatcher implements driven.PaperWatcher with a channel the test feeds.
type mockWatcher struct {
	changes chan domain.PaperChange
	err     error
	dir     string
}

func (m *mockWatcher) Watch(_ context.Context, dir string) (<-chan domain.PaperChange, error) {
	m.dir = dir
	if m.err != nil {
		return nil, m.err
	}
	return m.changes, nil
}

func (m *mockWatcher) Close() error { return nil }
