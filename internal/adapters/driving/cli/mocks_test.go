package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/custodia-labs/paperchat/internal/core/domain"
	"github.com/custodia-labs/paperchat/internal/core/ports/driving"
)

// mockSettingsService implements driving.SettingsService for testing.
type mockSettingsService struct {
	settings    domain.AppSettings
	getErr      error
	validateErr error
	embedding   []string
	llm         []string
}

func newMockSettingsService() *mockSettingsService {
	s := domain.DefaultAppSettings()
	s.Embedding.APIKey = "sk-embedding-key-1234"
	s.LLM.APIKey = "sk-llm-key-5678"
	return &mockSettingsService{settings: s}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(s *domain.AppSettings) error {
	m.settings = *s
	return nil
}

func (m *mockSettingsService) SetEmbeddingProvider(p domain.AIProvider, model, apiKey string) error {
	m.embedding = []string{string(p), model, apiKey}
	m.settings.Embedding = domain.EmbeddingSettings{Provider: p, Model: model, APIKey: apiKey}
	return nil
}

func (m *mockSettingsService) SetLLMProvider(p domain.AIProvider, model, apiKey string) error {
	m.llm = []string{string(p), model, apiKey}
	m.settings.LLM = domain.LLMSettings{Provider: p, Model: model, APIKey: apiKey}
	return nil
}

func (m *mockSettingsService) Validate() error { return m.validateErr }
func (m *mockSettingsService) ValidateEmbeddingConfig() error { return nil }
func (m *mockSettingsService) ValidateLLMConfig() error { return nil }

// mockSession implements Session for testing.
type mockSession struct {
	result     domain.AnswerResult
	retrieved  domain.RetrievedSet
	retrieveK  int
	questions  []string
	transcript []domain.Message
	resets     int
	closed     bool
}

func (m *mockSession) Ask(_ context.Context, question string) domain.AnswerResult {
	m.questions = append(m.questions, question)
	m.transcript = append(m.transcript,
		domain.Message{Role: domain.RoleUser, Content: question},
		domain.Message{Role: domain.RoleAssistant, Content: m.result.Answer, Citations: m.result.Citations},
	)
	return m.result
}

func (m *mockSession) Retrieve(_ context.Context, _ string, k int) (domain.RetrievedSet, error) {
	m.retrieveK = k
	return m.retrieved, nil
}

func (m *mockSession) History() []domain.Turn { return nil }
func (m *mockSession) Transcript() []domain.Message { return m.transcript }
func (m *mockSession) Reset() { m.resets++ }
func (m *mockSession) Info() domain.IndexInfo { return domain.IndexInfo{Records: 12, Documents: 2} }

func (m *mockSession) Close() error {
	m.closed = true
	return nil
}

// mockIngest implements driving.IngestService for testing.
type mockIngest struct {
	report *domain.IngestReport
	err    error
	dir    string

	// rebuilds are delivered in order by Watch before it returns watchErr.
	rebuilds []error
	watchDir string
	watchErr error
}

func (m *mockIngest) Ingest(_ context.Context, dir string) (*domain.IngestReport, error) {
	m.dir = dir
	if m.err != nil {
		return nil, m.err
	}
	return m.report, nil
}

func (m *mockIngest) Info(_ context.Context) (domain.IndexInfo, error) {
	return domain.IndexInfo{}, errors.New("not used")
}

func (m *mockIngest) Watch(_ context.Context, dir string, onRebuild func(*domain.IngestReport, error)) error {
	m.watchDir = dir
	for _, err := range m.rebuilds {
		if err != nil {
			onRebuild(nil, err)
			continue
		}
		onRebuild(m.report, nil)
	}
	return m.watchErr
}

// testEnv holds the fakes installed by setupTestServices.
type testEnv struct {
	settings  *mockSettingsService
	session   *mockSession
	ingest    *mockIngest
	openErr   error
	opened    *domain.AppSettings
	indexInfo domain.IndexInfo
	indexErr  error
}

// setupTestServices installs fakes and resets command flags.
// The previous services are restored when the test ends.
func setupTestServices(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		settings: newMockSettingsService(),
		session:  &mockSession{},
		ingest:   &mockIngest{},
	}

	old := services
	SetServices(&Services{
		Settings: env.settings,
		OpenSession: func(_ context.Context, s *domain.AppSettings) (Session, error) {
			env.opened = s
			if env.openErr != nil {
				return nil, env.openErr
			}
			return env.session, nil
		},
		NewIngest: func(_ *domain.AppSettings, _ func(done, total int)) (driving.IngestService, error) {
			return env.ingest, nil
		},
		IndexInfo: func(_ context.Context, _ *domain.AppSettings) (domain.IndexInfo, error) {
			return env.indexInfo, env.indexErr
		},
	})

	askJSON, askTopK = false, 0
	retrieveJSON, retrieveTopK = false, 0
	chatTranscript, chatTopK = "", 0
	tuiTopK = 0
	ingestWatch = false
	versionShort = false

	t.Cleanup(func() {
		SetServices(old)
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})
	return env
}

// run executes the root command with args and returns its output.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(bytes.NewBufferString(stdin))
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return buf.String(), err
}
