package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/paperchat/internal/core/domain"
	"github.com/custodia-labs/paperchat/internal/core/ports/driven"
	"github.com/custodia-labs/paperchat/internal/logger"
)

// passageSeparator sits between context passages in the prompt.
const passageSeparator = "\n\n---\n\n"

// Fallback prompts, used when no prompt store is configured or a stored
// template cannot be used.
const (
	fallbackAnswerSystem = `You are an expert AI assistant specializing in oocyte maturation research.
Use only the numbered context passages provided with each question to answer it.
If the context does not contain the answer, say that you don't know. Do not make up an answer.
Always format your answer in a clear, scientific manner.`

	fallbackAnswerContext = "Context:\n%s"
)

// Synthesizer produces a grounded answer with a language model.
type Synthesizer struct {
	llm       driven.LLMService
	prompts   driven.PromptStore
	maxTokens int
}

// NewSynthesizer creates a synthesizer. prompts may be nil.
func NewSynthesizer(llm driven.LLMService, prompts driven.PromptStore) *Synthesizer {
	return &Synthesizer{llm: llm, prompts: prompts}
}

// SetMaxTokens bounds the generated answer. Zero leaves it to the provider.
func (s *Synthesizer) SetMaxTokens(n int) {
	s.maxTokens = n
}

// Synthesize answers q from the retrieved passages and returns the answer
// with the chunks that were supplied to the model.
// The language model is called with temperature 0. An empty reply is
// reported as domain.ErrMalformedResponse.
func (s *Synthesizer) Synthesize(ctx context.Context, q domain.Query, retrieved domain.RetrievedSet) (string, []domain.Chunk, error) {
	logger.Section("Synthesize")

	messages := s.messages(q, retrieved)
	logger.Debug("sending %d messages to %s", len(messages), s.llm.ModelName())

	answer, err := s.llm.Chat(ctx, messages, driven.ChatOptions{
		MaxTokens:   s.maxTokens,
		Temperature: 0,
	})
	if err != nil {
		return "", nil, err
	}

	if strings.TrimSpace(answer) == "" {
		return "", nil, domain.NewProviderError(s.llm.ModelName(), "chat", domain.ErrMalformedResponse,
			fmt.Errorf("empty answer"))
	}
	logger.Debug("answer: %d characters", len(answer))
	return answer, retrieved.Chunks(), nil
}

// messages builds the conversation: instructions, prior turns, then the
// question with its context passages.
func (s *Synthesizer) messages(q domain.Query, retrieved domain.RetrievedSet) []driven.ChatMessage {
	messages := make([]driven.ChatMessage, 0, 2+2*len(q.History))
	messages = append(messages, driven.ChatMessage{
		Role:    driven.RoleSystem,
		Content: s.systemPrompt(),
	})

	for _, t := range q.History {
		messages = append(messages,
			driven.ChatMessage{Role: driven.RoleUser, Content: t.Question},
			driven.ChatMessage{Role: driven.RoleAssistant, Content: t.Answer},
		)
	}

	passages := make([]string, len(retrieved))
	for i, rc := range retrieved {
		passages[i] = fmt.Sprintf("[%d] %s", i+1, strings.TrimSpace(rc.Chunk.Content))
	}
	passageBlock := fmt.Sprintf(s.contextTemplate(), strings.Join(passages, passageSeparator))

	messages = append(messages, driven.ChatMessage{
		Role:    driven.RoleUser,
		Content: passageBlock + "\n\nQuestion: " + q.Text,
	})
	return messages
}

func (s *Synthesizer) systemPrompt() string {
	if s.prompts == nil {
		return fallbackAnswerSystem
	}
	p, err := s.prompts.Load(driven.PromptAnswerSystem)
	if err != nil || strings.TrimSpace(p) == "" {
		return fallbackAnswerSystem
	}
	return p
}

// contextTemplate returns the stored context template if it has exactly
// one %s verb and no other verbs.
func (s *Synthesizer) contextTemplate() string {
	if s.prompts == nil {
		return fallbackAnswerContext
	}
	p, err := s.prompts.Load(driven.PromptAnswerContext)
	if err != nil {
		return fallbackAnswerContext
	}
	if strings.Count(p, "%s") != 1 || strings.Count(p, "%") != 1 {
		logger.Warn("prompt %q must contain a single %%s, using the default", driven.PromptAnswerContext)
		return fallbackAnswerContext
	}
	return p
}
