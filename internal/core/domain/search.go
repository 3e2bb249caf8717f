package domain

import "time"

// Turn is one completed question and answer exchange.
type Turn struct {
	Question string
	Answer   string
}

// Query is a question together with the conversation so far.
type Query struct {
	// Text is the question as typed by the user.
	Text string

	// History holds prior turns, oldest first.
	History []Turn
}

// RetrievedChunk is an indexed chunk matched to a query.
type RetrievedChunk struct {
	// Chunk is the matched chunk.
	Chunk Chunk

	// Score is the cosine similarity to the query.
	Score float64

	// Rank is the 1-based position in the retrieved set.
	Rank int
}

// RetrievedSet is ordered by descending similarity.
type RetrievedSet []RetrievedChunk

// Chunks returns the chunks of the set in order.
func (s RetrievedSet) Chunks() []Chunk {
	chunks := make([]Chunk, len(s))
	for i, rc := range s {
		chunks[i] = rc.Chunk
	}
	return chunks
}

// AnswerResult is the single response shape returned to callers.
type AnswerResult struct {
	Answer    string   `json:"answer"`
	Citations []string `json:"citations"`

	// Err holds the cause when the answer is degraded. Nil on success.
	Err error `json:"-"`
}

// Degraded reports whether the result carries an error explanation
// instead of a grounded answer.
func (r AnswerResult) Degraded() bool {
	return r.Err != nil
}

// Role identifies the speaker of a transcript message.
type Role string

// Transcript roles.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is an entry in the append-only session transcript.
type Message struct {
	Role      Role     `json:"role"`
	Content   string   `json:"content"`
	Citations []string `json:"citations,omitempty"`
}

// IndexInfo describes a persisted index.
type IndexInfo struct {
	// Path is the location of the index on disk.
	Path string

	// EmbeddingModel is the model used to build the index.
	EmbeddingModel string

	// Dimensions is the embedding vector size.
	Dimensions int

	// Records is the number of embedding records.
	Records int

	// Documents is the number of distinct source documents.
	Documents int

	// Fingerprint identifies the corpus the index was built from.
	Fingerprint string

	// BuiltAt is when the index was built.
	BuiltAt time.Time
}
