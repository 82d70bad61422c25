package rag

import "docqa/internal/intent"

// AnswerRequest is one question in a conversation.
type AnswerRequest struct {
	// Question is the user's question to answer.
	Question string `json:"question"`
	// FailCount is the number of consecutive unanswered questions so far, as returned
	// by the previous response. The caller round-trips it.
	FailCount int `json:"fail_count"`
	// Debug asks for retrieval details in the response.
	Debug bool `json:"debug,omitempty"`
}

// AnswerResponse is the reply to an AnswerRequest.
type AnswerResponse struct {
	Answer string `json:"answer"`
	// FailCount is the updated counter to send with the next question.
	FailCount int `json:"fail_count"`
	// Intent is set when the question was answered with a canned reply.
	Intent intent.Intent `json:"intent,omitempty"`
	Debug  *DebugInfo    `json:"debug,omitempty"`

	// Accepted reports whether the answer was generated from retrieved context.
	Accepted bool     `json:"-"`
	TopScore float64  `json:"-"`
	Sources  []Source `json:"-"`
}

// Source is a chunk the answer was generated from.
type Source struct {
	ChunkID string  `json:"chunk_id"`
	Source  string  `json:"source"`
	Section string  `json:"section,omitempty"`
	Score   float64 `json:"score"`
}

// DebugInfo describes how an answer was produced.
type DebugInfo struct {
	Accepted bool               `json:"accepted"`
	TopScore float64            `json:"top_score"`
	Sources  []Source           `json:"sources"`
	Outcomes map[string]Outcome `json:"outcomes"`
}

// Stage names used as keys in DebugInfo.Outcomes.
const (
	StageRetrieval  = "retrieval"
	StageRerank     = "rerank"
	StageGeneration = "generation"
)
