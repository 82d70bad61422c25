package rag

import (
	"context"
	"strings"

	"docqa/internal/contextutil"
	"docqa/internal/document"
	"docqa/internal/intent"
	"docqa/internal/service"
)

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_generator.go -package=mocks docqa/internal/rag Generator

// Generator produces an answer for a prompt. *llm.Client and *llm.GeminiClient implement it.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// FallbackSelector supplies the reply for questions without a confident answer.
// *fallback.Selector implements it.
type FallbackSelector interface {
	Select(failCount int) string
}

// Replies holds the canned answers for short-circuited intents.
type Replies struct {
	// ContactLine is the bare contact detail, deduplicated in every answer.
	ContactLine string
	// ContactSentence answers pricing and contact questions and is appended to Goodbye.
	ContactSentence string
	Greeting        string
	Thanks          string
	Goodbye         string
}

// For returns the canned reply for in.
func (r Replies) For(in intent.Intent) string {
	switch in {
	case intent.Pricing, intent.Contact:
		return r.ContactSentence
	case intent.Greeting:
		return r.Greeting
	case intent.Thanks:
		return r.Thanks
	case intent.Goodbye:
		return strings.TrimSpace(r.Goodbye + " " + r.ContactSentence)
	}
	return ""
}

// Engine answers questions from the indexed corpus.
type Engine struct {
	retriever *Retriever
	gate      *Gate
	generator Generator
	fallback  FallbackSelector
	replies   Replies
}

// NewEngine creates a new answering engine.
func NewEngine(retriever *Retriever, gate *Gate, generator Generator, fallback FallbackSelector, replies Replies) *Engine {
	return &Engine{
		retriever: retriever,
		gate:      gate,
		generator: generator,
		fallback:  fallback,
		replies:   replies,
	}
}

// Answer replies to one question. Fixed intents get their canned reply and leave the
// fail count unchanged. Otherwise the question goes through retrieval, reranking and
// generation; a rejected or unusable answer is replaced by a fallback reply and
// increments the fail count, a good answer resets it to zero.
// Only an empty question returns an error.
func (e *Engine) Answer(ctx context.Context, req AnswerRequest) (AnswerResponse, error) {
	logger := contextutil.LoggerFromContext(ctx)

	question := strings.TrimSpace(req.Question)
	if question == "" {
		return AnswerResponse{}, &service.ValidationError{Field: "question", Message: "question is required"}
	}
	failCount := max(req.FailCount, 0)

	if in, ok := intent.Classify(question, intent.NormalizeQuestion(question)); ok {
		logger.InfoContext(ctx, "question short-circuited", "intent", string(in))
		return AnswerResponse{
			Answer:    SanitizeContact(e.replies.For(in), e.replies.ContactLine),
			FailCount: failCount,
			Intent:    in,
		}, nil
	}

	debug := &DebugInfo{Outcomes: make(map[string]Outcome, 3)}

	candidates, outcome := e.retriever.Retrieve(ctx, question)
	debug.Outcomes[StageRetrieval] = outcome

	gated := e.gate.RerankAndGate(ctx, question, candidates)
	debug.Outcomes[StageRerank] = gated.Outcome
	debug.TopScore = gated.TopScore
	debug.Sources = sources(gated.Selected)

	logger.InfoContext(ctx, "context gated",
		"candidates", len(candidates),
		"selected", len(gated.Selected),
		"top_score", gated.TopScore,
		"accepted", gated.Accepted,
		"retrieval", outcome,
		"rerank", gated.Outcome,
	)

	if !gated.Accepted {
		return e.fallbackResponse(req, failCount, debug), nil
	}

	answer, err := e.generator.Generate(ctx, BuildPrompt(question, gated.Texts()))
	answer = strings.TrimSpace(answer)
	switch {
	case err != nil:
		logger.ErrorContext(ctx, "failed to generate answer", "error", err)
		debug.Outcomes[StageGeneration] = Failed("generation failed", err)
		return e.fallbackResponse(req, failCount, debug), nil
	case IsLowQuality(answer):
		logger.InfoContext(ctx, "discarding low-quality answer", "answer_length", len(answer))
		debug.Outcomes[StageGeneration] = Failed("low-quality answer", nil)
		return e.fallbackResponse(req, failCount, debug), nil
	}
	debug.Outcomes[StageGeneration] = OK()
	debug.Accepted = true

	logger.InfoContext(ctx, "question answered", "answer_length", len(answer), "sources", len(debug.Sources))
	return e.respond(req, SanitizeContact(answer, e.replies.ContactLine), 0, debug), nil
}

func (e *Engine) fallbackResponse(req AnswerRequest, failCount int, debug *DebugInfo) AnswerResponse {
	msg := SanitizeContact(e.fallback.Select(failCount), e.replies.ContactLine)
	return e.respond(req, msg, failCount+1, debug)
}

func (e *Engine) respond(req AnswerRequest, answer string, failCount int, debug *DebugInfo) AnswerResponse {
	resp := AnswerResponse{
		Answer:    answer,
		FailCount: failCount,
		Accepted:  debug.Accepted,
		TopScore:  debug.TopScore,
		Sources:   debug.Sources,
	}
	if req.Debug {
		resp.Debug = debug
	}
	return resp
}

func sources(selected []Selected) []Source {
	out := make([]Source, 0, len(selected))
	for _, s := range selected {
		src, _ := s.Candidate.Meta[document.KeySource].(string)
		section, _ := s.Candidate.Meta[document.KeySection].(string)
		out = append(out, Source{
			ChunkID: s.Candidate.ID,
			Source:  src,
			Section: section,
			Score:   s.Score,
		})
	}
	return out
}
