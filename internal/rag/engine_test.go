package rag

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"testing"

	"go.uber.org/mock/gomock"

	"docqa/internal/fallback"
	"docqa/internal/intent"
	"docqa/internal/llm"
	"docqa/internal/rag/mocks"
	"docqa/internal/service"
	"docqa/internal/vectorstore"
)

var testReplies = Replies{
	ContactLine:     "help@example.com",
	ContactSentence: "Contact us at help@example.com.",
	Greeting:        "Hello! Ask me about our services.",
	Thanks:          "You're welcome.",
	Goodbye:         "Thanks for chatting.",
}

// stubFallback returns a message naming the fail count it was called with.
type stubFallback struct {
	calls []int
}

func (s *stubFallback) Select(failCount int) string {
	s.calls = append(s.calls, failCount)
	return fmt.Sprintf("fallback for %d", failCount)
}

type engineMocks struct {
	searcher  *mocks.MockSearcher
	scorer    *mocks.MockScorer
	generator *mocks.MockGenerator
}

func newTestEngine(t *testing.T, fb FallbackSelector) (*Engine, engineMocks) {
	t.Helper()
	ctrl := gomock.NewController(t)
	m := engineMocks{
		searcher:  mocks.NewMockSearcher(ctrl),
		scorer:    mocks.NewMockScorer(ctrl),
		generator: mocks.NewMockGenerator(ctrl),
	}
	engine := NewEngine(
		NewRetriever(m.searcher, DefaultRetrieveOptions()),
		NewGate(m.scorer, DefaultTopN, DefaultThreshold, PassThrough),
		m.generator,
		fb,
		testReplies,
	)
	return engine, m
}

func (m engineMocks) expectRetrieval(score float64) {
	candidates := []vectorstore.Candidate{
		{ID: "c1", Text: "We help with X.", Meta: map[string]any{"source": "services.md", "section": "Services", "type": "paragraph"}},
	}
	m.searcher.EXPECT().QueryMMR(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(candidates, nil)
	m.scorer.EXPECT().Rerank(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]llm.RerankResult{{Index: 0, RelevanceScore: score}}, nil)
}

func TestEngine_Answer_Validation(t *testing.T) {
	engine, _ := newTestEngine(t, &stubFallback{})

	_, err := engine.Answer(context.Background(), AnswerRequest{Question: "   "})
	var verr *service.ValidationError
	if !errors.As(err, &verr) || verr.Field != "question" {
		t.Fatalf("Answer() error = %v, want a question ValidationError", err)
	}
}

func TestEngine_Answer_Intents(t *testing.T) {
	tests := []struct {
		question string
		intent   intent.Intent
		want     string
	}{
		{"How much does it cost?", intent.Pricing, "Contact us at help@example.com."},
		{"hi, how much is the premium plan?", intent.Pricing, "Contact us at help@example.com."},
		{"Hello there", intent.Greeting, testReplies.Greeting},
		{"thanks!", intent.Thanks, testReplies.Thanks},
		{"ok bye", intent.Goodbye, "Thanks for chatting. Contact us at help@example.com."},
		{"What is your phone number?", intent.Contact, "Contact us at help@example.com."},
	}

	for _, tt := range tests {
		t.Run(string(tt.intent), func(t *testing.T) {
			// No retrieval, rerank or generation calls are expected.
			engine, _ := newTestEngine(t, &stubFallback{})

			resp, err := engine.Answer(context.Background(), AnswerRequest{Question: tt.question, FailCount: 3})
			if err != nil {
				t.Fatalf("Answer() error = %v", err)
			}
			if resp.Intent != tt.intent || resp.Answer != tt.want {
				t.Errorf("Answer() = (%q, %q), want (%q, %q)", resp.Intent, resp.Answer, tt.intent, tt.want)
			}
			if resp.FailCount != 3 {
				t.Errorf("FailCount = %d, want it unchanged at 3", resp.FailCount)
			}
		})
	}
}

func TestEngine_Answer_Accepted(t *testing.T) {
	engine, m := newTestEngine(t, &stubFallback{})
	m.expectRetrieval(0.9)
	m.generator.EXPECT().Generate(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, prompt string) (string, error) {
		if !strings.Contains(prompt, "Services\nWe help with X.") {
			t.Errorf("prompt missing context: %q", prompt)
		}
		return "  We help with X.  ", nil
	})

	resp, err := engine.Answer(context.Background(), AnswerRequest{Question: "What do you help with?", FailCount: 2, Debug: true})
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if resp.Answer != "We help with X." || resp.FailCount != 0 || !resp.Accepted {
		t.Errorf("Answer() = %+v, want accepted answer with fail count reset", resp)
	}
	if resp.Debug == nil || resp.Debug.Outcomes[StageGeneration].Status != StatusOK {
		t.Fatalf("Debug = %+v, want generation outcome", resp.Debug)
	}
	if len(resp.Sources) != 1 || resp.Sources[0].Source != "services.md" || resp.Sources[0].ChunkID != "c1" {
		t.Errorf("Sources = %+v", resp.Sources)
	}
}

func TestEngine_Answer_Fallbacks(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(m engineMocks)
		reason string
	}{
		{
			name:  "below threshold",
			setup: func(m engineMocks) { m.expectRetrieval(0.2) },
		},
		{
			name: "no candidates",
			setup: func(m engineMocks) {
				m.searcher.EXPECT().QueryMMR(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)
			},
		},
		{
			name: "generation error",
			setup: func(m engineMocks) {
				m.expectRetrieval(0.9)
				m.generator.EXPECT().Generate(gomock.Any(), gomock.Any()).Return("", errors.New("timeout"))
			},
			reason: "generation failed",
		},
		{
			name: "i don't know",
			setup: func(m engineMocks) {
				m.expectRetrieval(0.9)
				m.generator.EXPECT().Generate(gomock.Any(), gomock.Any()).Return("Sorry, I don't know.", nil)
			},
			reason: "low-quality answer",
		},
		{
			name: "trailing colon",
			setup: func(m engineMocks) {
				m.expectRetrieval(0.9)
				m.generator.EXPECT().Generate(gomock.Any(), gomock.Any()).Return("Our services are:", nil)
			},
			reason: "low-quality answer",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb := &stubFallback{}
			engine, m := newTestEngine(t, fb)
			tt.setup(m)

			resp, err := engine.Answer(context.Background(), AnswerRequest{Question: "What do you help with?", FailCount: 1, Debug: true})
			if err != nil {
				t.Fatalf("Answer() error = %v", err)
			}
			if resp.Answer != "fallback for 1" || resp.FailCount != 2 {
				t.Errorf("Answer() = (%q, %d), want fallback with fail count 2", resp.Answer, resp.FailCount)
			}
			if resp.Accepted {
				t.Error("fallback answers should not be marked accepted")
			}
			if tt.reason != "" && resp.Debug.Outcomes[StageGeneration].Reason != tt.reason {
				t.Errorf("generation outcome = %+v, want reason %q", resp.Debug.Outcomes[StageGeneration], tt.reason)
			}
		})
	}
}

func TestEngine_Answer_FailCountSequence(t *testing.T) {
	selector := fallback.NewSelector(
		[]string{"Not found 1.", "Not found 2.", "Not found 3.", "Not found 4.", "Not found 5.", "Not found 6.", "Not found 7."},
		[]string{"Hint 1.", "Hint 2.", "Hint 3.", "Hint 4."},
		testReplies.ContactSentence,
		fallback.WithRand(rand.New(rand.NewPCG(7, 7))),
	)
	engine, m := newTestEngine(t, selector)

	ctx := context.Background()
	failCount := 0
	for i, wantContact := range []bool{false, false, true} {
		m.expectRetrieval(0.1)
		resp, err := engine.Answer(ctx, AnswerRequest{Question: "Tell me about X", FailCount: failCount})
		if err != nil {
			t.Fatalf("Answer() error = %v", err)
		}
		if resp.FailCount != i+1 {
			t.Errorf("round %d: FailCount = %d, want %d", i, resp.FailCount, i+1)
		}
		if got := strings.Contains(resp.Answer, "help@example.com"); got != wantContact {
			t.Errorf("round %d (fail count %d): contact present = %v, want %v", i, failCount, got, wantContact)
		}
		failCount = resp.FailCount
	}

	m.expectRetrieval(0.95)
	m.generator.EXPECT().Generate(gomock.Any(), gomock.Any()).Return("X is our flagship service.", nil)
	resp, err := engine.Answer(ctx, AnswerRequest{Question: "Tell me about X", FailCount: failCount})
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if resp.FailCount != 0 {
		t.Errorf("FailCount after accepted answer = %d, want 0", resp.FailCount)
	}
}

func TestEngine_Answer_NegativeFailCount(t *testing.T) {
	fb := &stubFallback{}
	engine, m := newTestEngine(t, fb)
	m.expectRetrieval(0)

	resp, err := engine.Answer(context.Background(), AnswerRequest{Question: "Tell me about X", FailCount: -4})
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if resp.FailCount != 1 || len(fb.calls) != 1 || fb.calls[0] != 0 {
		t.Errorf("FailCount = %d, fallback calls = %v; want negative input treated as 0", resp.FailCount, fb.calls)
	}
}
