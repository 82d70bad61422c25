package intent

import "testing"

func TestNormalizeQuestion(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Hello, World!  ", "hello world"},
		{"What's the $PRICE?", "whats the price"},
		{"caf\u00e9 \u2014 menu", "caf\u00e9 \u2014 menu"},
		{"...", ""},
	}
	for _, tt := range tests {
		if got := NormalizeQuestion(tt.in); got != tt.want {
			t.Errorf("NormalizeQuestion(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		question string
		want     Intent
		wantOK   bool
	}{
		{"pricing keyword", "What does the premium plan cost?", Pricing, true},
		{"pricing plural", "Do you publish your prices?", Pricing, true},
		{"pricing phrase", "how much for a website", Pricing, true},
		{"currency symbol", "Can you do it for $500?", Pricing, true},
		{"currency code", "is 20,000 INR enough", Pricing, true},
		{"rupee shorthand", "under Rs. 5000 please", Pricing, true},
		{"pricing beats greeting", "hi, how much does it cost?", Pricing, true},
		{"greeting exact", "Hello!", Greeting, true},
		{"greeting prefix", "good morning, what do you do", Greeting, true},
		{"greeting not a word prefix", "history of the company", "", false},
		{"thanks", "ok thank you so much", Thanks, true},
		{"thanks inside word", "tell me about security", "", false},
		{"goodbye", "alright, talk to you later", Goodbye, true},
		{"contact", "How can I contact your team?", Contact, true},
		{"contact phrase", "I want to get in touch", Contact, true},
		{"greeting beats contact", "hey, what is your email", Greeting, true},
		{"no intent", "What services do you offer?", "", false},
		{"number without currency", "list 3 case studies", "", false},
		{"contact inflected", "I tried contacting sales last week", Contact, true},
		{"email past tense", "I emailed the team yesterday", Contact, true},
		{"estimate past tense", "what is the estimated total", Pricing, true},
		{"estimate gerund", "are you estimating per project", Pricing, true},
		{"short stem stays strict", "planning a website migration", "", false},
		{"unrelated longer word", "tell me about your pricelessness", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Classify(tt.question, NormalizeQuestion(tt.question))
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("Classify(%q) = (%q, %v), want (%q, %v)", tt.question, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestInflectionOf(t *testing.T) {
	tests := []struct {
		word, stem string
		want       bool
	}{
		{"plans", "plan", true},
		{"planning", "plan", false},
		{"contacted", "contact", true},
		{"contacting", "contact", true},
		{"quoted", "quote", true},
		{"quoting", "quote", true},
		{"addresses", "address", true},
		{"charger", "charge", false},
		{"emails", "email", true},
		{"fees", "fee", true},
		{"feed", "fee", false},
	}
	for _, tt := range tests {
		if got := inflectionOf(tt.word, tt.stem); got != tt.want {
			t.Errorf("inflectionOf(%q, %q) = %v, want %v", tt.word, tt.stem, got, tt.want)
		}
	}
}
