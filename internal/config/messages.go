package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Messages is the catalog of canned replies and fallback pools.
// Every field can be overridden from a YAML file; missing fields keep their defaults.
type Messages struct {
	ContactLine      string   `yaml:"contact_line"`
	GreetingReply    string   `yaml:"greeting_reply"`
	ThanksReply      string   `yaml:"thanks_reply"`
	GoodbyeReply     string   `yaml:"goodbye_reply"`
	FallbackMessages []string `yaml:"fallback_messages"`
	RefineHints      []string `yaml:"refine_hints"`
}

// ContactSentence is the single sentence used whenever the user should reach a human.
func (m Messages) ContactSentence() string {
	return fmt.Sprintf("Contact us at %s.", m.ContactLine)
}

// DefaultMessages returns the built-in catalog.
func DefaultMessages() Messages {
	return Messages{
		ContactLine: "support@example.com or +1 555 0100",
		GreetingReply: "Hello! I'm the documentation assistant. I can help with information about our services, " +
			"industries, solutions, and company details, or connect you with the team. How can I assist you today?\n\n" +
			"You can ask about:\n- Services we offer\n- Industries we work with\n- Capabilities or case studies\n- How to contact our team",
		ThanksReply:  "You're welcome, happy to help. If there's anything else you need, let me know.",
		GoodbyeReply: "Thanks for chatting. If you need anything later, reach out any time.",
		FallbackMessages: []string{
			"I couldn't find that in the available materials.",
			"This information isn't present in the content I have access to.",
			"I don't have enough detail in the current documents to answer that.",
			"That topic doesn't appear in our indexed content.",
			"I'm not seeing a direct match for that in the context.",
			"The current documents don't cover that request.",
			"I wasn't able to locate a source for that in the materials.",
			"I can't confirm that from the context I have.",
			"There isn't sufficient information in the indexed content to answer that confidently.",
			"I couldn't verify that in the available sources.",
			"I don't have a documented answer for that in the knowledge base.",
			"That doesn't seem to be covered in the material I'm using.",
			"The context I have doesn't include an answer to that.",
			"I didn't find supporting details for that in the sources.",
			"I'm not able to provide a context-backed answer to that.",
			"It looks like this isn't documented in the materials I have.",
			"I wasn't able to find a relevant reference for that.",
			"I don't have the specifics for that in the current set of documents.",
			"The information you're looking for isn't available in the indexed content.",
			"I couldn't locate a reliable source for that in the context.",
		},
		RefineHints: []string{
			"If you can share a bit more detail (e.g., specific service, product, or page), I'll look again.",
			"Please add more context, such as the area or page you're referring to, and I'll recheck.",
			"Point me to a page title or file name if you can, and I'll search that directly.",
			"If you specify the topic or section, I'll try a more targeted search.",
			"Share any keywords or the exact phrase you saw, and I'll look it up.",
			"Let me know the timeframe or team (e.g., Services, Industries), and I'll refine the search.",
		},
	}
}

// LoadMessages returns the default catalog, overlaid with the YAML file at path when path is set.
func LoadMessages(path string) (Messages, error) {
	msgs := DefaultMessages()
	if path == "" {
		return msgs, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Messages{}, fmt.Errorf("failed to read messages file: %w", err)
	}

	var override Messages
	if err := yaml.Unmarshal(data, &override); err != nil {
		return Messages{}, fmt.Errorf("failed to parse messages file: %w", err)
	}

	if override.ContactLine != "" {
		msgs.ContactLine = override.ContactLine
	}
	if override.GreetingReply != "" {
		msgs.GreetingReply = override.GreetingReply
	}
	if override.ThanksReply != "" {
		msgs.ThanksReply = override.ThanksReply
	}
	if override.GoodbyeReply != "" {
		msgs.GoodbyeReply = override.GoodbyeReply
	}
	if len(override.FallbackMessages) > 0 {
		msgs.FallbackMessages = override.FallbackMessages
	}
	if len(override.RefineHints) > 0 {
		msgs.RefineHints = override.RefineHints
	}

	return msgs, nil
}
