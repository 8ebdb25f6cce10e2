package intent

import (
	"regexp"
	"strings"
)

// Greeting maps a trigger phrase to its canned reply. Matching walks
// the table in definition order and the first hit wins, so the order
// below is part of the contract.
type Greeting struct {
	Trigger string
	Reply   string
}

// DefaultGreetings is the fixed conversational fast-path table.
var DefaultGreetings = []Greeting{
	{"hi", "Hello! How can I assist you today?"},
	{"hello", "Hi there! What can I help you with?"},
	{"hey", "Hey! How can I help?"},
	{"good morning", "Good morning! How can I support you today?"},
	{"good evening", "Good evening! What can I assist you with?"},
	{"good night", "Good night! Rest well."},
	{"how are you", "I'm just a bot, but I'm here to help you!"},
	{"what's up", "Not much, just ready to help you!"},
	{"how's it going", "All good on my end! How can I assist you?"},
	{"yo", "Yo! What's on your mind?"},
	{"sup", "Hey! Need any assistance?"},
	{"greetings", "Greetings! How can I assist you?"},
	{"nice to meet you", "Nice to meet you too! How can I help?"},
	{"howdy", "Howdy! What can I do for you?"},
	{"good afternoon", "Good afternoon! How may I assist you today?"},
	{"how do you do", "I'm doing great! How can I assist you?"},
	{"bonjour", "Bonjour! How can I help you today?"},
	{"hola", "Hola! Need any help?"},
	{"namaste", "Namaste! How may I help you?"},
	{"anyone there", "Yes, I'm here to help! What do you need?"},
	{"are you there", "Absolutely! How can I assist you?"},
}

type compiledGreeting struct {
	pattern *regexp.Regexp
	reply   string
}

// Matcher recognizes greeting questions with whole-word patterns
// compiled once at construction. It is immutable and safe for
// concurrent use.
type Matcher struct {
	greetings []compiledGreeting
}

func NewMatcher(table []Greeting) *Matcher {
	compiled := make([]compiledGreeting, 0, len(table))
	for _, g := range table {
		compiled = append(compiled, compiledGreeting{
			pattern: regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(g.Trigger) + `\b`),
			reply:   g.Reply,
		})
	}
	return &Matcher{greetings: compiled}
}

func NewDefaultMatcher() *Matcher {
	return NewMatcher(DefaultGreetings)
}

// Match returns the canned reply for the first trigger found in the
// question, or ("", false) when nothing matches.
func (m *Matcher) Match(question string) (string, bool) {
	normalized := strings.ToLower(strings.TrimSpace(question))
	if normalized == "" {
		return "", false
	}

	for _, g := range m.greetings {
		if g.pattern.MatchString(normalized) {
			return g.reply, true
		}
	}
	return "", false
}
