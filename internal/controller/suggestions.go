package controller

import "strings"

// MaxSuggestions is how many suggestions the chat view offers at once.
const MaxSuggestions = 4

var (
	newsSuggestions    = []string{"Get breaking news", "Search latest AI news", "Show world headlines"}
	searchSuggestions  = []string{"Find more information", "Get detailed analysis", "Search related topics"}
	defaultSuggestions = []string{"What is the latest news?", "Search for something", "Tell me about AI"}
)

// SmartSuggestions returns the prompts to offer next: the service's own
// suggestions when it sent any, otherwise a canned set picked by keywords in
// the last message.
func (s State) SmartSuggestions() []string {
	if len(s.Suggestions) > 0 {
		return s.Suggestions[:min(len(s.Suggestions), MaxSuggestions)]
	}

	var last string
	if n := len(s.Messages); n > 0 {
		last = strings.ToLower(s.Messages[n-1].Content)
	}
	switch {
	case strings.Contains(last, "news"):
		return append([]string(nil), newsSuggestions...)
	case strings.Contains(last, "search"):
		return append([]string(nil), searchSuggestions...)
	default:
		return append([]string(nil), defaultSuggestions...)
	}
}
