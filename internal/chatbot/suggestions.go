package chatbot

// MaxSuggestions is the number of quick replies shown at once.
const MaxSuggestions = 3

// Present returns the quick replies to display: at most MaxSuggestions
// entries in the supplied order, or the defaults when none are supplied.
// The result never aliases its inputs.
func Present(suggestions, defaults []string) []string {
	src := suggestions
	if len(src) == 0 {
		src = defaults
	}
	if len(src) > MaxSuggestions {
		src = src[:MaxSuggestions]
	}
	out := make([]string, len(src))
	copy(out, src)
	return out
}
