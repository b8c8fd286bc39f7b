package transcript

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	reImperative = regexp.MustCompile(`^(click|tap|select|choose|open|close|go to|navigate|enter|type|press|drag|scroll|find|look|check|enable|disable|turn|set|add|remove|delete|create|save|download|upload|install|run|start|stop|copy|paste|move|resize)\s`)
	reTrailPunct = regexp.MustCompile(`[,;:]$`)
	reSentences  = regexp.MustCompile(`[.!?]+`)
)

// StepTitle derives a short title for step n from its transcript text.
// Instructions that open with an action verb keep their first seven words;
// otherwise the first sentence is used, shortened past eight words.
func StepTitle(text string, n int) string {
	fallback := fmt.Sprintf("Step %d", n)
	text = strings.TrimSpace(text)
	if text == "" {
		return fallback
	}

	if reImperative.MatchString(strings.ToLower(text)) {
		words := strings.Fields(text)
		if len(words) > 7 {
			words = words[:7]
		}
		title := reTrailPunct.ReplaceAllString(strings.Join(words, " "), "")
		return capitalize(title, fallback)
	}

	first := strings.TrimSpace(reSentences.Split(text, 2)[0])
	if first == "" {
		return fallback
	}
	words := strings.Fields(first)
	title := first
	if len(words) > 8 {
		title = strings.Join(words[:7], " ") + "..."
	}
	return capitalize(title, fallback)
}

func capitalize(s, fallback string) string {
	if s == "" {
		return fallback
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}
