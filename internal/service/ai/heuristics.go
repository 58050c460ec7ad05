package ai

import (
	"regexp"
	"strings"
)

// Keyword heuristics used when no chat model is configured or a model call
// fails, so the service stays answerable offline. Classification prompts are
// recognized by their instruction line and answered deterministically.

var routerKeywords = []string{
	"router", "wifi", "wi-fi", "internet", "modem", "network", "connection",
	"connect", "disconnect", "signal", "ethernet", "lan", "wlan", "broadband",
	"slow", "lag", "buffering", "dns", "ip address", "192.168", "online",
	"offline", "dropout", "speed", "ping", "vpn", "hotspot", "isp",
}

var affirmativeWords = []string{
	"yes", "yeah", "yep", "yup", "sure", "correct", "right", "true", "it is",
	"i think so", "definitely", "absolutely", "affirmative", "ok", "okay",
}

var negativeWords = []string{
	"no", "nope", "nah", "not", "never", "incorrect", "wrong", "false",
	"it isn't", "it's not", "negative", "don't think so",
}

var unsureWords = []string{
	"not sure", "unsure", "maybe", "don't know", "dont know", "no idea",
	"can't tell", "cant tell", "perhaps", "possibly", "?",
}

// routerRelated reports whether text plausibly concerns router or
// connectivity trouble.
func routerRelated(text string) bool {
	normalized := strings.ToLower(text)
	for _, word := range routerKeywords {
		if strings.Contains(normalized, word) {
			return true
		}
	}
	return false
}

// yesNoVerdict maps free text onto YES, NO or ? tokens. Unsure markers win
// over embedded yes/no words ("I'm not sure, maybe yes").
func yesNoVerdict(text string) string {
	normalized := strings.ToLower(strings.TrimSpace(text))
	for _, word := range unsureWords {
		if strings.Contains(normalized, word) {
			return "?"
		}
	}
	for _, word := range negativeWords {
		if strings.Contains(normalized, word) {
			return "NO"
		}
	}
	for _, word := range affirmativeWords {
		if strings.Contains(normalized, word) {
			return "YES"
		}
	}
	return "?"
}

// answerLike reports whether text reads as an attempt to answer a yes/no
// question at all.
func answerLike(text string) bool {
	normalized := strings.ToLower(strings.TrimSpace(text))
	for _, bucket := range [][]string{affirmativeWords, negativeWords, unsureWords} {
		for _, word := range bucket {
			if strings.Contains(normalized, word) {
				return true
			}
		}
	}
	return false
}

var quotedResponse = regexp.MustCompile(`responded: "([^"]*)"`)
var quotedStatement = regexp.MustCompile(`said: '([^']*)'`)

// fallbackReply answers a classification prompt without a model. It keys on
// the instruction line the prompt templates embed and extracts the quoted
// user text; anything unrecognized gets the canned off-topic redirect.
func fallbackReply(prompt string) string {
	userText := prompt
	if m := quotedResponse.FindStringSubmatch(prompt); m != nil {
		userText = m[1]
	} else if m := quotedStatement.FindStringSubmatch(prompt); m != nil {
		userText = m[1]
	}

	switch {
	case strings.Contains(prompt, `Reply with "YES" or "NO" or "?"`):
		return yesNoVerdict(userText)
	case strings.Contains(prompt, `Reply with only "YES" or "NO"`),
		strings.Contains(prompt, `Reply with only 'YES' or 'NO'`):
		// Topic-relevance check: a plain yes/no/unsure answer to the question
		// also counts as on-topic even without router vocabulary.
		if routerRelated(userText) || answerLike(userText) {
			return "YES"
		}
		return "NO"
	default:
		return offTopicResponse
	}
}
