package utils

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// FallbackCharsPerToken approximates token size when no encoding is available.
const FallbackCharsPerToken = 4

var (
	encoding     *tiktoken.Tiktoken
	encodingOnce sync.Once
	encodingErr  error
)

// getEncoding returns the cl100k_base encoding. The first call may fetch the
// BPE ranks, so failures are remembered and callers fall back to characters.
func getEncoding() (*tiktoken.Tiktoken, error) {
	encodingOnce.Do(func() {
		encoding, encodingErr = tiktoken.GetEncoding("cl100k_base")
	})
	return encoding, encodingErr
}

// CountTokens returns the token count of text, or a character-based estimate
// when the encoding is unavailable.
func CountTokens(text string) int {
	enc, err := getEncoding()
	if err != nil {
		return (len([]rune(text)) + FallbackCharsPerToken - 1) / FallbackCharsPerToken
	}
	return len(enc.Encode(text, nil, nil))
}

// TruncateTokens cuts text to at most limit tokens. Without an encoding it
// keeps limit*FallbackCharsPerToken runes instead.
func TruncateTokens(text string, limit int) string {
	if limit <= 0 {
		return ""
	}
	enc, err := getEncoding()
	if err != nil {
		return truncateRunes(text, limit*FallbackCharsPerToken)
	}
	tokens := enc.Encode(text, nil, nil)
	if len(tokens) <= limit {
		return text
	}
	return enc.Decode(tokens[:limit])
}

func truncateRunes(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n])
}
