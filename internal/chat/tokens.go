package chat

import "unicode/utf8"

// estimateTokens approximates token usage at roughly four characters per
// token, used when the provider response carries no usage metadata.
func estimateTokens(texts ...string) int {
	runes := 0
	for _, t := range texts {
		runes += utf8.RuneCountInString(t)
	}
	return runes / 4
}
