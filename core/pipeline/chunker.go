package pipeline

import (
	"fmt"
	"strings"
)

const (
	// DefaultSeparator splits documents on blank lines.
	DefaultSeparator = "\n\n"
	// DefaultMaxChunkSize is the maximum chunk length in characters.
	DefaultMaxChunkSize = 500
)

var sentenceEndings = map[rune]bool{
	'。': true, '！': true, '？': true, '…': true, '\n': true,
	'.': true, '!': true, '?': true,
}

// SeparatorChunker splits text on the separator and re-splits oversized
// parts at sentence boundaries. A single sentence longer than maxChunkSize
// is cut into fixed-size character slices. Empty parts are dropped, so a
// document of only separators yields no chunks.
func SeparatorChunker(separator string, maxChunkSize int) ChunkFunc {
	return func(text string) ([]string, error) {
		if separator == "" {
			return nil, fmt.Errorf("separator must not be empty")
		}
		if maxChunkSize <= 0 {
			return nil, fmt.Errorf("max chunk size must be positive, got %d", maxChunkSize)
		}

		var result []string
		for _, part := range strings.Split(text, separator) {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if len([]rune(part)) <= maxChunkSize {
				result = append(result, part)
				continue
			}
			result = append(result, splitOversized(part, maxChunkSize)...)
		}

		return result, nil
	}
}

// DefaultChunker chunks on blank lines with the default size limit.
func DefaultChunker() ChunkFunc {
	return SeparatorChunker(DefaultSeparator, DefaultMaxChunkSize)
}

// splitOversized packs the part's sentences into chunks of at most
// maxChunkSize characters, falling back to hard character slices for
// sentences that alone exceed the limit.
func splitOversized(part string, maxChunkSize int) []string {
	var result []string
	var current string

	for _, sentence := range splitIntoSentences(part) {
		if len([]rune(current))+len([]rune(sentence)) <= maxChunkSize {
			if current != "" {
				current += " " + sentence
			} else {
				current = sentence
			}
			continue
		}

		if current != "" {
			result = append(result, current)
		}

		if len([]rune(sentence)) > maxChunkSize {
			runes := []rune(sentence)
			for i := 0; i < len(runes); i += maxChunkSize {
				end := i + maxChunkSize
				if end > len(runes) {
					end = len(runes)
				}
				result = append(result, string(runes[i:end]))
			}
			current = ""
		} else {
			current = sentence
		}
	}

	if current != "" {
		result = append(result, current)
	}

	return result
}

// splitIntoSentences cuts text after every sentence-ending character,
// covering both CJK and latin punctuation.
func splitIntoSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	for _, char := range text {
		current.WriteRune(char)
		if sentenceEndings[char] {
			sentences = append(sentences, current.String())
			current.Reset()
		}
	}

	if current.Len() > 0 {
		sentences = append(sentences, current.String())
	}

	return sentences
}
