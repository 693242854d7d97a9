package utils

import "strings"

// SplitText splits a long string into chunks of approximately 'chunkSize' characters
// with 'overlap' characters carried over between adjacent chunks to preserve context
// at boundaries. Chunk boundaries are snapped backwards to the nearest whitespace
// when one is close, so words are not cut in half mid-chunk.
func SplitText(text string, chunkSize int, overlap int) []string {
	runes := []rune(text)
	totalLen := len(runes)
	if totalLen <= chunkSize {
		return []string{text}
	}

	step := chunkSize - overlap
	if step <= 0 {
		step = chunkSize // fallback if overlap >= chunkSize
	}

	var chunks []string
	for i := 0; i < totalLen; i += step {
		end := i + chunkSize
		if end > totalLen {
			end = totalLen
		} else {
			end = snapToBoundary(runes, i, end)
		}

		chunks = append(chunks, string(runes[i:end]))

		if end == totalLen {
			break
		}
	}

	return chunks
}

// snapToBoundary walks back from 'end' looking for whitespace within a small
// window. Returns the original end when none is found so no content is lost.
func snapToBoundary(runes []rune, start, end int) int {
	const window = 40
	limit := end - window
	if limit < start+1 {
		limit = start + 1
	}
	for i := end; i > limit; i-- {
		if isBoundary(runes[i-1]) {
			return i
		}
	}
	return end
}

func isBoundary(r rune) bool {
	return strings.ContainsRune(" \t\n\r", r)
}
