package services

import "strings"

// DefaultPreviewWords is the number of words shown by a caption preview.
const DefaultPreviewWords = 50

// PreviewText returns the first maxWords words of text, followed by "..." when
// words were cut off.
func PreviewText(text string, maxWords int) string {
	words := strings.Fields(text)
	if maxWords <= 0 {
		maxWords = DefaultPreviewWords
	}
	if len(words) <= maxWords {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:maxWords], " ") + "..."
}
