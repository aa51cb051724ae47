package file

import "strings"

// chunkSize is the target chunk length in bytes. Chunks break on word
// boundaries near the target so embeddings see whole words.
const chunkSize = 1200

// splitChunks cuts text into word-boundary chunks of roughly size bytes
func splitChunks(text string, size int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if len(text) <= size {
		return []string{text}
	}

	words := strings.Fields(text)
	var chunks []string
	var sb strings.Builder

	for _, word := range words {
		if sb.Len() > 0 && sb.Len()+1+len(word) > size {
			chunks = append(chunks, sb.String())
			sb.Reset()
		}
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(word)
	}
	if sb.Len() > 0 {
		chunks = append(chunks, sb.String())
	}

	return chunks
}
