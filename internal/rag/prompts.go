package rag

import (
	"fmt"
	"strings"
)

const rerankSystemPrompt = "You are a relevance scoring assistant. Respond with only a number from 0 to 10."

const answerSystemPrompt = "You are a helpful assistant. Answer the question based on the provided context. " +
	"If the context doesn't contain enough information to answer the question, say so."

// Re-ranking requests are deterministic and need only room for a number.
const (
	rerankTemperature = 0
	rerankMaxTokens   = 10
)

func rerankUserPrompt(query, text string) string {
	return fmt.Sprintf("Rate the relevance of this text chunk to the question on a scale from 0 "+
		"(completely irrelevant) to 10 (perfectly relevant).\n\n"+
		"Question: %s\n\nText: %s\n\n"+
		"Provide only a single number from 0 to 10 as your response.", query, text)
}

// BuildContext joins chunks into the context block of the answer prompt.
func BuildContext(chunks []RetrievedChunk) string {
	parts := make([]string, len(chunks))
	for i, c := range chunks {
		parts[i] = fmt.Sprintf("[Source: %s]\n%s", c.Source, c.Text)
	}
	return strings.Join(parts, "\n\n")
}

func answerUserPrompt(query, context string) string {
	return fmt.Sprintf("Context:\n%s\n\nQuestion: %s\n\nAnswer:", context, query)
}
