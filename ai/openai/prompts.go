package openai

import (
	"fmt"
	"strings"
)

const answerSystemPrompt = `You are an assistant answering questions about a private document collection.
Answer using only the supplied context. If the context does not contain the
answer, say that you don't have the information; do not make anything up.
Keep answers concise and in the language of the question.`

const answerUserTemplate = `Context:
%s

Question: %s`

const ocrPromptTemplate = `Transcribe every piece of text visible in this image, preserving reading order
and line breaks. Expect text in any of these languages: %s.
Output only the transcribed text with no commentary. If the image contains no
readable text, output nothing.`

// buildAnswerPrompt composes the user message for an answering call.
func buildAnswerPrompt(question, contextBlock string) string {
	return fmt.Sprintf(answerUserTemplate, contextBlock, question)
}

// buildOCRPrompt composes the transcription instruction for a vision call.
func buildOCRPrompt(languages []string) string {
	if len(languages) == 0 {
		languages = []string{"eng"}
	}
	return fmt.Sprintf(ocrPromptTemplate, strings.Join(languages, ", "))
}
